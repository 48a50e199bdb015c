package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/service"
	pkgerrors "referral-outreach/backend/pkg/errors"
	"referral-outreach/backend/pkg/response"
)

// ImportHandler 表格导入 HTTP 处理器
type ImportHandler struct {
	importSvc service.ImportService
	maxUpload int64
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService, maxUpload int64) *ImportHandler {
	return &ImportHandler{importSvc: importSvc, maxUpload: maxUpload}
}

// ImportSpreadsheet 导入外联表格
// POST /api/v1/imports (multipart: file)
func (h *ImportHandler) ImportSpreadsheet(c *gin.Context) {
	name, _, data, ok := readUpload(c, "file", h.maxUpload)
	if !ok {
		return
	}

	result, err := h.importSvc.Import(c.Request.Context(), name, data, CurrentMemberName(c))
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, result)
}

// ListRuns 导入历史
// GET /api/v1/imports?limit=20
func (h *ImportHandler) ListRuns(c *gin.Context) {
	runs, err := h.importSvc.ListRuns(c.Request.Context(), queryLimit(c, 20, 200))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": runs})
}

// GetRun 导入记录详情
// GET /api/v1/imports/:id
func (h *ImportHandler) GetRun(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	run, err := h.importSvc.GetRun(c.Request.Context(), id)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, run)
}

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportEmpty):
		response.BadRequest(c, 16001, "导入文件为空")
	case errors.Is(err, service.ErrInvalidWorkbook):
		response.BadRequest(c, 16002, "无法解析 Excel 文件")
	case errors.Is(err, service.ErrSheetNotFound):
		response.ErrorWithDetails(c, http.StatusBadRequest, 16003, "工作簿中找不到指定工作表", err.Error())
	case errors.Is(err, pkgerrors.ErrLocked):
		response.Conflict(c, 16004, "已有导入正在进行，请稍后重试")
	case errors.Is(err, service.ErrImportRunNotFound):
		response.NotFound(c, 16005, "导入记录不存在")
	default:
		response.InternalError(c)
	}
}
