package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/service"
	pkgerrors "referral-outreach/backend/pkg/errors"
	"referral-outreach/backend/pkg/response"
)

// ExportHandler 导出与备份 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	backupSvc service.BackupService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, backupSvc service.BackupService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, backupSvc: backupSvc}
}

// ExportPractices 导出诊所列表
// GET /api/v1/export/practices?status=Active&location=Huntsville
func (h *ExportHandler) ExportPractices(c *gin.Context) {
	var req dto.PracticeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportPractices(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.File(c, response.ContentTypeXLSX, filename, buf.Bytes())
}

// Backup 生成数据快照并上传对象存储
// POST /api/v1/backups
func (h *ExportHandler) Backup(c *gin.Context) {
	key, err := h.backupSvc.Backup(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Created(c, gin.H{"key": key})
}

// Restore 从对象存储恢复数据快照（仅限空库）
// POST /api/v1/backups/restore
func (h *ExportHandler) Restore(c *gin.Context) {
	var req dto.RestoreBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "参数校验失败")
		return
	}

	result, err := h.backupSvc.Restore(c.Request.Context(), req.Key)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRestoreTargetNotEmpty):
		response.Conflict(c, 16103, "数据库已有诊所数据，无法恢复")
	case errors.Is(err, service.ErrSnapshotVersionMismatch):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, 16104, "快照版本与当前数据库不一致", err.Error())
	case errors.Is(err, service.ErrInvalidSnapshot):
		response.BadRequest(c, 16105, "快照文件无法解析")
	case errors.Is(err, service.ErrExportNoPractices):
		response.NotFound(c, 16101, "没有符合条件的诊所")
	case errors.Is(err, pkgerrors.ErrStorageDisabled):
		response.ServiceUnavailable(c, 16102, "对象存储未启用")
	default:
		response.InternalError(c)
	}
}
