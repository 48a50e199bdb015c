package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/response"
)

// ProviderHandler 医生模块 HTTP 处理器
type ProviderHandler struct {
	providerSvc service.ProviderService
}

// NewProviderHandler 创建 ProviderHandler
func NewProviderHandler(providerSvc service.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerSvc: providerSvc}
}

// ListProviders 医生列表
// GET /api/v1/providers
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	var req dto.ProviderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.providerSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListByPractice 诊所下的医生
// GET /api/v1/practices/:id/providers?active=true
func (h *ProviderHandler) ListByPractice(c *gin.Context) {
	practiceID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := h.providerSvc.ListByPractice(c.Request.Context(), practiceID, c.Query("active") == "true")
	if err != nil {
		h.handleProviderError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetProvider 医生详情
// GET /api/v1/providers/:id
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	provider, err := h.providerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleProviderError(c, err)
		return
	}

	response.OK(c, provider)
}

// CreateProvider 新增医生
// POST /api/v1/providers
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var req dto.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	provider, err := h.providerSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleProviderError(c, err)
		return
	}

	response.Created(c, provider)
}

// UpdateProvider 更新医生
// PUT /api/v1/providers/:id
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	provider, err := h.providerSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleProviderError(c, err)
		return
	}

	response.OK(c, provider)
}

// MoveProvider 调动医生到其他诊所
// POST /api/v1/providers/:id/move
func (h *ProviderHandler) MoveProvider(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.MoveProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	provider, err := h.providerSvc.Move(c.Request.Context(), id, &req)
	if err != nil {
		h.handleProviderError(c, err)
		return
	}

	response.OK(c, provider)
}

// GetHistory 医生调动记录
// GET /api/v1/providers/:id/history
func (h *ProviderHandler) GetHistory(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	history, err := h.providerSvc.History(c.Request.Context(), id)
	if err != nil {
		h.handleProviderError(c, err)
		return
	}

	response.OK(c, gin.H{"list": history})
}

// DeleteProvider 删除医生（调动记录保留）
// DELETE /api/v1/providers/:id
func (h *ProviderHandler) DeleteProvider(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.providerSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleProviderError(c, err)
		return
	}

	response.OK(c, nil)
}

// CleanupProviders 清理日期样式的医生名（delete=false 时仅预览）
// POST /api/v1/providers/cleanup
func (h *ProviderHandler) CleanupProviders(c *gin.Context) {
	var req dto.CleanupProvidersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.providerSvc.CleanupDateLike(c.Request.Context(), req.Delete)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

func (h *ProviderHandler) handleProviderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProviderNotFound):
		response.NotFound(c, 13001, "医生不存在")
	case errors.Is(err, service.ErrPracticeNotFound):
		response.NotFound(c, 12001, "诊所不存在")
	case errors.Is(err, service.ErrProviderNameTooShort):
		response.BadRequest(c, 13002, "医生姓名至少 2 个字符")
	default:
		response.InternalError(c)
	}
}
