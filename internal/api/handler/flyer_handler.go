package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/service"
	pkgerrors "referral-outreach/backend/pkg/errors"
	"referral-outreach/backend/pkg/response"
)

// FlyerHandler 传单模块 HTTP 处理器
type FlyerHandler struct {
	flyerSvc  service.FlyerService
	maxUpload int64
}

// NewFlyerHandler 创建 FlyerHandler
func NewFlyerHandler(flyerSvc service.FlyerService, maxUpload int64) *FlyerHandler {
	return &FlyerHandler{flyerSvc: flyerSvc, maxUpload: maxUpload}
}

// SendFlyer 上传传单并发送到诊所传真邮箱
// POST /api/v1/flyers (multipart: flyer, practice_ids[], location, subject, body)
func (h *FlyerHandler) SendFlyer(c *gin.Context) {
	var req dto.SendFlyerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	name, contentType, data, ok := readUpload(c, "flyer", h.maxUpload)
	if !ok {
		return
	}

	result, err := h.flyerSvc.Send(c.Request.Context(), &dto.SendFlyerInput{
		FlyerName:   name,
		ContentType: contentType,
		Data:        data,
		PracticeIDs: req.PracticeIDs,
		Location:    req.Location,
		Subject:     req.Subject,
		Body:        req.Body,
		SentBy:      CurrentMemberName(c),
	})
	if err != nil {
		h.handleFlyerError(c, err)
		return
	}

	response.Created(c, result)
}

// ListCampaigns 传单批次历史
// GET /api/v1/flyers?limit=20
func (h *FlyerHandler) ListCampaigns(c *gin.Context) {
	list, err := h.flyerSvc.ListCampaigns(c.Request.Context(), queryLimit(c, 20, 200))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListRecipients 批次收件诊所
// GET /api/v1/flyers/:id/recipients
func (h *FlyerHandler) ListRecipients(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := h.flyerSvc.ListRecipients(c.Request.Context(), id)
	if err != nil {
		h.handleFlyerError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListDue 需要发送传单的诊所
// GET /api/v1/flyers/due
func (h *FlyerHandler) ListDue(c *gin.Context) {
	list, err := h.flyerSvc.DueForFlyer(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

func (h *FlyerHandler) handleFlyerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFlyerEmpty):
		response.BadRequest(c, 18001, "传单文件为空")
	case errors.Is(err, service.ErrNoFlyerRecipients):
		response.BadRequest(c, 18002, "没有可发送的诊所")
	case errors.Is(err, service.ErrPracticeNotFound):
		response.NotFound(c, 12001, "诊所不存在")
	case errors.Is(err, pkgerrors.ErrStorageDisabled):
		response.ServiceUnavailable(c, 18003, "对象存储未启用")
	case errors.Is(err, pkgerrors.ErrTransportDisabled):
		response.ServiceUnavailable(c, 18004, "发件通道未启用")
	default:
		response.InternalError(c)
	}
}
