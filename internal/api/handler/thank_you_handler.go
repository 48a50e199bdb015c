package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/response"
)

// ThankYouHandler 感谢信 HTTP 处理器
type ThankYouHandler struct {
	thankYouSvc service.ThankYouService
}

// NewThankYouHandler 创建 ThankYouHandler
func NewThankYouHandler(thankYouSvc service.ThankYouService) *ThankYouHandler {
	return &ThankYouHandler{thankYouSvc: thankYouSvc}
}

func validThankYouStatus(status string) bool {
	return status == "" || status == model.ThankYouPending || status == model.ThankYouMailed
}

// ListThankYous 感谢信列表
// GET /api/v1/thank-yous?status=Pending
func (h *ThankYouHandler) ListThankYous(c *gin.Context) {
	status := c.Query("status")
	if !validThankYouStatus(status) {
		response.BadRequest(c, 10001, "感谢信状态无效")
		return
	}

	list, err := h.thankYouSvc.List(c.Request.Context(), status)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListByPractice 诊所感谢信
// GET /api/v1/practices/:id/thank-yous
func (h *ThankYouHandler) ListByPractice(c *gin.Context) {
	practiceID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	status := c.Query("status")
	if !validThankYouStatus(status) {
		response.BadRequest(c, 10001, "感谢信状态无效")
		return
	}

	list, err := h.thankYouSvc.ListByPractice(c.Request.Context(), practiceID, status)
	if err != nil {
		h.handleThankYouError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateThankYou 手动新增感谢信
// POST /api/v1/thank-yous
func (h *ThankYouHandler) CreateThankYou(c *gin.Context) {
	var req dto.CreateThankYouRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	letters, err := h.thankYouSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleThankYouError(c, err)
		return
	}

	response.Created(c, gin.H{"list": letters})
}

// MarkMailed 标记已寄出
// POST /api/v1/thank-yous/mark-mailed
func (h *ThankYouHandler) MarkMailed(c *gin.Context) {
	var req dto.MarkMailedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.thankYouSvc.MarkMailed(c.Request.Context(), &req)
	if err != nil {
		h.handleThankYouError(c, err)
		return
	}

	response.OK(c, result)
}

// MarkAllMailed 全部待寄感谢信标记为已寄出
// POST /api/v1/thank-yous/mark-all-mailed
func (h *ThankYouHandler) MarkAllMailed(c *gin.Context) {
	result, err := h.thankYouSvc.MarkAllMailed(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

func (h *ThankYouHandler) handleThankYouError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPracticeNotFound):
		response.NotFound(c, 12001, "诊所不存在")
	case errors.Is(err, service.ErrProviderNotFound):
		response.NotFound(c, 13001, "医生不存在")
	case errors.Is(err, service.ErrProviderNotInPractice):
		response.BadRequest(c, 17001, "医生不属于该诊所")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10006, "日期格式无效，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
