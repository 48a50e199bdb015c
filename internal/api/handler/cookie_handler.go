package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/response"
)

// CookieHandler 送饼干 HTTP 处理器
type CookieHandler struct {
	cookieSvc service.CookieService
}

// NewCookieHandler 创建 CookieHandler
func NewCookieHandler(cookieSvc service.CookieService) *CookieHandler {
	return &CookieHandler{cookieSvc: cookieSvc}
}

// LogVisit 登记送饼干
// POST /api/v1/cookie-visits
func (h *CookieHandler) LogVisit(c *gin.Context) {
	var req dto.LogCookieVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.DeliveredBy == "" {
		req.DeliveredBy = CurrentMemberName(c)
	}

	result, err := h.cookieSvc.LogVisit(c.Request.Context(), &req)
	if err != nil {
		h.handleCookieError(c, err)
		return
	}

	response.Created(c, result)
}

// ListRecent 最近送饼干记录
// GET /api/v1/cookie-visits?limit=50
func (h *CookieHandler) ListRecent(c *gin.Context) {
	list, err := h.cookieSvc.ListRecent(c.Request.Context(), queryLimit(c, 50, 500))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListByPractice 诊所送饼干记录
// GET /api/v1/practices/:id/cookie-visits
func (h *CookieHandler) ListByPractice(c *gin.Context) {
	practiceID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := h.cookieSvc.ListByPractice(c.Request.Context(), practiceID)
	if err != nil {
		h.handleCookieError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

func (h *CookieHandler) handleCookieError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPracticeNotFound):
		response.NotFound(c, 12001, "诊所不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10006, "日期格式无效，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
