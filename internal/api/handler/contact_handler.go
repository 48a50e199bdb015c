package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/response"
)

// ContactHandler 联系记录 HTTP 处理器
type ContactHandler struct {
	contactSvc service.ContactService
}

// NewContactHandler 创建 ContactHandler
func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// CreateContact 新增联系记录（team_member 缺省为当前登录成员）
// POST /api/v1/contacts
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.TeamMember == "" {
		req.TeamMember = CurrentMemberName(c)
	}

	entry, err := h.contactSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleContactError(c, err)
		return
	}

	response.Created(c, entry)
}

// ListRecent 最近联系记录（全部诊所）
// GET /api/v1/contacts?limit=50
func (h *ContactHandler) ListRecent(c *gin.Context) {
	var req dto.ContactListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	list, err := h.contactSvc.ListRecent(c.Request.Context(), req.Limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListByPractice 诊所联系记录（最新在前，limit 缺省为全部）
// GET /api/v1/practices/:id/contacts
func (h *ContactHandler) ListByPractice(c *gin.Context) {
	practiceID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ContactListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.contactSvc.ListByPractice(c.Request.Context(), practiceID, req.Limit)
	if err != nil {
		h.handleContactError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetCallIndicator 电话次数提示
// GET /api/v1/practices/:id/call-indicator
func (h *ContactHandler) GetCallIndicator(c *gin.Context) {
	practiceID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	indicator, err := h.contactSvc.CallIndicator(c.Request.Context(), practiceID)
	if err != nil {
		h.handleContactError(c, err)
		return
	}

	response.OK(c, indicator)
}

func (h *ContactHandler) handleContactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPracticeNotFound):
		response.NotFound(c, 12001, "诊所不存在")
	case errors.Is(err, service.ErrInvalidContactType):
		response.BadRequest(c, 14001, "联系类型无效")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10006, "日期格式无效，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
