package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/response"
)

var lunchStatuses = []string{model.LunchNotContacted, model.LunchAttempting, model.LunchScheduled, model.LunchCompleted}

// LunchHandler 午餐流程 HTTP 处理器
type LunchHandler struct {
	lunchSvc service.LunchService
}

// NewLunchHandler 创建 LunchHandler
func NewLunchHandler(lunchSvc service.LunchService) *LunchHandler {
	return &LunchHandler{lunchSvc: lunchSvc}
}

// ListLunches 按状态列出午餐（status 为空返回全部）
// GET /api/v1/lunches?status=Scheduled
func (h *LunchHandler) ListLunches(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !lo.Contains(lunchStatuses, status) {
		response.BadRequest(c, 10001, "午餐状态无效")
		return
	}

	list, err := h.lunchSvc.ListByStatus(c.Request.Context(), status)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListByPractice 诊所的午餐记录
// GET /api/v1/practices/:id/lunches
func (h *LunchHandler) ListByPractice(c *gin.Context) {
	practiceID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := h.lunchSvc.ListByPractice(c.Request.Context(), practiceID)
	if err != nil {
		h.handleLunchError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// StartLunch 为诊所开启午餐流程
// POST /api/v1/lunches
func (h *LunchHandler) StartLunch(c *gin.Context) {
	var req dto.StartLunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	lunch, err := h.lunchSvc.Start(c.Request.Context(), req.PracticeID)
	if err != nil {
		h.handleLunchError(c, err)
		return
	}

	response.Created(c, lunch)
}

// GetLunch 午餐详情（含预约电话）
// GET /api/v1/lunches/:id
func (h *LunchHandler) GetLunch(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.lunchSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleLunchError(c, err)
		return
	}

	response.OK(c, detail)
}

// TransitionLunch 午餐状态流转
// PUT /api/v1/lunches/:id/status
func (h *LunchHandler) TransitionLunch(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionLunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.TeamMember == "" {
		req.TeamMember = CurrentMemberName(c)
	}

	lunch, err := h.lunchSvc.Transition(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLunchError(c, err)
		return
	}

	response.OK(c, lunch)
}

// LogCallAttempt 记录预约电话
// POST /api/v1/lunches/:id/calls
func (h *LunchHandler) LogCallAttempt(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.LogCallAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	attempt, err := h.lunchSvc.LogCallAttempt(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLunchError(c, err)
		return
	}

	response.Created(c, attempt)
}

// CompleteLunch 完成午餐（生成感谢信与下次跟进）
// POST /api/v1/lunches/:id/complete
func (h *LunchHandler) CompleteLunch(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CompleteLunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.TeamMember == "" {
		req.TeamMember = CurrentMemberName(c)
	}

	result, err := h.lunchSvc.Complete(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLunchError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *LunchHandler) handleLunchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLunchNotFound):
		response.NotFound(c, 15001, "午餐记录不存在")
	case errors.Is(err, service.ErrPracticeNotFound):
		response.NotFound(c, 12001, "诊所不存在")
	case errors.Is(err, service.ErrLunchInProgress):
		response.Conflict(c, 15002, "该诊所已有进行中的午餐流程")
	case errors.Is(err, service.ErrInvalidLunchTransition):
		response.BadRequest(c, 15003, "不允许的午餐状态流转")
	case errors.Is(err, service.ErrLunchCompleted):
		response.BadRequest(c, 15004, "午餐已完成，不能再记录电话")
	case errors.Is(err, service.ErrScheduledDateRequired):
		response.BadRequest(c, 15005, "预约午餐必须填写日期")
	case errors.Is(err, service.ErrCustomDateRequired):
		response.BadRequest(c, 15006, "自定义跟进需要填写日期")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10006, "日期格式无效，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
