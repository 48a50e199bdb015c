package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/response"
)

// EventHandler 日历事件 HTTP 处理器
type EventHandler struct {
	eventSvc service.EventService
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(eventSvc service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// ListEvents 事件列表（诊所 / 类型 / 状态 / 月份筛选）
// GET /api/v1/events?month=2026-10
func (h *EventHandler) ListEvents(c *gin.Context) {
	var req dto.EventListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.eventSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ExportICS 导出 iCalendar 日历
// GET /api/v1/events/calendar.ics
func (h *EventHandler) ExportICS(c *gin.Context) {
	var req dto.EventListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	data, err := h.eventSvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	response.File(c, response.ContentTypeCalendar, "outreach.ics", data)
}

// GetEvent 事件详情
// GET /api/v1/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	event, err := h.eventSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	response.OK(c, event)
}

// CreateEvent 新建事件
// POST /api/v1/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	event, err := h.eventSvc.Create(c.Request.Context(), &req, CurrentMemberName(c))
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	response.Created(c, event)
}

// UpdateEvent 更新事件
// PUT /api/v1/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	event, err := h.eventSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	response.OK(c, event)
}

// DeleteEvent 删除事件
// DELETE /api/v1/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.eventSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleEventError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *EventHandler) handleEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 19001, "日历事件不存在")
	case errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 19002, "月份格式无效，应为 YYYY-MM")
	case errors.Is(err, service.ErrPracticeNotFound):
		response.NotFound(c, 12001, "诊所不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10006, "日期格式无效，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
