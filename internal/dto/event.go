package dto

// ── 日历事件 DTO ──

// CreateEventRequest 新建事件
type CreateEventRequest struct {
	PracticeID    *uint64 `json:"practice_id"`
	ProviderID    *uint64 `json:"provider_id"`
	EventType     string  `json:"event_type"     binding:"required,oneof=Lunch 'Cookie Visit' Reminder Custom"`
	Label         string  `json:"label"          binding:"omitempty,max=255"`
	ScheduledDate string  `json:"scheduled_date" binding:"required"`
	ScheduledTime string  `json:"scheduled_time" binding:"omitempty,max=20"`
	Notes         string  `json:"notes"`
}

// UpdateEventRequest 更新事件
type UpdateEventRequest struct {
	Label         *string `json:"label"          binding:"omitempty,max=255"`
	ScheduledDate *string `json:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time" binding:"omitempty,max=20"`
	Status        *string `json:"status"         binding:"omitempty,oneof=Scheduled Completed Cancelled"`
	Notes         *string `json:"notes"`
}

// EventListRequest 事件查询参数
type EventListRequest struct {
	PracticeID *uint64 `form:"practice_id"`
	EventType  string  `form:"event_type"`
	Status     string  `form:"status" binding:"omitempty,oneof=Scheduled Completed Cancelled"`
	Month      string  `form:"month"` // "2026-10"
}
