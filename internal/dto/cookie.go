package dto

import "referral-outreach/backend/internal/model"

// ── 送饼干 DTO ──

// LogCookieVisitRequest 登记送饼干
type LogCookieVisitRequest struct {
	PracticeID     uint64 `json:"practice_id"     binding:"required"`
	VisitDate      string `json:"visit_date"`
	ItemsDelivered string `json:"items_delivered" binding:"omitempty,max=500"`
	DeliveredBy    string `json:"delivered_by"    binding:"omitempty,max=100"`
	Notes          string `json:"notes"`
	NextVisitDate  string `json:"next_visit_date"` // 为空时按默认间隔推算
	ScheduleNext   bool   `json:"schedule_next"`   // 同时创建下次拜访日历事件
}

// CookieVisitResponse 登记结果
type CookieVisitResponse struct {
	Visit     model.CookieVisit `json:"visit"`
	NextEvent *model.Event      `json:"next_event,omitempty"`
}
