package dto

import "referral-outreach/backend/internal/model"

// ── 午餐流程 DTO ──

// StartLunchRequest 为诊所开启午餐流程
type StartLunchRequest struct {
	PracticeID uint64 `json:"practice_id" binding:"required"`
}

// TransitionLunchRequest 午餐状态流转（进入 Scheduled 时可同时填写预约信息）
type TransitionLunchRequest struct {
	Status        string  `json:"status"         binding:"required,oneof='Not Contacted' Attempting Scheduled"`
	ScheduledDate string  `json:"scheduled_date"`
	ScheduledTime string  `json:"scheduled_time" binding:"omitempty,max=20"`
	StaffCount    *int    `json:"staff_count"    binding:"omitempty,min=0"`
	DietaryNotes  *string `json:"dietary_notes"`
	Restaurant    *string `json:"restaurant"     binding:"omitempty,max=255"`
	ConfirmedWith *string `json:"confirmed_with" binding:"omitempty,max=255"`
	TeamMember    string  `json:"team_member"`
}

// LogCallAttemptRequest 记录一次预约电话
type LogCallAttemptRequest struct {
	CallDate        string `json:"call_date"`
	CallTime        string `json:"call_time"        binding:"omitempty,max=20"`
	PersonContacted string `json:"person_contacted" binding:"omitempty,max=255"`
	Outcome         string `json:"outcome"          binding:"required,oneof='No Answer' 'Left Message' 'Spoke With' Scheduled 'Call Back'"`
	Notes           string `json:"notes"`
}

// CompleteLunchRequest 完成午餐
type CompleteLunchRequest struct {
	CompletedDate   string `json:"completed_date"`
	ActualAttendees *int   `json:"actual_attendees" binding:"omitempty,min=0"`
	VisitNotes      string `json:"visit_notes"`
	// NextFollowup 为空不安排；可选 "12 weeks" / "3 months" / "6 months" / "custom"
	NextFollowup string `json:"next_followup" binding:"omitempty,oneof='12 weeks' '3 months' '6 months' custom"`
	CustomDate   string `json:"custom_date"`
	TeamMember   string `json:"team_member"`
}

// LunchDetailResponse 午餐详情
type LunchDetailResponse struct {
	model.Lunch
	CallAttempts   []model.CallAttempt `json:"call_attempts"`
	AttemptWarning bool                `json:"attempt_warning"` // 预约电话达到阈值仍未约定
}

// CompleteLunchResponse 完成午餐的结果
type CompleteLunchResponse struct {
	Lunch            model.Lunch  `json:"lunch"`
	ThankYousCreated int          `json:"thank_yous_created"`
	NextEvent        *model.Event `json:"next_event,omitempty"`
}
