package model

import "time"

// 日历事件状态与类型
const (
	EventScheduled = "Scheduled"
	EventCompleted = "Completed"
	EventCancelled = "Cancelled"

	EventTypeLunch       = "Lunch"
	EventTypeCookieVisit = "Cookie Visit"
	EventTypeReminder    = "Reminder"
	EventTypeCustom      = "Custom"
)

// Event 日历事件 — 对应 events（展示层投影，不作为流程状态依据）
type Event struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement"                      json:"id"`
	PracticeID       *uint64    `gorm:"index"                                         json:"practice_id"`
	ProviderID       *uint64    `json:"provider_id,omitempty"`
	EventType        string     `gorm:"type:varchar(30)"                              json:"event_type"`
	Label            string     `gorm:"type:varchar(255)"                             json:"label"`
	ScheduledDate    *time.Time `gorm:"index"                                         json:"scheduled_date"`
	ScheduledTime    string     `gorm:"type:varchar(20)"                              json:"scheduled_time,omitempty"`
	Status           string     `gorm:"type:varchar(20);not null;default:'Scheduled'" json:"status"`
	Notes            string     `gorm:"type:text"                                     json:"notes,omitempty"`
	CreatedBy        string     `gorm:"type:varchar(100)"                             json:"created_by,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"            json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	FollowupInterval string     `gorm:"type:varchar(30)"                              json:"followup_interval,omitempty"`
	NextEventID      *uint64    `json:"next_event_id,omitempty"`

	// 关联
	Practice *Practice `gorm:"foreignKey:PracticeID;references:ID" json:"practice,omitempty"`
}

// TableName 指定表名
func (Event) TableName() string { return "events" }
