package model

import "time"

// 午餐流程状态
const (
	LunchNotContacted = "Not Contacted"
	LunchAttempting   = "Attempting"
	LunchScheduled    = "Scheduled"
	LunchCompleted    = "Completed"
)

// Lunch 午餐外联流程 — 对应 lunch_tracking
//
// 状态机：Not Contacted → Attempting → Scheduled → Completed，
// 允许 Attempting → Not Contacted（放弃）与 Scheduled → Not Contacted（取消）。
type Lunch struct {
	ID              uint64     `gorm:"primaryKey;autoIncrement"                          json:"id"`
	PracticeID      uint64     `gorm:"not null;index"                                    json:"practice_id"`
	Status          string     `gorm:"type:varchar(20);not null;default:'Not Contacted'" json:"status"`
	ScheduledDate   *time.Time `json:"scheduled_date,omitempty"`
	ScheduledTime   string     `gorm:"type:varchar(20)"                                  json:"scheduled_time,omitempty"`
	StaffCount      *int       `json:"staff_count,omitempty"`
	DietaryNotes    string     `gorm:"type:text"                                         json:"dietary_notes,omitempty"`
	Restaurant      string     `gorm:"type:varchar(255)"                                 json:"restaurant,omitempty"`
	ConfirmedWith   string     `gorm:"type:varchar(255)"                                 json:"confirmed_with,omitempty"`
	CompletedDate   *time.Time `json:"completed_date,omitempty"`
	ActualAttendees *int       `json:"actual_attendees,omitempty"`
	VisitNotes      string     `gorm:"type:text"                                         json:"visit_notes,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"                json:"created_at"`

	// 关联
	Practice *Practice `gorm:"foreignKey:PracticeID;references:ID" json:"practice,omitempty"`
}

// TableName 指定表名
func (Lunch) TableName() string { return "lunch_tracking" }

// CallAttempt 午餐预约电话记录 — 对应 call_attempts
type CallAttempt struct {
	ID              uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LunchID         *uint64    `gorm:"index"                    json:"lunch_id"`
	PracticeID      uint64     `gorm:"not null;index"           json:"practice_id"`
	CallDate        *time.Time `json:"call_date"`
	CallTime        string     `gorm:"type:varchar(20)"         json:"call_time"`
	PersonContacted string     `gorm:"type:varchar(255)"        json:"person_contacted"`
	Outcome         string     `gorm:"type:varchar(50)"         json:"outcome"` // No Answer | Left Message | Spoke With | Scheduled | Call Back
	Notes           string     `gorm:"type:text"                json:"notes"`
}

// TableName 指定表名
func (CallAttempt) TableName() string { return "call_attempts" }
