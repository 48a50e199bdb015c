package model

import "time"

// 联系类型
const (
	ContactPhoneCall     = "Phone Call"
	ContactEmailSent     = "Email Sent"
	ContactFaxSent       = "Fax Sent"
	ContactInPersonVisit = "In-Person Visit"
	ContactVoicemailLeft = "Voicemail Left"
	ContactNoAnswer      = "No Answer"
	ContactCookieVisit   = "Cookie Visit"
	ContactLunch         = "Lunch"
	ContactOther         = "Other"
)

// ContactTypes 全部合法联系类型
var ContactTypes = []string{
	ContactPhoneCall, ContactEmailSent, ContactFaxSent, ContactInPersonVisit,
	ContactVoicemailLeft, ContactNoAnswer, ContactCookieVisit, ContactLunch, ContactOther,
}

// OutcomeScheduledLunch 电话结果：已约到午餐
const OutcomeScheduledLunch = "Scheduled lunch"

// ContactLog 联系记录表 — 对应 contact_log（仅追加，不更新不删除）
type ContactLog struct {
	ID                uint64     `gorm:"primaryKey;autoIncrement"         json:"id"`
	PracticeID        uint64     `gorm:"not null;index"                   json:"practice_id"`
	ContactType       string     `gorm:"type:varchar(30);not null"        json:"contact_type"`
	ContactDate       *time.Time `gorm:"index"                            json:"contact_date"` // 导入的非日期值为空
	TeamMember        string     `gorm:"type:varchar(100)"                json:"team_member"`
	PersonContacted   string     `gorm:"type:varchar(255)"                json:"person_contacted"`
	Outcome           string     `gorm:"type:varchar(100)"                json:"outcome"`
	Purpose           string     `gorm:"type:varchar(100)"                json:"purpose"`
	CallAttemptNumber *int       `json:"call_attempt_number,omitempty"` // 仅 Phone Call：创建时 = 既有电话数 + 1
	Notes             string     `gorm:"type:text"                        json:"notes"`
	CreatedAt         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (ContactLog) TableName() string { return "contact_log" }
