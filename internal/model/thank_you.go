package model

import "time"

// 感谢信状态与来源
const (
	ThankYouPending = "Pending"
	ThankYouMailed  = "Mailed"

	ReasonPostLunch   = "Post-Lunch"
	ReasonNewReferral = "New Referral"
	ReasonOther       = "Other"
)

// ThankYouLetter 感谢信 — 对应 thank_you_letters（Pending → Mailed，单向）
type ThankYouLetter struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"                      json:"id"`
	ProviderID *uint64    `gorm:"index"                                         json:"provider_id"`
	PracticeID uint64     `gorm:"not null;index"                                json:"practice_id"`
	LunchID    *uint64    `json:"lunch_id,omitempty"`
	Reason     string     `gorm:"type:varchar(30);not null;default:'Post-Lunch'" json:"reason"`
	Status     string     `gorm:"type:varchar(20);not null;default:'Pending'"   json:"status"`
	DateMailed *time.Time `json:"date_mailed,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"            json:"created_at"`

	// 关联
	Provider *Provider `gorm:"foreignKey:ProviderID;references:ID" json:"provider,omitempty"`
}

// TableName 指定表名
func (ThankYouLetter) TableName() string { return "thank_you_letters" }
