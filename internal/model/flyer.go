package model

import "time"

// 传单发送结果
const (
	FlyerSent   = "Sent"
	FlyerFailed = "Failed"
)

// FlyerCampaign 传单批次 — 对应 flyer_campaigns
type FlyerCampaign struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"           json:"id"`
	SentDate  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"sent_date"`
	FlyerName string    `gorm:"type:varchar(255)"                  json:"flyer_name"`
	FlyerKey  string    `gorm:"type:varchar(512)"                  json:"flyer_key,omitempty"` // 附件在对象存储中的 key
	SentBy    string    `gorm:"type:varchar(100)"                  json:"sent_by"`
}

// TableName 指定表名
func (FlyerCampaign) TableName() string { return "flyer_campaigns" }

// FlyerRecipient 传单收件记录 — 对应 flyer_recipients（仅追加）
type FlyerRecipient struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"                 json:"id"`
	CampaignID   uint64 `gorm:"not null;index"                           json:"campaign_id"`
	PracticeID   uint64 `gorm:"not null;index"                           json:"practice_id"`
	VonageEmail  string `gorm:"type:varchar(255)"                        json:"vonage_email"`
	Status       string `gorm:"type:varchar(20);not null;default:'Sent'" json:"status"` // Sent | Failed
	ErrorMessage string `gorm:"type:text"                                json:"error_message,omitempty"`

	// 关联
	Practice *Practice `gorm:"foreignKey:PracticeID;references:ID" json:"practice,omitempty"`
}

// TableName 指定表名
func (FlyerRecipient) TableName() string { return "flyer_recipients" }

// FlyerCampaignSummary 批次统计（聚合查询结果）
type FlyerCampaignSummary struct {
	FlyerCampaign
	RecipientCount int `json:"recipient_count"`
	SentCount      int `json:"sent_count"`
	FailedCount    int `json:"failed_count"`
}
