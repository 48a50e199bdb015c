package dto

import (
	"time"

	"referral-outreach/backend/internal/model"
)

// ── 传单模块 DTO ──

// SendFlyerRequest 发送传单（multipart 表单字段，文件字段名为 flyer）
type SendFlyerRequest struct {
	PracticeIDs []uint64 `form:"practice_ids"`
	Location    string   `form:"location" binding:"omitempty,oneof=Huntsville Woodlands Other"`
	Subject     string   `form:"subject"  binding:"omitempty,max=255"`
	Body        string   `form:"body"`
}

// SendFlyerInput 服务层发送参数
type SendFlyerInput struct {
	FlyerName   string
	ContentType string
	Data        []byte
	PracticeIDs []uint64 // 为空时按 Location 选择全部有传真邮箱的在册诊所
	Location    string
	Subject     string
	Body        string
	SentBy      string
}

// SendFlyerResponse 发送结果
type SendFlyerResponse struct {
	CampaignID uint64                 `json:"campaign_id"`
	FlyerKey   string                 `json:"flyer_key"`
	Sent       int                    `json:"sent"`
	Failed     int                    `json:"failed"` // 含无传真邮箱的诊所
	Recipients []model.FlyerRecipient `json:"recipients"`
}

// FlyerDueItem 需要发送传单的诊所
type FlyerDueItem struct {
	PracticeID   uint64     `json:"practice_id"`
	PracticeName string     `json:"practice_name"`
	FaxEmail     string     `json:"fax_email"`
	LastSent     *time.Time `json:"last_sent,omitempty"`
	DaysSince    *int       `json:"days_since,omitempty"` // 从未发送时为空
}
