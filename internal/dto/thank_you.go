package dto

// ── 感谢信 DTO ──

// CreateThankYouRequest 手动新增感谢信（provider_id 为空时为该诊所全部在职医生各建一封）
type CreateThankYouRequest struct {
	PracticeID uint64  `json:"practice_id" binding:"required"`
	ProviderID *uint64 `json:"provider_id"`
	LunchID    *uint64 `json:"lunch_id"`
	Reason     string  `json:"reason"      binding:"omitempty,oneof=Post-Lunch 'New Referral' Other"`
}

// MarkMailedRequest 标记已寄出
type MarkMailedRequest struct {
	IDs        []uint64 `json:"ids"         binding:"required,min=1"`
	DateMailed string   `json:"date_mailed"`
}

// MarkMailedResponse 标记结果
type MarkMailedResponse struct {
	Updated int64 `json:"updated"`
}
