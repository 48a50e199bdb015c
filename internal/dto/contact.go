package dto

// ── 联系记录模块 DTO ──

// CreateContactRequest 新增联系记录
type CreateContactRequest struct {
	PracticeID      uint64 `json:"practice_id"      binding:"required"`
	ContactType     string `json:"contact_type"     binding:"required"`
	ContactDate     string `json:"contact_date"` // "2026-10-01"，为空取当天
	TeamMember      string `json:"team_member"      binding:"omitempty,max=100"`
	PersonContacted string `json:"person_contacted" binding:"omitempty,max=255"`
	Outcome         string `json:"outcome"          binding:"omitempty,max=100"`
	Purpose         string `json:"purpose"          binding:"omitempty,max=100"`
	Notes           string `json:"notes"`
}

// ContactListRequest 联系记录查询参数
type ContactListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// CallIndicator 诊所电话次数提示
type CallIndicator struct {
	CallCount      int64 `json:"call_count"`
	LunchScheduled bool  `json:"lunch_scheduled"`
	Warning        bool  `json:"warning"` // 电话次数达到阈值但尚未约到午餐
}
