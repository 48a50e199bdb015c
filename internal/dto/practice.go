package dto

import "referral-outreach/backend/internal/model"

// ── 诊所模块 DTO ──

// CreatePracticeRequest 新增诊所请求
type CreatePracticeRequest struct {
	Name           string `json:"name"            binding:"required,max=255"`
	Address        string `json:"address"`
	Website        string `json:"website"         binding:"omitempty,max=255"`
	ContactPerson  string `json:"contact_person"  binding:"omitempty,max=255"`
	Phone          string `json:"phone"`
	Fax            string `json:"fax"`
	Email          string `json:"email"           binding:"omitempty,email"`
	ReferralVolume int    `json:"referral_volume" binding:"omitempty,min=0"`
	Notes          string `json:"notes"`
}

// UpdatePracticeRequest 更新诊所请求（nil 表示不修改）
type UpdatePracticeRequest struct {
	Name           *string `json:"name"            binding:"omitempty,min=1,max=255"`
	Address        *string `json:"address"`
	Website        *string `json:"website"         binding:"omitempty,max=255"`
	ContactPerson  *string `json:"contact_person"  binding:"omitempty,max=255"`
	Phone          *string `json:"phone"`
	Fax            *string `json:"fax"`
	Email          *string `json:"email"           binding:"omitempty,email"`
	ReferralVolume *int    `json:"referral_volume" binding:"omitempty,min=0"`
	Notes          *string `json:"notes"`
}

// UpdatePracticeStatusRequest 切换诊所状态
type UpdatePracticeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Active Inactive"`
}

// PracticeListRequest 诊所列表查询参数
type PracticeListRequest struct {
	PaginationRequest
	Status   string `form:"status"   binding:"omitempty,oneof=Active Inactive"`
	Location string `form:"location" binding:"omitempty,oneof=Huntsville Woodlands Other"`
	Keyword  string `form:"keyword"  binding:"omitempty,max=100"`
}

// PracticeDetailResponse 诊所详情（含医生、最近联系与关系评分）
type PracticeDetailResponse struct {
	model.Practice
	Providers      []model.Provider   `json:"providers"`
	RecentContacts []model.ContactLog `json:"recent_contacts"`
	Score          *ScoreResponse     `json:"score"`
	CallIndicator  *CallIndicator     `json:"call_indicator"`
}

// RepairFaxEmailsResponse 传真邮箱修复结果
type RepairFaxEmailsResponse struct {
	Checked int      `json:"checked"`
	Fixed   int      `json:"fixed"`
	Cleared int      `json:"cleared"`
	Errors  []string `json:"errors,omitempty"`
}
