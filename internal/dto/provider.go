package dto

import "referral-outreach/backend/internal/model"

// ── 医生模块 DTO ──

// CreateProviderRequest 新增医生请求
type CreateProviderRequest struct {
	Name       string  `json:"name"        binding:"required,min=2,max=255"`
	PracticeID *uint64 `json:"practice_id"`
}

// UpdateProviderRequest 更新医生请求
type UpdateProviderRequest struct {
	Name           *string `json:"name"            binding:"omitempty,min=2,max=255"`
	Status         *string `json:"status"          binding:"omitempty,oneof=Active Inactive"`
	InactiveReason *string `json:"inactive_reason"`
}

// MoveProviderRequest 调动医生请求（new_practice_id 为空表示脱离诊所）
type MoveProviderRequest struct {
	NewPracticeID *uint64 `json:"new_practice_id"`
	Notes         string  `json:"notes"`
}

// ProviderListRequest 医生列表查询参数
type ProviderListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=Active Inactive"`
}

// CleanupProvidersRequest 清理日期样式医生名
type CleanupProvidersRequest struct {
	Delete bool `json:"delete"` // false 时仅预览
}

// CleanupProvidersResponse 清理结果
type CleanupProvidersResponse struct {
	Matched []model.Provider `json:"matched"`
	Deleted int              `json:"deleted"`
}
