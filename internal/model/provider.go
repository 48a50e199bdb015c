package model

import "time"

// Provider 医生/临床人员表 — 对应 providers
type Provider struct {
	ID             uint64  `gorm:"primaryKey;autoIncrement"                   json:"id"`
	Name           string  `gorm:"type:varchar(255);not null"                 json:"name"`
	PracticeID     *uint64 `gorm:"index"                                      json:"practice_id"` // 可为空：医生可脱离诊所
	Status         string  `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`      // Active | Inactive
	InactiveReason string  `gorm:"type:text"                                  json:"inactive_reason,omitempty"`
	BaseModel

	// 关联
	Practice *Practice `gorm:"foreignKey:PracticeID;references:ID" json:"practice,omitempty"`
}

// TableName 指定表名
func (Provider) TableName() string { return "providers" }

// ProviderMove 医生调动记录 — 对应 provider_history（仅追加）
//
// 删除医生时保留调动记录，provider_id 仅作为引用。
type ProviderMove struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"             json:"id"`
	ProviderID    uint64    `gorm:"not null;index"                       json:"provider_id"`
	OldPracticeID *uint64   `json:"old_practice_id"`
	NewPracticeID *uint64   `json:"new_practice_id"`
	MoveDate      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"   json:"move_date"`
	Notes         string    `gorm:"type:text"                            json:"notes"`
}

// TableName 指定表名
func (ProviderMove) TableName() string { return "provider_history" }
