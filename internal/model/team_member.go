package model

// TeamMember 外联团队成员 — 对应 team_members（登录账号）
type TeamMember struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"                   json:"id"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"      json:"username"`
	DisplayName  string `gorm:"type:varchar(100);not null"                 json:"display_name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                 json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'" json:"role"` // admin | member
	IsActive     bool   `gorm:"not null;default:true"                      json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (TeamMember) TableName() string { return "team_members" }
