package model

// Practice 转诊诊所表 — 对应 practices
//
// location_category 由地址派生，地址变更时重新计算；诊所不做物理删除，仅切换 status。
type Practice struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"                    json:"id"`
	Name             string `gorm:"type:varchar(255);not null"                  json:"name"`
	Address          string `gorm:"type:text"                                   json:"address"`
	ZipCode          string `gorm:"type:varchar(5)"                             json:"zip_code"`
	LocationCategory string `gorm:"type:varchar(20);not null;default:'Other'"   json:"location_category"` // Huntsville | Woodlands | Other
	Website          string `gorm:"type:varchar(255)"                           json:"website,omitempty"`
	ContactPerson    string `gorm:"type:varchar(255)"                           json:"contact_person,omitempty"`
	Phone            string `gorm:"type:varchar(20)"                            json:"phone"`
	Fax              string `gorm:"type:varchar(20)"                            json:"fax"`
	FaxEmail         string `gorm:"column:fax_vonage_email;type:varchar(255)"   json:"fax_email"`
	Email            string `gorm:"type:varchar(255)"                           json:"email,omitempty"`
	Status           string `gorm:"type:varchar(20);not null;default:'Active'"  json:"status"` // Active | Inactive
	ReferralVolume   int    `gorm:"not null;default:0"                          json:"referral_volume"`
	Notes            string `gorm:"type:text"                                   json:"notes"`
	BaseModel
}

// TableName 指定表名
func (Practice) TableName() string { return "practices" }

// IsActive 是否为活跃诊所
func (p *Practice) IsActive() bool { return p.Status == StatusActive }
