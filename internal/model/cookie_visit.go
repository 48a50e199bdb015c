package model

import "time"

// CookieVisit 送饼干拜访 — 对应 cookie_visits（一次性事件，无状态机）
type CookieVisit struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement"                   json:"id"`
	PracticeID     uint64     `gorm:"not null;index"                             json:"practice_id"`
	VisitDate      *time.Time `json:"visit_date"`
	ItemsDelivered string     `gorm:"type:text"                                  json:"items_delivered"`
	DeliveredBy    string     `gorm:"type:varchar(100)"                          json:"delivered_by"`
	Notes          string     `gorm:"type:text"                                  json:"notes"`
	Status         string     `gorm:"type:varchar(20);not null;default:'Logged'" json:"status"`
	NextVisitDate  *time.Time `json:"next_visit_date,omitempty"`
}

// TableName 指定表名
func (CookieVisit) TableName() string { return "cookie_visits" }
