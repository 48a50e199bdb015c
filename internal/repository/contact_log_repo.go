package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// PracticeCallStat 每个诊所的电话次数与是否已约到午餐
type PracticeCallStat struct {
	PracticeID     uint64 `json:"practice_id"`
	CallCount      int64  `json:"call_count"`
	LunchScheduled bool   `json:"lunch_scheduled"`
}

// ContactLogRepository 联系记录数据访问接口（仅追加，不提供更新 / 删除）
type ContactLogRepository interface {
	Create(ctx context.Context, entry *model.ContactLog) error
	// ListByPractice 按联系日期倒序返回，日期为空的排最后；limit<=0 表示全部
	ListByPractice(ctx context.Context, practiceID uint64, limit int) ([]model.ContactLog, error)
	ListRecent(ctx context.Context, limit int) ([]model.ContactLog, error)
	CountByPracticeAndType(ctx context.Context, practiceID uint64, contactType string) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CallStats(ctx context.Context, practiceID uint64) (*PracticeCallStat, error)
}

type contactLogRepo struct {
	db *gorm.DB
}

// NewContactLogRepo 创建 ContactLogRepository 实例
func NewContactLogRepo(db *gorm.DB) ContactLogRepository {
	return &contactLogRepo{db: db}
}

func (r *contactLogRepo) Create(ctx context.Context, entry *model.ContactLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *contactLogRepo) ListByPractice(ctx context.Context, practiceID uint64, limit int) ([]model.ContactLog, error) {
	var entries []model.ContactLog
	q := r.db.WithContext(ctx).
		Where("practice_id = ?", practiceID).
		Order("contact_date DESC NULLS LAST, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *contactLogRepo) ListRecent(ctx context.Context, limit int) ([]model.ContactLog, error) {
	var entries []model.ContactLog
	q := r.db.WithContext(ctx).Order("contact_date DESC NULLS LAST, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *contactLogRepo) CountByPracticeAndType(ctx context.Context, practiceID uint64, contactType string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ContactLog{}).
		Where("practice_id = ? AND contact_type = ?", practiceID, contactType).
		Count(&n).Error
	return n, err
}

func (r *contactLogRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ContactLog{}).
		Where("contact_date >= ?", since).
		Count(&n).Error
	return n, err
}

// CallStats 统计诊所电话次数，以及是否有结果为 "Scheduled lunch" 的联系
func (r *contactLogRepo) CallStats(ctx context.Context, practiceID uint64) (*PracticeCallStat, error) {
	stat := &PracticeCallStat{PracticeID: practiceID}
	db := r.db.WithContext(ctx).Model(&model.ContactLog{})

	if err := db.Session(&gorm.Session{}).
		Where("practice_id = ? AND contact_type = ?", practiceID, model.ContactPhoneCall).
		Count(&stat.CallCount).Error; err != nil {
		return nil, err
	}

	var scheduled int64
	if err := db.Session(&gorm.Session{}).
		Where("practice_id = ? AND outcome = ?", practiceID, model.OutcomeScheduledLunch).
		Count(&scheduled).Error; err != nil {
		return nil, err
	}
	stat.LunchScheduled = scheduled > 0
	return stat, nil
}
