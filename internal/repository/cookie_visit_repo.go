package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// CookieVisitRepository 送饼干拜访数据访问接口
type CookieVisitRepository interface {
	Create(ctx context.Context, visit *model.CookieVisit) error
	ListByPractice(ctx context.Context, practiceID uint64) ([]model.CookieVisit, error)
	ListRecent(ctx context.Context, limit int) ([]model.CookieVisit, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type cookieVisitRepo struct {
	db *gorm.DB
}

// NewCookieVisitRepo 创建 CookieVisitRepository 实例
func NewCookieVisitRepo(db *gorm.DB) CookieVisitRepository {
	return &cookieVisitRepo{db: db}
}

func (r *cookieVisitRepo) Create(ctx context.Context, visit *model.CookieVisit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *cookieVisitRepo) ListByPractice(ctx context.Context, practiceID uint64) ([]model.CookieVisit, error) {
	var visits []model.CookieVisit
	err := r.db.WithContext(ctx).
		Where("practice_id = ?", practiceID).
		Order("visit_date DESC NULLS LAST, id DESC").
		Find(&visits).Error
	return visits, err
}

func (r *cookieVisitRepo) ListRecent(ctx context.Context, limit int) ([]model.CookieVisit, error) {
	var visits []model.CookieVisit
	q := r.db.WithContext(ctx).Order("visit_date DESC NULLS LAST, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&visits).Error
	return visits, err
}

func (r *cookieVisitRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.CookieVisit{}).
		Where("visit_date >= ?", since).
		Count(&n).Error
	return n, err
}
