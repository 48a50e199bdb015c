package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// ThankYouRepository 感谢信数据访问接口
type ThankYouRepository interface {
	Create(ctx context.Context, letter *model.ThankYouLetter) error
	BatchCreate(ctx context.Context, letters []model.ThankYouLetter) error
	GetByID(ctx context.Context, id uint64) (*model.ThankYouLetter, error)
	// ListByPractice status 为空时返回全部
	ListByPractice(ctx context.Context, practiceID uint64, status string) ([]model.ThankYouLetter, error)
	// ListByStatus status 为空时返回全部
	ListByStatus(ctx context.Context, status string) ([]model.ThankYouLetter, error)
	// MarkMailed 将指定的 Pending 感谢信置为 Mailed，返回实际更新条数
	MarkMailed(ctx context.Context, ids []uint64, mailedAt time.Time) (int64, error)
	MarkAllMailed(ctx context.Context, mailedAt time.Time) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type thankYouRepo struct {
	db *gorm.DB
}

// NewThankYouRepo 创建 ThankYouRepository 实例
func NewThankYouRepo(db *gorm.DB) ThankYouRepository {
	return &thankYouRepo{db: db}
}

func (r *thankYouRepo) Create(ctx context.Context, letter *model.ThankYouLetter) error {
	return r.db.WithContext(ctx).Omit("Provider").Create(letter).Error
}

func (r *thankYouRepo) BatchCreate(ctx context.Context, letters []model.ThankYouLetter) error {
	if len(letters) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Provider").Create(&letters).Error
}

func (r *thankYouRepo) GetByID(ctx context.Context, id uint64) (*model.ThankYouLetter, error) {
	var letter model.ThankYouLetter
	err := r.db.WithContext(ctx).
		Preload("Provider").
		Where("id = ?", id).
		First(&letter).Error
	if err != nil {
		return nil, err
	}
	return &letter, nil
}

func (r *thankYouRepo) ListByPractice(ctx context.Context, practiceID uint64, status string) ([]model.ThankYouLetter, error) {
	var letters []model.ThankYouLetter
	db := r.db.WithContext(ctx).Preload("Provider").Where("practice_id = ?", practiceID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at DESC, id DESC").Find(&letters).Error
	return letters, err
}

func (r *thankYouRepo) ListByStatus(ctx context.Context, status string) ([]model.ThankYouLetter, error) {
	var letters []model.ThankYouLetter
	db := r.db.WithContext(ctx).Preload("Provider")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at ASC, id ASC").Find(&letters).Error
	return letters, err
}

func (r *thankYouRepo) MarkMailed(ctx context.Context, ids []uint64, mailedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.ThankYouLetter{}).
		Where("id IN ? AND status = ?", ids, model.ThankYouPending).
		Updates(map[string]interface{}{
			"status":      model.ThankYouMailed,
			"date_mailed": mailedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *thankYouRepo) MarkAllMailed(ctx context.Context, mailedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ThankYouLetter{}).
		Where("status = ?", model.ThankYouPending).
		Updates(map[string]interface{}{
			"status":      model.ThankYouMailed,
			"date_mailed": mailedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *thankYouRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ThankYouLetter{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}
