package repository

import (
	"context"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// ProviderRepository 医生数据访问接口
type ProviderRepository interface {
	Create(ctx context.Context, provider *model.Provider) error
	BatchCreate(ctx context.Context, providers []model.Provider) error
	GetByID(ctx context.Context, id uint64) (*model.Provider, error)
	Update(ctx context.Context, provider *model.Provider) error
	Delete(ctx context.Context, id uint64) error
	ListByPractice(ctx context.Context, practiceID uint64, activeOnly bool) ([]model.Provider, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.Provider, int64, error)
	ListAll(ctx context.Context) ([]model.Provider, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// ProviderMoveRepository 医生调动记录数据访问接口（仅追加）
type ProviderMoveRepository interface {
	Create(ctx context.Context, move *model.ProviderMove) error
	ListByProvider(ctx context.Context, providerID uint64) ([]model.ProviderMove, error)
	ListAll(ctx context.Context) ([]model.ProviderMove, error)
}

// ── Provider Repository 实现 ──

type providerRepo struct {
	db *gorm.DB
}

// NewProviderRepo 创建 ProviderRepository 实例
func NewProviderRepo(db *gorm.DB) ProviderRepository {
	return &providerRepo{db: db}
}

func (r *providerRepo) Create(ctx context.Context, provider *model.Provider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}

func (r *providerRepo) BatchCreate(ctx context.Context, providers []model.Provider) error {
	if len(providers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&providers).Error
}

func (r *providerRepo) GetByID(ctx context.Context, id uint64) (*model.Provider, error) {
	var provider model.Provider
	err := r.db.WithContext(ctx).
		Preload("Practice").
		Where("id = ?", id).
		First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepo) Update(ctx context.Context, provider *model.Provider) error {
	return r.db.WithContext(ctx).Omit("Practice").Save(provider).Error
}

// Delete 删除医生，并解除感谢信 / 日历事件上的引用；调动记录保持不变
func (r *providerRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ThankYouLetter{}).
			Where("provider_id = ?", id).
			Update("provider_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Event{}).
			Where("provider_id = ?", id).
			Update("provider_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Provider{}).Error
	})
}

func (r *providerRepo) ListByPractice(ctx context.Context, practiceID uint64, activeOnly bool) ([]model.Provider, error) {
	var providers []model.Provider
	db := r.db.WithContext(ctx).Where("practice_id = ?", practiceID)
	if activeOnly {
		db = db.Where("status = ?", model.StatusActive)
	}
	err := db.Order("name ASC").Find(&providers).Error
	return providers, err
}

func (r *providerRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Provider, int64, error) {
	var providers []model.Provider
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Provider{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("Practice").Order("name ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&providers).Error; err != nil {
		return nil, 0, err
	}
	return providers, total, nil
}

func (r *providerRepo) ListAll(ctx context.Context) ([]model.Provider, error) {
	var providers []model.Provider
	err := r.db.WithContext(ctx).Order("id ASC").Find(&providers).Error
	return providers, err
}

func (r *providerRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	db := r.db.WithContext(ctx).Model(&model.Provider{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Count(&n).Error
	return n, err
}

// ── ProviderMove Repository 实现 ──

type providerMoveRepo struct {
	db *gorm.DB
}

// NewProviderMoveRepo 创建 ProviderMoveRepository 实例
func NewProviderMoveRepo(db *gorm.DB) ProviderMoveRepository {
	return &providerMoveRepo{db: db}
}

func (r *providerMoveRepo) Create(ctx context.Context, move *model.ProviderMove) error {
	return r.db.WithContext(ctx).Create(move).Error
}

func (r *providerMoveRepo) ListByProvider(ctx context.Context, providerID uint64) ([]model.ProviderMove, error) {
	var moves []model.ProviderMove
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("move_date DESC, id DESC").
		Find(&moves).Error
	return moves, err
}

func (r *providerMoveRepo) ListAll(ctx context.Context) ([]model.ProviderMove, error) {
	var moves []model.ProviderMove
	err := r.db.WithContext(ctx).Order("id ASC").Find(&moves).Error
	return moves, err
}
