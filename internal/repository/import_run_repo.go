package repository

import (
	"context"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// ImportRunRepository 导入批次记录数据访问接口
type ImportRunRepository interface {
	Create(ctx context.Context, run *model.ImportRun) error
	GetByID(ctx context.Context, id uint64) (*model.ImportRun, error)
	List(ctx context.Context, limit int) ([]model.ImportRun, error)
}

type importRunRepo struct {
	db *gorm.DB
}

// NewImportRunRepo 创建 ImportRunRepository 实例
func NewImportRunRepo(db *gorm.DB) ImportRunRepository {
	return &importRunRepo{db: db}
}

func (r *importRunRepo) Create(ctx context.Context, run *model.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *importRunRepo) GetByID(ctx context.Context, id uint64) (*model.ImportRun, error) {
	var run model.ImportRun
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *importRunRepo) List(ctx context.Context, limit int) ([]model.ImportRun, error) {
	var runs []model.ImportRun
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&runs).Error
	return runs, err
}
