package repository

import (
	"context"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// StatusCount 按状态计数
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// LunchRepository 午餐流程数据访问接口
type LunchRepository interface {
	Create(ctx context.Context, lunch *model.Lunch) error
	GetByID(ctx context.Context, id uint64) (*model.Lunch, error)
	Update(ctx context.Context, lunch *model.Lunch) error
	// ListByPractice status 为空时返回该诊所全部午餐
	ListByPractice(ctx context.Context, practiceID uint64, status string) ([]model.Lunch, error)
	// ListByStatus status 为空时返回全部
	ListByStatus(ctx context.Context, status string) ([]model.Lunch, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

// CallAttemptRepository 午餐预约电话数据访问接口
type CallAttemptRepository interface {
	Create(ctx context.Context, attempt *model.CallAttempt) error
	ListByLunch(ctx context.Context, lunchID uint64) ([]model.CallAttempt, error)
	CountByLunch(ctx context.Context, lunchID uint64) (int64, error)
	ListAll(ctx context.Context) ([]model.CallAttempt, error)
}

// ── Lunch Repository 实现 ──

type lunchRepo struct {
	db *gorm.DB
}

// NewLunchRepo 创建 LunchRepository 实例
func NewLunchRepo(db *gorm.DB) LunchRepository {
	return &lunchRepo{db: db}
}

func (r *lunchRepo) Create(ctx context.Context, lunch *model.Lunch) error {
	return r.db.WithContext(ctx).Omit("Practice").Create(lunch).Error
}

func (r *lunchRepo) GetByID(ctx context.Context, id uint64) (*model.Lunch, error) {
	var lunch model.Lunch
	err := r.db.WithContext(ctx).
		Preload("Practice").
		Where("id = ?", id).
		First(&lunch).Error
	if err != nil {
		return nil, err
	}
	return &lunch, nil
}

func (r *lunchRepo) Update(ctx context.Context, lunch *model.Lunch) error {
	return r.db.WithContext(ctx).Omit("Practice").Save(lunch).Error
}

func (r *lunchRepo) ListByPractice(ctx context.Context, practiceID uint64, status string) ([]model.Lunch, error) {
	var lunches []model.Lunch
	db := r.db.WithContext(ctx).Where("practice_id = ?", practiceID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at DESC, id DESC").Find(&lunches).Error
	return lunches, err
}

func (r *lunchRepo) ListByStatus(ctx context.Context, status string) ([]model.Lunch, error) {
	var lunches []model.Lunch
	db := r.db.WithContext(ctx).Preload("Practice")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("scheduled_date ASC NULLS LAST, id ASC").Find(&lunches).Error
	return lunches, err
}

func (r *lunchRepo) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&model.Lunch{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	return counts, err
}

// ── CallAttempt Repository 实现 ──

type callAttemptRepo struct {
	db *gorm.DB
}

// NewCallAttemptRepo 创建 CallAttemptRepository 实例
func NewCallAttemptRepo(db *gorm.DB) CallAttemptRepository {
	return &callAttemptRepo{db: db}
}

func (r *callAttemptRepo) Create(ctx context.Context, attempt *model.CallAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *callAttemptRepo) ListByLunch(ctx context.Context, lunchID uint64) ([]model.CallAttempt, error) {
	var attempts []model.CallAttempt
	err := r.db.WithContext(ctx).
		Where("lunch_id = ?", lunchID).
		Order("call_date DESC NULLS LAST, id DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *callAttemptRepo) CountByLunch(ctx context.Context, lunchID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.CallAttempt{}).
		Where("lunch_id = ?", lunchID).
		Count(&n).Error
	return n, err
}

func (r *callAttemptRepo) ListAll(ctx context.Context) ([]model.CallAttempt, error) {
	var attempts []model.CallAttempt
	err := r.db.WithContext(ctx).Order("id ASC").Find(&attempts).Error
	return attempts, err
}
