package repository

import (
	"context"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// PracticeFilter 诊所列表筛选条件
type PracticeFilter struct {
	Status   string // Active | Inactive，空表示全部
	Location string // Huntsville | Woodlands | Other
	Keyword  string // 名称 / 地址 / 电话 / 传真 模糊匹配
	Offset   int
	Limit    int // <=0 表示不分页
}

// LocationCount 按地区统计诊所数
type LocationCount struct {
	LocationCategory string `json:"location_category"`
	Count            int64  `json:"count"`
}

// PracticeRepository 诊所数据访问接口
type PracticeRepository interface {
	Create(ctx context.Context, practice *model.Practice) error
	GetByID(ctx context.Context, id uint64) (*model.Practice, error)
	Update(ctx context.Context, practice *model.Practice) error
	UpdateFaxEmail(ctx context.Context, id uint64, faxEmail string) error
	List(ctx context.Context, filter PracticeFilter) ([]model.Practice, int64, error)
	ListWithFax(ctx context.Context) ([]model.Practice, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountByLocation(ctx context.Context, status string) ([]LocationCount, error)
}

type practiceRepo struct {
	db *gorm.DB
}

// NewPracticeRepo 创建 PracticeRepository 实例
func NewPracticeRepo(db *gorm.DB) PracticeRepository {
	return &practiceRepo{db: db}
}

func (r *practiceRepo) Create(ctx context.Context, practice *model.Practice) error {
	return r.db.WithContext(ctx).Create(practice).Error
}

func (r *practiceRepo) GetByID(ctx context.Context, id uint64) (*model.Practice, error) {
	var practice model.Practice
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&practice).Error
	if err != nil {
		return nil, err
	}
	return &practice, nil
}

func (r *practiceRepo) Update(ctx context.Context, practice *model.Practice) error {
	return r.db.WithContext(ctx).Save(practice).Error
}

func (r *practiceRepo) UpdateFaxEmail(ctx context.Context, id uint64, faxEmail string) error {
	return r.db.WithContext(ctx).
		Model(&model.Practice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"fax_vonage_email": faxEmail,
			"updated_at":       gorm.Expr("NOW()"),
		}).Error
}

func (r *practiceRepo) List(ctx context.Context, filter PracticeFilter) ([]model.Practice, int64, error) {
	var practices []model.Practice
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Practice{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Location != "" {
		db = db.Where("location_category = ?", filter.Location)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("name ILIKE ? OR address ILIKE ? OR phone ILIKE ? OR fax ILIKE ?", like, like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order("name ASC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&practices).Error; err != nil {
		return nil, 0, err
	}
	return practices, total, nil
}

// ListWithFax 返回所有传真号非空的诊所（传真邮箱修复使用）
func (r *practiceRepo) ListWithFax(ctx context.Context) ([]model.Practice, error) {
	var practices []model.Practice
	err := r.db.WithContext(ctx).
		Where("fax IS NOT NULL AND fax <> ''").
		Order("id ASC").
		Find(&practices).Error
	return practices, err
}

func (r *practiceRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	db := r.db.WithContext(ctx).Model(&model.Practice{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Count(&n).Error
	return n, err
}

func (r *practiceRepo) CountByLocation(ctx context.Context, status string) ([]LocationCount, error) {
	var counts []LocationCount
	db := r.db.WithContext(ctx).Model(&model.Practice{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Select("location_category, COUNT(*) AS count").
		Group("location_category").
		Order("location_category ASC").
		Scan(&counts).Error
	return counts, err
}
