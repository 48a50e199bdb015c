package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// EventFilter 日历事件筛选条件（零值字段不参与过滤）
type EventFilter struct {
	PracticeID *uint64
	EventType  string
	Status     string
	From       *time.Time // 含
	To         *time.Time // 不含
}

// EventRepository 日历事件数据访问接口
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, filter EventFilter) ([]model.Event, error)
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo 创建 EventRepository 实例
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit("Practice").Create(event).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Preload("Practice").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit("Practice").Save(event).Error
}

func (r *eventRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Event{}).
			Where("next_event_id = ?", id).
			Update("next_event_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Event{}).Error
	})
}

func (r *eventRepo) List(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	var events []model.Event
	db := r.db.WithContext(ctx).Preload("Practice")
	if filter.PracticeID != nil {
		db = db.Where("practice_id = ?", *filter.PracticeID)
	}
	if filter.EventType != "" {
		db = db.Where("event_type = ?", filter.EventType)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		db = db.Where("scheduled_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("scheduled_date < ?", *filter.To)
	}
	err := db.Order("scheduled_date ASC NULLS LAST, id ASC").Find(&events).Error
	return events, err
}
