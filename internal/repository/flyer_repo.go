package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// PracticeLastFlyer 诊所最近一次成功收到传单的时间
type PracticeLastFlyer struct {
	PracticeID uint64    `json:"practice_id"`
	LastSent   time.Time `json:"last_sent"`
}

// FlyerRepository 传单批次与收件记录数据访问接口（收件记录仅追加）
type FlyerRepository interface {
	CreateCampaign(ctx context.Context, campaign *model.FlyerCampaign) error
	CreateRecipient(ctx context.Context, recipient *model.FlyerRecipient) error
	ListCampaigns(ctx context.Context, limit int) ([]model.FlyerCampaignSummary, error)
	ListRecipients(ctx context.Context, campaignID uint64) ([]model.FlyerRecipient, error)
	LastSentByPractice(ctx context.Context) ([]PracticeLastFlyer, error)
	CountCampaignsSince(ctx context.Context, since time.Time) (int64, error)
}

type flyerRepo struct {
	db *gorm.DB
}

// NewFlyerRepo 创建 FlyerRepository 实例
func NewFlyerRepo(db *gorm.DB) FlyerRepository {
	return &flyerRepo{db: db}
}

func (r *flyerRepo) CreateCampaign(ctx context.Context, campaign *model.FlyerCampaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *flyerRepo) CreateRecipient(ctx context.Context, recipient *model.FlyerRecipient) error {
	return r.db.WithContext(ctx).Omit("Practice").Create(recipient).Error
}

func (r *flyerRepo) ListCampaigns(ctx context.Context, limit int) ([]model.FlyerCampaignSummary, error) {
	var summaries []model.FlyerCampaignSummary
	q := r.db.WithContext(ctx).
		Table("flyer_campaigns AS fc").
		Select(`fc.*,
			COUNT(fr.id) AS recipient_count,
			COUNT(fr.id) FILTER (WHERE fr.status = 'Sent') AS sent_count,
			COUNT(fr.id) FILTER (WHERE fr.status = 'Failed') AS failed_count`).
		Joins("LEFT JOIN flyer_recipients AS fr ON fr.campaign_id = fc.id").
		Group("fc.id").
		Order("fc.sent_date DESC, fc.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&summaries).Error
	return summaries, err
}

func (r *flyerRepo) ListRecipients(ctx context.Context, campaignID uint64) ([]model.FlyerRecipient, error) {
	var recipients []model.FlyerRecipient
	err := r.db.WithContext(ctx).
		Preload("Practice").
		Where("campaign_id = ?", campaignID).
		Order("id ASC").
		Find(&recipients).Error
	return recipients, err
}

func (r *flyerRepo) LastSentByPractice(ctx context.Context) ([]PracticeLastFlyer, error) {
	var rows []PracticeLastFlyer
	err := r.db.WithContext(ctx).
		Table("flyer_recipients AS fr").
		Select("fr.practice_id, MAX(fc.sent_date) AS last_sent").
		Joins("JOIN flyer_campaigns AS fc ON fc.id = fr.campaign_id").
		Where("fr.status = ?", model.FlyerSent).
		Group("fr.practice_id").
		Scan(&rows).Error
	return rows, err
}

func (r *flyerRepo) CountCampaignsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.FlyerCampaign{}).
		Where("sent_date >= ?", since).
		Count(&n).Error
	return n, err
}
