package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// DashboardCounts 仪表盘计数（区间为 [From, To)）
type DashboardCounts struct {
	ActivePractices       int64
	ActiveProviders       int64
	ContactsThisMonth     int64
	CallsThisMonth        int64
	EmailsThisMonth       int64
	FaxesThisMonth        int64
	LunchesScheduled      int64
	LunchesCompletedMonth int64
	LunchesCompletedTotal int64
	CookieVisitsThisMonth int64
	CookieVisitsTotal     int64
	PendingThankYous      int64
	FlyersSentThisMonth   int64
	HuntsvillePractices   int64
	WoodlandsPractices    int64
}

// AnalyticsRepository 仪表盘聚合查询
type AnalyticsRepository interface {
	DashboardCounts(ctx context.Context, from, to time.Time) (*DashboardCounts, error)
}

type analyticsRepo struct {
	db *gorm.DB
}

// NewAnalyticsRepo 创建 AnalyticsRepository 实例
func NewAnalyticsRepo(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) DashboardCounts(ctx context.Context, from, to time.Time) (*DashboardCounts, error) {
	c := &DashboardCounts{}
	db := r.db.WithContext(ctx)

	queries := []struct {
		dst   *int64
		query func() *gorm.DB
	}{
		{&c.ActivePractices, func() *gorm.DB {
			return db.Model(&model.Practice{}).Where("status = ?", model.StatusActive)
		}},
		{&c.ActiveProviders, func() *gorm.DB {
			return db.Model(&model.Provider{}).Where("status = ?", model.StatusActive)
		}},
		{&c.ContactsThisMonth, func() *gorm.DB {
			return db.Model(&model.ContactLog{}).Where("contact_date >= ? AND contact_date < ?", from, to)
		}},
		{&c.CallsThisMonth, func() *gorm.DB {
			return db.Model(&model.ContactLog{}).
				Where("contact_type = ? AND contact_date >= ? AND contact_date < ?", model.ContactPhoneCall, from, to)
		}},
		{&c.EmailsThisMonth, func() *gorm.DB {
			return db.Model(&model.ContactLog{}).
				Where("contact_type = ? AND contact_date >= ? AND contact_date < ?", model.ContactEmailSent, from, to)
		}},
		{&c.FaxesThisMonth, func() *gorm.DB {
			return db.Model(&model.ContactLog{}).
				Where("contact_type = ? AND contact_date >= ? AND contact_date < ?", model.ContactFaxSent, from, to)
		}},
		{&c.LunchesScheduled, func() *gorm.DB {
			return db.Model(&model.Lunch{}).Where("status = ?", model.LunchScheduled)
		}},
		{&c.LunchesCompletedMonth, func() *gorm.DB {
			return db.Model(&model.Lunch{}).
				Where("status = ? AND completed_date >= ? AND completed_date < ?", model.LunchCompleted, from, to)
		}},
		{&c.LunchesCompletedTotal, func() *gorm.DB {
			return db.Model(&model.Lunch{}).Where("status = ?", model.LunchCompleted)
		}},
		{&c.CookieVisitsThisMonth, func() *gorm.DB {
			return db.Model(&model.CookieVisit{}).Where("visit_date >= ? AND visit_date < ?", from, to)
		}},
		{&c.CookieVisitsTotal, func() *gorm.DB {
			return db.Model(&model.CookieVisit{})
		}},
		{&c.PendingThankYous, func() *gorm.DB {
			return db.Model(&model.ThankYouLetter{}).Where("status = ?", model.ThankYouPending)
		}},
		{&c.FlyersSentThisMonth, func() *gorm.DB {
			return db.Model(&model.FlyerRecipient{}).
				Where("status = ?", model.FlyerSent).
				Where("campaign_id IN (?)", db.Model(&model.FlyerCampaign{}).
					Select("id").Where("sent_date >= ? AND sent_date < ?", from, to))
		}},
		{&c.HuntsvillePractices, func() *gorm.DB {
			return db.Model(&model.Practice{}).
				Where("location_category = ? AND status = ?", model.LocationHuntsville, model.StatusActive)
		}},
		{&c.WoodlandsPractices, func() *gorm.DB {
			return db.Model(&model.Practice{}).
				Where("location_category = ? AND status = ?", model.LocationWoodlands, model.StatusActive)
		}},
	}

	for _, q := range queries {
		if err := q.query().Count(q.dst).Error; err != nil {
			return nil, err
		}
	}
	return c, nil
}
