package service

import (
	"context"

	"go.uber.org/zap"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/repository"
)

// DashboardService 仪表盘统计业务接口
type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStats, error)
}

type dashboardService struct {
	repo    *repository.Repository
	overdue OverdueService
	now     Clock
	logger  *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, overdue OverdueService, now Clock, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, overdue: overdue, now: now, logger: logger}
}

// Stats 当月计数 + 待办数量
func (s *dashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	from := startOfMonth(s.now())
	to := from.AddDate(0, 1, 0)

	counts, err := s.repo.Analytics.DashboardCounts(ctx, from, to)
	if err != nil {
		s.logger.Error("统计仪表盘数据失败", zap.Error(err))
		return nil, err
	}
	items, err := s.overdue.OverdueItems(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStats{
		TotalPractices:        counts.ActivePractices,
		TotalProviders:        counts.ActiveProviders,
		ContactsThisMonth:     counts.ContactsThisMonth,
		CallsThisMonth:        counts.CallsThisMonth,
		EmailsThisMonth:       counts.EmailsThisMonth,
		FaxesThisMonth:        counts.FaxesThisMonth,
		LunchesScheduled:      counts.LunchesScheduled,
		LunchesCompletedMonth: counts.LunchesCompletedMonth,
		LunchesCompletedTotal: counts.LunchesCompletedTotal,
		CookieVisitsThisMonth: counts.CookieVisitsThisMonth,
		CookieVisitsTotal:     counts.CookieVisitsTotal,
		PendingThankYous:      counts.PendingThankYous,
		FlyersSentThisMonth:   counts.FlyersSentThisMonth,
		HuntsvillePractices:   counts.HuntsvillePractices,
		WoodlandsPractices:    counts.WoodlandsPractices,
		OverdueItems:          len(items),
	}
	for _, it := range items {
		if it.Priority == PriorityHigh {
			stats.HighPriorityItems++
		}
	}
	return stats, nil
}
