package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

func TestDashboardService_Stats(t *testing.T) {
	repo, m := newTestRepository()
	now := fixedClock(testNow)
	overdue := NewOverdueService(testOutreachConfig(), repo, now, zap.NewNop())
	svc := NewDashboardService(repo, overdue, now, zap.NewNop())
	ctx := context.Background()

	m.analytics.counts = repository.DashboardCounts{
		ActivePractices:     2,
		ActiveProviders:     5,
		ContactsThisMonth:   7,
		CallsThisMonth:      4,
		LunchesScheduled:    1,
		PendingThankYous:    3,
		HuntsvillePractices: 1,
		WoodlandsPractices:  1,
	}

	// 从未联系 → high；100 天前联系 → medium
	never := &model.Practice{Name: "Never", Status: model.StatusActive}
	stale := &model.Practice{Name: "Stale", Status: model.StatusActive}
	_ = m.practice.Create(ctx, never)
	_ = m.practice.Create(ctx, stale)
	_ = m.contact.Create(ctx, &model.ContactLog{PracticeID: stale.ID, ContactType: model.ContactPhoneCall, ContactDate: daysAgo(100)})

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.TotalPractices != 2 || stats.TotalProviders != 5 {
		t.Errorf("诊所/医生数不符: %+v", stats)
	}
	if stats.ContactsThisMonth != 7 || stats.CallsThisMonth != 4 || stats.PendingThankYous != 3 {
		t.Errorf("本月统计不符: %+v", stats)
	}
	if stats.OverdueItems != 2 {
		t.Errorf("期望 2 条待办，实际=%d", stats.OverdueItems)
	}
	if stats.HighPriorityItems != 1 {
		t.Errorf("期望 1 条高优先级待办，实际=%d", stats.HighPriorityItems)
	}
}
