package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestLunchService() (LunchService, *mockRepos, *model.Practice) {
	repo, m := newTestRepository()
	svc := NewLunchService(testOutreachConfig(), repo, fixedClock(testNow), zap.NewNop())

	p := &model.Practice{Name: "Cedar Family Medicine", Status: model.StatusActive}
	_ = m.practice.Create(context.Background(), p)
	return svc, m, p
}

func strPtr(s string) *string { return &s }

// scheduleLunch 新建午餐并推进到 Scheduled
func scheduleLunch(t *testing.T, svc LunchService, pid uint64) *model.Lunch {
	t.Helper()
	ctx := context.Background()

	lunch, err := svc.Start(ctx, pid)
	if err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if _, err := svc.LogCallAttempt(ctx, lunch.ID, &dto.LogCallAttemptRequest{Outcome: "Spoke With"}); err != nil {
		t.Fatalf("LogCallAttempt 应成功: %v", err)
	}
	scheduled, err := svc.Transition(ctx, lunch.ID, &dto.TransitionLunchRequest{
		Status:        model.LunchScheduled,
		ScheduledDate: "2026-03-20",
		ScheduledTime: "12:00 PM",
		Restaurant:    strPtr("Jason's Deli"),
	})
	if err != nil {
		t.Fatalf("Transition 到 Scheduled 应成功: %v", err)
	}
	return scheduled
}

// ── 状态机 ──

func TestCanTransitionLunch(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.LunchNotContacted, model.LunchAttempting, true},
		{model.LunchAttempting, model.LunchScheduled, true},
		{model.LunchAttempting, model.LunchNotContacted, true},
		{model.LunchScheduled, model.LunchNotContacted, true},
		{model.LunchNotContacted, model.LunchScheduled, false},
		{model.LunchScheduled, model.LunchCompleted, false},
		{model.LunchCompleted, model.LunchNotContacted, false},
	}
	for _, tc := range cases {
		if got := CanTransitionLunch(tc.from, tc.to); got != tc.want {
			t.Errorf("%s → %s 期望=%v，实际=%v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestNextFollowupDate(t *testing.T) {
	base := startOfDay(testNow)

	d, err := nextFollowupDate(base, Followup12Weeks, "")
	if err != nil || d == nil || daysSince(*d, base) != 84 {
		t.Errorf("期望 12 周后，实际=%v err=%v", d, err)
	}
	d, _ = nextFollowupDate(base, Followup3Months, "")
	if daysSince(*d, base) != 91 {
		t.Errorf("期望 3 个月按 13 周计算，实际=%d 天", daysSince(*d, base))
	}
	d, _ = nextFollowupDate(base, Followup6Months, "")
	if daysSince(*d, base) != 182 {
		t.Errorf("期望 6 个月按 26 周计算，实际=%d 天", daysSince(*d, base))
	}
	if d, _ := nextFollowupDate(base, "", ""); d != nil {
		t.Error("间隔为空时不应安排跟进")
	}
	if _, err := nextFollowupDate(base, FollowupCustom, ""); !errors.Is(err, ErrCustomDateRequired) {
		t.Errorf("期望 ErrCustomDateRequired，实际: %v", err)
	}
	d, err = nextFollowupDate(base, FollowupCustom, "2026-07-01")
	if err != nil || d.Format("2006-01-02") != "2026-07-01" {
		t.Errorf("期望自定义日期 2026-07-01，实际=%v err=%v", d, err)
	}
}

// ── Start ──

func TestLunchService_Start_RejectsSecondOpenLunch(t *testing.T) {
	svc, _, p := setupTestLunchService()
	ctx := context.Background()

	lunch, err := svc.Start(ctx, p.ID)
	if err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if lunch.Status != model.LunchNotContacted {
		t.Errorf("期望新流程为 Not Contacted，实际=%s", lunch.Status)
	}
	if _, err := svc.Start(ctx, p.ID); !errors.Is(err, ErrLunchInProgress) {
		t.Errorf("期望 ErrLunchInProgress，实际: %v", err)
	}
	if _, err := svc.Start(ctx, 999); !errors.Is(err, ErrPracticeNotFound) {
		t.Errorf("期望 ErrPracticeNotFound，实际: %v", err)
	}
}

// ── LogCallAttempt ──

func TestLunchService_LogCallAttempt_AdvancesAndWarns(t *testing.T) {
	svc, m, p := setupTestLunchService()
	ctx := context.Background()

	lunch, _ := svc.Start(ctx, p.ID)
	for i := 0; i < 3; i++ {
		if _, err := svc.LogCallAttempt(ctx, lunch.ID, &dto.LogCallAttemptRequest{Outcome: "No Answer"}); err != nil {
			t.Fatalf("LogCallAttempt 应成功: %v", err)
		}
	}

	stored, _ := m.lunch.GetByID(ctx, lunch.ID)
	if stored.Status != model.LunchAttempting {
		t.Errorf("期望首次电话后进入 Attempting，实际=%s", stored.Status)
	}

	detail, err := svc.Get(ctx, lunch.ID)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if len(detail.CallAttempts) != 3 {
		t.Errorf("期望 3 条电话记录，实际=%d", len(detail.CallAttempts))
	}
	if !detail.AttemptWarning {
		t.Error("期望电话达到阈值时给出提醒")
	}
	if detail.CallAttempts[0].CallDate == nil || !detail.CallAttempts[0].CallDate.Equal(startOfDay(testNow)) {
		t.Error("期望电话日期默认取当天")
	}
}

// ── Transition ──

func TestLunchService_Transition(t *testing.T) {
	svc, _, p := setupTestLunchService()
	ctx := context.Background()

	lunch, _ := svc.Start(ctx, p.ID)
	_, err := svc.Transition(ctx, lunch.ID, &dto.TransitionLunchRequest{Status: model.LunchScheduled, ScheduledDate: "2026-03-20"})
	if !errors.Is(err, ErrInvalidLunchTransition) {
		t.Errorf("期望 Not Contacted 不能直接进入 Scheduled，实际: %v", err)
	}

	_, _ = svc.Transition(ctx, lunch.ID, &dto.TransitionLunchRequest{Status: model.LunchAttempting})
	_, err = svc.Transition(ctx, lunch.ID, &dto.TransitionLunchRequest{Status: model.LunchScheduled})
	if !errors.Is(err, ErrScheduledDateRequired) {
		t.Errorf("期望 ErrScheduledDateRequired，实际: %v", err)
	}

	scheduled, err := svc.Transition(ctx, lunch.ID, &dto.TransitionLunchRequest{
		Status:        model.LunchScheduled,
		ScheduledDate: "2026-03-20",
		Restaurant:    strPtr("  Chuy's "),
	})
	if err != nil {
		t.Fatalf("Transition 应成功: %v", err)
	}
	if scheduled.Restaurant != "Chuy's" || scheduled.ScheduledDate == nil {
		t.Errorf("期望写入预约信息，实际=%+v", scheduled)
	}

	reset, err := svc.Transition(ctx, lunch.ID, &dto.TransitionLunchRequest{Status: model.LunchNotContacted})
	if err != nil {
		t.Fatalf("回退到 Not Contacted 应成功: %v", err)
	}
	if reset.ScheduledDate != nil || reset.Restaurant != "" {
		t.Error("期望回退时清空预约信息")
	}
}

// ── Complete ──

func TestLunchService_Complete_SideEffects(t *testing.T) {
	svc, m, p := setupTestLunchService()
	ctx := context.Background()

	_ = m.provider.Create(ctx, &model.Provider{Name: "Dr. A", PracticeID: &p.ID, Status: model.StatusActive})
	_ = m.provider.Create(ctx, &model.Provider{Name: "Dr. B", PracticeID: &p.ID, Status: model.StatusActive})
	_ = m.provider.Create(ctx, &model.Provider{Name: "Dr. Gone", PracticeID: &p.ID, Status: model.StatusInactive})

	lunch := scheduleLunch(t, svc, p.ID)
	attendees := 8
	resp, err := svc.Complete(ctx, lunch.ID, &dto.CompleteLunchRequest{
		CompletedDate:   "2026-03-20",
		ActualAttendees: &attendees,
		NextFollowup:    Followup12Weeks,
	})
	if err != nil {
		t.Fatalf("Complete 应成功: %v", err)
	}

	if resp.Lunch.Status != model.LunchCompleted || resp.Lunch.CompletedDate == nil {
		t.Errorf("期望午餐已完成，实际=%+v", resp.Lunch)
	}
	if resp.ThankYousCreated != 2 {
		t.Errorf("期望为 2 位在职医生生成感谢信，实际=%d", resp.ThankYousCreated)
	}
	pending, _ := m.thankYou.ListByPractice(ctx, p.ID, model.ThankYouPending)
	for _, l := range pending {
		if l.Reason != model.ReasonPostLunch || l.LunchID == nil || *l.LunchID != lunch.ID {
			t.Errorf("感谢信字段不符: %+v", l)
		}
	}

	contacts, _ := m.contact.ListByPractice(ctx, p.ID, 0)
	if len(contacts) != 1 || contacts[0].ContactType != model.ContactLunch {
		t.Fatalf("期望追加 1 条 Lunch 联系记录，实际=%+v", contacts)
	}
	if contacts[0].Notes != "Lunch completed at Jason's Deli" || contacts[0].TeamMember != "Robbie" {
		t.Errorf("联系记录内容不符: %+v", contacts[0])
	}

	if resp.NextEvent == nil {
		t.Fatal("期望创建跟进午餐事件")
	}
	if resp.NextEvent.Label != "Follow-up Lunch - Cedar Family Medicine" || resp.NextEvent.ScheduledDate.Format("2006-01-02") != "2026-06-12" {
		t.Errorf("跟进事件不符: label=%s date=%v", resp.NextEvent.Label, resp.NextEvent.ScheduledDate)
	}

	// 完成后可以开启新的午餐流程，且完成的午餐不能再记录电话
	if _, err := svc.Start(ctx, p.ID); err != nil {
		t.Errorf("完成后应允许开启新流程: %v", err)
	}
	if _, err := svc.LogCallAttempt(ctx, lunch.ID, &dto.LogCallAttemptRequest{Outcome: "No Answer"}); !errors.Is(err, ErrLunchCompleted) {
		t.Errorf("期望 ErrLunchCompleted，实际: %v", err)
	}
}

func TestLunchService_Complete_RequiresScheduled(t *testing.T) {
	svc, _, p := setupTestLunchService()
	ctx := context.Background()

	lunch, _ := svc.Start(ctx, p.ID)
	if _, err := svc.Complete(ctx, lunch.ID, &dto.CompleteLunchRequest{}); !errors.Is(err, ErrInvalidLunchTransition) {
		t.Errorf("期望未预约的午餐不能完成，实际: %v", err)
	}
	if _, err := svc.Complete(ctx, 404, &dto.CompleteLunchRequest{}); !errors.Is(err, ErrLunchNotFound) {
		t.Errorf("期望 ErrLunchNotFound，实际: %v", err)
	}
}
