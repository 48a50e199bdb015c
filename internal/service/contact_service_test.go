package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
)

func setupTestContactService() (ContactService, *mockRepos, *model.Practice) {
	repo, m := newTestRepository()
	svc := NewContactService(testOutreachConfig(), repo, fixedClock(testNow), zap.NewNop())

	p := &model.Practice{Name: "Birch Pediatrics", Status: model.StatusActive}
	_ = m.practice.Create(context.Background(), p)
	return svc, m, p
}

func TestContactService_Create_Defaults(t *testing.T) {
	svc, _, p := setupTestContactService()

	entry, err := svc.Create(context.Background(), &dto.CreateContactRequest{
		PracticeID:  p.ID,
		ContactType: model.ContactEmailSent,
		Outcome:     "  Sent intro packet ",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if entry.ContactDate == nil || !entry.ContactDate.Equal(startOfDay(testNow)) {
		t.Errorf("期望日期默认为当天，实际=%v", entry.ContactDate)
	}
	if entry.TeamMember != "Robbie" {
		t.Errorf("期望默认成员=Robbie，实际=%s", entry.TeamMember)
	}
	if entry.Outcome != "Sent intro packet" {
		t.Errorf("期望去除首尾空白，实际=%q", entry.Outcome)
	}
	if entry.CallAttemptNumber != nil {
		t.Error("非电话记录不应带电话序号")
	}
}

func TestContactService_Create_CallNumbering(t *testing.T) {
	svc, _, p := setupTestContactService()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		entry, err := svc.Create(ctx, &dto.CreateContactRequest{PracticeID: p.ID, ContactType: model.ContactPhoneCall})
		if err != nil {
			t.Fatalf("Create 应成功: %v", err)
		}
		if entry.CallAttemptNumber == nil || *entry.CallAttemptNumber != want {
			t.Errorf("期望第 %d 次电话序号=%d，实际=%v", want, want, entry.CallAttemptNumber)
		}
		// 其它类型不影响电话序号
		_, _ = svc.Create(ctx, &dto.CreateContactRequest{PracticeID: p.ID, ContactType: model.ContactVoicemailLeft})
	}
}

func TestContactService_Create_Invalid(t *testing.T) {
	svc, _, p := setupTestContactService()
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.CreateContactRequest{PracticeID: p.ID, ContactType: "Carrier Pigeon"})
	if !errors.Is(err, ErrInvalidContactType) {
		t.Errorf("期望 ErrInvalidContactType，实际: %v", err)
	}
	_, err = svc.Create(ctx, &dto.CreateContactRequest{PracticeID: 77, ContactType: model.ContactOther})
	if !errors.Is(err, ErrPracticeNotFound) {
		t.Errorf("期望 ErrPracticeNotFound，实际: %v", err)
	}
	_, err = svc.Create(ctx, &dto.CreateContactRequest{PracticeID: p.ID, ContactType: model.ContactOther, ContactDate: "03/01/2026"})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

func TestContactService_ListByPractice_Order(t *testing.T) {
	svc, _, p := setupTestContactService()
	ctx := context.Background()

	for _, d := range []string{"2026-01-05", "2026-03-01", "2026-02-10"} {
		if _, err := svc.Create(ctx, &dto.CreateContactRequest{PracticeID: p.ID, ContactType: model.ContactOther, ContactDate: d}); err != nil {
			t.Fatalf("Create 应成功: %v", err)
		}
	}

	entries, err := svc.ListByPractice(ctx, p.ID, 2)
	if err != nil {
		t.Fatalf("ListByPractice 应成功: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("期望 limit=2，实际=%d", len(entries))
	}
	if entries[0].ContactDate.Format("2006-01-02") != "2026-03-01" {
		t.Errorf("期望按日期倒序，首条=%v", entries[0].ContactDate)
	}
}

func TestContactService_CallIndicator(t *testing.T) {
	svc, _, p := setupTestContactService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = svc.Create(ctx, &dto.CreateContactRequest{PracticeID: p.ID, ContactType: model.ContactPhoneCall, Outcome: "No answer"})
	}
	ind, err := svc.CallIndicator(ctx, p.ID)
	if err != nil {
		t.Fatalf("CallIndicator 应成功: %v", err)
	}
	if ind.CallCount != 3 || !ind.Warning {
		t.Errorf("期望 3 次电话且提醒，实际=%+v", ind)
	}

	_, _ = svc.Create(ctx, &dto.CreateContactRequest{PracticeID: p.ID, ContactType: model.ContactPhoneCall, Outcome: model.OutcomeScheduledLunch})
	ind, _ = svc.CallIndicator(ctx, p.ID)
	if !ind.LunchScheduled || ind.Warning {
		t.Errorf("期望约到午餐后不再提醒，实际=%+v", ind)
	}
}
