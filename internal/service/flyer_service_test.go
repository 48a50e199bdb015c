package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	pkgerrors "referral-outreach/backend/pkg/errors"
	"referral-outreach/backend/pkg/transport"
)

// ── 测试辅助 ──

func setupTestFlyerService() (FlyerService, *mockRepos, *fakeStore, *fakeSender) {
	repo, m := newTestRepository()
	store := newFakeStore()
	sender := &fakeSender{failFor: map[string]error{}}
	svc := NewFlyerService(testOutreachConfig(), repo, store, sender, fixedClock(testNow), zap.NewNop())
	return svc, m, store, sender
}

func flyerInput(ids ...uint64) *dto.SendFlyerInput {
	return &dto.SendFlyerInput{
		FlyerName:   "../spring-open-house.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
		PracticeIDs: ids,
	}
}

// ── Send ──

func TestFlyerService_Send_ByLocation(t *testing.T) {
	svc, m, store, sender := setupTestFlyerService()
	ctx := context.Background()

	a := &model.Practice{Name: "A", Status: model.StatusActive, LocationCategory: model.LocationHuntsville, FaxEmail: "19365550001@fax.vonagebusiness.com"}
	b := &model.Practice{Name: "B", Status: model.StatusActive, LocationCategory: model.LocationHuntsville, FaxEmail: "19365550002@fax.vonagebusiness.com"}
	noFax := &model.Practice{Name: "NoFax", Status: model.StatusActive, LocationCategory: model.LocationHuntsville}
	away := &model.Practice{Name: "Away", Status: model.StatusActive, LocationCategory: model.LocationWoodlands, FaxEmail: "12815550003@fax.vonagebusiness.com"}
	for _, p := range []*model.Practice{a, b, noFax, away} {
		_ = m.practice.Create(ctx, p)
	}
	sender.failFor[b.FaxEmail] = errors.New("queue unavailable")

	in := flyerInput()
	in.Location = model.LocationHuntsville
	resp, err := svc.Send(ctx, in)
	if err != nil {
		t.Fatalf("Send 应成功: %v", err)
	}

	if resp.Sent != 1 || resp.Failed != 1 || len(resp.Recipients) != 2 {
		t.Errorf("期望 sent=1 failed=1 共 2 个收件，实际=%+v", resp)
	}
	if !strings.HasPrefix(resp.FlyerKey, "flyers/20260315/") || !strings.HasSuffix(resp.FlyerKey, "-spring-open-house.pdf") {
		t.Errorf("传单 key 不符: %s", resp.FlyerKey)
	}
	if _, ok := store.objects[resp.FlyerKey]; !ok {
		t.Error("期望传单已上传到对象存储")
	}
	if len(sender.sent) != 1 || sender.sent[0].Subject != defaultFlyerSubject || sender.sent[0].AttachmentKey != resp.FlyerKey {
		t.Errorf("投递内容不符: %+v", sender.sent)
	}

	if resp.Recipients[1].ErrorMessage != "queue unavailable" {
		t.Errorf("期望记录投递失败原因，实际=%q", resp.Recipients[1].ErrorMessage)
	}

	contacts, _ := m.contact.ListByPractice(ctx, a.ID, 0)
	if len(contacts) != 1 || contacts[0].ContactType != model.ContactFaxSent || contacts[0].Notes != "Flyer: spring-open-house.pdf" {
		t.Errorf("期望成功投递后追加 Fax Sent 联系记录，实际=%+v", contacts)
	}
	if failed, _ := m.contact.ListByPractice(ctx, b.ID, 0); len(failed) != 0 {
		t.Error("投递失败不应写联系记录")
	}

	summaries, _ := svc.ListCampaigns(ctx, 10)
	if len(summaries) != 1 || summaries[0].SentCount != 1 || summaries[0].FailedCount != 1 {
		t.Errorf("批次统计不符: %+v", summaries)
	}
}

func TestFlyerService_Send_ExplicitWithoutFaxEmail(t *testing.T) {
	svc, m, _, sender := setupTestFlyerService()
	ctx := context.Background()

	p := &model.Practice{Name: "Unconfigured", Status: model.StatusActive}
	_ = m.practice.Create(ctx, p)

	resp, err := svc.Send(ctx, flyerInput(p.ID, p.ID))
	if err != nil {
		t.Fatalf("Send 应成功: %v", err)
	}
	if len(resp.Recipients) != 1 {
		t.Errorf("期望重复 ID 去重，实际=%d", len(resp.Recipients))
	}
	if resp.Failed != 1 || resp.Recipients[0].ErrorMessage != missingFaxEmailMsg {
		t.Errorf("期望无传真邮箱记为失败，实际=%+v", resp.Recipients)
	}
	if len(sender.sent) != 0 {
		t.Error("无传真邮箱时不应投递")
	}
}

func TestFlyerService_Send_Errors(t *testing.T) {
	svc, _, _, _ := setupTestFlyerService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, &dto.SendFlyerInput{FlyerName: "x.pdf"}); !errors.Is(err, ErrFlyerEmpty) {
		t.Errorf("期望 ErrFlyerEmpty，实际: %v", err)
	}
	if _, err := svc.Send(ctx, flyerInput()); !errors.Is(err, ErrNoFlyerRecipients) {
		t.Errorf("期望 ErrNoFlyerRecipients，实际: %v", err)
	}
	if _, err := svc.Send(ctx, flyerInput(77)); !errors.Is(err, ErrPracticeNotFound) {
		t.Errorf("期望 ErrPracticeNotFound，实际: %v", err)
	}

	repo, _ := newTestRepository()
	disabled := NewFlyerService(testOutreachConfig(), repo, nil, &fakeSender{}, fixedClock(testNow), zap.NewNop())
	if _, err := disabled.Send(ctx, flyerInput(1)); !errors.Is(err, pkgerrors.ErrStorageDisabled) {
		t.Errorf("期望 ErrStorageDisabled，实际: %v", err)
	}
	var noSender transport.Sender
	disabled = NewFlyerService(testOutreachConfig(), repo, newFakeStore(), noSender, fixedClock(testNow), zap.NewNop())
	if _, err := disabled.Send(ctx, flyerInput(1)); !errors.Is(err, pkgerrors.ErrTransportDisabled) {
		t.Errorf("期望 ErrTransportDisabled，实际: %v", err)
	}
}

// ── DueForFlyer ──

func TestFlyerService_DueForFlyer(t *testing.T) {
	svc, m, _, _ := setupTestFlyerService()
	ctx := context.Background()

	never := &model.Practice{Name: "Never", Status: model.StatusActive, FaxEmail: "19365550010@fax.vonagebusiness.com"}
	old := &model.Practice{Name: "Old", Status: model.StatusActive, FaxEmail: "19365550011@fax.vonagebusiness.com"}
	recent := &model.Practice{Name: "Recent", Status: model.StatusActive, FaxEmail: "19365550012@fax.vonagebusiness.com"}
	older := &model.Practice{Name: "Older", Status: model.StatusActive, FaxEmail: "19365550013@fax.vonagebusiness.com"}
	for _, p := range []*model.Practice{never, old, recent, older} {
		_ = m.practice.Create(ctx, p)
	}

	send := func(pid uint64, days int) {
		c := &model.FlyerCampaign{SentDate: *daysAgo(days), FlyerName: "f.pdf"}
		_ = m.flyer.CreateCampaign(ctx, c)
		_ = m.flyer.CreateRecipient(ctx, &model.FlyerRecipient{CampaignID: c.ID, PracticeID: pid, Status: model.FlyerSent})
	}
	send(old.ID, 40)
	send(recent.ID, 5)
	send(older.ID, 90)

	items, err := svc.DueForFlyer(ctx)
	if err != nil {
		t.Fatalf("DueForFlyer 应成功: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("期望 3 个诊所待发送，实际=%d", len(items))
	}
	if items[0].PracticeID != never.ID || items[0].DaysSince != nil {
		t.Errorf("期望从未发送的排在最前，实际=%+v", items[0])
	}
	if items[1].PracticeID != older.ID || *items[1].DaysSince != 90 {
		t.Errorf("期望间隔最长的排第二，实际=%+v", items[1])
	}
}
