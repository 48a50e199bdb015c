package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
)

func setupTestExportService() (ExportService, *mockRepos) {
	repo, m := newTestRepository()
	return NewExportService(repo, fixedClock(testNow), zap.NewNop()), m
}

func TestExportService_NoPractices(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportPractices(context.Background(), &dto.PracticeListRequest{})
	if !errors.Is(err, ErrExportNoPractices) {
		t.Errorf("期望 ErrExportNoPractices，实际=%v", err)
	}
}

func TestExportService_ExportPractices(t *testing.T) {
	svc, m := setupTestExportService()
	ctx := context.Background()

	p := &model.Practice{
		Name:             "Redwood Clinic",
		ZipCode:          "77340",
		LocationCategory: model.LocationHuntsville,
		Fax:              "(936) 555-0101",
		FaxEmail:         "19365550101@fax.vonagebusiness.com",
		Status:           model.StatusActive,
	}
	_ = m.practice.Create(ctx, p)
	_ = m.practice.Create(ctx, &model.Practice{Name: "Closed Clinic", Status: model.StatusInactive})
	_ = m.provider.Create(ctx, &model.Provider{Name: "Dr. Adams", PracticeID: &p.ID, Status: model.StatusActive})
	_ = m.provider.Create(ctx, &model.Provider{Name: "Dr. Baker", PracticeID: &p.ID, Status: model.StatusActive})
	_ = m.contact.Create(ctx, &model.ContactLog{PracticeID: p.ID, ContactType: model.ContactPhoneCall, ContactDate: daysAgo(3)})

	buf, filename, err := svc.ExportPractices(ctx, &dto.PracticeListRequest{Status: model.StatusActive})
	if err != nil {
		t.Fatalf("ExportPractices 应成功: %v", err)
	}
	if filename != "practices_20260315.xlsx" {
		t.Errorf("文件名不符，实际=%s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开导出文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Practices")
	if err != nil {
		t.Fatalf("读取 Practices 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望表头 + 1 行（停用诊所被过滤），实际=%d", len(rows))
	}
	if len(rows[0]) != len(practiceExportColumns) || rows[0][0] != practiceExportColumns[0] {
		t.Errorf("表头不符: %v", rows[0])
	}
	row := rows[1]
	if row[0] != "Redwood Clinic" || row[3] != model.LocationHuntsville {
		t.Errorf("诊所字段不符: %v", row)
	}
	if row[11] != "Dr. Adams\nDr. Baker" {
		t.Errorf("医生列应换行拼接，实际=%q", row[11])
	}
	if row[12] != "2026-03-12" {
		t.Errorf("最近联系日期不符，实际=%s", row[12])
	}
}

func TestColName(t *testing.T) {
	tests := []struct {
		idx  int
		want string
	}{
		{0, "A"},
		{13, "N"},
		{26, "AA"},
	}
	for _, tt := range tests {
		if got := colName(tt.idx); got != tt.want {
			t.Errorf("colName(%d) = %s, 期望 %s", tt.idx, got, tt.want)
		}
	}
}
