//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
	"referral-outreach/backend/internal/service"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=outreach password=outreach_password dbname=outreach_test sslmode=disable TimeZone=America/Chicago"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Practice{},
		&model.Provider{},
		&model.ProviderMove{},
		&model.ContactLog{},
		&model.Lunch{},
		&model.CallAttempt{},
		&model.CookieVisit{},
		&model.ThankYouLetter{},
		&model.FlyerCampaign{},
		&model.FlyerRecipient{},
		&model.Event{},
		&model.TeamMember{},
		&model.ImportRun{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupPractice 创建测试诊所并返回清理函数
func setupPractice(t *testing.T) (*model.Practice, func()) {
	t.Helper()
	ctx := context.Background()

	practice := &model.Practice{
		Name:             fmt.Sprintf("Test Clinic %d", time.Now().UnixNano()),
		Address:          "100 Main St, Huntsville, TX 77340",
		ZipCode:          "77340",
		LocationCategory: model.LocationHuntsville,
		Status:           model.StatusActive,
	}
	if err := testDB.WithContext(ctx).Create(practice).Error; err != nil {
		t.Fatalf("创建诊所失败: %v", err)
	}

	cleanup := func() {
		pid := practice.ID
		testDB.Where("practice_id = ?", pid).Delete(&model.ThankYouLetter{})
		testDB.Where("practice_id = ?", pid).Delete(&model.FlyerRecipient{})
		testDB.Where("practice_id = ?", pid).Delete(&model.CallAttempt{})
		testDB.Where("practice_id = ?", pid).Delete(&model.Lunch{})
		testDB.Where("practice_id = ?", pid).Delete(&model.ContactLog{})
		testDB.Where("practice_id = ?", pid).Delete(&model.CookieVisit{})
		testDB.Where("old_practice_id = ? OR new_practice_id = ?", pid, pid).Delete(&model.ProviderMove{})
		testDB.Where("practice_id = ?", pid).Delete(&model.Provider{})
		testDB.Where("id = ?", pid).Delete(&model.Practice{})
	}
	return practice, cleanup
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction Rollback / Commit
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	practice, cleanup := setupPractice(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	provider := &model.Provider{Name: "Jane Doe", PracticeID: &practice.ID, Status: model.StatusActive}
	if err := txRepo.Provider.Create(ctx, provider); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建 Provider 失败: %v", err)
	}

	tx.Rollback()

	if _, err := repo.Provider.GetByID(ctx, provider.ID); err == nil {
		t.Fatal("期望回滚后查不到 Provider，但实际查到了")
	}
}

func TestTransaction_Commit(t *testing.T) {
	practice, cleanup := setupPractice(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	provider := &model.Provider{Name: "John Smith", PracticeID: &practice.ID, Status: model.StatusActive}
	if err := txRepo.Provider.Create(ctx, provider); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建 Provider 失败: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("Commit 失败: %v", err)
	}

	found, err := repo.Provider.GetByID(ctx, provider.ID)
	if err != nil {
		t.Fatalf("提交后查询 Provider 失败: %v", err)
	}
	if found.Practice == nil || found.Practice.ID != practice.ID {
		t.Error("期望预加载所属诊所")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Contact Log 排序
// ═══════════════════════════════════════════════════════════

func TestContactLog_ListByPractice_NullDatesLast(t *testing.T) {
	practice, cleanup := setupPractice(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	older := time.Now().AddDate(0, 0, -40)
	newer := time.Now().AddDate(0, 0, -2)
	entries := []*model.ContactLog{
		{PracticeID: practice.ID, ContactType: model.ContactOther},
		{PracticeID: practice.ID, ContactType: model.ContactPhoneCall, ContactDate: &older},
		{PracticeID: practice.ID, ContactType: model.ContactEmailSent, ContactDate: &newer},
	}
	for _, e := range entries {
		if err := repo.ContactLog.Create(ctx, e); err != nil {
			t.Fatalf("创建联系记录失败: %v", err)
		}
	}

	list, err := repo.ContactLog.ListByPractice(ctx, practice.ID, 0)
	if err != nil {
		t.Fatalf("ListByPractice 失败: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("期望 3 条记录，实际=%d", len(list))
	}
	if list[0].ContactType != model.ContactEmailSent {
		t.Errorf("期望最新记录在首位，实际=%s", list[0].ContactType)
	}
	if list[2].ContactDate != nil {
		t.Error("期望无日期的记录排在最后")
	}

	limited, _ := repo.ContactLog.ListByPractice(ctx, practice.ID, 1)
	if len(limited) != 1 {
		t.Errorf("期望 limit=1 返回 1 条，实际=%d", len(limited))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 删除医生保留调动记录
// ═══════════════════════════════════════════════════════════

func TestProvider_Delete_KeepsMoveHistory(t *testing.T) {
	practice, cleanup := setupPractice(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	provider := &model.Provider{Name: "Moved Doc", PracticeID: &practice.ID, Status: model.StatusActive}
	if err := repo.Provider.Create(ctx, provider); err != nil {
		t.Fatalf("创建 Provider 失败: %v", err)
	}
	move := &model.ProviderMove{ProviderID: provider.ID, OldPracticeID: nil, NewPracticeID: &practice.ID, MoveDate: time.Now()}
	if err := repo.ProviderMove.Create(ctx, move); err != nil {
		t.Fatalf("创建调动记录失败: %v", err)
	}
	defer testDB.Where("id = ?", move.ID).Delete(&model.ProviderMove{})

	if err := repo.Provider.Delete(ctx, provider.ID); err != nil {
		t.Fatalf("删除 Provider 失败: %v", err)
	}

	history, err := repo.ProviderMove.ListByProvider(ctx, provider.ID)
	if err != nil {
		t.Fatalf("查询调动记录失败: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("期望删除医生后调动记录仍为 1 条，实际=%d", len(history))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 感谢信只能由 Pending 变为 Mailed
// ═══════════════════════════════════════════════════════════

func TestThankYou_MarkMailed_OnlyPending(t *testing.T) {
	practice, cleanup := setupPractice(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	earlier := time.Now().AddDate(0, 0, -3)
	letters := []model.ThankYouLetter{
		{PracticeID: practice.ID, Reason: model.ReasonPostLunch, Status: model.ThankYouPending},
		{PracticeID: practice.ID, Reason: model.ReasonOther, Status: model.ThankYouMailed, DateMailed: &earlier},
	}
	if err := repo.ThankYou.BatchCreate(ctx, letters); err != nil {
		t.Fatalf("BatchCreate 失败: %v", err)
	}

	n, err := repo.ThankYou.MarkMailed(ctx, []uint64{letters[0].ID, letters[1].ID}, time.Now())
	if err != nil {
		t.Fatalf("MarkMailed 失败: %v", err)
	}
	if n != 1 {
		t.Errorf("期望仅更新 1 条 Pending 感谢信，实际=%d", n)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 传单批次统计
// ═══════════════════════════════════════════════════════════

func TestFlyer_ListCampaigns_Counts(t *testing.T) {
	practice, cleanup := setupPractice(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	campaign := &model.FlyerCampaign{SentDate: time.Now(), FlyerName: "spring.pdf", SentBy: "Robbie"}
	if err := repo.Flyer.CreateCampaign(ctx, campaign); err != nil {
		t.Fatalf("CreateCampaign 失败: %v", err)
	}
	defer testDB.Where("id = ?", campaign.ID).Delete(&model.FlyerCampaign{})

	for _, status := range []string{model.FlyerSent, model.FlyerSent, model.FlyerFailed} {
		r := &model.FlyerRecipient{CampaignID: campaign.ID, PracticeID: practice.ID, Status: status}
		if err := repo.Flyer.CreateRecipient(ctx, r); err != nil {
			t.Fatalf("CreateRecipient 失败: %v", err)
		}
	}

	summaries, err := repo.Flyer.ListCampaigns(ctx, 0)
	if err != nil {
		t.Fatalf("ListCampaigns 失败: %v", err)
	}
	for _, s := range summaries {
		if s.ID != campaign.ID {
			continue
		}
		if s.RecipientCount != 3 || s.SentCount != 2 || s.FailedCount != 1 {
			t.Errorf("统计不符: recipients=%d sent=%d failed=%d", s.RecipientCount, s.SentCount, s.FailedCount)
		}
		return
	}
	t.Fatal("未找到刚创建的传单批次")
}

// ═══════════════════════════════════════════════════════════
// Test: 事务导入中途失败整体回滚
// ═══════════════════════════════════════════════════════════

// failingWorkbook 第 2 行正常，第 3 行诊所名超过 varchar(255)，写库时报错
func failingWorkbook(t *testing.T, okName string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"Practice Name", "Address", "Contact Information", "Providers"},
		{okName, "100 Main St, Huntsville, TX 77340", "Fax: 936-555-0100", "Dr. First"},
		{strings.Repeat("X", 300), "200 Oak St, Conroe, TX 77301", "", ""},
	}
	for i, row := range rows {
		r := row
		if err := f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &r); err != nil {
			t.Fatalf("生成工作簿失败: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成工作簿失败: %v", err)
	}
	return buf.Bytes()
}

func newIntegrationImportService(transactional bool) service.ImportService {
	cfg := config.Default()
	importCfg := &config.ImportConfig{SheetName: "Sheet1", Transactional: transactional, LockTTL: time.Minute}
	classifier := service.NewLocationClassifier(cfg.Outreach.HuntsvilleZips, cfg.Outreach.WoodlandsZips)
	return service.NewImportService(&cfg.Outreach, importCfg, repository.NewRepository(testDB), classifier,
		nil, nil, time.Now, zap.NewNop())
}

func countPracticesNamed(t *testing.T, name string) int64 {
	t.Helper()
	var n int64
	if err := testDB.Model(&model.Practice{}).Where("name = ?", name).Count(&n).Error; err != nil {
		t.Fatalf("统计诊所失败: %v", err)
	}
	return n
}

func cleanupImportedPractice(name string) {
	var ids []uint64
	testDB.Model(&model.Practice{}).Where("name = ?", name).Pluck("id", &ids)
	if len(ids) == 0 {
		return
	}
	testDB.Where("practice_id IN ?", ids).Delete(&model.ContactLog{})
	testDB.Where("practice_id IN ?", ids).Delete(&model.Provider{})
	testDB.Where("id IN ?", ids).Delete(&model.Practice{})
}

func TestImport_Transactional_RollsBackOnFailure(t *testing.T) {
	name := fmt.Sprintf("Rollback Clinic %d", time.Now().UnixNano())
	defer cleanupImportedPractice(name)

	svc := newIntegrationImportService(true)
	if _, err := svc.Import(context.Background(), "broken.xlsx", failingWorkbook(t, name), "tester"); err == nil {
		t.Fatal("期望第 3 行写库失败导致导入返回错误")
	}

	if n := countPracticesNamed(t, name); n != 0 {
		t.Errorf("事务模式下失败前写入的诊所应回滚，实际残留 %d 条", n)
	}
	var providers int64
	testDB.Model(&model.Provider{}).Where("name = ?", "Dr. First").
		Where("practice_id IN (?)", testDB.Model(&model.Practice{}).Select("id").Where("name = ?", name)).
		Count(&providers)
	if providers != 0 {
		t.Errorf("事务模式下医生记录应回滚，实际残留 %d 条", providers)
	}
}

func TestImport_NonTransactional_KeepsEarlierRows(t *testing.T) {
	name := fmt.Sprintf("Partial Clinic %d", time.Now().UnixNano())
	defer cleanupImportedPractice(name)

	svc := newIntegrationImportService(false)
	if _, err := svc.Import(context.Background(), "broken.xlsx", failingWorkbook(t, name), "tester"); err == nil {
		t.Fatal("期望第 3 行写库失败导致导入返回错误")
	}

	if n := countPracticesNamed(t, name); n != 1 {
		t.Errorf("非事务模式下失败前的诊所应保留，实际=%d", n)
	}
}
