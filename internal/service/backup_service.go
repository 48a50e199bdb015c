package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
	"referral-outreach/backend/pkg/blobstore"
	pkgerrors "referral-outreach/backend/pkg/errors"
)

var (
	ErrInvalidSnapshot         = errors.New("快照文件无法解析")
	ErrSnapshotVersionMismatch = errors.New("快照的数据库版本与当前不一致")
	ErrRestoreTargetNotEmpty   = errors.New("数据库中已有诊所数据，拒绝恢复")
)

// restoredTables 恢复时写入的表，顺序满足外键依赖
var restoredTables = []string{
	"practices", "providers", "provider_history", "lunch_tracking", "call_attempts", "contact_log",
	"cookie_visits", "thank_you_letters", "flyer_campaigns", "flyer_recipients", "events",
}

// SchemaVersionFunc 返回当前数据库迁移版本
type SchemaVersionFunc func() (version uint, dirty bool, err error)

// Snapshot 全量业务数据快照（不含团队成员口令）
type Snapshot struct {
	CreatedAt       time.Time                    `json:"created_at"`
	SchemaVersion   uint                         `json:"schema_version"`
	Practices       []model.Practice             `json:"practices"`
	Providers       []model.Provider             `json:"providers"`
	ProviderMoves   []model.ProviderMove         `json:"provider_history"`
	ContactLog      []model.ContactLog           `json:"contact_log"`
	Lunches         []model.Lunch                `json:"lunch_tracking"`
	CallAttempts    []model.CallAttempt          `json:"call_attempts"`
	CookieVisits    []model.CookieVisit          `json:"cookie_visits"`
	ThankYouLetters []model.ThankYouLetter       `json:"thank_you_letters"`
	FlyerCampaigns  []model.FlyerCampaignSummary `json:"flyer_campaigns"`
	FlyerRecipients []model.FlyerRecipient       `json:"flyer_recipients"`
	Events          []model.Event                `json:"events"`
}

// BackupService 数据快照备份业务接口
type BackupService interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	// Backup 生成快照并写入对象存储，返回对象 key
	Backup(ctx context.Context) (string, error)
	// Restore 从对象存储读取快照写回空库
	Restore(ctx context.Context, key string) (*RestoreResult, error)
}

// RestoreResult 恢复结果，Restored 为各表写回条数
type RestoreResult struct {
	Key           string         `json:"key"`
	SchemaVersion uint           `json:"schema_version"`
	Restored      map[string]int `json:"restored"`
}

type backupService struct {
	repo    *repository.Repository
	store   blobstore.Store
	version SchemaVersionFunc
	now     Clock
	logger  *zap.Logger
}

// NewBackupService 创建 BackupService 实例；version 可为 nil
func NewBackupService(repo *repository.Repository, store blobstore.Store, version SchemaVersionFunc, now Clock, logger *zap.Logger) BackupService {
	return &backupService{repo: repo, store: store, version: version, now: now, logger: logger}
}

// ────────────────────── Snapshot ──────────────────────

func (s *backupService) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{CreatedAt: s.now().UTC()}

	if s.version != nil {
		v, dirty, err := s.version()
		if err != nil {
			s.logger.Error("读取迁移版本失败", zap.Error(err))
			return nil, err
		}
		if dirty {
			s.logger.Warn("数据库迁移处于 dirty 状态", zap.Uint("version", v))
		}
		snap.SchemaVersion = v
	}

	var err error
	if snap.Practices, _, err = s.repo.Practice.List(ctx, repository.PracticeFilter{}); err != nil {
		return nil, s.snapshotErr("practices", err)
	}
	if snap.Providers, err = s.repo.Provider.ListAll(ctx); err != nil {
		return nil, s.snapshotErr("providers", err)
	}
	if snap.ProviderMoves, err = s.repo.ProviderMove.ListAll(ctx); err != nil {
		return nil, s.snapshotErr("provider_history", err)
	}
	if snap.ContactLog, err = s.repo.ContactLog.ListRecent(ctx, 0); err != nil {
		return nil, s.snapshotErr("contact_log", err)
	}
	if snap.Lunches, err = s.repo.Lunch.ListByStatus(ctx, ""); err != nil {
		return nil, s.snapshotErr("lunch_tracking", err)
	}
	if snap.CallAttempts, err = s.repo.CallAttempt.ListAll(ctx); err != nil {
		return nil, s.snapshotErr("call_attempts", err)
	}
	if snap.CookieVisits, err = s.repo.CookieVisit.ListRecent(ctx, 0); err != nil {
		return nil, s.snapshotErr("cookie_visits", err)
	}
	if snap.ThankYouLetters, err = s.repo.ThankYou.ListByStatus(ctx, ""); err != nil {
		return nil, s.snapshotErr("thank_you_letters", err)
	}
	if snap.FlyerCampaigns, err = s.repo.Flyer.ListCampaigns(ctx, 0); err != nil {
		return nil, s.snapshotErr("flyer_campaigns", err)
	}
	for _, c := range snap.FlyerCampaigns {
		recipients, err := s.repo.Flyer.ListRecipients(ctx, c.ID)
		if err != nil {
			return nil, s.snapshotErr("flyer_recipients", err)
		}
		snap.FlyerRecipients = append(snap.FlyerRecipients, recipients...)
	}
	if snap.Events, err = s.repo.Event.List(ctx, repository.EventFilter{}); err != nil {
		return nil, s.snapshotErr("events", err)
	}

	// 关联对象已按 ID 单独导出
	for i := range snap.Providers {
		snap.Providers[i].Practice = nil
	}
	for i := range snap.Lunches {
		snap.Lunches[i].Practice = nil
	}
	for i := range snap.ThankYouLetters {
		snap.ThankYouLetters[i].Provider = nil
	}
	for i := range snap.FlyerRecipients {
		snap.FlyerRecipients[i].Practice = nil
	}
	for i := range snap.Events {
		snap.Events[i].Practice = nil
	}
	return snap, nil
}

func (s *backupService) snapshotErr(table string, err error) error {
	s.logger.Error("读取快照数据失败", zap.String("table", table), zap.Error(err))
	return err
}

// ────────────────────── Backup ──────────────────────

func (s *backupService) Backup(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", pkgerrors.ErrStorageDisabled
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}

	key := path.Join("snapshots", snap.CreatedAt.Format("20060102-150405")+".json")
	if err := s.store.Save(ctx, key, data, "application/json"); err != nil {
		s.logger.Error("上传数据快照失败", zap.String("key", key), zap.Error(err))
		return "", err
	}

	s.logger.Info("数据快照已备份",
		zap.String("key", key),
		zap.Int("practices", len(snap.Practices)),
		zap.Int("contacts", len(snap.ContactLog)),
	)
	return key, nil
}

// ────────────────────── Restore ──────────────────────
//
// 只允许写入没有诊所数据的库（新环境初始化 / 灾备），保留快照中的原始 ID，
// 整个过程在单个事务内完成，结束后推进各表序列。

func (s *backupService) Restore(ctx context.Context, key string) (*RestoreResult, error) {
	if s.store == nil {
		return nil, pkgerrors.ErrStorageDisabled
	}

	data, err := s.store.Load(ctx, key)
	if err != nil {
		s.logger.Error("读取数据快照失败", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	if s.version != nil {
		current, _, err := s.version()
		if err != nil {
			s.logger.Error("读取迁移版本失败", zap.Error(err))
			return nil, err
		}
		if current != snap.SchemaVersion {
			s.logger.Warn("快照版本不匹配",
				zap.Uint("snapshot", snap.SchemaVersion),
				zap.Uint("current", current),
			)
			return nil, fmt.Errorf("%w: 快照=%d 当前=%d", ErrSnapshotVersionMismatch, snap.SchemaVersion, current)
		}
	}

	existing, err := s.repo.Practice.CountByStatus(ctx, "")
	if err != nil {
		s.logger.Error("统计诊所数量失败", zap.Error(err))
		return nil, err
	}
	if existing > 0 {
		return nil, ErrRestoreTargetNotEmpty
	}

	result := &RestoreResult{Key: key, SchemaVersion: snap.SchemaVersion, Restored: map[string]int{}}
	err = runInTx(ctx, s.repo, s.logger, func(tx *repository.Repository) error {
		return restoreSnapshot(ctx, tx, &snap, result.Restored)
	})
	if err != nil {
		s.logger.Error("恢复数据快照失败", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.logger.Info("数据快照已恢复",
		zap.String("key", key),
		zap.Int("practices", result.Restored["practices"]),
		zap.Int("contacts", result.Restored["contact_log"]),
	)
	return result, nil
}

func restoreEach[T any](items []T, create func(*T) error) (int, error) {
	for i := range items {
		if err := create(&items[i]); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

func restoreSnapshot(ctx context.Context, tx *repository.Repository, snap *Snapshot, restored map[string]int) error {
	// 关联对象一律置空，只按外键 ID 写回
	for i := range snap.Providers {
		snap.Providers[i].Practice = nil
	}
	for i := range snap.Lunches {
		snap.Lunches[i].Practice = nil
	}
	for i := range snap.ThankYouLetters {
		snap.ThankYouLetters[i].Provider = nil
	}
	for i := range snap.FlyerRecipients {
		snap.FlyerRecipients[i].Practice = nil
	}

	// next_event_id 自引用：先写入全部事件，再回填
	nextEvent := make(map[uint64]uint64)
	for i := range snap.Events {
		e := &snap.Events[i]
		e.Practice = nil
		if e.NextEventID != nil {
			nextEvent[e.ID] = *e.NextEventID
			e.NextEventID = nil
		}
	}

	steps := []struct {
		table string
		run   func() (int, error)
	}{
		{"practices", func() (int, error) {
			return restoreEach(snap.Practices, func(p *model.Practice) error { return tx.Practice.Create(ctx, p) })
		}},
		{"providers", func() (int, error) {
			return restoreEach(snap.Providers, func(p *model.Provider) error { return tx.Provider.Create(ctx, p) })
		}},
		{"provider_history", func() (int, error) {
			return restoreEach(snap.ProviderMoves, func(m *model.ProviderMove) error { return tx.ProviderMove.Create(ctx, m) })
		}},
		{"lunch_tracking", func() (int, error) {
			return restoreEach(snap.Lunches, func(l *model.Lunch) error { return tx.Lunch.Create(ctx, l) })
		}},
		{"call_attempts", func() (int, error) {
			return restoreEach(snap.CallAttempts, func(a *model.CallAttempt) error { return tx.CallAttempt.Create(ctx, a) })
		}},
		{"contact_log", func() (int, error) {
			return restoreEach(snap.ContactLog, func(c *model.ContactLog) error { return tx.ContactLog.Create(ctx, c) })
		}},
		{"cookie_visits", func() (int, error) {
			return restoreEach(snap.CookieVisits, func(v *model.CookieVisit) error { return tx.CookieVisit.Create(ctx, v) })
		}},
		{"thank_you_letters", func() (int, error) {
			return restoreEach(snap.ThankYouLetters, func(l *model.ThankYouLetter) error { return tx.ThankYou.Create(ctx, l) })
		}},
		{"flyer_campaigns", func() (int, error) {
			return restoreEach(snap.FlyerCampaigns, func(c *model.FlyerCampaignSummary) error {
				return tx.Flyer.CreateCampaign(ctx, &c.FlyerCampaign)
			})
		}},
		{"flyer_recipients", func() (int, error) {
			return restoreEach(snap.FlyerRecipients, func(r *model.FlyerRecipient) error { return tx.Flyer.CreateRecipient(ctx, r) })
		}},
		{"events", func() (int, error) {
			return restoreEach(snap.Events, func(e *model.Event) error { return tx.Event.Create(ctx, e) })
		}},
	}

	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			return fmt.Errorf("写回 %s 第 %d 条失败: %w", step.table, n+1, err)
		}
		restored[step.table] = n
	}

	for i := range snap.Events {
		e := &snap.Events[i]
		next, ok := nextEvent[e.ID]
		if !ok {
			continue
		}
		e.NextEventID = &next
		if err := tx.Event.Update(ctx, e); err != nil {
			return fmt.Errorf("回填 events.next_event_id 失败: %w", err)
		}
	}

	return tx.ResetSequences(ctx, restoredTables...)
}
