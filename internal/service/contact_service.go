package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

var ErrInvalidContactType = errors.New("联系类型无效")

// ContactService 联系记录业务接口（仅追加）
type ContactService interface {
	Create(ctx context.Context, req *dto.CreateContactRequest) (*model.ContactLog, error)
	ListByPractice(ctx context.Context, practiceID uint64, limit int) ([]model.ContactLog, error)
	ListRecent(ctx context.Context, limit int) ([]model.ContactLog, error)
	CallIndicator(ctx context.Context, practiceID uint64) (*dto.CallIndicator, error)
}

type contactService struct {
	cfg    *config.OutreachConfig
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewContactService 创建 ContactService 实例
func NewContactService(cfg *config.OutreachConfig, repo *repository.Repository, now Clock, logger *zap.Logger) ContactService {
	return &contactService{cfg: cfg, repo: repo, now: now, logger: logger}
}

// appendContact 写入一条联系记录；Phone Call 自动编号（= 既有电话数 + 1）
//
// 由 repo 参数决定是否在事务内执行，供午餐、送饼干、传单等流程复用。
func appendContact(ctx context.Context, repo *repository.Repository, entry *model.ContactLog) error {
	if entry.ContactType == model.ContactPhoneCall {
		prior, err := repo.ContactLog.CountByPracticeAndType(ctx, entry.PracticeID, model.ContactPhoneCall)
		if err != nil {
			return err
		}
		n := int(prior) + 1
		entry.CallAttemptNumber = &n
	}
	return repo.ContactLog.Create(ctx, entry)
}

// ────────────────────── Create ──────────────────────

func (s *contactService) Create(ctx context.Context, req *dto.CreateContactRequest) (*model.ContactLog, error) {
	if !lo.Contains(model.ContactTypes, req.ContactType) {
		return nil, ErrInvalidContactType
	}
	if _, err := s.repo.Practice.GetByID(ctx, req.PracticeID); err != nil {
		return nil, translatePracticeErr(err)
	}

	now := s.now()
	date, err := parseDateOr(req.ContactDate, startOfDay(now))
	if err != nil {
		return nil, err
	}

	teamMember := strings.TrimSpace(req.TeamMember)
	if teamMember == "" {
		teamMember = s.cfg.DefaultTeamMember
	}

	entry := &model.ContactLog{
		PracticeID:      req.PracticeID,
		ContactType:     req.ContactType,
		ContactDate:     &date,
		TeamMember:      teamMember,
		PersonContacted: strings.TrimSpace(req.PersonContacted),
		Outcome:         strings.TrimSpace(req.Outcome),
		Purpose:         strings.TrimSpace(req.Purpose),
		Notes:           req.Notes,
	}
	if err := appendContact(ctx, s.repo, entry); err != nil {
		s.logger.Error("新增联系记录失败", zap.Uint64("practice_id", req.PracticeID), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// ────────────────────── ListByPractice ──────────────────────

func (s *contactService) ListByPractice(ctx context.Context, practiceID uint64, limit int) ([]model.ContactLog, error) {
	if _, err := s.repo.Practice.GetByID(ctx, practiceID); err != nil {
		return nil, translatePracticeErr(err)
	}
	entries, err := s.repo.ContactLog.ListByPractice(ctx, practiceID, limit)
	if err != nil {
		s.logger.Error("查询联系记录失败", zap.Uint64("practice_id", practiceID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// ────────────────────── ListRecent ──────────────────────

func (s *contactService) ListRecent(ctx context.Context, limit int) ([]model.ContactLog, error) {
	entries, err := s.repo.ContactLog.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("查询最近联系记录失败", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// ────────────────────── CallIndicator ──────────────────────

// CallIndicator 电话次数达到阈值但仍未约到午餐时给出提醒
func (s *contactService) CallIndicator(ctx context.Context, practiceID uint64) (*dto.CallIndicator, error) {
	stat, err := s.repo.ContactLog.CallStats(ctx, practiceID)
	if err != nil {
		s.logger.Error("统计电话次数失败", zap.Uint64("practice_id", practiceID), zap.Error(err))
		return nil, err
	}
	return &dto.CallIndicator{
		CallCount:      stat.CallCount,
		LunchScheduled: stat.LunchScheduled,
		Warning:        stat.CallCount >= int64(s.cfg.FailedCallThreshold) && !stat.LunchScheduled,
	}, nil
}
