package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

// CookieVisitCompleted 送饼干登记后的状态
const CookieVisitCompleted = "Completed"

// CookieService 送饼干业务接口
type CookieService interface {
	LogVisit(ctx context.Context, req *dto.LogCookieVisitRequest) (*dto.CookieVisitResponse, error)
	ListByPractice(ctx context.Context, practiceID uint64) ([]model.CookieVisit, error)
	ListRecent(ctx context.Context, limit int) ([]model.CookieVisit, error)
}

type cookieService struct {
	cfg    *config.OutreachConfig
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewCookieService 创建 CookieService 实例
func NewCookieService(cfg *config.OutreachConfig, repo *repository.Repository, now Clock, logger *zap.Logger) CookieService {
	return &cookieService{cfg: cfg, repo: repo, now: now, logger: logger}
}

// ────────────────────── LogVisit ──────────────────────

// LogVisit 登记送饼干，同时追加 Cookie Visit 联系记录
//
// 未指定下次拜访日期时按 cookie_visit_days 推算；schedule_next 为 true 时创建日历事件。
func (s *cookieService) LogVisit(ctx context.Context, req *dto.LogCookieVisitRequest) (*dto.CookieVisitResponse, error) {
	practice, err := s.repo.Practice.GetByID(ctx, req.PracticeID)
	if err != nil {
		return nil, translatePracticeErr(err)
	}

	visitDate, err := parseDateOr(req.VisitDate, startOfDay(s.now()))
	if err != nil {
		return nil, err
	}
	nextDate, err := parseOptionalDate(req.NextVisitDate, visitDate.Location())
	if err != nil {
		return nil, err
	}
	if nextDate == nil {
		d := visitDate.AddDate(0, 0, s.cfg.CookieVisitDays)
		nextDate = &d
	}

	deliveredBy := strings.TrimSpace(req.DeliveredBy)
	if deliveredBy == "" {
		deliveredBy = s.cfg.DefaultTeamMember
	}
	items := strings.TrimSpace(req.ItemsDelivered)

	visit := &model.CookieVisit{
		PracticeID:     req.PracticeID,
		VisitDate:      &visitDate,
		ItemsDelivered: items,
		DeliveredBy:    deliveredBy,
		Notes:          req.Notes,
		Status:         CookieVisitCompleted,
		NextVisitDate:  nextDate,
	}
	resp := &dto.CookieVisitResponse{}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.CookieVisit.Create(ctx, visit); err != nil {
			s.logger.Error("登记送饼干失败", zap.Uint64("practice_id", req.PracticeID), zap.Error(err))
			return err
		}

		entry := &model.ContactLog{
			PracticeID:  req.PracticeID,
			ContactType: model.ContactCookieVisit,
			ContactDate: &visitDate,
			TeamMember:  deliveredBy,
			Outcome:     "Delivered",
			Notes:       "Items: " + items,
		}
		if err := appendContact(ctx, txRepo, entry); err != nil {
			s.logger.Error("写入送饼干联系记录失败", zap.Uint64("practice_id", req.PracticeID), zap.Error(err))
			return err
		}

		if !req.ScheduleNext {
			return nil
		}
		event := &model.Event{
			PracticeID:    &visit.PracticeID,
			EventType:     model.EventTypeCookieVisit,
			Label:         "Cookie Visit - " + practice.Name,
			ScheduledDate: nextDate,
			Status:        model.EventScheduled,
			CreatedBy:     deliveredBy,
		}
		if err := txRepo.Event.Create(ctx, event); err != nil {
			s.logger.Error("创建下次送饼干事件失败", zap.Uint64("practice_id", req.PracticeID), zap.Error(err))
			return err
		}
		resp.NextEvent = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.Visit = *visit
	return resp, nil
}

// ────────────────────── List ──────────────────────

func (s *cookieService) ListByPractice(ctx context.Context, practiceID uint64) ([]model.CookieVisit, error) {
	visits, err := s.repo.CookieVisit.ListByPractice(ctx, practiceID)
	if err != nil {
		s.logger.Error("查询送饼干记录失败", zap.Uint64("practice_id", practiceID), zap.Error(err))
		return nil, err
	}
	return visits, nil
}

func (s *cookieService) ListRecent(ctx context.Context, limit int) ([]model.CookieVisit, error) {
	visits, err := s.repo.CookieVisit.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("查询最近送饼干记录失败", zap.Error(err))
		return nil, err
	}
	return visits, nil
}
