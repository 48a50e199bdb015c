package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

var (
	ErrLunchNotFound          = errors.New("午餐记录不存在")
	ErrLunchInProgress        = errors.New("该诊所已有进行中的午餐流程")
	ErrInvalidLunchTransition = errors.New("不允许的午餐状态流转")
	ErrLunchCompleted         = errors.New("午餐已完成，不能再记录电话")
	ErrScheduledDateRequired  = errors.New("预约午餐必须填写日期")
	ErrCustomDateRequired     = errors.New("自定义跟进需要填写日期")
)

// 跟进间隔
const (
	Followup12Weeks = "12 weeks"
	Followup3Months = "3 months"
	Followup6Months = "6 months"
	FollowupCustom  = "custom"
)

// lunchTransitions 允许的手动流转；Completed 只能经由 Complete 进入
var lunchTransitions = map[string][]string{
	model.LunchNotContacted: {model.LunchAttempting},
	model.LunchAttempting:   {model.LunchScheduled, model.LunchNotContacted},
	model.LunchScheduled:    {model.LunchNotContacted},
}

// CanTransitionLunch 判断 from → to 是否为合法的手动流转
func CanTransitionLunch(from, to string) bool {
	for _, s := range lunchTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// nextFollowupDate 按间隔推算下次跟进日期；interval 为空返回 nil
func nextFollowupDate(base time.Time, interval, customDate string) (*time.Time, error) {
	var next time.Time
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "":
		return nil, nil
	case Followup12Weeks:
		next = base.AddDate(0, 0, 12*7)
	case Followup3Months:
		next = base.AddDate(0, 0, 13*7)
	case Followup6Months:
		next = base.AddDate(0, 0, 26*7)
	case FollowupCustom:
		d, err := parseOptionalDate(customDate, base.Location())
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, ErrCustomDateRequired
		}
		return d, nil
	default:
		return nil, fmt.Errorf("未知的跟进间隔: %s", interval)
	}
	next = startOfDay(next)
	return &next, nil
}

// LunchService 午餐外联流程业务接口
type LunchService interface {
	Start(ctx context.Context, practiceID uint64) (*model.Lunch, error)
	Get(ctx context.Context, id uint64) (*dto.LunchDetailResponse, error)
	ListByStatus(ctx context.Context, status string) ([]model.Lunch, error)
	ListByPractice(ctx context.Context, practiceID uint64) ([]model.Lunch, error)
	Transition(ctx context.Context, id uint64, req *dto.TransitionLunchRequest) (*model.Lunch, error)
	LogCallAttempt(ctx context.Context, id uint64, req *dto.LogCallAttemptRequest) (*model.CallAttempt, error)
	Complete(ctx context.Context, id uint64, req *dto.CompleteLunchRequest) (*dto.CompleteLunchResponse, error)
}

type lunchService struct {
	cfg    *config.OutreachConfig
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewLunchService 创建 LunchService 实例
func NewLunchService(cfg *config.OutreachConfig, repo *repository.Repository, now Clock, logger *zap.Logger) LunchService {
	return &lunchService{cfg: cfg, repo: repo, now: now, logger: logger}
}

func (s *lunchService) getLunch(ctx context.Context, id uint64) (*model.Lunch, error) {
	lunch, err := s.repo.Lunch.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLunchNotFound
		}
		s.logger.Error("查询午餐失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return lunch, nil
}

func (s *lunchService) teamMember(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return s.cfg.DefaultTeamMember
}

// ────────────────────── Start ──────────────────────

func (s *lunchService) Start(ctx context.Context, practiceID uint64) (*model.Lunch, error) {
	if _, err := s.repo.Practice.GetByID(ctx, practiceID); err != nil {
		return nil, translatePracticeErr(err)
	}

	existing, err := s.repo.Lunch.ListByPractice(ctx, practiceID, "")
	if err != nil {
		s.logger.Error("查询诊所午餐失败", zap.Uint64("practice_id", practiceID), zap.Error(err))
		return nil, err
	}
	for _, l := range existing {
		if l.Status != model.LunchCompleted {
			return nil, ErrLunchInProgress
		}
	}

	lunch := &model.Lunch{
		PracticeID: practiceID,
		Status:     model.LunchNotContacted,
	}
	if err := s.repo.Lunch.Create(ctx, lunch); err != nil {
		s.logger.Error("创建午餐流程失败", zap.Uint64("practice_id", practiceID), zap.Error(err))
		return nil, err
	}
	return lunch, nil
}

// ────────────────────── Get ──────────────────────

func (s *lunchService) Get(ctx context.Context, id uint64) (*dto.LunchDetailResponse, error) {
	lunch, err := s.getLunch(ctx, id)
	if err != nil {
		return nil, err
	}
	attempts, err := s.repo.CallAttempt.ListByLunch(ctx, id)
	if err != nil {
		s.logger.Error("查询预约电话失败", zap.Uint64("lunch_id", id), zap.Error(err))
		return nil, err
	}

	pending := lunch.Status == model.LunchNotContacted || lunch.Status == model.LunchAttempting
	return &dto.LunchDetailResponse{
		Lunch:          *lunch,
		CallAttempts:   attempts,
		AttemptWarning: pending && len(attempts) >= s.cfg.FailedCallThreshold,
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *lunchService) ListByStatus(ctx context.Context, status string) ([]model.Lunch, error) {
	lunches, err := s.repo.Lunch.ListByStatus(ctx, status)
	if err != nil {
		s.logger.Error("查询午餐列表失败", zap.String("status", status), zap.Error(err))
		return nil, err
	}
	return lunches, nil
}

func (s *lunchService) ListByPractice(ctx context.Context, practiceID uint64) ([]model.Lunch, error) {
	lunches, err := s.repo.Lunch.ListByPractice(ctx, practiceID, "")
	if err != nil {
		s.logger.Error("查询诊所午餐失败", zap.Uint64("practice_id", practiceID), zap.Error(err))
		return nil, err
	}
	return lunches, nil
}

// ────────────────────── Transition ──────────────────────

// Transition 手动流转；进入 Scheduled 时写入预约信息，回到 Not Contacted 时清空
func (s *lunchService) Transition(ctx context.Context, id uint64, req *dto.TransitionLunchRequest) (*model.Lunch, error) {
	lunch, err := s.getLunch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransitionLunch(lunch.Status, req.Status) {
		return nil, ErrInvalidLunchTransition
	}

	switch req.Status {
	case model.LunchScheduled:
		date, err := parseOptionalDate(req.ScheduledDate, s.now().Location())
		if err != nil {
			return nil, err
		}
		if date == nil && lunch.ScheduledDate == nil {
			return nil, ErrScheduledDateRequired
		}
		if date != nil {
			lunch.ScheduledDate = date
		}
		if t := strings.TrimSpace(req.ScheduledTime); t != "" {
			lunch.ScheduledTime = t
		}
		if req.StaffCount != nil {
			lunch.StaffCount = req.StaffCount
		}
		if req.DietaryNotes != nil {
			lunch.DietaryNotes = *req.DietaryNotes
		}
		if req.Restaurant != nil {
			lunch.Restaurant = strings.TrimSpace(*req.Restaurant)
		}
		if req.ConfirmedWith != nil {
			lunch.ConfirmedWith = strings.TrimSpace(*req.ConfirmedWith)
		}
	case model.LunchNotContacted:
		lunch.ScheduledDate = nil
		lunch.ScheduledTime = ""
		lunch.StaffCount = nil
		lunch.DietaryNotes = ""
		lunch.Restaurant = ""
		lunch.ConfirmedWith = ""
	}

	from := lunch.Status
	lunch.Status = req.Status
	lunch.Practice = nil
	if err := s.repo.Lunch.Update(ctx, lunch); err != nil {
		s.logger.Error("更新午餐状态失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("午餐状态已流转",
		zap.Uint64("id", id),
		zap.String("from", from),
		zap.String("to", lunch.Status),
		zap.String("by", s.teamMember(req.TeamMember)),
	)
	return lunch, nil
}

// ────────────────────── LogCallAttempt ──────────────────────

// LogCallAttempt 记录预约电话；Not Contacted 状态自动进入 Attempting
func (s *lunchService) LogCallAttempt(ctx context.Context, id uint64, req *dto.LogCallAttemptRequest) (*model.CallAttempt, error) {
	lunch, err := s.getLunch(ctx, id)
	if err != nil {
		return nil, err
	}
	if lunch.Status == model.LunchCompleted {
		return nil, ErrLunchCompleted
	}

	date, err := parseDateOr(req.CallDate, startOfDay(s.now()))
	if err != nil {
		return nil, err
	}

	attempt := &model.CallAttempt{
		LunchID:         &lunch.ID,
		PracticeID:      lunch.PracticeID,
		CallDate:        &date,
		CallTime:        strings.TrimSpace(req.CallTime),
		PersonContacted: strings.TrimSpace(req.PersonContacted),
		Outcome:         req.Outcome,
		Notes:           req.Notes,
	}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.CallAttempt.Create(ctx, attempt); err != nil {
			s.logger.Error("记录预约电话失败", zap.Uint64("lunch_id", id), zap.Error(err))
			return err
		}
		if lunch.Status != model.LunchNotContacted {
			return nil
		}
		lunch.Status = model.LunchAttempting
		lunch.Practice = nil
		if err := txRepo.Lunch.Update(ctx, lunch); err != nil {
			s.logger.Error("更新午餐状态失败", zap.Uint64("id", id), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// ────────────────────── Complete ──────────────────────

// Complete 完成午餐：为在职医生各生成一封待寄感谢信，追加 Lunch 联系记录，
// 按需创建下次跟进事件。
func (s *lunchService) Complete(ctx context.Context, id uint64, req *dto.CompleteLunchRequest) (*dto.CompleteLunchResponse, error) {
	lunch, err := s.getLunch(ctx, id)
	if err != nil {
		return nil, err
	}
	if lunch.Status != model.LunchScheduled {
		return nil, ErrInvalidLunchTransition
	}

	now := s.now()
	completed, err := parseDateOr(req.CompletedDate, now)
	if err != nil {
		return nil, err
	}
	nextDate, err := nextFollowupDate(startOfDay(completed), req.NextFollowup, req.CustomDate)
	if err != nil {
		return nil, err
	}
	practice, err := s.repo.Practice.GetByID(ctx, lunch.PracticeID)
	if err != nil {
		return nil, translatePracticeErr(err)
	}
	providers, err := s.repo.Provider.ListByPractice(ctx, lunch.PracticeID, true)
	if err != nil {
		s.logger.Error("查询在职医生失败", zap.Uint64("practice_id", lunch.PracticeID), zap.Error(err))
		return nil, err
	}

	member := s.teamMember(req.TeamMember)
	resp := &dto.CompleteLunchResponse{}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		lunch.Status = model.LunchCompleted
		lunch.CompletedDate = &completed
		lunch.ActualAttendees = req.ActualAttendees
		lunch.VisitNotes = req.VisitNotes
		lunch.Practice = nil
		if err := txRepo.Lunch.Update(ctx, lunch); err != nil {
			s.logger.Error("更新午餐为完成失败", zap.Uint64("id", id), zap.Error(err))
			return err
		}

		if len(providers) > 0 {
			letters := make([]model.ThankYouLetter, 0, len(providers))
			for i := range providers {
				letters = append(letters, model.ThankYouLetter{
					ProviderID: &providers[i].ID,
					PracticeID: lunch.PracticeID,
					LunchID:    &lunch.ID,
					Reason:     model.ReasonPostLunch,
					Status:     model.ThankYouPending,
					CreatedAt:  now,
				})
			}
			if err := txRepo.ThankYou.BatchCreate(ctx, letters); err != nil {
				s.logger.Error("生成感谢信失败", zap.Uint64("lunch_id", id), zap.Error(err))
				return err
			}
			resp.ThankYousCreated = len(letters)
		}

		entry := &model.ContactLog{
			PracticeID:  lunch.PracticeID,
			ContactType: model.ContactLunch,
			ContactDate: &completed,
			TeamMember:  member,
			Outcome:     "Completed",
			Notes:       "Lunch completed at " + lunch.Restaurant,
		}
		if err := appendContact(ctx, txRepo, entry); err != nil {
			s.logger.Error("写入午餐联系记录失败", zap.Uint64("lunch_id", id), zap.Error(err))
			return err
		}

		if nextDate != nil {
			event := &model.Event{
				PracticeID:       &lunch.PracticeID,
				EventType:        model.EventTypeLunch,
				Label:            "Follow-up Lunch - " + practice.Name,
				ScheduledDate:    nextDate,
				Status:           model.EventScheduled,
				CreatedBy:        member,
				FollowupInterval: req.NextFollowup,
			}
			if err := txRepo.Event.Create(ctx, event); err != nil {
				s.logger.Error("创建跟进午餐事件失败", zap.Uint64("lunch_id", id), zap.Error(err))
				return err
			}
			resp.NextEvent = event
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.Lunch = *lunch
	s.logger.Info("午餐已完成",
		zap.Uint64("id", id),
		zap.Int("thank_yous", resp.ThankYousCreated),
	)
	return resp, nil
}
