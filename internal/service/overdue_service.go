package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

// 待办类型与优先级
const (
	OverdueNoContact = "No Contact"
	OverdueFollowUp  = "Follow-up Overdue"
	OverdueThankYou  = "Thank You Letter"
	OverdueLunch     = "Upcoming Lunch"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// OverdueService 待办派生业务接口（每次调用全量扫描在册诊所）
type OverdueService interface {
	OverdueItems(ctx context.Context) ([]dto.OverdueItem, error)
}

type overdueService struct {
	cfg    *config.OutreachConfig
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewOverdueService 创建 OverdueService 实例
func NewOverdueService(cfg *config.OutreachConfig, repo *repository.Repository, now Clock, logger *zap.Logger) OverdueService {
	return &overdueService{cfg: cfg, repo: repo, now: now, logger: logger}
}

// OverdueItems 按 days_overdue 降序返回全部待办
func (s *overdueService) OverdueItems(ctx context.Context) ([]dto.OverdueItem, error) {
	practices, _, err := s.repo.Practice.List(ctx, repository.PracticeFilter{Status: model.StatusActive})
	if err != nil {
		s.logger.Error("查询在册诊所失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	items := make([]dto.OverdueItem, 0)

	for i := range practices {
		p := &practices[i]
		newItem := func(typ, detail string, days int, priority string) dto.OverdueItem {
			return dto.OverdueItem{
				Type:        typ,
				PracticeID:  p.ID,
				Practice:    p.Name,
				Detail:      detail,
				DaysOverdue: days,
				Priority:    priority,
			}
		}

		// ── 最近联系 ──
		contacts, err := s.repo.ContactLog.ListByPractice(ctx, p.ID, 1)
		if err != nil {
			s.logger.Error("查询联系记录失败", zap.Uint64("practice_id", p.ID), zap.Error(err))
			return nil, err
		}
		if len(contacts) == 0 {
			items = append(items, newItem(OverdueNoContact, "No contact logged yet", 0, PriorityHigh))
		} else if last := contacts[0].ContactDate; last != nil {
			days := daysSince(now, *last)
			if days > s.cfg.LunchFollowupDays {
				priority := PriorityMedium
				if days > s.cfg.HighPriorityDays {
					priority = PriorityHigh
				}
				items = append(items, newItem(OverdueFollowUp,
					fmt.Sprintf("Last contact was %d days ago", days),
					days-s.cfg.LunchFollowupDays, priority))
			}
		}

		// ── 待寄感谢信 ──
		letters, err := s.repo.ThankYou.ListByPractice(ctx, p.ID, model.ThankYouPending)
		if err != nil {
			s.logger.Error("查询感谢信失败", zap.Uint64("practice_id", p.ID), zap.Error(err))
			return nil, err
		}
		for _, ty := range letters {
			days := daysSince(now, ty.CreatedAt)
			if days > s.cfg.ThankYouGraceDays {
				items = append(items, newItem(OverdueThankYou,
					fmt.Sprintf("Pending for %d days (%s)", days, ty.Reason),
					days-s.cfg.ThankYouGraceDays, PriorityMedium))
			}
		}

		// ── 已预约午餐 ──
		// 预约日期晚于今天即提示，days_overdue 为距今天数的负值
		lunches, err := s.repo.Lunch.ListByPractice(ctx, p.ID, model.LunchScheduled)
		if err != nil {
			s.logger.Error("查询午餐记录失败", zap.Uint64("practice_id", p.ID), zap.Error(err))
			return nil, err
		}
		for _, l := range lunches {
			if l.ScheduledDate == nil {
				continue
			}
			days := daysSince(now, *l.ScheduledDate)
			if days < 0 {
				items = append(items, newItem(OverdueLunch,
					fmt.Sprintf("Lunch in %d days - %s", -days, l.ScheduledTime),
					days, PriorityMedium))
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysOverdue > items[j].DaysOverdue
	})
	return items, nil
}
