package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

var (
	ErrEventNotFound = errors.New("日历事件不存在")
	ErrInvalidMonth  = errors.New("月份格式无效，应为 YYYY-MM")
)

const (
	icsProductID     = "-//referral-outreach//calendar//EN"
	icsEventDuration = time.Hour
)

// scheduledTimeLayouts 事件时间支持的写法
var scheduledTimeLayouts = []string{"15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"}

// EventService 日历事件业务接口
type EventService interface {
	Create(ctx context.Context, req *dto.CreateEventRequest, createdBy string) (*model.Event, error)
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	Update(ctx context.Context, id uint64, req *dto.UpdateEventRequest) (*model.Event, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, req *dto.EventListRequest) ([]model.Event, error)
	ExportICS(ctx context.Context, req *dto.EventListRequest) ([]byte, error)
}

type eventService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewEventService 创建 EventService 实例
func NewEventService(repo *repository.Repository, now Clock, logger *zap.Logger) EventService {
	return &eventService{repo: repo, now: now, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest, createdBy string) (*model.Event, error) {
	date, err := parseOptionalDate(req.ScheduledDate, s.now().Location())
	if err != nil {
		return nil, err
	}
	if date == nil {
		return nil, ErrInvalidDate
	}

	label := strings.TrimSpace(req.Label)
	if req.PracticeID != nil {
		practice, err := s.repo.Practice.GetByID(ctx, *req.PracticeID)
		if err != nil {
			return nil, translatePracticeErr(err)
		}
		if label == "" {
			label = req.EventType + " - " + practice.Name
		}
	}
	if label == "" {
		label = req.EventType
	}

	event := &model.Event{
		PracticeID:    req.PracticeID,
		ProviderID:    req.ProviderID,
		EventType:     req.EventType,
		Label:         label,
		ScheduledDate: date,
		ScheduledTime: strings.TrimSpace(req.ScheduledTime),
		Status:        model.EventScheduled,
		Notes:         req.Notes,
		CreatedBy:     createdBy,
	}
	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.logger.Error("创建日历事件失败", zap.Error(err))
		return nil, err
	}
	return event, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *eventService) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询日历事件失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return event, nil
}

// ────────────────────── Update ──────────────────────

func (s *eventService) Update(ctx context.Context, id uint64, req *dto.UpdateEventRequest) (*model.Event, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		event.Label = strings.TrimSpace(*req.Label)
	}
	if req.ScheduledDate != nil {
		date, err := parseOptionalDate(*req.ScheduledDate, s.now().Location())
		if err != nil {
			return nil, err
		}
		event.ScheduledDate = date
	}
	if req.ScheduledTime != nil {
		event.ScheduledTime = strings.TrimSpace(*req.ScheduledTime)
	}
	if req.Notes != nil {
		event.Notes = *req.Notes
	}
	if req.Status != nil && *req.Status != event.Status {
		event.Status = *req.Status
		event.CompletedAt = nil
		if event.Status == model.EventCompleted {
			now := s.now()
			event.CompletedAt = &now
		}
	}

	event.Practice = nil
	if err := s.repo.Event.Update(ctx, event); err != nil {
		s.logger.Error("更新日历事件失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return event, nil
}

// ────────────────────── Delete ──────────────────────

func (s *eventService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Event.Delete(ctx, id); err != nil {
		s.logger.Error("删除日历事件失败", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── List ──────────────────────

// monthRange "2026-10" → [2026-10-01, 2026-11-01)
func monthRange(month string, loc *time.Location) (*time.Time, *time.Time, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return nil, nil, nil
	}
	from, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return nil, nil, ErrInvalidMonth
	}
	to := from.AddDate(0, 1, 0)
	return &from, &to, nil
}

func (s *eventService) List(ctx context.Context, req *dto.EventListRequest) ([]model.Event, error) {
	from, to, err := monthRange(req.Month, s.now().Location())
	if err != nil {
		return nil, err
	}
	events, err := s.repo.Event.List(ctx, repository.EventFilter{
		PracticeID: req.PracticeID,
		EventType:  req.EventType,
		Status:     req.Status,
		From:       from,
		To:         to,
	})
	if err != nil {
		s.logger.Error("查询日历事件失败", zap.Error(err))
		return nil, err
	}
	return events, nil
}

// ────────────────────── ExportICS ──────────────────────

// ExportICS 将筛选出的事件导出为 iCalendar；无法解析的时间按全天事件处理
func (s *eventService) ExportICS(ctx context.Context, req *dto.EventListRequest) ([]byte, error) {
	events, err := s.List(ctx, req)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for i := range events {
		e := &events[i]
		if e.ScheduledDate == nil {
			continue
		}
		vevent := cal.AddEvent(fmt.Sprintf("event-%d@referral-outreach", e.ID))
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(e.Label)
		if e.Notes != "" {
			vevent.SetDescription(e.Notes)
		}

		if start, ok := eventStart(*e.ScheduledDate, e.ScheduledTime); ok {
			vevent.SetStartAt(start)
			vevent.SetEndAt(start.Add(icsEventDuration))
		} else {
			vevent.SetAllDayStartAt(*e.ScheduledDate)
			vevent.SetAllDayEndAt(e.ScheduledDate.AddDate(0, 0, 1))
		}

		switch e.Status {
		case model.EventCancelled:
			vevent.SetStatus(ics.ObjectStatusCancelled)
		default:
			vevent.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	return []byte(cal.Serialize()), nil
}

// eventStart 合并日期与时间文本；时间为空或无法识别时返回 false
func eventStart(date time.Time, clock string) (time.Time, bool) {
	clock = strings.ToUpper(strings.TrimSpace(clock))
	if clock == "" {
		return time.Time{}, false
	}
	for _, layout := range scheduledTimeLayouts {
		t, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		y, m, d := date.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location()), true
	}
	return time.Time{}, false
}
