package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

// 关系评分规则：五项独立得分，各自封顶，总和上限恰为 100
const (
	scoreWindowDays = 180

	recencyCap   = 20
	frequencyCap = 30
	lunchCap     = 25
	cookieCap    = 15
	varietyCap   = 10

	perRecentContact = 5
	perLunch         = 10
	perCookieVisit   = 5
	perContactType   = 3
)

// 评分标签
const (
	ScoreStrong         = "Strong"
	ScoreModerate       = "Moderate"
	ScoreNeedsAttention = "Needs Attention"
)

// ScoringService 关系评分业务接口（每次调用均从活动记录实时计算，不缓存）
type ScoringService interface {
	Score(ctx context.Context, practiceID uint64) (*dto.ScoreResponse, error)
	ListScores(ctx context.Context, status string) ([]dto.ScoreResponse, error)
}

type scoringService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewScoringService 创建 ScoringService 实例
func NewScoringService(repo *repository.Repository, now Clock, logger *zap.Logger) ScoringService {
	return &scoringService{repo: repo, now: now, logger: logger}
}

// ComputeRelationshipScore 纯函数：根据活动记录计算 0~100 的关系评分
func ComputeRelationshipScore(now time.Time, contacts []model.ContactLog, lunches []model.Lunch, cookies []model.CookieVisit) (int, dto.ScoreBreakdown) {
	var b dto.ScoreBreakdown

	// 最近一次联系
	var latest *time.Time
	recent := 0
	for i := range contacts {
		d := contacts[i].ContactDate
		if d == nil {
			continue
		}
		if latest == nil || d.After(*latest) {
			latest = d
		}
		if daysSince(now, *d) <= scoreWindowDays {
			recent++
		}
	}
	if latest != nil {
		switch days := daysSince(now, *latest); {
		case days <= 30:
			b.Recency = 20
		case days <= 60:
			b.Recency = 10
		case days <= 90:
			b.Recency = 5
		}
	}

	b.Frequency = min(recent*perRecentContact, frequencyCap)

	completed := lo.CountBy(lunches, func(l model.Lunch) bool {
		return l.Status == model.LunchCompleted
	})
	b.Lunches = min(completed*perLunch, lunchCap)

	recentCookies := lo.CountBy(cookies, func(c model.CookieVisit) bool {
		return c.VisitDate != nil && daysSince(now, *c.VisitDate) <= scoreWindowDays
	})
	b.Cookies = min(recentCookies*perCookieVisit, cookieCap)

	types := lo.Uniq(lo.Map(contacts, func(c model.ContactLog, _ int) string { return c.ContactType }))
	b.Variety = min(len(types)*perContactType, varietyCap)

	total := min(b.Recency, recencyCap) + b.Frequency + b.Lunches + b.Cookies + b.Variety
	return max(0, min(total, 100)), b
}

// ScoreLabel 评分标签：≥70 Strong，≥40 Moderate，其余 Needs Attention
func ScoreLabel(score int) string {
	switch {
	case score >= 70:
		return ScoreStrong
	case score >= 40:
		return ScoreModerate
	default:
		return ScoreNeedsAttention
	}
}

// ────────────────────── Score ──────────────────────

func (s *scoringService) Score(ctx context.Context, practiceID uint64) (*dto.ScoreResponse, error) {
	practice, err := s.repo.Practice.GetByID(ctx, practiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPracticeNotFound
		}
		s.logger.Error("查询诊所失败", zap.Uint64("practice_id", practiceID), zap.Error(err))
		return nil, err
	}
	return s.scorePractice(ctx, practice)
}

func (s *scoringService) scorePractice(ctx context.Context, practice *model.Practice) (*dto.ScoreResponse, error) {
	contacts, err := s.repo.ContactLog.ListByPractice(ctx, practice.ID, 0)
	if err != nil {
		s.logger.Error("查询联系记录失败", zap.Uint64("practice_id", practice.ID), zap.Error(err))
		return nil, err
	}
	lunches, err := s.repo.Lunch.ListByPractice(ctx, practice.ID, "")
	if err != nil {
		s.logger.Error("查询午餐记录失败", zap.Uint64("practice_id", practice.ID), zap.Error(err))
		return nil, err
	}
	cookies, err := s.repo.CookieVisit.ListByPractice(ctx, practice.ID)
	if err != nil {
		s.logger.Error("查询送饼干记录失败", zap.Uint64("practice_id", practice.ID), zap.Error(err))
		return nil, err
	}

	score, breakdown := ComputeRelationshipScore(s.now(), contacts, lunches, cookies)
	return &dto.ScoreResponse{
		PracticeID:   practice.ID,
		PracticeName: practice.Name,
		Score:        score,
		Label:        ScoreLabel(score),
		Breakdown:    breakdown,
	}, nil
}

// ────────────────────── ListScores ──────────────────────

// ListScores 计算全部（或指定状态）诊所的评分，按分数从低到高排列，便于优先跟进
func (s *scoringService) ListScores(ctx context.Context, status string) ([]dto.ScoreResponse, error) {
	practices, _, err := s.repo.Practice.List(ctx, repository.PracticeFilter{Status: status})
	if err != nil {
		s.logger.Error("查询诊所列表失败", zap.Error(err))
		return nil, err
	}

	scores := make([]dto.ScoreResponse, 0, len(practices))
	for i := range practices {
		sc, err := s.scorePractice(ctx, &practices[i])
		if err != nil {
			return nil, err
		}
		scores = append(scores, *sc)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score < scores[j].Score
	})
	return scores, nil
}
