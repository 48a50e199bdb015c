package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

var ErrProviderNotInPractice = errors.New("医生不属于该诊所")

// ThankYouService 感谢信业务接口
type ThankYouService interface {
	Create(ctx context.Context, req *dto.CreateThankYouRequest) ([]model.ThankYouLetter, error)
	List(ctx context.Context, status string) ([]model.ThankYouLetter, error)
	ListByPractice(ctx context.Context, practiceID uint64, status string) ([]model.ThankYouLetter, error)
	MarkMailed(ctx context.Context, req *dto.MarkMailedRequest) (*dto.MarkMailedResponse, error)
	MarkAllMailed(ctx context.Context) (*dto.MarkMailedResponse, error)
}

type thankYouService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewThankYouService 创建 ThankYouService 实例
func NewThankYouService(repo *repository.Repository, now Clock, logger *zap.Logger) ThankYouService {
	return &thankYouService{repo: repo, now: now, logger: logger}
}

// ────────────────────── Create ──────────────────────

// Create 手动新增感谢信
//
// 指定 provider_id 时只建一封；否则为诊所全部在职医生各建一封，
// 诊所没有在职医生时建一封不关联医生的感谢信。
func (s *thankYouService) Create(ctx context.Context, req *dto.CreateThankYouRequest) ([]model.ThankYouLetter, error) {
	if _, err := s.repo.Practice.GetByID(ctx, req.PracticeID); err != nil {
		return nil, translatePracticeErr(err)
	}

	reason := req.Reason
	if reason == "" {
		reason = model.ReasonOther
	}
	now := s.now()
	newLetter := func(providerID *uint64) model.ThankYouLetter {
		return model.ThankYouLetter{
			ProviderID: providerID,
			PracticeID: req.PracticeID,
			LunchID:    req.LunchID,
			Reason:     reason,
			Status:     model.ThankYouPending,
			CreatedAt:  now,
		}
	}

	var letters []model.ThankYouLetter
	if req.ProviderID != nil {
		provider, err := s.repo.Provider.GetByID(ctx, *req.ProviderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProviderNotFound
			}
			return nil, err
		}
		if provider.PracticeID == nil || *provider.PracticeID != req.PracticeID {
			return nil, ErrProviderNotInPractice
		}
		letters = append(letters, newLetter(&provider.ID))
	} else {
		providers, err := s.repo.Provider.ListByPractice(ctx, req.PracticeID, true)
		if err != nil {
			s.logger.Error("查询在职医生失败", zap.Uint64("practice_id", req.PracticeID), zap.Error(err))
			return nil, err
		}
		for i := range providers {
			letters = append(letters, newLetter(&providers[i].ID))
		}
		if len(letters) == 0 {
			letters = append(letters, newLetter(nil))
		}
	}

	if err := s.repo.ThankYou.BatchCreate(ctx, letters); err != nil {
		s.logger.Error("新增感谢信失败", zap.Uint64("practice_id", req.PracticeID), zap.Error(err))
		return nil, err
	}
	return letters, nil
}

// ────────────────────── List ──────────────────────

func (s *thankYouService) List(ctx context.Context, status string) ([]model.ThankYouLetter, error) {
	letters, err := s.repo.ThankYou.ListByStatus(ctx, status)
	if err != nil {
		s.logger.Error("查询感谢信失败", zap.String("status", status), zap.Error(err))
		return nil, err
	}
	return letters, nil
}

func (s *thankYouService) ListByPractice(ctx context.Context, practiceID uint64, status string) ([]model.ThankYouLetter, error) {
	letters, err := s.repo.ThankYou.ListByPractice(ctx, practiceID, status)
	if err != nil {
		s.logger.Error("查询诊所感谢信失败", zap.Uint64("practice_id", practiceID), zap.Error(err))
		return nil, err
	}
	return letters, nil
}

// ────────────────────── MarkMailed ──────────────────────

// MarkMailed 仅 Pending 的感谢信会被更新，已寄出的保持原寄出日期
func (s *thankYouService) MarkMailed(ctx context.Context, req *dto.MarkMailedRequest) (*dto.MarkMailedResponse, error) {
	mailedAt, err := parseDateOr(req.DateMailed, s.now())
	if err != nil {
		return nil, err
	}
	n, err := s.repo.ThankYou.MarkMailed(ctx, req.IDs, mailedAt)
	if err != nil {
		s.logger.Error("标记感谢信已寄出失败", zap.Error(err))
		return nil, err
	}
	return &dto.MarkMailedResponse{Updated: n}, nil
}

func (s *thankYouService) MarkAllMailed(ctx context.Context) (*dto.MarkMailedResponse, error) {
	n, err := s.repo.ThankYou.MarkAllMailed(ctx, s.now())
	if err != nil {
		s.logger.Error("批量标记感谢信失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("全部待寄感谢信已标记寄出", zap.Int64("updated", n))
	return &dto.MarkMailedResponse{Updated: n}, nil
}
