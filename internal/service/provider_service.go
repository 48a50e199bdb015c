package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

var (
	ErrProviderNotFound     = errors.New("医生不存在")
	ErrProviderNameTooShort = errors.New("医生姓名至少 2 个字符")
)

// dateLikeName 导入时被误识别为医生名的日期文本
var dateLikeName = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{4}-`)

// ProviderService 医生业务接口
type ProviderService interface {
	Create(ctx context.Context, req *dto.CreateProviderRequest) (*model.Provider, error)
	GetByID(ctx context.Context, id uint64) (*model.Provider, error)
	List(ctx context.Context, req *dto.ProviderListRequest) ([]model.Provider, int64, error)
	ListByPractice(ctx context.Context, practiceID uint64, activeOnly bool) ([]model.Provider, error)
	Update(ctx context.Context, id uint64, req *dto.UpdateProviderRequest) (*model.Provider, error)
	Move(ctx context.Context, id uint64, req *dto.MoveProviderRequest) (*model.Provider, error)
	History(ctx context.Context, id uint64) ([]model.ProviderMove, error)
	Delete(ctx context.Context, id uint64) error
	CleanupDateLike(ctx context.Context, del bool) (*dto.CleanupProvidersResponse, error)
}

type providerService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewProviderService 创建 ProviderService 实例
func NewProviderService(repo *repository.Repository, now Clock, logger *zap.Logger) ProviderService {
	return &providerService{repo: repo, now: now, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *providerService) Create(ctx context.Context, req *dto.CreateProviderRequest) (*model.Provider, error) {
	name := strings.TrimSpace(req.Name)
	if len([]rune(name)) < 2 {
		return nil, ErrProviderNameTooShort
	}
	if req.PracticeID != nil {
		if _, err := s.repo.Practice.GetByID(ctx, *req.PracticeID); err != nil {
			return nil, translatePracticeErr(err)
		}
	}

	provider := &model.Provider{
		Name:       name,
		PracticeID: req.PracticeID,
		Status:     model.StatusActive,
	}
	if err := s.repo.Provider.Create(ctx, provider); err != nil {
		s.logger.Error("创建医生失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return provider, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *providerService) GetByID(ctx context.Context, id uint64) (*model.Provider, error) {
	provider, err := s.repo.Provider.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		s.logger.Error("查询医生失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return provider, nil
}

// ────────────────────── List ──────────────────────

func (s *providerService) List(ctx context.Context, req *dto.ProviderListRequest) ([]model.Provider, int64, error) {
	providers, total, err := s.repo.Provider.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询医生列表失败", zap.Error(err))
		return nil, 0, err
	}
	return providers, total, nil
}

func (s *providerService) ListByPractice(ctx context.Context, practiceID uint64, activeOnly bool) ([]model.Provider, error) {
	if _, err := s.repo.Practice.GetByID(ctx, practiceID); err != nil {
		return nil, translatePracticeErr(err)
	}
	providers, err := s.repo.Provider.ListByPractice(ctx, practiceID, activeOnly)
	if err != nil {
		s.logger.Error("查询诊所医生失败", zap.Uint64("practice_id", practiceID), zap.Error(err))
		return nil, err
	}
	return providers, nil
}

// ────────────────────── Update ──────────────────────

func (s *providerService) Update(ctx context.Context, id uint64, req *dto.UpdateProviderRequest) (*model.Provider, error) {
	provider, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len([]rune(name)) < 2 {
			return nil, ErrProviderNameTooShort
		}
		provider.Name = name
	}
	if req.Status != nil {
		provider.Status = *req.Status
		if provider.Status == model.StatusActive {
			provider.InactiveReason = ""
		}
	}
	if req.InactiveReason != nil && provider.Status == model.StatusInactive {
		provider.InactiveReason = strings.TrimSpace(*req.InactiveReason)
	}

	if err := s.repo.Provider.Update(ctx, provider); err != nil {
		s.logger.Error("更新医生失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return provider, nil
}

// ────────────────────── Move ──────────────────────

// Move 调动医生到新诊所（或脱离诊所），并追加一条调动记录
func (s *providerService) Move(ctx context.Context, id uint64, req *dto.MoveProviderRequest) (*model.Provider, error) {
	provider, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.NewPracticeID != nil {
		if _, err := s.repo.Practice.GetByID(ctx, *req.NewPracticeID); err != nil {
			return nil, translatePracticeErr(err)
		}
	}

	oldPracticeID := provider.PracticeID
	provider.PracticeID = req.NewPracticeID
	provider.Practice = nil

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Provider.Update(ctx, provider); err != nil {
			s.logger.Error("更新医生所属诊所失败", zap.Uint64("id", id), zap.Error(err))
			return err
		}
		move := &model.ProviderMove{
			ProviderID:    provider.ID,
			OldPracticeID: oldPracticeID,
			NewPracticeID: req.NewPracticeID,
			MoveDate:      s.now(),
			Notes:         strings.TrimSpace(req.Notes),
		}
		if err := txRepo.ProviderMove.Create(ctx, move); err != nil {
			s.logger.Error("写入调动记录失败", zap.Uint64("id", id), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("医生已调动", zap.Uint64("id", id))
	return provider, nil
}

// ────────────────────── History ──────────────────────

// History 调动记录；医生已删除时仍可按 ID 查询
func (s *providerService) History(ctx context.Context, id uint64) ([]model.ProviderMove, error) {
	moves, err := s.repo.ProviderMove.ListByProvider(ctx, id)
	if err != nil {
		s.logger.Error("查询调动记录失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return moves, nil
}

// ────────────────────── Delete ──────────────────────

func (s *providerService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Provider.Delete(ctx, id); err != nil {
		s.logger.Error("删除医生失败", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── CleanupDateLike ──────────────────────

// CleanupDateLike 找出名字为日期样式的医生；del 为 false 时只预览
func (s *providerService) CleanupDateLike(ctx context.Context, del bool) (*dto.CleanupProvidersResponse, error) {
	all, err := s.repo.Provider.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询全部医生失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.CleanupProvidersResponse{Matched: []model.Provider{}}
	for _, p := range all {
		if dateLikeName.MatchString(strings.TrimSpace(p.Name)) {
			resp.Matched = append(resp.Matched, p)
		}
	}
	if !del {
		return resp, nil
	}

	for _, p := range resp.Matched {
		if err := s.repo.Provider.Delete(ctx, p.ID); err != nil {
			s.logger.Error("删除日期样式医生失败", zap.Uint64("id", p.ID), zap.Error(err))
			return resp, err
		}
		resp.Deleted++
	}
	s.logger.Info("日期样式医生已清理", zap.Int("deleted", resp.Deleted))
	return resp, nil
}
