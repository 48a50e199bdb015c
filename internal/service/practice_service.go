package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

var (
	ErrPracticeNotFound     = errors.New("诊所不存在")
	ErrPracticeNameRequired = errors.New("诊所名称不能为空")
	ErrInvalidPhoneNumber   = errors.New("电话 / 传真号码无效，需为 10 位美国号码")
)

// recentContactsInDetail 诊所详情中展示的最近联系条数
const recentContactsInDetail = 10

// PracticeService 诊所业务接口
type PracticeService interface {
	Create(ctx context.Context, req *dto.CreatePracticeRequest) (*model.Practice, error)
	GetByID(ctx context.Context, id uint64) (*model.Practice, error)
	GetDetail(ctx context.Context, id uint64) (*dto.PracticeDetailResponse, error)
	List(ctx context.Context, req *dto.PracticeListRequest) ([]model.Practice, int64, error)
	Update(ctx context.Context, id uint64, req *dto.UpdatePracticeRequest) (*model.Practice, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (*model.Practice, error)
	RepairFaxEmails(ctx context.Context) (*dto.RepairFaxEmailsResponse, error)
	FillMissingFaxEmails(ctx context.Context) (int, error)
}

type practiceService struct {
	cfg        *config.OutreachConfig
	repo       *repository.Repository
	classifier *LocationClassifier
	scoring    ScoringService
	contacts   ContactService
	logger     *zap.Logger
}

// NewPracticeService 创建 PracticeService 实例
func NewPracticeService(
	cfg *config.OutreachConfig,
	repo *repository.Repository,
	classifier *LocationClassifier,
	scoring ScoringService,
	contacts ContactService,
	logger *zap.Logger,
) PracticeService {
	return &practiceService{
		cfg:        cfg,
		repo:       repo,
		classifier: classifier,
		scoring:    scoring,
		contacts:   contacts,
		logger:     logger,
	}
}

// formatPhone 将任意号码文本归一化为 NNN-NNN-NNNN；空输入返回空
func formatPhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	digits := NormalizeFaxDigits(raw)
	if digits == "" {
		return "", ErrInvalidPhoneNumber
	}
	return digits[:3] + "-" + digits[3:6] + "-" + digits[6:], nil
}

// applyAddress 地址变化时重新派生邮编与地区
func (s *practiceService) applyAddress(p *model.Practice, address string) {
	p.Address = strings.TrimSpace(address)
	p.ZipCode = ExtractZip(p.Address)
	p.LocationCategory = s.classifier.Classify(p.Address)
}

// applyFax 传真变化时重新派生传真邮箱
func (s *practiceService) applyFax(p *model.Practice, fax string) error {
	formatted, err := formatPhone(fax)
	if err != nil {
		return err
	}
	p.Fax = formatted
	p.FaxEmail = ""
	if formatted != "" {
		p.FaxEmail = ToVonageEmail(formatted, s.cfg.FaxEmailDomain)
	}
	return nil
}

// ────────────────────── Create ──────────────────────

func (s *practiceService) Create(ctx context.Context, req *dto.CreatePracticeRequest) (*model.Practice, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrPracticeNameRequired
	}

	practice := &model.Practice{
		Name:           name,
		Website:        strings.TrimSpace(req.Website),
		ContactPerson:  strings.TrimSpace(req.ContactPerson),
		Email:          strings.TrimSpace(req.Email),
		Status:         model.StatusActive,
		ReferralVolume: req.ReferralVolume,
		Notes:          req.Notes,
	}
	s.applyAddress(practice, req.Address)

	phone, err := formatPhone(req.Phone)
	if err != nil {
		return nil, err
	}
	practice.Phone = phone
	if err := s.applyFax(practice, req.Fax); err != nil {
		return nil, err
	}

	if err := s.repo.Practice.Create(ctx, practice); err != nil {
		s.logger.Error("创建诊所失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return practice, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *practiceService) GetByID(ctx context.Context, id uint64) (*model.Practice, error) {
	practice, err := s.repo.Practice.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPracticeNotFound
		}
		s.logger.Error("查询诊所失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return practice, nil
}

// ────────────────────── GetDetail ──────────────────────

func (s *practiceService) GetDetail(ctx context.Context, id uint64) (*dto.PracticeDetailResponse, error) {
	practice, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	providers, err := s.repo.Provider.ListByPractice(ctx, id, false)
	if err != nil {
		s.logger.Error("查询诊所医生失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	recent, err := s.repo.ContactLog.ListByPractice(ctx, id, recentContactsInDetail)
	if err != nil {
		s.logger.Error("查询诊所联系记录失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	score, err := s.scoring.Score(ctx, id)
	if err != nil {
		return nil, err
	}
	indicator, err := s.contacts.CallIndicator(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PracticeDetailResponse{
		Practice:       *practice,
		Providers:      providers,
		RecentContacts: recent,
		Score:          score,
		CallIndicator:  indicator,
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *practiceService) List(ctx context.Context, req *dto.PracticeListRequest) ([]model.Practice, int64, error) {
	practices, total, err := s.repo.Practice.List(ctx, repository.PracticeFilter{
		Status:   req.Status,
		Location: req.Location,
		Keyword:  strings.TrimSpace(req.Keyword),
		Offset:   req.GetOffset(),
		Limit:    req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询诊所列表失败", zap.Error(err))
		return nil, 0, err
	}
	return practices, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *practiceService) Update(ctx context.Context, id uint64, req *dto.UpdatePracticeRequest) (*model.Practice, error) {
	practice, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrPracticeNameRequired
		}
		practice.Name = name
	}
	if req.Address != nil && strings.TrimSpace(*req.Address) != practice.Address {
		s.applyAddress(practice, *req.Address)
	}
	if req.Phone != nil {
		phone, err := formatPhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		practice.Phone = phone
	}
	if req.Fax != nil {
		if err := s.applyFax(practice, *req.Fax); err != nil {
			return nil, err
		}
	}
	if req.Website != nil {
		practice.Website = strings.TrimSpace(*req.Website)
	}
	if req.ContactPerson != nil {
		practice.ContactPerson = strings.TrimSpace(*req.ContactPerson)
	}
	if req.Email != nil {
		practice.Email = strings.TrimSpace(*req.Email)
	}
	if req.ReferralVolume != nil {
		practice.ReferralVolume = *req.ReferralVolume
	}
	if req.Notes != nil {
		practice.Notes = *req.Notes
	}

	if err := s.repo.Practice.Update(ctx, practice); err != nil {
		s.logger.Error("更新诊所失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return practice, nil
}

// ────────────────────── UpdateStatus ──────────────────────

// UpdateStatus 诊所不做物理删除，停用即切换为 Inactive
func (s *practiceService) UpdateStatus(ctx context.Context, id uint64, status string) (*model.Practice, error) {
	practice, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if practice.Status == status {
		return practice, nil
	}

	practice.Status = status
	if err := s.repo.Practice.Update(ctx, practice); err != nil {
		s.logger.Error("更新诊所状态失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("诊所状态已变更", zap.Uint64("id", id), zap.String("status", status))
	return practice, nil
}

// ────────────────────── RepairFaxEmails ──────────────────────

// RepairFaxEmails 按传真号重新派生全部传真邮箱
//
// 与现值不同则覆盖；传真号无法归一化时清空邮箱并记入错误列表。
func (s *practiceService) RepairFaxEmails(ctx context.Context) (*dto.RepairFaxEmailsResponse, error) {
	practices, err := s.repo.Practice.ListWithFax(ctx)
	if err != nil {
		s.logger.Error("查询含传真号的诊所失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.RepairFaxEmailsResponse{Checked: len(practices)}
	for i := range practices {
		p := &practices[i]
		derived := ToVonageEmail(p.Fax, s.cfg.FaxEmailDomain)

		switch {
		case derived != "" && derived != p.FaxEmail:
			if err := s.repo.Practice.UpdateFaxEmail(ctx, p.ID, derived); err != nil {
				s.logger.Error("更新传真邮箱失败", zap.Uint64("id", p.ID), zap.Error(err))
				return nil, err
			}
			resp.Fixed++
		case derived == "":
			if p.FaxEmail != "" {
				if err := s.repo.Practice.UpdateFaxEmail(ctx, p.ID, ""); err != nil {
					s.logger.Error("清空传真邮箱失败", zap.Uint64("id", p.ID), zap.Error(err))
					return nil, err
				}
				resp.Cleared++
			}
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: could not parse fax '%s'", p.Name, p.Fax))
		}
	}

	s.logger.Info("传真邮箱修复完成",
		zap.Int("checked", resp.Checked),
		zap.Int("fixed", resp.Fixed),
		zap.Int("cleared", resp.Cleared),
		zap.Int("errors", len(resp.Errors)),
	)
	return resp, nil
}

// ────────────────────── FillMissingFaxEmails ──────────────────────

// FillMissingFaxEmails 只为"有传真号但无传真邮箱"的诊所补齐邮箱
func (s *practiceService) FillMissingFaxEmails(ctx context.Context) (int, error) {
	fixed, err := fillMissingFaxEmails(ctx, s.repo, s.cfg.FaxEmailDomain)
	if err != nil {
		s.logger.Error("补齐传真邮箱失败", zap.Error(err))
		return fixed, err
	}
	return fixed, nil
}

// fillMissingFaxEmails 导入后的一致性修补，repo 可为事务内 Repository
func fillMissingFaxEmails(ctx context.Context, repo *repository.Repository, domain string) (int, error) {
	practices, err := repo.Practice.ListWithFax(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for i := range practices {
		p := &practices[i]
		if p.FaxEmail != "" {
			continue
		}
		derived := ToVonageEmail(p.Fax, domain)
		if derived == "" {
			continue
		}
		if err := repo.Practice.UpdateFaxEmail(ctx, p.ID, derived); err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, nil
}

// translatePracticeErr 将 gorm.ErrRecordNotFound 转换为 ErrPracticeNotFound
func translatePracticeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPracticeNotFound
	}
	return err
}
