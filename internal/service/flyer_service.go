package service

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
	"referral-outreach/backend/pkg/blobstore"
	pkgerrors "referral-outreach/backend/pkg/errors"
	"referral-outreach/backend/pkg/transport"
)

var (
	ErrFlyerEmpty        = errors.New("传单文件为空")
	ErrNoFlyerRecipients = errors.New("没有可发送的诊所")
)

const (
	defaultFlyerSubject = "Fax"
	missingFaxEmailMsg  = "No Vonage email configured"
)

// FlyerService 传单发送业务接口
type FlyerService interface {
	Send(ctx context.Context, in *dto.SendFlyerInput) (*dto.SendFlyerResponse, error)
	ListCampaigns(ctx context.Context, limit int) ([]model.FlyerCampaignSummary, error)
	ListRecipients(ctx context.Context, campaignID uint64) ([]model.FlyerRecipient, error)
	DueForFlyer(ctx context.Context) ([]dto.FlyerDueItem, error)
}

type flyerService struct {
	cfg    *config.OutreachConfig
	repo   *repository.Repository
	store  blobstore.Store
	sender transport.Sender
	now    Clock
	logger *zap.Logger
}

// NewFlyerService 创建 FlyerService 实例；store / sender 为 nil 时发送不可用
func NewFlyerService(
	cfg *config.OutreachConfig,
	repo *repository.Repository,
	store blobstore.Store,
	sender transport.Sender,
	now Clock,
	logger *zap.Logger,
) FlyerService {
	return &flyerService{cfg: cfg, repo: repo, store: store, sender: sender, now: now, logger: logger}
}

// selectRecipients 指定诊所 ID 时按 ID 取；否则取该地区全部有传真邮箱的在册诊所
func (s *flyerService) selectRecipients(ctx context.Context, in *dto.SendFlyerInput) ([]model.Practice, error) {
	if len(in.PracticeIDs) > 0 {
		practices := make([]model.Practice, 0, len(in.PracticeIDs))
		for _, id := range lo.Uniq(in.PracticeIDs) {
			p, err := s.repo.Practice.GetByID(ctx, id)
			if err != nil {
				return nil, translatePracticeErr(err)
			}
			practices = append(practices, *p)
		}
		return practices, nil
	}

	all, _, err := s.repo.Practice.List(ctx, repository.PracticeFilter{
		Status:   model.StatusActive,
		Location: in.Location,
	})
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(p model.Practice, _ int) bool { return p.FaxEmail != "" }), nil
}

// ────────────────────── Send ──────────────────────

// Send 上传传单并逐个诊所投递到传真邮箱
//
// 每个收件结果都会落库；单个诊所投递失败不影响其余诊所。
func (s *flyerService) Send(ctx context.Context, in *dto.SendFlyerInput) (*dto.SendFlyerResponse, error) {
	if len(in.Data) == 0 {
		return nil, ErrFlyerEmpty
	}
	if s.store == nil {
		return nil, pkgerrors.ErrStorageDisabled
	}
	if s.sender == nil {
		return nil, pkgerrors.ErrTransportDisabled
	}

	practices, err := s.selectRecipients(ctx, in)
	if err != nil {
		s.logger.Error("选择传单收件诊所失败", zap.Error(err))
		return nil, err
	}
	if len(practices) == 0 {
		return nil, ErrNoFlyerRecipients
	}

	now := s.now()
	name := path.Base(strings.TrimSpace(in.FlyerName))
	key := path.Join("flyers", now.Format("20060102"), uuid.NewString()+"-"+name)
	if err := s.store.Save(ctx, key, in.Data, in.ContentType); err != nil {
		s.logger.Error("上传传单失败", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	sentBy := strings.TrimSpace(in.SentBy)
	if sentBy == "" {
		sentBy = s.cfg.DefaultTeamMember
	}
	campaign := &model.FlyerCampaign{
		SentDate:  now,
		FlyerName: name,
		FlyerKey:  key,
		SentBy:    sentBy,
	}
	if err := s.repo.Flyer.CreateCampaign(ctx, campaign); err != nil {
		s.logger.Error("创建传单批次失败", zap.Error(err))
		return nil, err
	}

	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = defaultFlyerSubject
	}

	resp := &dto.SendFlyerResponse{CampaignID: campaign.ID, FlyerKey: key}
	for i := range practices {
		p := &practices[i]
		recipient := model.FlyerRecipient{
			CampaignID:  campaign.ID,
			PracticeID:  p.ID,
			VonageEmail: p.FaxEmail,
			Status:      model.FlyerSent,
		}

		if p.FaxEmail == "" {
			recipient.Status = model.FlyerFailed
			recipient.ErrorMessage = missingFaxEmailMsg
		} else if err := s.sender.Send(ctx, transport.Message{
			To:             p.FaxEmail,
			Subject:        subject,
			Body:           in.Body,
			AttachmentKey:  key,
			AttachmentName: name,
		}); err != nil {
			recipient.Status = model.FlyerFailed
			recipient.ErrorMessage = err.Error()
			s.logger.Warn("传单投递失败", zap.Uint64("practice_id", p.ID), zap.Error(err))
		}

		if err := s.repo.Flyer.CreateRecipient(ctx, &recipient); err != nil {
			s.logger.Error("记录传单收件结果失败", zap.Uint64("practice_id", p.ID), zap.Error(err))
			return nil, err
		}

		if recipient.Status == model.FlyerSent {
			resp.Sent++
			entry := &model.ContactLog{
				PracticeID:  p.ID,
				ContactType: model.ContactFaxSent,
				ContactDate: &now,
				TeamMember:  sentBy,
				Outcome:     model.FlyerSent,
				Purpose:     "Flyer",
				Notes:       "Flyer: " + name,
			}
			if err := appendContact(ctx, s.repo, entry); err != nil {
				s.logger.Error("写入传真联系记录失败", zap.Uint64("practice_id", p.ID), zap.Error(err))
				return nil, err
			}
		} else {
			resp.Failed++
		}
		resp.Recipients = append(resp.Recipients, recipient)
	}

	s.logger.Info("传单批次发送完成",
		zap.Uint64("campaign_id", campaign.ID),
		zap.Int("sent", resp.Sent),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ────────────────────── ListCampaigns ──────────────────────

func (s *flyerService) ListCampaigns(ctx context.Context, limit int) ([]model.FlyerCampaignSummary, error) {
	campaigns, err := s.repo.Flyer.ListCampaigns(ctx, limit)
	if err != nil {
		s.logger.Error("查询传单批次失败", zap.Error(err))
		return nil, err
	}
	return campaigns, nil
}

func (s *flyerService) ListRecipients(ctx context.Context, campaignID uint64) ([]model.FlyerRecipient, error) {
	recipients, err := s.repo.Flyer.ListRecipients(ctx, campaignID)
	if err != nil {
		s.logger.Error("查询传单收件记录失败", zap.Uint64("campaign_id", campaignID), zap.Error(err))
		return nil, err
	}
	return recipients, nil
}

// ────────────────────── DueForFlyer ──────────────────────

// DueForFlyer 有传真邮箱、且从未成功发送或距上次发送已满 flyer_send_days 的在册诊所
//
// 从未发送的排在最前，其余按间隔天数倒序。
func (s *flyerService) DueForFlyer(ctx context.Context) ([]dto.FlyerDueItem, error) {
	practices, _, err := s.repo.Practice.List(ctx, repository.PracticeFilter{Status: model.StatusActive})
	if err != nil {
		s.logger.Error("查询在册诊所失败", zap.Error(err))
		return nil, err
	}
	lastSent, err := s.repo.Flyer.LastSentByPractice(ctx)
	if err != nil {
		s.logger.Error("查询诊所最近传单失败", zap.Error(err))
		return nil, err
	}
	byPractice := lo.SliceToMap(lastSent, func(l repository.PracticeLastFlyer) (uint64, repository.PracticeLastFlyer) {
		return l.PracticeID, l
	})

	now := s.now()
	items := []dto.FlyerDueItem{}
	for _, p := range practices {
		if p.FaxEmail == "" {
			continue
		}
		item := dto.FlyerDueItem{PracticeID: p.ID, PracticeName: p.Name, FaxEmail: p.FaxEmail}
		if l, ok := byPractice[p.ID]; ok {
			days := daysSince(now, l.LastSent)
			if days < s.cfg.FlyerSendDays {
				continue
			}
			sent := l.LastSent
			item.LastSent = &sent
			item.DaysSince = &days
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DaysSince, items[j].DaysSince
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return *a > *b
	})
	return items, nil
}
