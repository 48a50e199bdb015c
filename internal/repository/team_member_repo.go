package repository

import (
	"context"

	"gorm.io/gorm"

	"referral-outreach/backend/internal/model"
)

// TeamMemberRepository 团队成员数据访问接口
type TeamMemberRepository interface {
	Create(ctx context.Context, member *model.TeamMember) error
	GetByID(ctx context.Context, id uint64) (*model.TeamMember, error)
	GetByUsername(ctx context.Context, username string) (*model.TeamMember, error)
	Update(ctx context.Context, member *model.TeamMember) error
	List(ctx context.Context) ([]model.TeamMember, error)
}

// teamMemberRepo TeamMemberRepository 的 GORM 实现
type teamMemberRepo struct {
	db *gorm.DB
}

// NewTeamMemberRepo 创建 TeamMemberRepository 实例
func NewTeamMemberRepo(db *gorm.DB) TeamMemberRepository {
	return &teamMemberRepo{db: db}
}

func (r *teamMemberRepo) Create(ctx context.Context, member *model.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *teamMemberRepo) GetByID(ctx context.Context, id uint64) (*model.TeamMember, error) {
	var member model.TeamMember
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamMemberRepo) GetByUsername(ctx context.Context, username string) (*model.TeamMember, error) {
	var member model.TeamMember
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamMemberRepo) Update(ctx context.Context, member *model.TeamMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *teamMemberRepo) List(ctx context.Context) ([]model.TeamMember, error) {
	var members []model.TeamMember
	err := r.db.WithContext(ctx).Order("display_name ASC").Find(&members).Error
	return members, err
}
