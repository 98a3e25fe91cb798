package repository

import (
	"context"
	"errors"

	"PikaMatch/internal/model"

	"gorm.io/gorm"
)

// VoteRepository 投票流水仓储接口，只追加与按时间倒序查询
type VoteRepository interface {
	// Create 追加一条投票记录
	Create(ctx context.Context, vote *model.Vote) error
	// RecentByTimestampDesc 按投票时间倒序取前N条
	RecentByTimestampDesc(ctx context.Context, limit int) ([]*model.Vote, error)
	// LastByTimestampDesc 最近一条投票，空账本返回(nil, nil)
	LastByTimestampDesc(ctx context.Context) (*model.Vote, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository 创建VoteRepository实例
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Create(ctx context.Context, vote *model.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *voteRepository) RecentByTimestampDesc(ctx context.Context, limit int) ([]*model.Vote, error) {
	var votes []*model.Vote
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *voteRepository) LastByTimestampDesc(ctx context.Context) (*model.Vote, error) {
	var vote model.Vote
	err := r.db.WithContext(ctx).Order("timestamp DESC").First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}
