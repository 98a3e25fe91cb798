package service

import (
	"context"

	"PikaMatch/internal/errs"
	"PikaMatch/internal/model"
	"PikaMatch/internal/repository"

	"github.com/sirupsen/logrus"
)

// StatsService 排行统计服务
type StatsService struct {
	repo   repository.CharacterRepository
	logger *logrus.Logger
}

// NewStatsService 创建StatsService
func NewStatsService(repo repository.CharacterRepository, logger *logrus.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger}
}

// GetMostLiked 点赞数最高的角色，空库返回ErrNoData
func (s *StatsService) GetMostLiked(ctx context.Context) (*model.Character, error) {
	character, err := s.repo.FirstByLikesDesc(ctx)
	if err != nil {
		return nil, err
	}
	if character == nil {
		s.logger.Warn("库中暂无角色数据")
		return nil, errs.ErrNoData
	}
	s.logger.Infof("最受欢迎角色: %s（%d likes）", character.Name, character.TotalLikes)
	return character, nil
}

// GetMostDisliked 点踩数最高的角色，空库返回ErrNoData
func (s *StatsService) GetMostDisliked(ctx context.Context) (*model.Character, error) {
	character, err := s.repo.FirstByDislikesDesc(ctx)
	if err != nil {
		return nil, err
	}
	if character == nil {
		s.logger.Warn("库中暂无角色数据")
		return nil, errs.ErrNoData
	}
	s.logger.Infof("最不受欢迎角色: %s（%d dislikes）", character.Name, character.TotalDislikes)
	return character, nil
}

// GetTopLiked 按点赞数降序取前limit个，平局顺序由存储决定
func (s *StatsService) GetTopLiked(ctx context.Context, limit int) ([]*model.Character, error) {
	if limit < 1 {
		return nil, errs.InvalidArgumentf("limit must be at least 1")
	}
	return s.repo.TopByLikesDesc(ctx, limit)
}

// GetTopDisliked 按点踩数降序取前limit个
func (s *StatsService) GetTopDisliked(ctx context.Context, limit int) ([]*model.Character, error) {
	if limit < 1 {
		return nil, errs.InvalidArgumentf("limit must be at least 1")
	}
	return s.repo.TopByDislikesDesc(ctx, limit)
}
