package service

import (
	"context"
	"encoding/json"
	"time"

	"PikaMatch/internal/errs"
	"PikaMatch/internal/model"
	"PikaMatch/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// VoteService 投票服务：写入投票流水并驱动角色计数变更
type VoteService struct {
	voteRepo         repository.VoteRepository
	characterRepo    repository.CharacterRepository
	characterService *CharacterService
	logger           *logrus.Logger
}

// NewVoteService 创建VoteService
func NewVoteService(voteRepo repository.VoteRepository, characterRepo repository.CharacterRepository, characterService *CharacterService, logger *logrus.Logger) *VoteService {
	return &VoteService{
		voteRepo:         voteRepo,
		characterRepo:    characterRepo,
		characterService: characterService,
		logger:           logger,
	}
}

// CreateVote 查找或创建角色→原子累加对应计数→追加投票流水。
// 计数更新与流水写入不构成整体事务，但计数自身的变更是原子的
func (s *VoteService) CreateVote(ctx context.Context, req *model.VoteRequest) (*model.VoteResponse, error) {
	if !req.VoteType.Valid() {
		return nil, errs.InvalidArgumentf("vote type must be 'like' or 'dislike'")
	}
	if !req.CharacterSource.Valid() {
		return nil, errs.InvalidArgumentf("unknown source: %s", req.CharacterSource)
	}

	character, err := s.characterService.FindOrCreateCharacter(ctx, req)
	if err != nil {
		return nil, err
	}

	var likes, dislikes int64
	if req.VoteType == model.VoteLike {
		likes = 1
	} else {
		dislikes = 1
	}
	if err := s.characterRepo.IncrementCounters(ctx, character.ID, likes, dislikes); err != nil {
		return nil, err
	}

	updated, err := s.characterRepo.FindByID(ctx, character.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errs.NotFoundf("Character not found: %s", req.CharacterName)
	}

	snapshot, err := json.Marshal(model.CharacterSnapshot{
		Name:        updated.Name,
		Source:      updated.Source,
		ImageURL:    updated.ImageURL,
		Description: updated.Description,
	})
	if err != nil {
		return nil, err
	}

	vote := &model.Vote{
		VoteUUID:          uuid.NewString(),
		CharacterID:       updated.ID,
		VoteType:          req.VoteType,
		Timestamp:         time.Now(),
		CharacterSnapshot: snapshot,
	}
	if err := s.voteRepo.Create(ctx, vote); err != nil {
		return nil, err
	}

	s.logger.Infof("投票创建成功: %s %s（角色计数: %d likes / %d dislikes / %d total）",
		updated.Name, vote.VoteType, updated.TotalLikes, updated.TotalDislikes, updated.TotalVotes)

	return buildVoteResponse(vote, updated), nil
}

// GetRecentVotes 按投票时间倒序取前limit条，并补齐各自的角色信息
func (s *VoteService) GetRecentVotes(ctx context.Context, limit int) ([]*model.VoteResponse, error) {
	if limit < 1 {
		return nil, errs.InvalidArgumentf("limit must be at least 1")
	}

	votes, err := s.voteRepo.RecentByTimestampDesc(ctx, limit)
	if err != nil {
		return nil, err
	}

	// 批量取角色，避免逐条回查
	ids := make([]uint64, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, v.CharacterID)
	}
	characters, err := s.characterRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.Character, len(characters))
	for _, ch := range characters {
		byID[ch.ID] = ch
	}

	responses := make([]*model.VoteResponse, 0, len(votes))
	for _, v := range votes {
		responses = append(responses, buildVoteResponse(v, byID[v.CharacterID]))
	}
	return responses, nil
}

// GetLastEvaluated 最近一次投票；账本为空属正常状态，返回(nil, nil)
func (s *VoteService) GetLastEvaluated(ctx context.Context) (*model.VoteResponse, error) {
	vote, err := s.voteRepo.LastByTimestampDesc(ctx)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		s.logger.Info("账本中暂无投票记录")
		return nil, nil
	}

	character, err := s.characterRepo.FindByID(ctx, vote.CharacterID)
	if err != nil {
		return nil, err
	}
	return buildVoteResponse(vote, character), nil
}

// buildVoteResponse 组装投票视图。角色记录不可达时回退到投票时刻的快照，
// 弱引用允许角色独立于流水存在
func buildVoteResponse(vote *model.Vote, character *model.Character) *model.VoteResponse {
	resp := &model.VoteResponse{
		VoteID:    vote.VoteUUID,
		VoteType:  vote.VoteType,
		Timestamp: vote.Timestamp,
	}

	if character != nil {
		resp.CharacterID = character.CharacterUUID
		resp.CharacterName = character.Name
		resp.CharacterSource = character.Source
		resp.ImageURL = character.ImageURL
		resp.Description = character.Description
		return resp
	}

	var snapshot model.CharacterSnapshot
	if err := json.Unmarshal(vote.CharacterSnapshot, &snapshot); err == nil {
		resp.CharacterName = snapshot.Name
		resp.CharacterSource = snapshot.Source
		resp.ImageURL = snapshot.ImageURL
		resp.Description = snapshot.Description
	}
	return resp
}
