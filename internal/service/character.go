package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"PikaMatch/internal/errs"
	"PikaMatch/internal/interfaces"
	"PikaMatch/internal/model"
	"PikaMatch/internal/repository"
	"PikaMatch/internal/utils/retry"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AdapterProvider 适配器查找能力，由adapter.SourceRegistry实现
type AdapterProvider interface {
	ListRegisteredSources() []model.SourceType
	GetAdapter(source model.SourceType) (interfaces.SourceAdapter, error)
}

// CharacterService 角色核心服务：多来源随机获取（故障转移）、
// 按名查询、计数累加、查找或创建
type CharacterService struct {
	repo     repository.CharacterRepository
	provider AdapterProvider
	executor *retry.Executor
	logger   *logrus.Logger
	// 每次请求用seedFn构造独立的随机源，避免并发请求共享RNG状态
	seedFn func() int64
}

// NewCharacterService 创建CharacterService
func NewCharacterService(repo repository.CharacterRepository, provider AdapterProvider, executor *retry.Executor, logger *logrus.Logger) *CharacterService {
	return &CharacterService{
		repo:     repo,
		provider: provider,
		executor: executor,
		logger:   logger,
		seedFn:   func() int64 { return time.Now().UnixNano() },
	}
}

// GetRandomCharacter 随机打乱来源顺序后逐个尝试，取首个成功结果。
// 单个来源失败只记录并继续，全部失败返回AllSourcesUnavailableError。
// 结果仅做展示，不落库
func (s *CharacterService) GetRandomCharacter(ctx context.Context) (*model.NormalizedCharacter, error) {
	sources := s.provider.ListRegisteredSources()
	if len(sources) == 0 {
		return nil, &errs.AllSourcesUnavailableError{Cause: errors.New("没有可用的来源适配器")}
	}

	// 本次调用独立洗牌，调用间无顺序关联
	rng := rand.New(rand.NewSource(s.seedFn()))
	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})

	var lastErr error
	for _, source := range sources {
		sourceAdapter, err := s.provider.GetAdapter(source)
		if err != nil {
			lastErr = err
			continue
		}

		character, err := s.executor.Do(ctx, func() (*model.NormalizedCharacter, error) {
			return sourceAdapter.FetchRandom(ctx)
		}, string(source))
		if err != nil {
			s.logger.Warnf("来源%s获取角色失败，尝试下一个: %v", source, err)
			lastErr = err
			continue
		}

		character.ApplyDefaults()
		s.logger.Infof("从%s获取随机角色成功: %s", source, character.Name)
		return character, nil
	}

	s.logger.Errorf("所有来源均无法提供角色: %v", lastErr)
	return nil, &errs.AllSourcesUnavailableError{Cause: lastErr}
}

// GetFromSource 指定单一来源按名称或ID获取，不做故障转移
func (s *CharacterService) GetFromSource(ctx context.Context, source model.SourceType, nameOrID string) (*model.NormalizedCharacter, error) {
	if !source.Valid() {
		return nil, errs.InvalidArgumentf("unknown source: %s", source)
	}

	sourceAdapter, err := s.provider.GetAdapter(source)
	if err != nil {
		return nil, &errs.ExternalUnavailableError{API: string(source), Cause: err}
	}

	character, err := s.executor.Do(ctx, func() (*model.NormalizedCharacter, error) {
		return sourceAdapter.FetchByNameOrID(ctx, nameOrID)
	}, string(source))
	if err != nil {
		return nil, err
	}

	character.ApplyDefaults()
	return character, nil
}

// GetCharacterByName 在库内按名称查找（大小写不敏感），不回源
func (s *CharacterService) GetCharacterByName(ctx context.Context, name string) (*model.Character, error) {
	character, err := s.repo.FindByNameIgnoreCase(ctx, name)
	if err != nil {
		return nil, err
	}
	if character == nil {
		s.logger.Warnf("库中不存在角色: %s", name)
		return nil, errs.NotFoundf("Character not found: %s", name)
	}
	return character, nil
}

// FindOrCreateCharacter 按自然键查找，未命中则创建计数全零的新角色。
// 并发创建撞唯一索引时视为他人已建成，改为读取既有记录返回
func (s *CharacterService) FindOrCreateCharacter(ctx context.Context, req *model.VoteRequest) (*model.Character, error) {
	existing, err := s.repo.FindByExternalIDAndSource(ctx, req.CharacterID, req.CharacterSource)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	character := &model.Character{
		CharacterUUID: uuid.NewString(),
		ExternalID:    req.CharacterID,
		Source:        req.CharacterSource,
		Name:          req.CharacterName,
		ImageURL:      req.ImageURL,
		Description:   req.Description,
	}

	if err := s.repo.Create(ctx, character); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Infof("角色%s(%s)并发创建冲突，读取既有记录", req.CharacterID, req.CharacterSource)
			winner, findErr := s.repo.FindByExternalIDAndSource(ctx, req.CharacterID, req.CharacterSource)
			if findErr != nil {
				return nil, findErr
			}
			if winner == nil {
				return nil, err
			}
			return winner, nil
		}
		return nil, err
	}

	s.logger.Infof("创建新角色成功: %s（ID: %d）", character.Name, character.ID)
	return character, nil
}

// AddLikes 按名称给角色累加点赞数，amount必须≥1
func (s *CharacterService) AddLikes(ctx context.Context, name string, amount int64) (*model.Character, error) {
	return s.addCounters(ctx, name, amount, 0)
}

// AddDislikes 按名称给角色累加点踩数，amount必须≥1
func (s *CharacterService) AddDislikes(ctx context.Context, name string, amount int64) (*model.Character, error) {
	return s.addCounters(ctx, name, 0, amount)
}

// addCounters 管理性计数累加路径，不产生投票流水
func (s *CharacterService) addCounters(ctx context.Context, name string, likes, dislikes int64) (*model.Character, error) {
	if likes+dislikes < 1 {
		return nil, errs.InvalidArgumentf("amount must be at least 1")
	}

	character, err := s.GetCharacterByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementCounters(ctx, character.ID, likes, dislikes); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, character.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errs.NotFoundf("Character not found: %s", name)
	}

	s.logger.Infof("角色%s计数更新: %d likes, %d dislikes, %d total",
		updated.Name, updated.TotalLikes, updated.TotalDislikes, updated.TotalVotes)
	return updated, nil
}
