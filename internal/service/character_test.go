package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"PikaMatch/internal/errs"
	"PikaMatch/internal/interfaces"
	"PikaMatch/internal/model"
	"PikaMatch/internal/repository"
	"PikaMatch/internal/utils/retry"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Character{}, &model.Vote{}))
	return db
}

func newTestExecutor() *retry.Executor {
	return &retry.Executor{MaxAttempts: 3, InitialBackoff: time.Millisecond, Logger: newTestLogger()}
}

// fakeAdapter 可编排返回值的来源适配器
type fakeAdapter struct {
	source    model.SourceType
	character *model.NormalizedCharacter
	err       error
	calls     int
}

func (f *fakeAdapter) GetSource() model.SourceType { return f.source }

func (f *fakeAdapter) FetchRandom(ctx context.Context) (*model.NormalizedCharacter, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.character, nil
}

func (f *fakeAdapter) FetchByNameOrID(ctx context.Context, nameOrID string) (*model.NormalizedCharacter, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.character, nil
}

// fakeProvider 固定适配器集合的AdapterProvider实现
type fakeProvider struct {
	adapters map[model.SourceType]*fakeAdapter
}

func (p *fakeProvider) ListRegisteredSources() []model.SourceType {
	sources := make([]model.SourceType, 0, len(p.adapters))
	for _, s := range model.AllSources() {
		if _, ok := p.adapters[s]; ok {
			sources = append(sources, s)
		}
	}
	return sources
}

func (p *fakeProvider) GetAdapter(source model.SourceType) (interfaces.SourceAdapter, error) {
	a, ok := p.adapters[source]
	if !ok {
		return nil, fmt.Errorf("未注册的来源: %s", source)
	}
	return a, nil
}

func newCharacterServiceWithProvider(t *testing.T, provider AdapterProvider) *CharacterService {
	repo := repository.NewCharacterRepository(newTestDB(t))
	return NewCharacterService(repo, provider, newTestExecutor(), newTestLogger())
}

func TestGetRandomCharacterFailover(t *testing.T) {
	// 两个来源持续失败，第三个正常，应故障转移到正常来源
	down := errors.New("connection refused")
	provider := &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{
		model.SourcePokemon:      {source: model.SourcePokemon, err: down},
		model.SourceRickAndMorty: {source: model.SourceRickAndMorty, err: down},
		model.SourceSuperHero: {source: model.SourceSuperHero, character: &model.NormalizedCharacter{
			ExternalID: "70", Name: "Batman", Source: model.SourceSuperHero,
			ImageURL: "https://img.example/70.jpg", Description: "Bruce Wayne",
		}},
	}}

	svc := newCharacterServiceWithProvider(t, provider)
	character, err := svc.GetRandomCharacter(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Batman", character.Name)
	assert.Equal(t, model.SourceSuperHero, character.Source)
}

func TestGetRandomCharacterAllSourcesDown(t *testing.T) {
	down := &errs.TransientError{Cause: errors.New("upstream 503")}
	provider := &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{
		model.SourcePokemon:      {source: model.SourcePokemon, err: down},
		model.SourceRickAndMorty: {source: model.SourceRickAndMorty, err: down},
		model.SourceSuperHero:    {source: model.SourceSuperHero, err: down},
	}}

	svc := newCharacterServiceWithProvider(t, provider)
	_, err := svc.GetRandomCharacter(context.Background())

	require.Error(t, err)
	var allDown *errs.AllSourcesUnavailableError
	require.ErrorAs(t, err, &allDown)

	// 瞬时失败每个来源都应重试满3次
	for _, a := range provider.adapters {
		assert.Equal(t, 3, a.calls)
	}
}

func TestGetRandomCharacterShuffleCoversAllSources(t *testing.T) {
	// 固定不同的种子应产生不同的来源顺序；逐个种子验证首选来源可变
	firstPicked := make(map[model.SourceType]bool)
	for seed := int64(0); seed < 20; seed++ {
		provider := &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{}}
		for _, s := range model.AllSources() {
			s := s
			provider.adapters[s] = &fakeAdapter{source: s, character: &model.NormalizedCharacter{
				ExternalID: "1", Name: string(s), Source: s,
			}}
		}

		svc := newCharacterServiceWithProvider(t, provider)
		svc.seedFn = func() int64 { return seed }

		character, err := svc.GetRandomCharacter(context.Background())
		require.NoError(t, err)
		firstPicked[character.Source] = true
	}

	// 不同种子下首选来源应当变化
	assert.Greater(t, len(firstPicked), 1)
}

func TestGetRandomCharacterAppliesDefaults(t *testing.T) {
	provider := &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{
		model.SourcePokemon: {source: model.SourcePokemon, character: &model.NormalizedCharacter{
			ExternalID: "132", Source: model.SourcePokemon,
		}},
	}}

	svc := newCharacterServiceWithProvider(t, provider)
	character, err := svc.GetRandomCharacter(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.DefaultName, character.Name)
	assert.Equal(t, model.DefaultImageURL, character.ImageURL)
	assert.Equal(t, model.DefaultDescription, character.Description)
}

func TestGetFromSourceNoFailover(t *testing.T) {
	down := &errs.TransientError{Cause: errors.New("upstream 503")}
	healthy := &fakeAdapter{source: model.SourceRickAndMorty, character: &model.NormalizedCharacter{
		ExternalID: "1", Name: "Rick Sanchez", Source: model.SourceRickAndMorty,
	}}
	provider := &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{
		model.SourcePokemon:      {source: model.SourcePokemon, err: down},
		model.SourceRickAndMorty: healthy,
	}}

	svc := newCharacterServiceWithProvider(t, provider)

	// 指定来源失败时不转移到其他来源
	_, err := svc.GetFromSource(context.Background(), model.SourcePokemon, "25")
	require.Error(t, err)
	var unavailable *errs.ExternalUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 0, healthy.calls)

	character, err := svc.GetFromSource(context.Background(), model.SourceRickAndMorty, "1")
	require.NoError(t, err)
	assert.Equal(t, "Rick Sanchez", character.Name)
}

func TestGetFromSourceInvalidSource(t *testing.T) {
	svc := newCharacterServiceWithProvider(t, &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{}})

	_, err := svc.GetFromSource(context.Background(), "narnia", "1")

	var invalid *errs.InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
}

func TestFindOrCreateCharacter(t *testing.T) {
	svc := newCharacterServiceWithProvider(t, &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{}})
	ctx := context.Background()

	req := &model.VoteRequest{
		CharacterID:     "25",
		CharacterName:   "Pikachu",
		CharacterSource: model.SourcePokemon,
		VoteType:        model.VoteLike,
		ImageURL:        "https://img.example/25.png",
	}

	created, err := svc.FindOrCreateCharacter(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.CharacterUUID)
	assert.Zero(t, created.TotalVotes)

	// 二次调用命中既有记录
	again, err := svc.FindOrCreateCharacter(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestFindOrCreateCharacterConcurrent(t *testing.T) {
	svc := newCharacterServiceWithProvider(t, &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{}})
	ctx := context.Background()

	req := &model.VoteRequest{
		CharacterID:     "1",
		CharacterName:   "Rick Sanchez",
		CharacterSource: model.SourceRickAndMorty,
		VoteType:        model.VoteLike,
		ImageURL:        "https://img.example/1.jpeg",
	}

	const workers = 10
	ids := make([]uint64, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			ch, err := svc.FindOrCreateCharacter(ctx, req)
			if assert.NoError(t, err) {
				ids[i] = ch.ID
			}
		}(i)
	}
	wg.Wait()

	// 所有并发调用都应落在同一条记录上
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestAddLikesAndDislikes(t *testing.T) {
	svc := newCharacterServiceWithProvider(t, &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{}})
	ctx := context.Background()

	_, err := svc.FindOrCreateCharacter(ctx, &model.VoteRequest{
		CharacterID:     "25",
		CharacterName:   "Pikachu",
		CharacterSource: model.SourcePokemon,
		VoteType:        model.VoteLike,
		ImageURL:        "https://img.example/25.png",
	})
	require.NoError(t, err)

	updated, err := svc.AddLikes(ctx, "pikachu", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.TotalLikes)

	updated, err = svc.AddDislikes(ctx, "Pikachu", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.TotalLikes)
	assert.Equal(t, int64(5), updated.TotalDislikes)
	assert.Equal(t, int64(15), updated.TotalVotes)

	updated, err = svc.AddLikes(ctx, "Pikachu", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), updated.TotalLikes)
	assert.Equal(t, int64(20), updated.TotalVotes)
}

func TestAddLikesInvalidAmount(t *testing.T) {
	svc := newCharacterServiceWithProvider(t, &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{}})

	_, err := svc.AddLikes(context.Background(), "Pikachu", 0)

	var invalid *errs.InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
}

func TestAddDislikesUnknownCharacter(t *testing.T) {
	svc := newCharacterServiceWithProvider(t, &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{}})

	_, err := svc.AddDislikes(context.Background(), "Ghost", 3)

	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Character not found: Ghost", notFound.Message)
}

func TestGetCharacterByNameNotFound(t *testing.T) {
	svc := newCharacterServiceWithProvider(t, &fakeProvider{adapters: map[model.SourceType]*fakeAdapter{}})

	_, err := svc.GetCharacterByName(context.Background(), "Ghost")

	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
