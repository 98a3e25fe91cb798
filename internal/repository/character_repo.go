package repository

import (
	"context"
	"errors"
	"time"

	"PikaMatch/internal/model"

	"gorm.io/gorm"
)

// CharacterRepository 角色仓储接口
// 查找类方法未命中时返回(nil, nil)，由service层决定如何上抛
type CharacterRepository interface {
	// FindByExternalIDAndSource 按自然键(external_id, source)查找
	FindByExternalIDAndSource(ctx context.Context, externalID string, source model.SourceType) (*model.Character, error)
	// FindByNameIgnoreCase 按名称查找（大小写不敏感）
	FindByNameIgnoreCase(ctx context.Context, name string) (*model.Character, error)
	// FindByID 按存储ID查找
	FindByID(ctx context.Context, id uint64) (*model.Character, error)
	// FindByIDs 批量按存储ID查找
	FindByIDs(ctx context.Context, ids []uint64) ([]*model.Character, error)
	// Create 插入新角色；自然键冲突时返回gorm.ErrDuplicatedKey
	Create(ctx context.Context, character *model.Character) error
	// IncrementCounters 单条UPDATE原子累加计数并重算total_votes，并发下不丢更新
	IncrementCounters(ctx context.Context, id uint64, likes, dislikes int64) error
	// FirstByLikesDesc 点赞数最高的单个角色
	FirstByLikesDesc(ctx context.Context) (*model.Character, error)
	// FirstByDislikesDesc 点踩数最高的单个角色
	FirstByDislikesDesc(ctx context.Context) (*model.Character, error)
	// TopByLikesDesc 按点赞数降序取前N，平局顺序由存储决定
	TopByLikesDesc(ctx context.Context, limit int) ([]*model.Character, error)
	// TopByDislikesDesc 按点踩数降序取前N
	TopByDislikesDesc(ctx context.Context, limit int) ([]*model.Character, error)
}

type characterRepository struct {
	db *gorm.DB
}

// NewCharacterRepository 创建CharacterRepository实例
func NewCharacterRepository(db *gorm.DB) CharacterRepository {
	return &characterRepository{db: db}
}

func (r *characterRepository) FindByExternalIDAndSource(ctx context.Context, externalID string, source model.SourceType) (*model.Character, error) {
	var ch model.Character
	err := r.db.WithContext(ctx).
		Where("external_id = ? AND source = ?", externalID, source).
		First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ch, nil
}

func (r *characterRepository) FindByNameIgnoreCase(ctx context.Context, name string) (*model.Character, error) {
	var ch model.Character
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ch, nil
}

func (r *characterRepository) FindByID(ctx context.Context, id uint64) (*model.Character, error) {
	var ch model.Character
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ch, nil
}

func (r *characterRepository) FindByIDs(ctx context.Context, ids []uint64) ([]*model.Character, error) {
	if len(ids) == 0 {
		return []*model.Character{}, nil
	}
	var characters []*model.Character
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

func (r *characterRepository) Create(ctx context.Context, character *model.Character) error {
	return r.db.WithContext(ctx).Create(character).Error
}

// IncrementCounters 计数只通过这条UPDATE变更，total_votes在同一语句内由旧值重算，
// 保证total_votes == total_likes + total_dislikes恒成立
func (r *characterRepository) IncrementCounters(ctx context.Context, id uint64, likes, dislikes int64) error {
	res := r.db.WithContext(ctx).Model(&model.Character{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_likes":    gorm.Expr("total_likes + ?", likes),
			"total_dislikes": gorm.Expr("total_dislikes + ?", dislikes),
			"total_votes":    gorm.Expr("total_likes + total_dislikes + ?", likes+dislikes),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *characterRepository) FirstByLikesDesc(ctx context.Context) (*model.Character, error) {
	return r.firstByCounter(ctx, "total_likes DESC")
}

func (r *characterRepository) FirstByDislikesDesc(ctx context.Context) (*model.Character, error) {
	return r.firstByCounter(ctx, "total_dislikes DESC")
}

func (r *characterRepository) firstByCounter(ctx context.Context, order string) (*model.Character, error) {
	var ch model.Character
	err := r.db.WithContext(ctx).Order(order).First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ch, nil
}

func (r *characterRepository) TopByLikesDesc(ctx context.Context, limit int) ([]*model.Character, error) {
	return r.topByCounter(ctx, "total_likes DESC", limit)
}

func (r *characterRepository) TopByDislikesDesc(ctx context.Context, limit int) ([]*model.Character, error) {
	return r.topByCounter(ctx, "total_dislikes DESC", limit)
}

func (r *characterRepository) topByCounter(ctx context.Context, order string, limit int) ([]*model.Character, error) {
	var characters []*model.Character
	if err := r.db.WithContext(ctx).
		Order(order).
		Limit(limit).
		Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}
