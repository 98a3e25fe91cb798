package model

import (
	"time"

	"gorm.io/datatypes"
)

// Character 角色实体，按(external_id, source)全局唯一，累计点赞/点踩计数
type Character struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	CharacterUUID string     `gorm:"column:character_uuid;type:varchar(64);uniqueIndex;not null"`
	ExternalID    string     `gorm:"column:external_id;type:varchar(64);not null;uniqueIndex:uk_external_source"`
	Source        SourceType `gorm:"column:source;type:varchar(32);not null;uniqueIndex:uk_external_source"`
	Name          string     `gorm:"column:name;type:varchar(255);index;not null"`
	ImageURL      string     `gorm:"column:image_url;type:varchar(512)"`
	Description   string     `gorm:"column:description;type:text"`
	TotalLikes    int64      `gorm:"column:total_likes;not null;default:0;index"`
	TotalDislikes int64      `gorm:"column:total_dislikes;not null;default:0;index"`
	TotalVotes    int64      `gorm:"column:total_votes;not null;default:0"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Character) TableName() string { return "characters" }

// LikePercentage 点赞占比（0~100），无投票时为0。仅派生，不落库
func (c *Character) LikePercentage() float64 {
	if c.TotalVotes == 0 {
		return 0
	}
	return float64(c.TotalLikes) * 100.0 / float64(c.TotalVotes)
}

// DislikePercentage 点踩占比（0~100），无投票时为0
func (c *Character) DislikePercentage() float64 {
	if c.TotalVotes == 0 {
		return 0
	}
	return float64(c.TotalDislikes) * 100.0 / float64(c.TotalVotes)
}

// Vote 单次投票事件，只追加不修改
// character_snapshot 保存投票时刻的角色展示字段，角色记录不可达时用作兜底
type Vote struct {
	ID                uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	VoteUUID          string         `gorm:"column:vote_uuid;type:varchar(64);uniqueIndex;not null"`
	CharacterID       uint64         `gorm:"column:character_id;index;not null"`
	VoteType          VoteType       `gorm:"column:vote_type;type:varchar(16);index;not null"`
	Timestamp         time.Time      `gorm:"column:timestamp;index;not null"`
	CharacterSnapshot datatypes.JSON `gorm:"column:character_snapshot;type:jsonb"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (Vote) TableName() string { return "votes" }
