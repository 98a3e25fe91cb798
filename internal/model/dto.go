package model

import "time"

// Response 统一API响应包装
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// OK 构造成功响应
func OK(data interface{}) Response {
	return Response{Success: true, Message: "Success", Data: data, Timestamp: time.Now()}
}

// OKMessage 构造带自定义消息的成功响应
func OKMessage(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data, Timestamp: time.Now()}
}

// Fail 构造失败响应
func Fail(message string) Response {
	return Response{Success: false, Message: message, Timestamp: time.Now()}
}

// CharacterStats 角色统计视图，百分比为派生字段
type CharacterStats struct {
	ID                string     `json:"id"`
	ExternalID        string     `json:"externalId"`
	Name              string     `json:"name"`
	Source            SourceType `json:"source"`
	ImageURL          string     `json:"imageUrl"`
	Description       string     `json:"description"`
	TotalLikes        int64      `json:"totalLikes"`
	TotalDislikes     int64      `json:"totalDislikes"`
	TotalVotes        int64      `json:"totalVotes"`
	LikePercentage    float64    `json:"likePercentage"`
	DislikePercentage float64    `json:"dislikePercentage"`
}

// NewCharacterStats 由角色实体构造统计视图
func NewCharacterStats(ch *Character) *CharacterStats {
	if ch == nil {
		return nil
	}
	return &CharacterStats{
		ID:                ch.CharacterUUID,
		ExternalID:        ch.ExternalID,
		Name:              ch.Name,
		Source:            ch.Source,
		ImageURL:          ch.ImageURL,
		Description:       ch.Description,
		TotalLikes:        ch.TotalLikes,
		TotalDislikes:     ch.TotalDislikes,
		TotalVotes:        ch.TotalVotes,
		LikePercentage:    ch.LikePercentage(),
		DislikePercentage: ch.DislikePercentage(),
	}
}

// VoteRequest 投票请求体
type VoteRequest struct {
	CharacterID     string     `json:"characterId" binding:"required"`
	CharacterName   string     `json:"characterName" binding:"required"`
	CharacterSource SourceType `json:"characterSource" binding:"required"`
	VoteType        VoteType   `json:"voteType" binding:"required"`
	ImageURL        string     `json:"imageUrl" binding:"required"`
	Description     string     `json:"description"`
}

// VoteResponse 投票结果视图（角色信息+投票信息）
type VoteResponse struct {
	VoteID          string     `json:"voteId"`
	CharacterID     string     `json:"characterId"`
	CharacterName   string     `json:"characterName"`
	CharacterSource SourceType `json:"characterSource"`
	ImageURL        string     `json:"imageUrl"`
	Description     string     `json:"description"`
	VoteType        VoteType   `json:"voteType"`
	Timestamp       time.Time  `json:"timestamp"`
}

// UpdateVoteCount 批量增加点赞/点踩的请求体
type UpdateVoteCount struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// CharacterSnapshot 投票时刻的角色展示字段，存入votes.character_snapshot
type CharacterSnapshot struct {
	Name        string     `json:"name"`
	Source      SourceType `json:"source"`
	ImageURL    string     `json:"imageUrl"`
	Description string     `json:"description"`
}
