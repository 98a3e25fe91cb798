package api

import (
	"net/http"
	"strconv"

	"PikaMatch/internal/model"
	"PikaMatch/internal/repository"
	"PikaMatch/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultTopLimit = 5
	maxTopLimit     = 50
)

// StatsHandler 排行统计接口
type StatsHandler struct {
	statsService *service.StatsService
	logger       *logrus.Logger
}

// NewStatsHandler 创建StatsHandler
func NewStatsHandler(db *gorm.DB, logger *logrus.Logger) *StatsHandler {
	repo := repository.NewCharacterRepository(db)
	svc := service.NewStatsService(repo, logger)
	return &StatsHandler{
		statsService: svc,
		logger:       logger,
	}
}

// GetMostLiked 点赞数最高的角色
// GET /api/stats/most-liked
func (h *StatsHandler) GetMostLiked(c *gin.Context) {
	character, err := h.statsService.GetMostLiked(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(model.NewCharacterStats(character)))
}

// GetMostDisliked 点踩数最高的角色
// GET /api/stats/most-disliked
func (h *StatsHandler) GetMostDisliked(c *gin.Context) {
	character, err := h.statsService.GetMostDisliked(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(model.NewCharacterStats(character)))
}

// GetTopLiked 点赞榜前N，limit∈[1,50]，默认5
// GET /api/stats/top-liked?limit=5
func (h *StatsHandler) GetTopLiked(c *gin.Context) {
	limit, ok := h.parseLimit(c)
	if !ok {
		return
	}

	characters, err := h.statsService.GetTopLiked(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(toStatsList(characters)))
}

// GetTopDisliked 点踩榜前N
// GET /api/stats/top-disliked?limit=5
func (h *StatsHandler) GetTopDisliked(c *gin.Context) {
	limit, ok := h.parseLimit(c)
	if !ok {
		return
	}

	characters, err := h.statsService.GetTopDisliked(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(toStatsList(characters)))
}

func (h *StatsHandler) parseLimit(c *gin.Context) (int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultTopLimit)))
	if err != nil || limit < 1 || limit > maxTopLimit {
		c.JSON(http.StatusBadRequest, model.Fail("limit must be between 1 and 50"))
		return 0, false
	}
	return limit, true
}

func toStatsList(characters []*model.Character) []*model.CharacterStats {
	stats := make([]*model.CharacterStats, 0, len(characters))
	for _, ch := range characters {
		stats = append(stats, model.NewCharacterStats(ch))
	}
	return stats
}
