package api

import (
	"net/http"
	"strconv"

	"PikaMatch/internal/model"
	"PikaMatch/internal/repository"
	"PikaMatch/internal/service"
	"PikaMatch/internal/utils/retry"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 50
)

// VoteHandler 投票相关接口
type VoteHandler struct {
	voteService *service.VoteService
	logger      *logrus.Logger
}

// NewVoteHandler 创建VoteHandler
func NewVoteHandler(db *gorm.DB, provider service.AdapterProvider, executor *retry.Executor, logger *logrus.Logger) *VoteHandler {
	characterRepo := repository.NewCharacterRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	characterService := service.NewCharacterService(characterRepo, provider, executor, logger)
	svc := service.NewVoteService(voteRepo, characterRepo, characterService, logger)
	return &VoteHandler{
		voteService: svc,
		logger:      logger,
	}
}

// CreateVote 提交一次投票
// POST /api/votes
func (h *VoteHandler) CreateVote(c *gin.Context) {
	var req model.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Validation failed: "+err.Error()))
		return
	}
	if !req.CharacterSource.Valid() {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid source"))
		return
	}
	if !req.VoteType.Valid() {
		c.JSON(http.StatusBadRequest, model.Fail("Vote type must be 'like' or 'dislike'"))
		return
	}

	vote, err := h.voteService.CreateVote(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OKMessage("Vote created", vote))
}

// GetRecentVotes 最近投票列表，limit∈[1,50]，默认10
// GET /api/votes/recent?limit=10
func (h *VoteHandler) GetRecentVotes(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRecentLimit)))
	if err != nil || limit < 1 || limit > maxRecentLimit {
		c.JSON(http.StatusBadRequest, model.Fail("limit must be between 1 and 50"))
		return
	}

	votes, err := h.voteService.GetRecentVotes(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(votes))
}

// GetLastEvaluated 最近一次投票；账本为空不是错误
// GET /api/votes/last
func (h *VoteHandler) GetLastEvaluated(c *gin.Context) {
	vote, err := h.voteService.GetLastEvaluated(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if vote == nil {
		c.JSON(http.StatusOK, model.OKMessage("No votes yet", nil))
		return
	}
	c.JSON(http.StatusOK, model.OK(vote))
}
