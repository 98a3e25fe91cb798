package api

import (
	"net/http"

	"PikaMatch/internal/model"
	"PikaMatch/internal/repository"
	"PikaMatch/internal/service"
	"PikaMatch/internal/utils/retry"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CharacterHandler 角色相关接口
type CharacterHandler struct {
	characterService *service.CharacterService
	logger           *logrus.Logger
}

// NewCharacterHandler 创建CharacterHandler
func NewCharacterHandler(db *gorm.DB, provider service.AdapterProvider, executor *retry.Executor, logger *logrus.Logger) *CharacterHandler {
	repo := repository.NewCharacterRepository(db)
	svc := service.NewCharacterService(repo, provider, executor, logger)
	return &CharacterHandler{
		characterService: svc,
		logger:           logger,
	}
}

// GetRandomCharacter 随机获取一个角色（多来源故障转移）
// GET /api/characters/random
func (h *CharacterHandler) GetRandomCharacter(c *gin.Context) {
	character, err := h.characterService.GetRandomCharacter(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(character))
}

// GetCharacterByName 按名称查询库内角色统计
// GET /api/characters/:name
func (h *CharacterHandler) GetCharacterByName(c *gin.Context) {
	name := c.Param("name")

	character, err := h.characterService.GetCharacterByName(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(model.NewCharacterStats(character)))
}

// GetCharacterFromSource 指定来源按名称或ID获取（不故障转移，不落库）
// GET /api/characters/source/:source/:nameOrId
func (h *CharacterHandler) GetCharacterFromSource(c *gin.Context) {
	source := model.SourceType(c.Param("source"))
	nameOrID := c.Param("nameOrId")

	character, err := h.characterService.GetFromSource(c.Request.Context(), source, nameOrID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(character))
}

// AddLikes 按名称批量增加点赞数
// PATCH /api/characters/:name/like
func (h *CharacterHandler) AddLikes(c *gin.Context) {
	name := c.Param("name")

	var req model.UpdateVoteCount
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("amount must be a positive integer"))
		return
	}

	character, err := h.characterService.AddLikes(c.Request.Context(), name, req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OKMessage("Likes added", model.NewCharacterStats(character)))
}

// AddDislikes 按名称批量增加点踩数
// PATCH /api/characters/:name/dislike
func (h *CharacterHandler) AddDislikes(c *gin.Context) {
	name := c.Param("name")

	var req model.UpdateVoteCount
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("amount must be a positive integer"))
		return
	}

	character, err := h.characterService.AddDislikes(c.Request.Context(), name, req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.OKMessage("Dislikes added", model.NewCharacterStats(character)))
}
