package api

import (
	"errors"
	"net/http"

	"PikaMatch/internal/errs"
	"PikaMatch/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError 将领域错误映射为统一HTTP响应
// 404: 未命中/空库；400: 入参约束；503: 上游不可用；其余500
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var notFound *errs.NotFoundError
	var invalidArg *errs.InvalidArgumentError
	var external *errs.ExternalUnavailableError
	var allSources *errs.AllSourcesUnavailableError

	switch {
	case errors.As(err, &notFound):
		logger.Warnf("资源不存在: %v", err)
		c.JSON(http.StatusNotFound, model.Fail(err.Error()))
	case errors.Is(err, errs.ErrNoData):
		logger.Warnf("排行查询无数据: %v", err)
		c.JSON(http.StatusNotFound, model.Fail(err.Error()))
	case errors.As(err, &invalidArg):
		logger.Warnf("入参校验失败: %v", err)
		c.JSON(http.StatusBadRequest, model.Fail(err.Error()))
	case errors.As(err, &allSources), errors.As(err, &external):
		logger.Errorf("上游服务不可用: %v", err)
		c.JSON(http.StatusServiceUnavailable, model.Fail("External service temporarily unavailable"))
	default:
		logger.Errorf("未预期的错误: %v", err)
		c.JSON(http.StatusInternalServerError, model.Fail("An unexpected error occurred"))
	}
}
