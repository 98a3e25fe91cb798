package interfaces

import (
	"context"

	"PikaMatch/internal/config"
	"PikaMatch/internal/model"

	"github.com/sirupsen/logrus"
)

// SourceAdapter 所有角色来源必须实现的核心接口
type SourceAdapter interface {
	GetSource() model.SourceType                                                             // 来源标识
	FetchRandom(ctx context.Context) (*model.NormalizedCharacter, error)                     // 在有效ID范围内随机抓取一条
	FetchByNameOrID(ctx context.Context, nameOrID string) (*model.NormalizedCharacter, error) // 按名称或ID抓取
}

// Factory 来源适配器工厂函数签名
// 入参：来源配置、日志实例
// 出参：实现SourceAdapter接口的适配器实例
type Factory func(cfg *config.SourceConfig, logger *logrus.Logger) SourceAdapter
