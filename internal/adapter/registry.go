package adapter

import (
	"fmt"

	"PikaMatch/internal/config"
	"PikaMatch/internal/interfaces"
	"PikaMatch/internal/model"

	"github.com/sirupsen/logrus"
)

// SourceRegistry 按配置初始化并持有全部来源适配器实例
type SourceRegistry struct {
	cfg    *config.Config
	logger *logrus.Logger
	// 存储来源→适配器实例的映射
	adapters map[model.SourceType]interfaces.SourceAdapter
}

// NewSourceRegistry 从工厂函数注册表创建全部适配器实例
func NewSourceRegistry(cfg *config.Config, logger *logrus.Logger) *SourceRegistry {
	r := &SourceRegistry{
		cfg:      cfg,
		logger:   logger,
		adapters: make(map[model.SourceType]interfaces.SourceAdapter),
	}

	r.initAdaptersFromFactories()

	return r
}

// initAdaptersFromFactories 遍历配置中的来源，匹配工厂函数创建实例
func (r *SourceRegistry) initAdaptersFromFactories() {
	for sourceStr, sourceCfg := range r.cfg.Sources {
		source := model.SourceType(sourceStr)
		if !source.Valid() {
			r.logger.WithField("source", sourceStr).Warn("配置中存在未知来源，跳过")
			continue
		}

		factory, ok := GetFactory(source)
		if !ok {
			r.logger.WithField("source", source).Error("未找到对应的工厂函数（init未注册？）")
			continue
		}

		cfgCopy := sourceCfg
		adapterIns := factory(&cfgCopy, r.logger)
		if adapterIns == nil {
			r.logger.WithField("source", source).Error("工厂函数返回nil适配器实例")
			continue
		}

		// 验证实例的来源标识是否与配置匹配
		if adapterIns.GetSource() != source {
			r.logger.WithFields(logrus.Fields{
				"config_source":  source,
				"adapter_source": adapterIns.GetSource(),
			}).Error("适配器来源标识与配置不匹配")
			continue
		}

		r.adapters[source] = adapterIns
		r.logger.WithField("source", source).Info("适配器实例初始化成功并加入注册表")
	}

	r.logger.WithField("count", len(r.adapters)).Info("来源适配器初始化完成")
}

// ListRegisteredSources 获取所有已初始化的来源列表
func (r *SourceRegistry) ListRegisteredSources() []model.SourceType {
	var sources []model.SourceType
	for s := range r.adapters {
		sources = append(sources, s)
	}
	return sources
}

// GetAdapter 获取适配器实例
func (r *SourceRegistry) GetAdapter(source model.SourceType) (interfaces.SourceAdapter, error) {
	adapterIns, ok := r.adapters[source]
	if !ok {
		return nil, fmt.Errorf("来源%s未初始化适配器实例", source)
	}
	return adapterIns, nil
}

// SourceCount 获取已初始化实例的来源数量
func (r *SourceRegistry) SourceCount() int {
	return len(r.adapters)
}
