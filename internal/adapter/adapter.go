package adapter

import (
	"fmt"

	"PikaMatch/internal/interfaces"
	"PikaMatch/internal/model"

	"github.com/sirupsen/logrus"
)

// ========== 全局工厂函数注册表（依赖interfaces包） ==========
var factoryRegistry = make(map[model.SourceType]interfaces.Factory)

// Register 供适配器init函数调用，注册工厂函数
func Register(source model.SourceType, factory interfaces.Factory) {
	if factory == nil {
		panic(fmt.Sprintf("来源%s的工厂函数不能为nil", source))
	}
	if _, exists := factoryRegistry[source]; exists {
		logrus.Warnf("来源%s的适配器已注册，将覆盖原有实现", source)
	}
	factoryRegistry[source] = factory
}

// GetFactory 获取指定来源的工厂函数
func GetFactory(source model.SourceType) (interfaces.Factory, bool) {
	factory, ok := factoryRegistry[source]
	return factory, ok
}

// ListFactories 列出所有已注册的工厂函数来源
func ListFactories() []model.SourceType {
	var sources []model.SourceType
	for s := range factoryRegistry {
		sources = append(sources, s)
	}
	return sources
}
