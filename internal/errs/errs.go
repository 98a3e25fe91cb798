package errs

import (
	"errors"
	"fmt"
)

// ErrNoData 排行查询在空库上的结果
var ErrNoData = errors.New("no characters available")

// TransientError 瞬时失败标记（网络错误、超时、上游5xx等），重试器只重试这一类
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return e.Cause.Error()
}

func (e *TransientError) Unwrap() error { return e.Cause }

// IsTransient 判断错误是否可重试
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// ExternalUnavailableError 单个上游在重试耗尽或被取消后的最终失败
type ExternalUnavailableError struct {
	API   string
	Cause error
}

func (e *ExternalUnavailableError) Error() string {
	return fmt.Sprintf("external API %s unavailable: %v", e.API, e.Cause)
}

func (e *ExternalUnavailableError) Unwrap() error { return e.Cause }

// AllSourcesUnavailableError 一次随机获取中所有来源均失败
// 仅保留最后一个失败原因用于诊断
type AllSourcesUnavailableError struct {
	Cause error
}

func (e *AllSourcesUnavailableError) Error() string {
	return fmt.Sprintf("all external sources are unavailable: %v", e.Cause)
}

func (e *AllSourcesUnavailableError) Unwrap() error { return e.Cause }

// NotFoundError 按名称或键的查找未命中
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFoundf 构造NotFoundError
func NotFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentError 调用方入参不满足约束
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return e.Message }

// InvalidArgumentf 构造InvalidArgumentError
func InvalidArgumentf(format string, args ...interface{}) error {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}
