package retry

import (
	"context"
	"time"

	"PikaMatch/internal/errs"
	"PikaMatch/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = time.Second
)

// Executor 为单次上游调用提供有界重试与指数退避
// 退避序列：InitialBackoff * 2^(n-1)，首次尝试前不等待
type Executor struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Logger         *logrus.Logger
}

// NewExecutor 创建默认策略的重试器（3次尝试，1s起步退避）
func NewExecutor(logger *logrus.Logger) *Executor {
	return &Executor{
		MaxAttempts:    defaultMaxAttempts,
		InitialBackoff: defaultInitialBackoff,
		Logger:         logger,
	}
}

// Do 执行apiCall，仅对瞬时错误重试，重试耗尽返回ExternalUnavailableError
// ctx在退避期间被取消时立即终止，不再发起后续尝试
func (e *Executor) Do(ctx context.Context, apiCall func() (*model.NormalizedCharacter, error), apiName string) (*model.NormalizedCharacter, error) {
	attempt := 0
	var lastErr error

	for attempt < e.MaxAttempts {
		e.Logger.Debugf("调用%s（第%d/%d次尝试）", apiName, attempt+1, e.MaxAttempts)
		result, err := apiCall()
		if err == nil {
			return result, nil
		}

		// 非瞬时错误不重试，原样上抛
		if !errs.IsTransient(err) {
			return nil, err
		}

		lastErr = err
		attempt++

		if attempt < e.MaxAttempts {
			backoff := e.InitialBackoff * (1 << (attempt - 1))
			e.Logger.Warnf("调用%s失败（第%d/%d次），%v后重试: %v", apiName, attempt, e.MaxAttempts, backoff, err)

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				e.Logger.Errorf("%s重试等待被取消: %v", apiName, ctx.Err())
				return nil, &errs.ExternalUnavailableError{API: apiName, Cause: ctx.Err()}
			case <-timer.C:
			}
		} else {
			e.Logger.Errorf("调用%s在%d次尝试后仍失败: %v", apiName, e.MaxAttempts, err)
		}
	}

	return nil, &errs.ExternalUnavailableError{API: apiName, Cause: lastErr}
}
