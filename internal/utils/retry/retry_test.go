package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"PikaMatch/internal/errs"
	"PikaMatch/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func transientErr(msg string) error {
	return &errs.TransientError{Cause: errors.New(msg)}
}

func TestDoReturnsFirstSuccess(t *testing.T) {
	e := &Executor{MaxAttempts: 3, InitialBackoff: time.Millisecond, Logger: newTestLogger()}

	calls := 0
	result, err := e.Do(context.Background(), func() (*model.NormalizedCharacter, error) {
		calls++
		return &model.NormalizedCharacter{Name: "Pikachu"}, nil
	}, "pokemon")

	require.NoError(t, err)
	assert.Equal(t, "Pikachu", result.Name)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientWithExponentialBackoff(t *testing.T) {
	base := 20 * time.Millisecond
	e := &Executor{MaxAttempts: 3, InitialBackoff: base, Logger: newTestLogger()}

	calls := 0
	start := time.Now()
	result, err := e.Do(context.Background(), func() (*model.NormalizedCharacter, error) {
		calls++
		if calls < 3 {
			return nil, transientErr(fmt.Sprintf("attempt %d failed", calls))
		}
		return &model.NormalizedCharacter{Name: "Rick"}, nil
	}, "rickandmorty")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "Rick", result.Name)
	assert.Equal(t, 3, calls)
	// 两次退避：base与2*base
	assert.GreaterOrEqual(t, elapsed, 3*base)
}

func TestDoDoesNotRetryNonTransient(t *testing.T) {
	e := &Executor{MaxAttempts: 3, InitialBackoff: time.Millisecond, Logger: newTestLogger()}

	permanent := errors.New("bad request")
	calls := 0
	_, err := e.Do(context.Background(), func() (*model.NormalizedCharacter, error) {
		calls++
		return nil, permanent
	}, "pokemon")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, permanent)

	var unavailable *errs.ExternalUnavailableError
	assert.False(t, errors.As(err, &unavailable), "非瞬时错误不应被包装为ExternalUnavailable")
}

func TestDoExhaustsAttempts(t *testing.T) {
	e := &Executor{MaxAttempts: 3, InitialBackoff: time.Millisecond, Logger: newTestLogger()}

	calls := 0
	_, err := e.Do(context.Background(), func() (*model.NormalizedCharacter, error) {
		calls++
		return nil, transientErr("down")
	}, "superhero")

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var unavailable *errs.ExternalUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "superhero", unavailable.API)
	assert.NotNil(t, unavailable.Cause)
}

func TestDoAbortsWhenContextCancelledDuringBackoff(t *testing.T) {
	e := &Executor{MaxAttempts: 3, InitialBackoff: 5 * time.Second, Logger: newTestLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	calls := 0
	start := time.Now()
	_, err := e.Do(ctx, func() (*model.NormalizedCharacter, error) {
		calls++
		return nil, transientErr("down")
	}, "pokemon")

	require.Error(t, err)
	assert.Equal(t, 1, calls, "取消后不应再发起尝试")
	assert.Less(t, time.Since(start), time.Second)

	var unavailable *errs.ExternalUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorIs(t, unavailable.Cause, context.Canceled)
}
