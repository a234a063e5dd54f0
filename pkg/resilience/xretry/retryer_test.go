package xretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient failure")

// permanentErr 实现 RetryableError，声明不可重试
type permanentErr struct{ msg string }

func (e *permanentErr) Error() string   { return e.msg }
func (e *permanentErr) Retryable() bool { return false }

func fastRetryer(maxAttempts int) *Retryer {
	return NewRetryer(
		WithMaxAttempts(maxAttempts),
		WithBackoff(NewBackoff(WithBase(time.Millisecond), WithCap(2*time.Millisecond), WithJitter(0))),
	)
}

func TestRetryer_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("fails twice then succeeds within budget of 3", func(t *testing.T) {
		calls := 0
		err := fastRetryer(3).Do(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable error invoked exactly once", func(t *testing.T) {
		calls := 0
		err := fastRetryer(3).Do(ctx, func(context.Context) error {
			calls++
			return &permanentErr{msg: "nope"}
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("budget exhausted returns last error", func(t *testing.T) {
		calls := 0
		err := fastRetryer(3).Do(ctx, func(context.Context) error {
			calls++
			return errTransient
		})

		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls)
	})

	t.Run("context cancellation stops retries", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := fastRetryer(10).Do(cctx, func(context.Context) error {
			calls++
			cancel()
			return errTransient
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("nil guards", func(t *testing.T) {
		var nilRetryer *Retryer
		assert.ErrorIs(t, nilRetryer.Do(ctx, func(context.Context) error { return nil }), ErrNilRetryer)
		assert.ErrorIs(t, fastRetryer(1).Do(nil, func(context.Context) error { return nil }), ErrNilContext) //nolint:staticcheck // 故意传 nil 验证防御
		assert.ErrorIs(t, fastRetryer(1).Do(ctx, nil), ErrNilFunc)
	})

	t.Run("on retry callback fires per retry", func(t *testing.T) {
		var attempts []int
		r := NewRetryer(
			WithMaxAttempts(3),
			WithBackoff(NewBackoff(WithBase(time.Millisecond), WithJitter(0))),
			WithOnRetry(func(attempt int, err error) {
				attempts = append(attempts, attempt)
			}),
		)
		_ = r.Do(ctx, func(context.Context) error { return errTransient })

		assert.Equal(t, []int{1, 2}, attempts)
	})
}

func TestDoWithResult(t *testing.T) {
	ctx := context.Background()

	t.Run("returns value on eventual success", func(t *testing.T) {
		calls := 0
		got, err := DoWithResult(ctx, fastRetryer(3), func(context.Context) (string, error) {
			calls++
			if calls < 2 {
				return "", errTransient
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 2, calls)
	})

	t.Run("nil retryer returns zero value", func(t *testing.T) {
		got, err := DoWithResult(ctx, nil, func(context.Context) (int, error) { return 42, nil })
		assert.ErrorIs(t, err, ErrNilRetryer)
		assert.Zero(t, got)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(&permanentErr{msg: "x"}))
	assert.True(t, IsRetryable(errors.New("anything else")))
}
