package xretry

import (
	"context"
	"math"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// Retryer 重试执行器
//
// 组合重试预算与退避策略，底层使用 avast/retry-go/v5 驱动循环。
// 可重试性由错误自身决定（见 IsRetryable），上下文取消立即终止。
type Retryer struct {
	maxAttempts int
	backoff     *Backoff
	onRetry     func(attempt int, err error)
}

// RetryerOption 执行器配置选项
type RetryerOption func(*Retryer)

// WithMaxAttempts 设置总执行次数（含首次），最小为 1
func WithMaxAttempts(n int) RetryerOption {
	return func(r *Retryer) {
		if n >= 1 {
			r.maxAttempts = n
		}
	}
}

// WithBackoff 设置退避策略，nil 忽略
func WithBackoff(b *Backoff) RetryerOption {
	return func(r *Retryer) {
		if b != nil {
			r.backoff = b
		}
	}
}

// WithOnRetry 设置重试回调，在每次重试前触发（attempt 从 1 开始计失败次数）
func WithOnRetry(f func(attempt int, err error)) RetryerOption {
	return func(r *Retryer) {
		if f != nil {
			r.onRetry = f
		}
	}
}

// NewRetryer 创建重试执行器
//
// 默认最多执行 3 次，使用 NewBackoff() 的默认退避。
func NewRetryer(opts ...RetryerOption) *Retryer {
	r := &Retryer{
		maxAttempts: 3,
		backoff:     NewBackoff(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxAttempts 返回总执行次数预算
func (r *Retryer) MaxAttempts() int {
	return r.maxAttempts
}

// Backoff 返回退避策略
func (r *Retryer) Backoff() *Backoff {
	return r.backoff
}

// Do 执行带重试的操作
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil {
		return ErrNilRetryer
	}
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	return retry.New(r.buildOptions(ctx)...).Do(func() error {
		return fn(ctx)
	})
}

// DoWithResult 执行带重试的操作（有返回值）
//
// 泛型函数，必须作为包级函数使用。
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrNilRetryer
	}
	if ctx == nil {
		return zero, ErrNilContext
	}
	if fn == nil {
		return zero, ErrNilFunc
	}
	return retry.NewWithData[T](r.buildOptions(ctx)...).Do(func() (T, error) {
		return fn(ctx)
	})
}

// buildOptions 构建 retry-go 的选项
func (r *Retryer) buildOptions(ctx context.Context) []retry.Option {
	backoff := r.backoff
	if backoff == nil {
		backoff = NewBackoff()
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(safeIntToUint(r.maxAttempts)),
		retry.RetryIf(func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			return IsRetryable(err)
		}),
		retry.DelayType(func(n uint, _ error, _ retry.DelayContext) time.Duration {
			// retry-go v5 的 DelayType 中 n 从 1 开始，与 NextDelay 一致
			return backoff.NextDelay(safeUintToInt(n))
		}),
		// 只返回最后一个错误，简化调用方的错误处理
		retry.LastErrorOnly(true),
	}

	if r.onRetry != nil {
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			// retry-go v5 的 OnRetry 中 n 从 0 开始，转换为 1-based
			r.onRetry(safeUintToInt(n)+1, err)
		}))
	}

	return opts
}

// safeIntToUint 将 int 安全转换为 uint，负数返回 0
func safeIntToUint(n int) uint {
	if n <= 0 {
		return 0
	}
	return uint(n)
}

// safeUintToInt 将 uint 安全转换为 int，超界截断到 MaxInt
func safeUintToInt(n uint) int {
	if n > uint(math.MaxInt) {
		return math.MaxInt
	}
	return int(n)
}
