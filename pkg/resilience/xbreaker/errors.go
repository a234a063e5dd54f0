package xbreaker

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

// 参数校验错误
var (
	// ErrEmptyOperationID 操作 id 为空
	ErrEmptyOperationID = errors.New("xbreaker: operation id cannot be empty")

	// ErrNilFunc 传入的操作函数为 nil
	ErrNilFunc = errors.New("xbreaker: function cannot be nil")
)

// OpenError 熔断器拦截错误
//
// 包装 gobreaker 的 ErrOpenState / ErrTooManyRequests，
// 并实现 Retryable() 返回 false：熔断拦截应该快速失败而不是重试。
type OpenError struct {
	// Err 原始错误（ErrOpenState 或 ErrTooManyRequests）
	Err error

	// Operation 被拦截的操作 id
	Operation string
}

// Error 实现 error 接口
func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for operation %s: %v", e.Operation, e.Err)
}

// Unwrap 实现 errors.Unwrap 接口
func (e *OpenError) Unwrap() error {
	return e.Err
}

// Retryable 实现 xretry.RetryableError 接口，熔断拦截不可重试
func (e *OpenError) Retryable() bool {
	return false
}

// wrapOpenError 如果是熔断器 sentinel 错误则包装，否则原样返回
//
// 只检查直接的 sentinel，不遍历错误链，避免把嵌套场景下
// 其他熔断器的错误错误地归因到当前操作。
func wrapOpenError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &OpenError{Err: err, Operation: operation}
	}
	return err
}

// IsOpen 检查错误是否为熔断拦截
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
