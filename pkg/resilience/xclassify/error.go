package xclassify

import (
	"errors"
	"time"
)

// ClassifiedError 分类后的错误
//
// 这是核心层对外传播的唯一错误形态。构造后不可变：
// 所有字段在 Classify 时一次性填充，之后只读。
//
// 实现 xretry.RetryableError 接口，重试层据此决定是否继续尝试。
type ClassifiedError struct {
	// Kind 错误分类
	Kind Kind

	// Severity 严重度
	Severity Severity

	// UserMessage 可直接展示给用户的消息
	UserMessage string

	// TechnicalMessage 诊断用的技术细节
	TechnicalMessage string

	// RetryDelay 建议的重试延迟，不可重试时为 0
	RetryDelay time.Duration

	// Diagnostics 附加诊断信息
	Diagnostics []string

	// Timestamp 分类时刻
	Timestamp time.Time

	// retryable 是否建议重试。通过 Retryable() 方法暴露，
	// 使 ClassifiedError 满足 xretry.RetryableError 接口。
	retryable bool

	// cause 原始错误，仅用于 Unwrap
	cause error
}

// Error 实现 error 接口
func (e *ClassifiedError) Error() string {
	return e.TechnicalMessage
}

// Unwrap 返回原始错误
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Retryable 实现 xretry.RetryableError 接口
func (e *ClassifiedError) Retryable() bool {
	return e.retryable
}

// As 便捷函数：从错误链中取出 ClassifiedError
func As(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind Kind) bool {
	ce, ok := As(err)
	return ok && ce.Kind == kind
}
