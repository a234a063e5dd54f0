package xretry

import "errors"

// 参数校验错误
var (
	// ErrNilRetryer 传入的 Retryer 为 nil
	ErrNilRetryer = errors.New("xretry: retryer cannot be nil")

	// ErrNilContext 传入的 context 为 nil
	ErrNilContext = errors.New("xretry: context cannot be nil")

	// ErrNilFunc 传入的操作函数为 nil
	ErrNilFunc = errors.New("xretry: function cannot be nil")
)

// RetryableError 可重试错误接口
//
// 实现此接口的错误会被自动识别为可重试或不可重试。
type RetryableError interface {
	error
	Retryable() bool
}

// IsRetryable 检查错误是否可重试
//
// 规则：
//   - nil 错误：不需要重试（视为成功）
//   - 实现 RetryableError 接口：根据 Retryable() 返回值判断
//   - 其他错误：默认视为可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}

	return true
}
