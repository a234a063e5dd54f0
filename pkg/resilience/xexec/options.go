package xexec

import (
	"time"

	"github.com/gorbagana/slotkit/pkg/ledger/xledger"
	"github.com/gorbagana/slotkit/pkg/resilience/xclassify"
	"github.com/gorbagana/slotkit/pkg/resilience/xretry"
)

// Hooks 单次调用的观测回调
//
// 所有回调都是可选的，在执行管线的对应节点同步触发，
// 回调内不应执行耗时操作。
type Hooks struct {
	// OnError 每次尝试失败后触发，attempt 从 1 开始
	OnError func(err *xclassify.ClassifiedError, attempt int)

	// OnRecovery 重试后成功时触发，attempt 为成功那次的序号
	OnRecovery func(attempt int)

	// OnProgress 管线阶段推进时触发，fraction 取值 [0, 1]
	OnProgress func(stage string, fraction float64)

	// OnTransactionSubmitted 交易提交成功后触发
	OnTransactionSubmitted func(ref xledger.Ref)

	// OnConfirmationProgress 每次结算轮询后触发
	OnConfirmationProgress func(confirmations, required int)

	// OnOperationComplete 操作结束时触发，无论成败
	OnOperationComplete func(id string, result any, err error)
}

// callOptions 单次调用的配置
type callOptions struct {
	timeout          time.Duration
	maxAttempts      int
	requireHealthy   bool
	recoveryWait     time.Duration
	backoff          *xretry.Backoff
	hooks            Hooks
	batchConcurrency int64
}

// CallOption 单次调用的配置选项
type CallOption func(*callOptions)

// defaultCallOptions 返回默认的调用配置
func defaultCallOptions() callOptions {
	return callOptions{
		timeout:          30 * time.Second,
		maxAttempts:      3,
		recoveryWait:     15 * time.Second,
		batchConcurrency: 3,
	}
}

// WithTimeout 设置本次操作（含全部重试）的总超时，默认 30s
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxAttempts 设置总执行次数（含首次），默认 3，最小 1
func WithMaxAttempts(n int) CallOption {
	return func(o *callOptions) {
		if n >= 1 {
			o.maxAttempts = n
		}
	}
}

// WithRequireHealthyNetwork 要求执行前网络健康
//
// 执行器未配置健康监视器时此选项无效。
func WithRequireHealthyNetwork() CallOption {
	return func(o *callOptions) {
		o.requireHealthy = true
	}
}

// WithRecoveryWait 设置网络不健康时的恢复等待上限，默认 15s
func WithRecoveryWait(d time.Duration) CallOption {
	return func(o *callOptions) {
		if d > 0 {
			o.recoveryWait = d
		}
	}
}

// WithBackoff 设置重试退避策略，默认 xretry.NewBackoff()
func WithBackoff(b *xretry.Backoff) CallOption {
	return func(o *callOptions) {
		if b != nil {
			o.backoff = b
		}
	}
}

// WithHooks 设置观测回调
func WithHooks(h Hooks) CallOption {
	return func(o *callOptions) {
		o.hooks = h
	}
}

// WithBatchConcurrency 设置批量执行的最大并发数，默认 3
//
// 仅对 ExecuteBatch 有效。
func WithBatchConcurrency(n int64) CallOption {
	return func(o *callOptions) {
		if n >= 1 {
			o.batchConcurrency = n
		}
	}
}

// buildCallOptions 应用调用选项
func buildCallOptions(opts []CallOption) callOptions {
	o := defaultCallOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *callOptions) progress(stage string, fraction float64) {
	if o.hooks.OnProgress != nil {
		o.hooks.OnProgress(stage, fraction)
	}
}
