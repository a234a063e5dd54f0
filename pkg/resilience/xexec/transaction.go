package xexec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorbagana/slotkit/pkg/ledger/xledger"
	"github.com/gorbagana/slotkit/pkg/resilience/xclassify"
)

// 交易执行默认参数
const (
	defaultPollInterval          = time.Second
	defaultSettlementTimeout     = 60 * time.Second
	defaultRequiredConfirmations = 1
)

// TransactionPlan 一次交易操作的三个阶段
//
// 提交、结算等待与结果提取在同一个 Execute 调用里执行，
// 共享同一份熔断统计与超时预算。
type TransactionPlan[T any] struct {
	// Submit 提交交易并返回引用
	Submit func(ctx context.Context) (xledger.Ref, error)

	// Conn 用于轮询结算状态的账本连接
	Conn xledger.Connection

	// Extract 交易结算成功后提取结果
	Extract func(ctx context.Context, ref xledger.Ref) (T, error)

	// PollInterval 结算状态轮询间隔，默认 1s
	PollInterval time.Duration

	// SettlementTimeout 等待结算的上限，默认 60s
	SettlementTimeout time.Duration

	// RequiredConfirmations 所需确认数，默认 1
	RequiredConfirmations int
}

func (p TransactionPlan[T]) normalize() TransactionPlan[T] {
	if p.PollInterval <= 0 {
		p.PollInterval = defaultPollInterval
	}
	if p.SettlementTimeout <= 0 {
		p.SettlementTimeout = defaultSettlementTimeout
	}
	if p.RequiredConfirmations < 1 {
		p.RequiredConfirmations = defaultRequiredConfirmations
	}
	return p
}

// ExecuteTransaction 执行提交、等待结算、提取结果的完整交易流程
//
// 整个流程作为一个动作跑在 Execute 管线里：重试会重新提交交易，
// 所以 Submit 的实现必须幂等（或由上层用唯一 id 去重）。
// 交易被链上判定为失败时返回 TRANSACTION 错误且不可重试。
func ExecuteTransaction[T any](ctx context.Context, e *Executor, id string, plan TransactionPlan[T], opts ...CallOption) (T, error) {
	var zero T
	if e == nil {
		return zero, ErrNilExecutor
	}
	if ctx == nil {
		return zero, ErrNilContext
	}
	if plan.Submit == nil {
		return zero, ErrNilSubmit
	}
	if plan.Conn == nil {
		return zero, ErrNilConnection
	}

	plan = plan.normalize()
	o := buildCallOptions(opts)

	return Execute(ctx, e, id, func(ctx context.Context) (T, error) {
		ref, err := plan.Submit(ctx)
		if err != nil {
			return zero, err
		}
		if o.hooks.OnTransactionSubmitted != nil {
			o.hooks.OnTransactionSubmitted(ref)
		}
		e.logger.Debug(ctx, "transaction submitted",
			slog.String("operation", id),
			slog.String("ref", string(ref)),
		)

		if err := e.awaitSettlement(ctx, plan.Conn, ref, plan.PollInterval, plan.SettlementTimeout, plan.RequiredConfirmations, o.hooks); err != nil {
			return zero, err
		}

		if plan.Extract == nil {
			return zero, nil
		}
		return plan.Extract(ctx, ref)
	}, opts...)
}

// awaitSettlement 轮询结算状态直到确认、失败或超时
func (e *Executor) awaitSettlement(ctx context.Context, conn xledger.Connection, ref xledger.Ref, interval, timeout time.Duration, required int, hooks Hooks) error {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := conn.SignatureStatus(ctx, ref)
		if err != nil {
			// 单次查询失败不终止等待，链上状态可能尚未可见
			e.logger.Debug(ctx, "settlement status query failed",
				slog.String("ref", string(ref)),
				slog.String("error", err.Error()),
			)
		} else {
			if hooks.OnConfirmationProgress != nil {
				hooks.OnConfirmationProgress(status.Confirmations, required)
			}
			if status.Failed {
				return xclassify.NewClassified(
					xclassify.KindTransaction, xclassify.SeverityHigh,
					fmt.Sprintf("transaction %s settled as failed", ref),
					false, nil,
				)
			}
			if status.Confirmed && status.Confirmations >= required {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			// 重新提交可能导致重复下注，结算中断不可重试
			msg := fmt.Sprintf("transaction %s settlement timed out after %s", ref, timeout)
			if parent.Err() != nil {
				// 外层截止时间先于结算超时触发
				msg = fmt.Sprintf("transaction %s settlement interrupted: %s", ref, parent.Err())
			}
			return xclassify.NewClassified(
				xclassify.KindTransaction, xclassify.SeverityHigh,
				msg, false, ctx.Err(),
			)
		case <-ticker.C:
		}
	}
}
