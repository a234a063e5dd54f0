package xexec

import (
	"context"
	"fmt"

	"github.com/gorbagana/slotkit/pkg/ledger/xledger"
	"github.com/gorbagana/slotkit/pkg/resilience/xclassify"
)

// Wallet 钱包操作的前置条件
type Wallet struct {
	// Signer 签名账户标识，空表示钱包未连接
	Signer string

	// Conn 账本连接，配合 MinBalance 做余额预检，可为 nil
	Conn xledger.Connection

	// MinBalance 余额预检下限（最小记账单位），0 表示跳过余额预检
	MinBalance uint64
}

// ExecuteWallet 执行需要钱包签名的操作
//
// 在 Execute 管线之前做两项预检：
//   - 签名账户缺失：WALLET 错误，不可重试
//   - 余额不足：INSUFFICIENT_FUNDS 错误，不可重试
//
// 钱包操作可能弹出用户交互，默认只执行 2 次（1 次重试），
// 调用方可用 WithMaxAttempts 覆盖。
func ExecuteWallet[T any](ctx context.Context, e *Executor, id string, w Wallet, action func(ctx context.Context) (T, error), opts ...CallOption) (T, error) {
	var zero T
	if e == nil {
		return zero, ErrNilExecutor
	}
	if ctx == nil {
		return zero, ErrNilContext
	}

	if w.Signer == "" {
		return zero, xclassify.NewClassified(
			xclassify.KindWallet, xclassify.SeverityHigh,
			"wallet not connected: missing signer",
			false, nil,
		)
	}

	if w.Conn != nil && w.MinBalance > 0 {
		balance, err := w.Conn.Balance(ctx, w.Signer)
		if err != nil {
			return zero, e.classifyAttempt(ctx, id, err)
		}
		if balance < w.MinBalance {
			return zero, xclassify.NewClassified(
				xclassify.KindInsufficientFunds, xclassify.SeverityHigh,
				fmt.Sprintf("insufficient funds: balance %d below required %d", balance, w.MinBalance),
				false, nil,
			)
		}
	}

	merged := append([]CallOption{WithMaxAttempts(2)}, opts...)
	return Execute(ctx, e, id, action, merged...)
}
