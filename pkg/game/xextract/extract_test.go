package xextract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorbagana/slotkit/pkg/ledger/xledger"
)

const testProgram = "slots-program"

// fakeLedger 固定返回预设交易的连接桩
type fakeLedger struct {
	xledger.Connection

	tx  *xledger.Transaction
	err error
}

func (f *fakeLedger) Transaction(_ context.Context, _ xledger.Ref) (*xledger.Transaction, error) {
	return f.tx, f.err
}

func TestExtractor_Extract(t *testing.T) {
	ctx := context.Background()
	e := NewExtractor(testProgram)

	t.Run("交易不存在", func(t *testing.T) {
		conn := &fakeLedger{err: xledger.ErrNotFound}
		res, err := e.Extract(ctx, conn, "tx-missing")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, ReasonNotFound, res.Reason)
	})

	t.Run("查询错误原样返回", func(t *testing.T) {
		queryErr := errors.New("rpc unavailable")
		conn := &fakeLedger{err: queryErr}
		_, err := e.Extract(ctx, conn, "tx-1")
		assert.ErrorIs(t, err, queryErr)
	})

	t.Run("交易失败不提取", func(t *testing.T) {
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref:           "tx-failed",
			Failed:        true,
			FailureReason: "custom program error: 0x1",
			Events: []xledger.Event{{
				Program: testProgram,
				Name:    "SpinResult",
				Data:    map[string]any{"symbols": []any{3, 3, 3}, "payout": 999},
			}},
		}}
		res, err := e.Extract(ctx, conn, "tx-failed")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, ReasonTransactionFailed, res.Reason)
	})

	t.Run("结构化事件优先", func(t *testing.T) {
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref: "tx-event",
			Events: []xledger.Event{
				{
					Program: testProgram,
					Name:    "SpinRequested",
					Data:    map[string]any{"user": "u1", "bet_amount": 1_000_000},
				},
				{
					Program: testProgram,
					Name:    "SpinResult",
					Data:    map[string]any{"user": "u1", "symbols": []any{5, 5, 5}, "payout": 950_000},
				},
			},
			LogLines: []string{
				// 日志行带不同数值，确认不会被采用
				"Program log: SpinResult { user: u1, symbols: [1, 2, 3], payout: 0 }",
			},
		}}
		res, err := e.Extract(ctx, conn, "tx-event")
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, [3]uint8{5, 5, 5}, res.Outcome.Symbols)
		assert.Equal(t, uint64(950_000), res.Outcome.Payout)
		assert.Equal(t, uint64(1_000_000), res.Outcome.Wager)
		assert.Equal(t, xledger.Ref("tx-event"), res.Outcome.TransactionRef)
		assert.False(t, res.Outcome.Fallback)
	})

	t.Run("多个结果事件取最后一个", func(t *testing.T) {
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref: "tx-multi",
			Events: []xledger.Event{
				{Program: testProgram, Name: "SpinResult", Data: map[string]any{"symbols": []any{0, 0, 0}, "payout": 1}},
				{Program: testProgram, Name: "SpinResult", Data: map[string]any{"symbols": []any{2, 4, 6}, "payout": 0}},
			},
		}}
		res, err := e.Extract(ctx, conn, "tx-multi")
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, [3]uint8{2, 4, 6}, res.Outcome.Symbols)
		assert.Zero(t, res.Outcome.Payout)
	})

	t.Run("其他程序的事件被忽略", func(t *testing.T) {
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref: "tx-foreign",
			Events: []xledger.Event{
				{Program: "other-program", Name: "SpinResult", Data: map[string]any{"symbols": []any{1, 1, 1}, "payout": 42}},
			},
		}}
		res, err := e.Extract(ctx, conn, "tx-foreign")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, ReasonNoEventData, res.Reason)
	})

	t.Run("事件缺失时回退到日志行", func(t *testing.T) {
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref: "tx-log",
			LogLines: []string{
				"Program log: Instruction: Spin",
				"Program log: SpinRequested { user: u2, bet_amount: 500000, symbols: [0, 0, 0] }",
				"Program log: SpinResult { user: u2, symbols: [7, 7, 7], payout: 475000 }",
			},
		}}
		res, err := e.Extract(ctx, conn, "tx-log")
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, [3]uint8{7, 7, 7}, res.Outcome.Symbols)
		assert.Equal(t, uint64(475_000), res.Outcome.Payout)
		assert.Equal(t, uint64(500_000), res.Outcome.Wager)
	})

	t.Run("多条日志行取最后一条", func(t *testing.T) {
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref: "tx-two-lines",
			LogLines: []string{
				"Program log: SpinResult { user: u3, symbols: [1, 1, 1], payout: 100 }",
				"Program log: SpinResult { user: u3, symbols: [0, 3, 6], payout: 0 }",
			},
		}}
		res, err := e.Extract(ctx, conn, "tx-two-lines")
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, [3]uint8{0, 3, 6}, res.Outcome.Symbols)
		assert.Zero(t, res.Outcome.Payout)
	})

	t.Run("SpinRequested 不会被当作结果", func(t *testing.T) {
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref: "tx-requested-only",
			LogLines: []string{
				"Program log: SpinRequested { user: u4, bet_amount: 250000, symbols: [2, 2, 2] }",
			},
		}}
		res, err := e.Extract(ctx, conn, "tx-requested-only")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, ReasonNoEventData, res.Reason)
	})

	t.Run("成功但无事件数据", func(t *testing.T) {
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref:      "tx-empty",
			LogLines: []string{"Program log: Instruction: Spin"},
		}}
		res, err := e.Extract(ctx, conn, "tx-empty")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, ReasonNoEventData, res.Reason)
	})

	t.Run("非法符号的事件被跳过", func(t *testing.T) {
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref: "tx-bad-symbol",
			Events: []xledger.Event{
				{Program: testProgram, Name: "SpinResult", Data: map[string]any{"symbols": []any{4, 4, 4}, "payout": 10}},
				{Program: testProgram, Name: "SpinResult", Data: map[string]any{"symbols": []any{9, 9, 9}, "payout": 10}},
			},
		}}
		res, err := e.Extract(ctx, conn, "tx-bad-symbol")
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, [3]uint8{4, 4, 4}, res.Outcome.Symbols)
	})

	t.Run("超出 uint8 的符号值不被截断接受", func(t *testing.T) {
		// 263 截断后是 7，必须按格式不合法处理而不是当成符号 7
		conn := &fakeLedger{tx: &xledger.Transaction{
			Ref: "tx-overflow-symbol",
			Events: []xledger.Event{
				{Program: testProgram, Name: "SpinResult", Data: map[string]any{"symbols": []any{263, 263, 263}, "payout": 12345}},
			},
		}}
		res, err := e.Extract(ctx, conn, "tx-overflow-symbol")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, ReasonNoEventData, res.Reason)
	})

	t.Run("参数校验", func(t *testing.T) {
		_, err := e.Extract(ctx, nil, "tx-1")
		assert.ErrorIs(t, err, ErrNilConnection)

		_, err = e.Extract(ctx, &fakeLedger{}, "")
		assert.ErrorIs(t, err, ErrEmptyRef)
	})
}

func TestExtractor_JSONNumbers(t *testing.T) {
	// JSON 解码会把所有数值变成 float64
	e := NewExtractor(testProgram)
	conn := &fakeLedger{tx: &xledger.Transaction{
		Ref: "tx-json",
		Events: []xledger.Event{{
			Program: testProgram,
			Name:    "SpinResult",
			Data: map[string]any{
				"symbols": []any{float64(6), float64(6), float64(6)},
				"payout":  float64(123456),
			},
		}},
	}}
	res, err := e.Extract(context.Background(), conn, "tx-json")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, [3]uint8{6, 6, 6}, res.Outcome.Symbols)
	assert.Equal(t, uint64(123456), res.Outcome.Payout)
}
