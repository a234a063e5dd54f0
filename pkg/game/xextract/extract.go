package xextract

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/gorbagana/slotkit/pkg/game/xoutcome"
	"github.com/gorbagana/slotkit/pkg/game/xsymbol"
	"github.com/gorbagana/slotkit/pkg/ledger/xledger"
	"github.com/gorbagana/slotkit/pkg/observability/xlog"
)

// 预定义错误
var (
	// ErrNilConnection 账本连接为空
	ErrNilConnection = errors.New("xextract: connection cannot be nil")
	// ErrEmptyRef 交易引用为空
	ErrEmptyRef = errors.New("xextract: transaction reference cannot be empty")
)

// Reason 提取失败的原因
type Reason string

// 失败原因集合
const (
	// ReasonNone 提取成功
	ReasonNone Reason = ""
	// ReasonNotFound 按引用查询不到交易
	ReasonNotFound Reason = "transaction not found"
	// ReasonTransactionFailed 交易链上执行失败
	ReasonTransactionFailed Reason = "transaction failed"
	// ReasonNoEventData 交易成功但没有可用的结果事件
	ReasonNoEventData Reason = "transaction succeeded but no event data"
)

// 程序日志里的事件名
const (
	eventSpinResult    = "SpinResult"
	eventSpinRequested = "SpinRequested"
)

// spinResultPattern 匹配日志行里的结果记录：
//
//	SpinResult { user: <pubkey>, symbols: [a, b, c], payout: N }
var spinResultPattern = regexp.MustCompile(
	`SpinResult\s*\{\s*user:\s*(\S+?),\s*symbols:\s*\[(\d+),\s*(\d+),\s*(\d+)\],\s*payout:\s*(\d+)\s*\}`,
)

// spinRequestedPattern 匹配日志行里的下注记录，只用于补全 Wager
var spinRequestedPattern = regexp.MustCompile(
	`SpinRequested\s*\{\s*user:\s*\S+?,\s*bet_amount:\s*(\d+)`,
)

// Result 一次提取的结果
type Result struct {
	// Success 是否成功恢复出权威结果
	Success bool

	// Outcome 恢复出的结果（Success 为 true 时有效）
	Outcome xoutcome.SpinOutcome

	// Reason 失败原因（Success 为 false 时有效）
	Reason Reason
}

// Extractor 从已结算交易中提取旋转结果
type Extractor struct {
	program string
	logger  xlog.Logger
}

// Option 提取器配置选项
type Option func(*Extractor)

// WithLogger 设置日志记录器
func WithLogger(logger xlog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor 创建提取器
//
// program 为发出结果事件的程序标识，结构化事件按它过滤。
func NewExtractor(program string, opts ...Option) *Extractor {
	e := &Extractor{
		program: program,
		logger:  xlog.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract 获取交易并恢复结果
//
// 交易查询不到、交易失败、成功但缺少事件数据时分别返回带对应
// Reason 的失败结果；只有账本查询本身出错才返回 error。
func (e *Extractor) Extract(ctx context.Context, conn xledger.Connection, ref xledger.Ref) (Result, error) {
	if conn == nil {
		return Result{}, ErrNilConnection
	}
	if ref == "" {
		return Result{}, ErrEmptyRef
	}

	tx, err := conn.Transaction(ctx, ref)
	if err != nil {
		if errors.Is(err, xledger.ErrNotFound) {
			return Result{Reason: ReasonNotFound}, nil
		}
		return Result{}, err
	}
	if tx.Failed {
		e.logger.Debug(ctx, "transaction settled as failed",
			slog.String("ref", string(ref)),
			slog.String("reason", tx.FailureReason),
		)
		return Result{Reason: ReasonTransactionFailed}, nil
	}
	return e.FromTransaction(ctx, tx), nil
}

// FromTransaction 从已获取的成功交易中恢复结果
//
// 优先使用结构化事件，退而扫描日志行，两者均取最后一次出现。
func (e *Extractor) FromTransaction(ctx context.Context, tx *xledger.Transaction) Result {
	wager := e.extractWager(tx)

	if out, ok := e.fromEvents(tx, wager); ok {
		e.logger.Debug(ctx, "outcome recovered from structured event",
			slog.String("ref", string(tx.Ref)),
			slog.Uint64("payout", out.Payout),
		)
		return Result{Success: true, Outcome: out}
	}
	if out, ok := e.fromLogLines(tx, wager); ok {
		e.logger.Debug(ctx, "outcome recovered from log lines",
			slog.String("ref", string(tx.Ref)),
			slog.Uint64("payout", out.Payout),
		)
		return Result{Success: true, Outcome: out}
	}

	e.logger.Warn(ctx, "settled transaction carries no outcome event",
		slog.String("ref", string(tx.Ref)),
	)
	return Result{Reason: ReasonNoEventData}
}

// fromEvents 取最后一个匹配程序的 SpinResult 事件
func (e *Extractor) fromEvents(tx *xledger.Transaction, wager uint64) (xoutcome.SpinOutcome, bool) {
	for i := len(tx.Events) - 1; i >= 0; i-- {
		ev := tx.Events[i]
		if ev.Name != eventSpinResult {
			continue
		}
		if e.program != "" && ev.Program != e.program {
			continue
		}
		out, ok := decodeEvent(ev.Data)
		if !ok {
			continue
		}
		out.TransactionRef = tx.Ref
		out.Wager = wager
		out.Timestamp = time.Now()
		return out, true
	}
	return xoutcome.SpinOutcome{}, false
}

// fromLogLines 正则扫描日志行，最后一条匹配为准
func (e *Extractor) fromLogLines(tx *xledger.Transaction, wager uint64) (xoutcome.SpinOutcome, bool) {
	for i := len(tx.LogLines) - 1; i >= 0; i-- {
		m := spinResultPattern.FindStringSubmatch(tx.LogLines[i])
		if m == nil {
			continue
		}
		var symbols [3]uint8
		valid := true
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseUint(m[2+j], 10, 8)
			if err != nil || !xsymbol.Valid(uint8(v)) {
				valid = false
				break
			}
			symbols[j] = uint8(v)
		}
		if !valid {
			continue
		}
		payout, err := strconv.ParseUint(m[5], 10, 64)
		if err != nil {
			continue
		}
		return xoutcome.SpinOutcome{
			Symbols:        symbols,
			Payout:         payout,
			Wager:          wager,
			TransactionRef: tx.Ref,
			Timestamp:      time.Now(),
		}, true
	}
	return xoutcome.SpinOutcome{}, false
}

// extractWager 从 SpinRequested 事件或日志行补全下注金额
//
// SpinRequested 只提供上下文，永远不会被当作结果。
func (e *Extractor) extractWager(tx *xledger.Transaction) uint64 {
	for i := len(tx.Events) - 1; i >= 0; i-- {
		ev := tx.Events[i]
		if ev.Name != eventSpinRequested {
			continue
		}
		if e.program != "" && ev.Program != e.program {
			continue
		}
		if w, ok := toUint64(ev.Data["bet_amount"]); ok {
			return w
		}
	}
	for i := len(tx.LogLines) - 1; i >= 0; i-- {
		if m := spinRequestedPattern.FindStringSubmatch(tx.LogLines[i]); m != nil {
			if w, err := strconv.ParseUint(m[1], 10, 64); err == nil {
				return w
			}
		}
	}
	return 0
}

// decodeEvent 解码 SpinResult 事件字段
func decodeEvent(data map[string]any) (xoutcome.SpinOutcome, bool) {
	raw, ok := data["symbols"]
	if !ok {
		return xoutcome.SpinOutcome{}, false
	}
	ids, ok := toSymbolSlice(raw)
	if !ok {
		return xoutcome.SpinOutcome{}, false
	}
	payout, ok := toUint64(data["payout"])
	if !ok {
		return xoutcome.SpinOutcome{}, false
	}
	return xoutcome.SpinOutcome{Symbols: ids, Payout: payout}, true
}

// toSymbolSlice 把松散解码的符号数组转成 [3]uint8
func toSymbolSlice(raw any) ([3]uint8, bool) {
	var out [3]uint8
	items, ok := toAnySlice(raw)
	if !ok || len(items) != 3 {
		return out, false
	}
	for i, item := range items {
		v, ok := toUint64(item)
		// 先做范围检查再窄化，避免 uint8 截断把 263 当成 7
		if !ok || v >= uint64(xsymbol.Count) {
			return out, false
		}
		out[i] = uint8(v)
	}
	return out, true
}

func toAnySlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []uint8:
		out := make([]any, len(v))
		for i, b := range v {
			out[i] = uint64(b)
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

// toUint64 兼容 JSON 解码产生的数值表示
func toUint64(raw any) (uint64, bool) {
	switch v := raw.(type) {
	case uint64:
		return v, true
	case uint32:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return 0, false
		}
		return uint64(v), true
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
