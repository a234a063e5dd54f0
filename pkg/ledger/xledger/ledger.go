package xledger

import (
	"context"
	"errors"
)

// Ref 不透明的交易引用
//
// 由提交回调返回，之后用于查询结算状态与已结算交易。
// 内容格式由账本网络决定，核心层不做任何解析。
type Ref string

// 参数与查询错误
var (
	// ErrNotFound 按引用查询不到交易
	ErrNotFound = errors.New("xledger: transaction not found")

	// ErrInvalidWager 下注金额非法（为零）
	ErrInvalidWager = errors.New("xledger: invalid bet amount")

	// ErrWagerTooHigh 下注金额超过上限
	ErrWagerTooHigh = errors.New("xledger: bet amount too high")
)

// MaxWager 单次下注上限，以账本原生资产的最小整数单位计
const MaxWager uint64 = 1_000_000_000

// ValidateWager 校验下注金额
//
// 金额为零返回 ErrInvalidWager，超过 MaxWager 返回 ErrWagerTooHigh。
func ValidateWager(wager uint64) error {
	if wager == 0 {
		return ErrInvalidWager
	}
	if wager > MaxWager {
		return ErrWagerTooHigh
	}
	return nil
}

// SignatureStatus 交易的结算状态
type SignatureStatus struct {
	// Confirmations 当前确认数
	Confirmations int

	// Confirmed 是否已结算（成功或失败都算已结算）
	Confirmed bool

	// Failed 结算结果是否为失败
	Failed bool
}

// Event 程序发出的结构化事件记录
type Event struct {
	// Program 发出事件的程序标识
	Program string

	// Name 事件名，例如 "SpinResult"
	Name string

	// Data 事件字段，解码后的松散结构
	Data map[string]any
}

// Transaction 已结算的交易
type Transaction struct {
	// Ref 交易引用
	Ref Ref

	// Failed 链上执行是否失败
	Failed bool

	// FailureReason 失败原因（Failed 为 true 时有效）
	FailureReason string

	// Events 结构化事件记录，按发出顺序排列
	Events []Event

	// LogLines 人类可读的日志行，按发出顺序排列
	LogLines []string

	// Slot 交易落账的高度
	Slot uint64
}

// Connection 账本网络连接抽象
//
// 核心层依赖但不实现此接口。所有方法都可能因网络原因失败，
// 调用方应通过 xexec 包装执行以获得超时、重试与熔断保护。
type Connection interface {
	// LatestReference 获取最新的区块引用（轻量探测调用）
	LatestReference(ctx context.Context) (string, error)

	// CurrentHeight 获取当前高度（轻量探测调用）
	CurrentHeight(ctx context.Context) (uint64, error)

	// NodeVersion 获取节点版本（轻量探测调用）
	NodeVersion(ctx context.Context) (string, error)

	// Balance 查询账户余额
	Balance(ctx context.Context, account string) (uint64, error)

	// SignatureStatus 查询交易的结算状态
	SignatureStatus(ctx context.Context, ref Ref) (SignatureStatus, error)

	// Transaction 按引用获取已结算交易
	// 查询不到时返回 ErrNotFound。
	Transaction(ctx context.Context, ref Ref) (*Transaction, error)
}
