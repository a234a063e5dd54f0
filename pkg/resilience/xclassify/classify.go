package xclassify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gorbagana/slotkit/pkg/observability/xlog"
)

// Pattern 分类规则
//
// Substring 与小写化后的错误消息做包含匹配。规则按表序匹配，首个命中生效。
type Pattern struct {
	// Substring 匹配子串（应为小写）
	Substring string

	// Kind 命中后的分类
	Kind Kind

	// Severity 命中后的严重度
	Severity Severity

	// Retryable 命中后是否可重试
	Retryable bool

	// UserMessage 可展示消息；为空时使用分类的默认消息
	UserMessage string
}

// defaultPatterns 内置分类表
//
// 顺序即优先级：更具体的模式放在前面。
var defaultPatterns = []Pattern{
	{Substring: "user rejected", Kind: KindUserRejected, Severity: SeverityLow, Retryable: false},
	{Substring: "rejected the request", Kind: KindUserRejected, Severity: SeverityLow, Retryable: false},
	{Substring: "insufficient funds", Kind: KindInsufficientFunds, Severity: SeverityHigh, Retryable: false},
	{Substring: "insufficient lamports", Kind: KindInsufficientFunds, Severity: SeverityHigh, Retryable: false},
	{Substring: "insufficient balance", Kind: KindInsufficientFunds, Severity: SeverityHigh, Retryable: false},
	{Substring: "wallet not connected", Kind: KindWallet, Severity: SeverityHigh, Retryable: false},
	{Substring: "no signer", Kind: KindWallet, Severity: SeverityHigh, Retryable: false},
	{Substring: "wallet", Kind: KindWallet, Severity: SeverityMedium, Retryable: false},
	{Substring: "not initialized", Kind: KindInitialization, Severity: SeverityHigh, Retryable: false},
	{Substring: "cannot be nil", Kind: KindInitialization, Severity: SeverityHigh, Retryable: false},
	{Substring: "cannot be empty", Kind: KindInitialization, Severity: SeverityHigh, Retryable: false},
	{Substring: "invalid bet amount", Kind: KindContract, Severity: SeverityMedium, Retryable: false},
	{Substring: "bet amount too high", Kind: KindContract, Severity: SeverityMedium, Retryable: false},
	{Substring: "custom program error", Kind: KindContract, Severity: SeverityHigh, Retryable: false},
	{Substring: "program failed", Kind: KindContract, Severity: SeverityHigh, Retryable: true},
	{Substring: "blockhash not found", Kind: KindTransaction, Severity: SeverityMedium, Retryable: true},
	{Substring: "transaction was not confirmed", Kind: KindTransaction, Severity: SeverityMedium, Retryable: true},
	{Substring: "transaction failed", Kind: KindTransaction, Severity: SeverityHigh, Retryable: true},
	{Substring: "transaction", Kind: KindTransaction, Severity: SeverityMedium, Retryable: true},
	{Substring: "timed out", Kind: KindNetwork, Severity: SeverityMedium, Retryable: true},
	{Substring: "timeout", Kind: KindNetwork, Severity: SeverityMedium, Retryable: true},
	{Substring: "deadline exceeded", Kind: KindNetwork, Severity: SeverityMedium, Retryable: true},
	{Substring: "connection refused", Kind: KindNetwork, Severity: SeverityHigh, Retryable: true},
	{Substring: "connection reset", Kind: KindNetwork, Severity: SeverityMedium, Retryable: true},
	{Substring: "network unhealthy", Kind: KindNetwork, Severity: SeverityHigh, Retryable: true},
	{Substring: "network", Kind: KindNetwork, Severity: SeverityMedium, Retryable: true},
	{Substring: "fetch", Kind: KindNetwork, Severity: SeverityMedium, Retryable: true},
	{Substring: "429", Kind: KindNetwork, Severity: SeverityLow, Retryable: true},
	{Substring: "503", Kind: KindNetwork, Severity: SeverityMedium, Retryable: true},
}

// userMessages 分类的默认可展示消息
var userMessages = map[Kind]string{
	KindWallet:            "Wallet unavailable. Please reconnect your wallet and try again.",
	KindNetwork:           "Network is unstable. Please try again in a moment.",
	KindTransaction:       "Transaction could not be completed. Please try again.",
	KindContract:          "The game program rejected the request.",
	KindInsufficientFunds: "Insufficient balance for this wager.",
	KindUserRejected:      "Request was cancelled.",
	KindInitialization:    "The game is not ready yet. Please reload and try again.",
	KindUnknown:           "Something went wrong. Please try again.",
}

// retryDelays 分类对应的建议重试延迟
var retryDelays = map[Kind]time.Duration{
	KindNetwork:     2 * time.Second,
	KindTransaction: 3 * time.Second,
	KindContract:    5 * time.Second,
}

// defaultRetryDelay 未在 retryDelays 中列出的分类使用的延迟
const defaultRetryDelay = time.Second

// Classifier 错误分类器
//
// 无状态且并发安全：分类表在构造时固定，之后只读。
type Classifier struct {
	patterns []Pattern
	logger   xlog.Logger
}

// ClassifierOption 分类器配置选项
type ClassifierOption func(*Classifier)

// WithPatterns 在内置分类表之前插入自定义规则
//
// 自定义规则优先于内置规则匹配。
func WithPatterns(patterns ...Pattern) ClassifierOption {
	return func(c *Classifier) {
		c.patterns = append(patterns, c.patterns...)
	}
}

// WithLogger 设置诊断日志输出
func WithLogger(l xlog.Logger) ClassifierOption {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClassifier 创建错误分类器
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		patterns: defaultPatterns,
		logger:   xlog.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify 把原始错误映射为 ClassifiedError
//
// 已经是 ClassifiedError 的错误原样返回，保证分类只发生一次。
// nil 错误返回 nil。此方法从不 panic。
// 副作用：每次新分类都会输出一条结构化诊断日志。
func (c *Classifier) Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	// 分类只发生一次：错误链中已有 ClassifiedError 时直接透传
	if ce, ok := As(err); ok {
		return ce
	}

	msg := strings.ToLower(err.Error())

	kind := KindUnknown
	severity := SeverityMedium
	retryable := true
	userMsg := ""

	for _, p := range c.patterns {
		if strings.Contains(msg, p.Substring) {
			kind = p.Kind
			severity = p.Severity
			retryable = p.Retryable
			userMsg = p.UserMessage
			break
		}
	}

	if userMsg == "" {
		userMsg = userMessages[kind]
	}

	var delay time.Duration
	if retryable {
		delay = retryDelays[kind]
		if delay == 0 {
			delay = defaultRetryDelay
		}
	}

	ce := &ClassifiedError{
		Kind:             kind,
		Severity:         severity,
		UserMessage:      userMsg,
		TechnicalMessage: err.Error(),
		RetryDelay:       delay,
		Timestamp:        time.Now(),
		retryable:        retryable,
		cause:            err,
	}

	c.logger.Debug(context.Background(), "error classified",
		slog.String("kind", string(kind)),
		slog.String("severity", string(severity)),
		slog.Bool("retryable", retryable),
		slog.String("error", err.Error()),
	)

	return ce
}

// NewClassified 直接构造 ClassifiedError
//
// 供弹性层为已知场景（熔断打开、网络不可恢复等）生成确定分类的错误，
// 不经过模式匹配。
func NewClassified(kind Kind, severity Severity, technical string, retryable bool, cause error) *ClassifiedError {
	var delay time.Duration
	if retryable {
		delay = retryDelays[kind]
		if delay == 0 {
			delay = defaultRetryDelay
		}
	}
	return &ClassifiedError{
		Kind:             kind,
		Severity:         severity,
		UserMessage:      userMessages[kind],
		TechnicalMessage: technical,
		RetryDelay:       delay,
		Timestamp:        time.Now(),
		retryable:        retryable,
		cause:            cause,
	}
}

// WithDiagnostics 返回附加了诊断信息的副本
//
// ClassifiedError 不可变，因此追加诊断信息通过复制实现。
func (e *ClassifiedError) WithDiagnostics(notes ...string) *ClassifiedError {
	cp := *e
	cp.Diagnostics = append(append([]string(nil), e.Diagnostics...), notes...)
	return &cp
}
