package xclassify

// Kind 错误分类，封闭枚举
type Kind string

// 全部分类
const (
	KindWallet            Kind = "WALLET"
	KindNetwork           Kind = "NETWORK"
	KindTransaction       Kind = "TRANSACTION"
	KindContract          Kind = "CONTRACT"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindUserRejected      Kind = "USER_REJECTED"
	KindInitialization    Kind = "INITIALIZATION"
	KindUnknown           Kind = "UNKNOWN"
)

// Severity 错误严重度
type Severity string

// 全部严重度
const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// String 实现 fmt.Stringer
func (k Kind) String() string { return string(k) }

// String 实现 fmt.Stringer
func (s Severity) String() string { return string(s) }
