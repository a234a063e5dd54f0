package xoutcome

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/gorbagana/slotkit/pkg/game/xsymbol"
	"github.com/gorbagana/slotkit/pkg/ledger/xledger"
	"github.com/gorbagana/slotkit/pkg/observability/xlog"
)

// 预定义错误
var (
	// ErrEmptyRef 交易引用为空
	ErrEmptyRef = errors.New("xoutcome: transaction reference cannot be empty")
	// ErrZeroWager 下注金额为零
	ErrZeroWager = errors.New("xoutcome: wager must be greater than zero")
)

// 损局三个滚轮使用互不相关的种子偏移，
// 取第 100000 与第 1000000 个素数拉开距离。
const (
	reelOffsetB = 1_299_709
	reelOffsetC = 15_485_863
)

// SpinOutcome 一次旋转的最终结果
type SpinOutcome struct {
	// Symbols 三个滚轮的符号 id
	Symbols [3]uint8 `json:"symbols"`
	// Payout 赔付金额（最小记账单位）
	Payout uint64 `json:"payout"`
	// Wager 下注金额（最小记账单位）
	Wager uint64 `json:"wager"`
	// TransactionRef 结果对应的交易引用
	TransactionRef xledger.Ref `json:"transaction_ref"`
	// Timestamp 结果生成时间
	Timestamp time.Time `json:"timestamp"`
	// Fallback 是否为本地合成的回退结果
	Fallback bool `json:"fallback"`
}

// IsWin 三个符号是否全部相同
func (o SpinOutcome) IsWin() bool {
	return o.Symbols[0] == o.Symbols[1] && o.Symbols[1] == o.Symbols[2]
}

// Config 生成与校验共享的规则参数
type Config struct {
	// WinProbability 回退结果判定为赢局的概率，取值 (0, 1)
	WinProbability float64
	// HouseEdgePercent 庄家优势百分比，取值 [0, 100)
	HouseEdgePercent uint64
	// MaxPayoutPerWager 单次旋转赔付上限（最小记账单位）
	MaxPayoutPerWager uint64
}

// DefaultConfig 返回默认规则参数
func DefaultConfig() Config {
	return Config{
		WinProbability:    0.15,
		HouseEdgePercent:  5,
		MaxPayoutPerWager: 1_000_000_000,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.WinProbability <= 0 || c.WinProbability >= 1 {
		c.WinProbability = def.WinProbability
	}
	if c.HouseEdgePercent >= 100 {
		c.HouseEdgePercent = def.HouseEdgePercent
	}
	if c.MaxPayoutPerWager == 0 {
		c.MaxPayoutPerWager = def.MaxPayoutPerWager
	}
	return c
}

// maxPayout 赢局赔付封顶
func (c Config) maxPayout(wager uint64, multiplier uint64) uint64 {
	bound := wager * multiplier
	if edged := wager - wager*c.HouseEdgePercent/100; edged < bound {
		bound = edged
	}
	if c.MaxPayoutPerWager < bound {
		bound = c.MaxPayoutPerWager
	}
	return bound
}

// Generator 回退结果生成器
type Generator struct {
	table  *xsymbol.Table
	cfg    Config
	logger xlog.Logger
}

// GeneratorOption 生成器配置选项
type GeneratorOption func(*Generator)

// WithTable 设置符号表，默认使用内置符号表
func WithTable(t *xsymbol.Table) GeneratorOption {
	return func(g *Generator) {
		if t != nil {
			g.table = t
		}
	}
}

// WithConfig 设置规则参数，非法字段回落到默认值
func WithConfig(cfg Config) GeneratorOption {
	return func(g *Generator) {
		g.cfg = cfg.normalize()
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger xlog.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator 创建回退结果生成器
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		table:  xsymbol.Default(),
		cfg:    DefaultConfig(),
		logger: xlog.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate 为一笔交易合成确定性的回退结果。
// txSucceeded 为 false 时结果恒为赔付 0 的损局。
func (g *Generator) Generate(ctx context.Context, ref xledger.Ref, wager uint64, txSucceeded bool) (SpinOutcome, error) {
	if ref == "" {
		return SpinOutcome{}, ErrEmptyRef
	}
	if wager == 0 {
		return SpinOutcome{}, ErrZeroWager
	}
	// maxPayout 的乘法在 MaxWager 之内不会溢出
	if err := xledger.ValidateWager(wager); err != nil {
		return SpinOutcome{}, err
	}

	seed := deriveSeed(ref, wager)
	out := SpinOutcome{
		Wager:          wager,
		TransactionRef: ref,
		Timestamp:      time.Now(),
		Fallback:       true,
	}

	win := txSucceeded && uniform(seed) < g.cfg.WinProbability
	if win {
		sym := g.table.Pick(seed)
		out.Symbols = [3]uint8{sym.ID, sym.ID, sym.ID}
		out.Payout = g.cfg.maxPayout(wager, sym.Multiplier)
	} else {
		out.Symbols = g.pickLoss(seed)
	}

	g.logger.Debug(ctx, "synthesized fallback outcome",
		slog.String("ref", string(ref)),
		slog.Uint64("wager", wager),
		slog.Bool("win", win),
		slog.Uint64("payout", out.Payout),
	)
	return out, nil
}

// pickLoss 挑选三个不全相同的符号
func (g *Generator) pickLoss(seed uint64) [3]uint8 {
	s := [3]uint8{
		g.table.Pick(seed).ID,
		g.table.Pick(seed + reelOffsetB).ID,
		g.table.Pick(seed + reelOffsetC).ID,
	}
	// 加权挑选可能意外全相同，扰动第三个滚轮保证损局语义
	if s[0] == s[1] && s[1] == s[2] {
		s[2] = (s[2] + 1) % xsymbol.Count
	}
	return s
}

// deriveSeed 由交易引用与下注金额派生种子
func deriveSeed(ref xledger.Ref, wager uint64) uint64 {
	return xxhash.Sum64String(string(ref) + ":" + strconv.FormatUint(wager, 10))
}

// uniform 将种子高 53 位映射到 [0, 1)
func uniform(seed uint64) float64 {
	return float64(seed>>11) / (1 << 53)
}

// Validator 结果校验器，独立于结果来源复查规则边界
type Validator struct {
	table *xsymbol.Table
	cfg   Config
}

// NewValidator 创建结果校验器。table 为 nil 时使用内置符号表，
// cfg 的非法字段回落到默认值。
func NewValidator(cfg Config, table *xsymbol.Table) *Validator {
	if table == nil {
		table = xsymbol.Default()
	}
	return &Validator{table: table, cfg: cfg.normalize()}
}

// Validate 校验结果是否满足规则边界
func (v *Validator) Validate(o SpinOutcome) bool {
	for _, id := range o.Symbols {
		if !xsymbol.Valid(id) {
			return false
		}
	}
	if !o.IsWin() {
		return o.Payout == 0
	}
	if o.Wager == 0 {
		return o.Payout == 0
	}
	return o.Payout <= v.cfg.maxPayout(o.Wager, v.table.Multiplier(o.Symbols[0]))
}
