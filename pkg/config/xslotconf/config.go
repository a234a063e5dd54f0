package xslotconf

import (
	"errors"
	"fmt"
	"time"
)

// 配置加载与校验错误
var (
	// ErrEmptyPath 配置文件路径为空
	ErrEmptyPath = errors.New("xslotconf: empty config path")

	// ErrUnsupportedFormat 不支持的配置格式
	ErrUnsupportedFormat = errors.New("xslotconf: unsupported config format")

	// ErrLoadFailed 配置读取失败
	ErrLoadFailed = errors.New("xslotconf: failed to load config")

	// ErrParseFailed 配置解析失败
	ErrParseFailed = errors.New("xslotconf: failed to parse config")

	// ErrInvalidConfig 配置校验失败
	ErrInvalidConfig = errors.New("xslotconf: invalid config")
)

// Format 配置文件格式
type Format string

// 支持的配置格式
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// GameConfig 游戏规则参数
type GameConfig struct {
	// WinProbability 回退结果的赢局概率，(0, 1)
	WinProbability float64 `koanf:"win_probability"`

	// HouseEdgePercent 庄家优势百分比，[0, 100)
	HouseEdgePercent uint64 `koanf:"house_edge_percent"`

	// MaxPayoutPerWager 单次旋转赔付上限（最小记账单位）
	MaxPayoutPerWager uint64 `koanf:"max_payout_per_wager"`

	// MaxWager 单次下注上限（最小记账单位）
	MaxWager uint64 `koanf:"max_wager"`
}

// ResilienceConfig 韧性参数
type ResilienceConfig struct {
	// Timeout 单次操作（含全部重试）的总超时
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries 最大调用次数（含首次）
	MaxRetries uint `koanf:"max_retries"`

	// BackoffBase 退避基础间隔
	BackoffBase time.Duration `koanf:"backoff_base"`

	// BackoffMultiplier 退避倍率
	BackoffMultiplier float64 `koanf:"backoff_multiplier"`

	// BackoffCap 退避间隔上限
	BackoffCap time.Duration `koanf:"backoff_cap"`

	// BreakerFailureRatio 熔断失败率阈值，(0, 1]
	BreakerFailureRatio float64 `koanf:"breaker_failure_ratio"`

	// BreakerMinRequests 失败率判定的最小请求数
	BreakerMinRequests uint32 `koanf:"breaker_min_requests"`

	// BreakerConsecutive 连续失败熔断阈值
	BreakerConsecutive uint32 `koanf:"breaker_consecutive"`

	// BreakerCooldown 熔断冷却时长
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`

	// HealthCacheInterval 健康检查结果缓存时长
	HealthCacheInterval time.Duration `koanf:"health_cache_interval"`

	// HealthQuorum 判定健康所需的探测成功数，[1, 3]
	HealthQuorum int `koanf:"health_quorum"`

	// HealthProbeTimeout 单次探测超时
	HealthProbeTimeout time.Duration `koanf:"health_probe_timeout"`

	// RecoveryWait 强制恢复时等待网络转为健康的上限
	RecoveryWait time.Duration `koanf:"recovery_wait"`

	// SettlementPollInterval 结算状态轮询间隔
	SettlementPollInterval time.Duration `koanf:"settlement_poll_interval"`

	// SettlementTimeout 等待结算的上限
	SettlementTimeout time.Duration `koanf:"settlement_timeout"`

	// BatchConcurrency 批量执行的最大并发数
	BatchConcurrency int64 `koanf:"batch_concurrency"`
}

// Config 顶层配置
type Config struct {
	Game       GameConfig       `koanf:"game"`
	Resilience ResilienceConfig `koanf:"resilience"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Game: GameConfig{
			WinProbability:    0.15,
			HouseEdgePercent:  5,
			MaxPayoutPerWager: 1_000_000_000,
			MaxWager:          1_000_000_000,
		},
		Resilience: ResilienceConfig{
			Timeout:                30 * time.Second,
			MaxRetries:             3,
			BackoffBase:            time.Second,
			BackoffMultiplier:      2.0,
			BackoffCap:             30 * time.Second,
			BreakerFailureRatio:    0.8,
			BreakerMinRequests:     5,
			BreakerConsecutive:     5,
			BreakerCooldown:        30 * time.Second,
			HealthCacheInterval:    30 * time.Second,
			HealthQuorum:           2,
			HealthProbeTimeout:     5 * time.Second,
			RecoveryWait:           10 * time.Second,
			SettlementPollInterval: time.Second,
			SettlementTimeout:      60 * time.Second,
			BatchConcurrency:       4,
		},
	}
}

// Validate 校验配置
//
// 返回第一个发现的问题，包装 ErrInvalidConfig。
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := c.Game.validate(); err != nil {
		return err
	}
	return c.Resilience.validate()
}

func (g GameConfig) validate() error {
	if g.WinProbability <= 0 || g.WinProbability >= 1 {
		return fmt.Errorf("%w: game.win_probability must be in (0, 1), got %v", ErrInvalidConfig, g.WinProbability)
	}
	if g.HouseEdgePercent >= 100 {
		return fmt.Errorf("%w: game.house_edge_percent must be below 100, got %d", ErrInvalidConfig, g.HouseEdgePercent)
	}
	if g.MaxPayoutPerWager == 0 {
		return fmt.Errorf("%w: game.max_payout_per_wager must be positive", ErrInvalidConfig)
	}
	if g.MaxWager == 0 {
		return fmt.Errorf("%w: game.max_wager must be positive", ErrInvalidConfig)
	}
	return nil
}

func (r ResilienceConfig) validate() error {
	if r.Timeout <= 0 {
		return fmt.Errorf("%w: resilience.timeout must be positive", ErrInvalidConfig)
	}
	if r.MaxRetries == 0 {
		return fmt.Errorf("%w: resilience.max_retries must be at least 1", ErrInvalidConfig)
	}
	if r.BackoffBase <= 0 {
		return fmt.Errorf("%w: resilience.backoff_base must be positive", ErrInvalidConfig)
	}
	if r.BackoffMultiplier < 1 {
		return fmt.Errorf("%w: resilience.backoff_multiplier must be at least 1, got %v", ErrInvalidConfig, r.BackoffMultiplier)
	}
	if r.BackoffCap < r.BackoffBase {
		return fmt.Errorf("%w: resilience.backoff_cap must be at least backoff_base", ErrInvalidConfig)
	}
	if r.BreakerFailureRatio <= 0 || r.BreakerFailureRatio > 1 {
		return fmt.Errorf("%w: resilience.breaker_failure_ratio must be in (0, 1], got %v", ErrInvalidConfig, r.BreakerFailureRatio)
	}
	if r.BreakerMinRequests == 0 {
		return fmt.Errorf("%w: resilience.breaker_min_requests must be positive", ErrInvalidConfig)
	}
	if r.BreakerConsecutive == 0 {
		return fmt.Errorf("%w: resilience.breaker_consecutive must be positive", ErrInvalidConfig)
	}
	if r.BreakerCooldown <= 0 {
		return fmt.Errorf("%w: resilience.breaker_cooldown must be positive", ErrInvalidConfig)
	}
	if r.HealthCacheInterval <= 0 {
		return fmt.Errorf("%w: resilience.health_cache_interval must be positive", ErrInvalidConfig)
	}
	if r.HealthQuorum < 1 || r.HealthQuorum > 3 {
		return fmt.Errorf("%w: resilience.health_quorum must be in [1, 3], got %d", ErrInvalidConfig, r.HealthQuorum)
	}
	if r.HealthProbeTimeout <= 0 {
		return fmt.Errorf("%w: resilience.health_probe_timeout must be positive", ErrInvalidConfig)
	}
	if r.RecoveryWait <= 0 {
		return fmt.Errorf("%w: resilience.recovery_wait must be positive", ErrInvalidConfig)
	}
	if r.SettlementPollInterval <= 0 {
		return fmt.Errorf("%w: resilience.settlement_poll_interval must be positive", ErrInvalidConfig)
	}
	if r.SettlementTimeout <= 0 {
		return fmt.Errorf("%w: resilience.settlement_timeout must be positive", ErrInvalidConfig)
	}
	if r.BatchConcurrency < 1 {
		return fmt.Errorf("%w: resilience.batch_concurrency must be at least 1, got %d", ErrInvalidConfig, r.BatchConcurrency)
	}
	return nil
}
