package xbreaker

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// State 熔断器状态，复用 gobreaker 的定义
type State = gobreaker.State

// 状态别名
const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// Counts 统计计数，复用 gobreaker 的定义
type Counts = gobreaker.Counts

// Config 熔断策略配置
//
// 阈值为观测值而非协议要求，请按部署环境调整。
type Config struct {
	// FailureRatio 触发熔断的失败率阈值 (0, 1]
	FailureRatio float64

	// MinRequests 统计失败率所需的最小请求数
	MinRequests uint32

	// ConsecutiveFailures 触发熔断的连续失败次数
	ConsecutiveFailures uint32

	// Cooldown Open 状态持续时间，之后进入 HalfOpen
	Cooldown time.Duration

	// MaxHalfOpenRequests HalfOpen 状态允许通过的请求数
	MaxHalfOpenRequests uint32

	// OnStateChange 状态变化回调，可用于日志与告警
	OnStateChange func(operation string, from, to State)
}

// DefaultConfig 返回默认熔断策略
func DefaultConfig() Config {
	return Config{
		FailureRatio:        0.8,
		MinRequests:         5,
		ConsecutiveFailures: 5,
		Cooldown:            30 * time.Second,
		MaxHalfOpenRequests: 1,
	}
}

// normalize 填充零值字段为默认值
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = def.FailureRatio
	}
	if c.MinRequests == 0 {
		c.MinRequests = def.MinRequests
	}
	if c.ConsecutiveFailures == 0 {
		c.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if c.Cooldown <= 0 {
		c.Cooldown = def.Cooldown
	}
	if c.MaxHalfOpenRequests == 0 {
		c.MaxHalfOpenRequests = def.MaxHalfOpenRequests
	}
	return c
}

// Snapshot 熔断器的观测快照
type Snapshot struct {
	// Operation 操作 id
	Operation string

	// State 当前状态
	State State

	// Counts 当前统计计数
	Counts Counts
}

// Registry 按操作 id 隔离的熔断器注册表
//
// 并发安全。熔断器按需懒创建，Reset 通过重建实例实现（gobreaker
// 不提供原生重置），这同时清空统计计数。
type Registry struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// NewRegistry 创建熔断器注册表
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// breaker 返回操作 id 对应的熔断器，不存在时创建
func (r *Registry) breaker(operation string) *gobreaker.CircuitBreaker[any] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[operation]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[any](r.buildSettings(operation))
	r.breakers[operation] = cb
	return cb
}

// buildSettings 构建 gobreaker 配置
func (r *Registry) buildSettings(operation string) gobreaker.Settings {
	cfg := r.cfg
	st := gobreaker.Settings{
		Name:        operation,
		MaxRequests: cfg.MaxHalfOpenRequests,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
	}
	if cfg.OnStateChange != nil {
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, from, to)
		}
	}
	return st
}

// Do 在操作的熔断器保护下执行 fn
//
// 熔断器处于 Open 状态时 fn 不会被调用，返回 OpenError。
// fn 的成功与失败都会计入该操作的统计。
func (r *Registry) Do(operation string, fn func() (any, error)) (any, error) {
	if operation == "" {
		return nil, ErrEmptyOperationID
	}
	if fn == nil {
		return nil, ErrNilFunc
	}

	result, err := r.breaker(operation).Execute(fn)
	if err != nil {
		return result, wrapOpenError(err, operation)
	}
	return result, nil
}

// State 返回操作的当前熔断状态
//
// 尚未创建的熔断器视为 Closed。
func (r *Registry) State(operation string) State {
	r.mu.Lock()
	cb, ok := r.breakers[operation]
	r.mu.Unlock()

	if !ok {
		return StateClosed
	}
	return cb.State()
}

// Snapshot 返回操作的观测快照
func (r *Registry) Snapshot(operation string) Snapshot {
	r.mu.Lock()
	cb, ok := r.breakers[operation]
	r.mu.Unlock()

	if !ok {
		return Snapshot{Operation: operation, State: StateClosed}
	}
	return Snapshot{Operation: operation, State: cb.State(), Counts: cb.Counts()}
}

// Reset 清除操作的熔断状态
//
// 已打开的熔断器立即恢复为 Closed，统计计数清零。
func (r *Registry) Reset(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.breakers, operation)
}

// ResetAll 清除所有操作的熔断状态（强制恢复）
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakers = make(map[string]*gobreaker.CircuitBreaker[any])
}
