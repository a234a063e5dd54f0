package xretry

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"time"
)

// Backoff 指数退避策略
//
// delay = min(base × multiplier^(attempt-1), cap)，再叠加最多 jitter 比例的
// 随机增量。attempt 从 1 开始计（第一次重试前的等待）。
type Backoff struct {
	base       time.Duration
	cap        time.Duration
	multiplier float64
	jitter     float64
}

// BackoffOption 退避配置选项
type BackoffOption func(*Backoff)

// WithBase 设置初始延迟，d <= 0 时忽略
func WithBase(d time.Duration) BackoffOption {
	return func(b *Backoff) {
		if d > 0 {
			b.base = d
		}
	}
}

// WithCap 设置延迟上限，d <= 0 时忽略
func WithCap(d time.Duration) BackoffOption {
	return func(b *Backoff) {
		if d > 0 {
			b.cap = d
		}
	}
}

// WithMultiplier 设置乘数因子，小于 1.0 的值忽略
func WithMultiplier(m float64) BackoffOption {
	return func(b *Backoff) {
		if m >= 1 {
			b.multiplier = m
		}
	}
}

// WithJitter 设置抖动比例，限制在 [0, 1]
func WithJitter(j float64) BackoffOption {
	return func(b *Backoff) {
		if j < 0 {
			j = 0
		} else if j > 1 {
			j = 1
		}
		b.jitter = j
	}
}

// NewBackoff 创建指数退避策略
//
// 默认值：base 1s、cap 30s、multiplier 2.0、jitter 0.1。
func NewBackoff(opts ...BackoffOption) *Backoff {
	b := &Backoff{
		base:       time.Second,
		cap:        30 * time.Second,
		multiplier: 2.0,
		jitter:     0.1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cap < b.base {
		b.cap = b.base
	}
	return b
}

// NextDelay 返回第 attempt 次重试前的等待时间，attempt 从 1 开始
func (b *Backoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(b.base) * math.Pow(b.multiplier, float64(attempt-1))

	// 先封顶再加抖动：抖动只向上增加，最多 jitter 比例
	if math.IsNaN(delay) || delay < 0 || delay > float64(b.cap) {
		delay = float64(b.cap)
	}
	if b.jitter > 0 {
		delay += delay * b.jitter * randomFloat64()
	}

	return time.Duration(delay)
}

// randomFloat64 返回 [0, 1) 区间的随机数
//
// 使用 crypto/rand 避免与调用方的 math/rand 状态互相干扰。
// 读取失败时返回 0（退化为无抖动）。
func randomFloat64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// 取 53 位尾数，映射到 [0, 1)
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / float64(1<<53)
}
