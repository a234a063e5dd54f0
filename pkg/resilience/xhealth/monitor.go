package xhealth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorbagana/slotkit/pkg/ledger/xledger"
	"github.com/gorbagana/slotkit/pkg/observability/xlog"
)

// historyCap 探测历史环形缓冲上限
const historyCap = 50

// ProbeRecord 单轮探测记录
type ProbeRecord struct {
	// At 探测时刻
	At time.Time

	// Healthy 本轮结论
	Healthy bool

	// Latency 本轮耗时
	Latency time.Duration

	// Err 不健康时的代表性错误（取第一个失败探针）
	Err error
}

// Status 健康状态快照
//
// 每轮探测后重算。历史窗口为最近 historyCap 轮。
type Status struct {
	// Healthy 最近一轮的结论
	Healthy bool

	// LastCheckedAt 最近一轮探测时刻，从未探测时为零值
	LastCheckedAt time.Time

	// ConsecutiveFailures 连续不健康轮数，健康时清零
	ConsecutiveFailures int

	// AverageLatency 历史窗口内的平均耗时
	AverageLatency time.Duration

	// SuccessRate 历史窗口内的健康比例 [0, 1]
	SuccessRate float64
}

// Monitor 网络健康监控器
//
// 并发安全。构造后立即启动后台重探定时器，不再使用时必须调用 Destroy。
type Monitor struct {
	conn         xledger.Connection
	logger       xlog.Logger
	quorum       int
	cacheFor     time.Duration
	probeTimeout time.Duration
	pollEvery    time.Duration

	mu           sync.Mutex
	healthy      bool
	lastChecked  time.Time
	consecFails  int
	history      []ProbeRecord
	subscribers  map[int]func(healthy bool)
	nextSubID    int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// MonitorOption 监控器配置选项
type MonitorOption func(*Monitor)

// WithQuorum 设置判定健康所需的成功探针数，限制在 [1, 3]
func WithQuorum(n int) MonitorOption {
	return func(m *Monitor) {
		if n >= 1 && n <= 3 {
			m.quorum = n
		}
	}
}

// WithCacheInterval 设置结果缓存与后台重探的间隔，d <= 0 时忽略
func WithCacheInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.cacheFor = d
		}
	}
}

// WithProbeTimeout 设置单个探针的超时，d <= 0 时忽略
func WithProbeTimeout(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.probeTimeout = d
		}
	}
}

// WithPollInterval 设置 WaitForHealthy 的轮询间隔，d <= 0 时忽略
func WithPollInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.pollEvery = d
		}
	}
}

// WithLogger 设置诊断日志输出
func WithLogger(l xlog.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMonitor 创建健康监控器并启动后台重探
//
// 默认配置：法定数 2/3，缓存 30s，单探针超时 5s，轮询间隔 1s。
func NewMonitor(conn xledger.Connection, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		conn:         conn,
		logger:       xlog.NewNop(),
		quorum:       2,
		cacheFor:     30 * time.Second,
		probeTimeout: 5 * time.Second,
		pollEvery:    time.Second,
		subscribers:  make(map[int]func(bool)),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.wg.Add(1)
	go m.backgroundLoop()

	return m
}

// backgroundLoop 后台按缓存间隔强制重探
func (m *Monitor) backgroundLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cacheFor)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.Check(context.Background(), true)
		}
	}
}

// Check 执行健康检查
//
// force 为 false 且缓存未过期时直接返回缓存结论；无论命中缓存与否，
// 所有订阅者都会收到本次结论。
func (m *Monitor) Check(ctx context.Context, force bool) bool {
	m.mu.Lock()
	if !force && !m.lastChecked.IsZero() && time.Since(m.lastChecked) < m.cacheFor {
		verdict := m.healthy
		callbacks := m.copySubscribersLocked()
		m.mu.Unlock()

		m.notify(callbacks, verdict)
		return verdict
	}
	m.mu.Unlock()

	rec := m.probeRound(ctx)

	m.mu.Lock()
	m.healthy = rec.Healthy
	m.lastChecked = rec.At
	if rec.Healthy {
		m.consecFails = 0
	} else {
		m.consecFails++
	}
	m.history = append(m.history, rec)
	if len(m.history) > historyCap {
		m.history = m.history[len(m.history)-historyCap:]
	}
	callbacks := m.copySubscribersLocked()
	m.mu.Unlock()

	if !rec.Healthy {
		m.logger.Warn(ctx, "network health probe failed quorum",
			slog.Duration("latency", rec.Latency),
			slog.Any("error", rec.Err),
		)
	}

	m.notify(callbacks, rec.Healthy)
	return rec.Healthy
}

// probeRound 并发执行一轮探测
func (m *Monitor) probeRound(ctx context.Context) ProbeRecord {
	probes := []func(context.Context) error{
		func(ctx context.Context) error {
			_, err := m.conn.LatestReference(ctx)
			return err
		},
		func(ctx context.Context) error {
			_, err := m.conn.CurrentHeight(ctx)
			return err
		},
		func(ctx context.Context) error {
			_, err := m.conn.NodeVersion(ctx)
			return err
		},
	}

	start := time.Now()
	errs := make([]error, len(probes))

	var wg sync.WaitGroup
	for i, probe := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
			defer cancel()
			errs[i] = probe(pctx)
		}()
	}
	wg.Wait()

	successes := 0
	var firstErr error
	for _, err := range errs {
		if err == nil {
			successes++
		} else if firstErr == nil {
			firstErr = err
		}
	}

	rec := ProbeRecord{
		At:      time.Now(),
		Healthy: successes >= m.quorum,
		Latency: time.Since(start),
	}
	if !rec.Healthy {
		rec.Err = firstErr
	}
	return rec
}

// Status 返回健康状态快照
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		Healthy:             m.healthy,
		LastCheckedAt:       m.lastChecked,
		ConsecutiveFailures: m.consecFails,
	}

	if len(m.history) > 0 {
		var total time.Duration
		ok := 0
		for _, rec := range m.history {
			total += rec.Latency
			if rec.Healthy {
				ok++
			}
		}
		st.AverageLatency = total / time.Duration(len(m.history))
		st.SuccessRate = float64(ok) / float64(len(m.history))
	}

	return st
}

// OnChange 订阅健康结论，返回取消订阅函数
//
// 每次 Check（缓存命中或新探测）都会触发回调。
func (m *Monitor) OnChange(cb func(healthy bool)) func() {
	if cb == nil {
		return func() {}
	}

	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = cb
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// WaitForHealthy 等待网络恢复健康
//
// 先查一次缓存结论，不健康则按轮询间隔强制重探，直到健康、
// 超时或上下文取消。返回最终是否健康。
func (m *Monitor) WaitForHealthy(ctx context.Context, timeout time.Duration) bool {
	if m.Check(ctx, false) {
		return true
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(m.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
			if m.Check(ctx, true) {
				return true
			}
		}
	}
}

// Destroy 停止后台定时器并清空订阅者
//
// 可安全地多次调用。Destroy 之后 Check 仍可手动调用。
func (m *Monitor) Destroy() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()

	m.mu.Lock()
	m.subscribers = make(map[int]func(bool))
	m.mu.Unlock()
}

// copySubscribersLocked 复制回调列表，通知在锁外进行
func (m *Monitor) copySubscribersLocked() []func(bool) {
	callbacks := make([]func(bool), 0, len(m.subscribers))
	for _, cb := range m.subscribers {
		callbacks = append(callbacks, cb)
	}
	return callbacks
}

func (m *Monitor) notify(callbacks []func(bool), healthy bool) {
	for _, cb := range callbacks {
		cb(healthy)
	}
}
