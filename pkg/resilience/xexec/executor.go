package xexec

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/gorbagana/slotkit/pkg/observability/xlog"
	"github.com/gorbagana/slotkit/pkg/resilience/xbreaker"
	"github.com/gorbagana/slotkit/pkg/resilience/xclassify"
	"github.com/gorbagana/slotkit/pkg/resilience/xhealth"
	"github.com/gorbagana/slotkit/pkg/resilience/xloading"
	"github.com/gorbagana/slotkit/pkg/resilience/xretry"
)

// Executor 操作执行器
//
// 持有按操作 id 隔离的熔断器注册表、重试历史与加载跟踪器。
// 并发安全，建议整个进程共享一个实例。
type Executor struct {
	breakers   *xbreaker.Registry
	history    *historyStore
	loading    *xloading.Tracker
	health     *xhealth.Monitor
	classifier *xclassify.Classifier
	logger     xlog.Logger
	tracer     trace.Tracer
	metrics    *Metrics
}

// ExecutorOption 执行器配置选项
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	breakerConfig xbreaker.Config
	health        *xhealth.Monitor
	classifier    *xclassify.Classifier
	logger        xlog.Logger
	tracerProv    trace.TracerProvider
	meterProv     metric.MeterProvider
}

// WithBreakerConfig 设置熔断策略，零值字段回落到默认值
func WithBreakerConfig(cfg xbreaker.Config) ExecutorOption {
	return func(c *executorConfig) {
		c.breakerConfig = cfg
	}
}

// WithHealthMonitor 设置网络健康监视器
//
// 未设置时 WithRequireHealthyNetwork 调用选项不生效。
// 监视器的生命周期由调用方管理。
func WithHealthMonitor(m *xhealth.Monitor) ExecutorOption {
	return func(c *executorConfig) {
		c.health = m
	}
}

// WithClassifier 设置错误分类器，默认 xclassify.NewClassifier()
func WithClassifier(cl *xclassify.Classifier) ExecutorOption {
	return func(c *executorConfig) {
		if cl != nil {
			c.classifier = cl
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l xlog.Logger) ExecutorOption {
	return func(c *executorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracerProvider 设置追踪提供者，默认使用全局默认
func WithTracerProvider(tp trace.TracerProvider) ExecutorOption {
	return func(c *executorConfig) {
		c.tracerProv = tp
	}
}

// WithMeterProvider 设置指标提供者，nil 时不收集指标
func WithMeterProvider(mp metric.MeterProvider) ExecutorOption {
	return func(c *executorConfig) {
		c.meterProv = mp
	}
}

// NewExecutor 创建操作执行器
func NewExecutor(opts ...ExecutorOption) (*Executor, error) {
	cfg := &executorConfig{
		breakerConfig: xbreaker.DefaultConfig(),
		classifier:    xclassify.NewClassifier(),
		logger:        xlog.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	metrics, err := NewMetrics(cfg.meterProv)
	if err != nil {
		return nil, fmt.Errorf("xexec: failed to init metrics: %w", err)
	}

	return &Executor{
		breakers:   xbreaker.NewRegistry(cfg.breakerConfig),
		history:    newHistoryStore(),
		loading:    xloading.NewTracker(),
		health:     cfg.health,
		classifier: cfg.classifier,
		logger:     cfg.logger,
		tracer:     getTracer(cfg.tracerProv),
		metrics:    metrics,
	}, nil
}

// Loading 返回执行器的加载跟踪器，供上层订阅加载状态
func (e *Executor) Loading() *xloading.Tracker {
	return e.loading
}

// BreakerState 返回操作的熔断状态
func (e *Executor) BreakerState(id string) xbreaker.State {
	return e.breakers.State(id)
}

// BreakerSnapshot 返回操作的熔断观测快照
func (e *Executor) BreakerSnapshot(id string) xbreaker.Snapshot {
	return e.breakers.Snapshot(id)
}

// RetryHistory 返回操作最近的失败记录（至多 10 条）
//
// 成功会清空该操作的历史，返回的切片是副本。
func (e *Executor) RetryHistory(id string) []RetryRecord {
	return e.history.get(id)
}

// ForceRecovery 强制恢复
//
// 重置所有熔断器与重试历史、清除全部加载状态，并强制一轮健康探测。
func (e *Executor) ForceRecovery(ctx context.Context) {
	e.breakers.ResetAll()
	e.history.purge()
	e.loading.Reset()
	if e.health != nil {
		e.health.Check(ctx, true)
	}
	e.logger.Info(ctx, "forced recovery: breakers, retry history and loading flags reset")
}

// Execute 在完整的韧性管线下执行动作
//
// 泛型函数，必须作为包级函数使用。步骤顺序见包文档。
func Execute[T any](ctx context.Context, e *Executor, id string, action func(ctx context.Context) (T, error), opts ...CallOption) (T, error) {
	var zero T
	if e == nil {
		return zero, ErrNilExecutor
	}
	if ctx == nil {
		return zero, ErrNilContext
	}
	if id == "" {
		return zero, ErrEmptyOperationID
	}
	if action == nil {
		return zero, ErrNilAction
	}

	o := buildCallOptions(opts)
	start := time.Now()

	ctx, span := startSpan(ctx, e.tracer, spanNameExecute,
		trace.WithAttributes(attribute.String(attrOperation, id)))
	defer span.End()

	result, attempts, err := e.run(ctx, id, o, func(ctx context.Context) (any, error) {
		return action(ctx)
	})

	span.SetAttributes(
		attribute.Int(attrAttempts, attempts),
		attribute.Bool(attrSuccess, err == nil),
	)
	if err != nil {
		setSpanError(span, err)
	} else {
		setSpanOK(span)
	}
	e.metrics.RecordOperation(ctx, id, err, time.Since(start))

	if o.hooks.OnOperationComplete != nil {
		o.hooks.OnOperationComplete(id, result, err)
	}
	if err != nil {
		return zero, err
	}
	v, ok := result.(T)
	if !ok {
		// action 返回的就是 T，类型断言只会在 T 为接口且值为 nil 时失败
		return zero, nil
	}
	return v, nil
}

// run 执行管线主体，返回结果、实际尝试次数与最终错误
func (e *Executor) run(ctx context.Context, id string, o callOptions, action func(ctx context.Context) (any, error)) (any, int, error) {
	// 步骤 1：熔断预检，Open 时动作不会被调用
	if e.breakers.State(id) == xbreaker.StateOpen {
		e.metrics.RecordBreakerOpen(ctx, id)
		ce := xclassify.NewClassified(
			xclassify.KindUnknown, xclassify.SeverityHigh,
			fmt.Sprintf("circuit breaker open for operation %s", id),
			false, nil,
		)
		e.logger.Warn(ctx, "operation rejected by open circuit breaker",
			slog.String("operation", id))
		return nil, 0, ce
	}

	// 步骤 2：置位加载状态
	e.loading.Set(id, true)
	defer e.loading.Set(id, false)

	// 总超时覆盖健康预检、全部尝试与退避等待
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	// 步骤 3：可选的健康预检
	if o.requireHealthy && e.health != nil {
		o.progress("preflight", 0.1)
		if !e.health.Check(ctx, false) && !e.health.WaitForHealthy(ctx, o.recoveryWait) {
			ce := xclassify.NewClassified(
				xclassify.KindNetwork, xclassify.SeverityHigh,
				fmt.Sprintf("network unhealthy after waiting %s", o.recoveryWait),
				false, nil,
			)
			return nil, 0, ce
		}
	}

	var attempts atomic.Int64

	backoff := o.backoff
	if backoff == nil {
		backoff = xretry.NewBackoff()
	}
	retryer := xretry.NewRetryer(
		xretry.WithMaxAttempts(o.maxAttempts),
		xretry.WithBackoff(backoff),
		xretry.WithOnRetry(func(failed int, err error) {
			e.logger.Debug(ctx, "retrying operation",
				slog.String("operation", id),
				slog.Int("failed_attempts", failed),
				slog.String("error", err.Error()),
			)
		}),
	)

	// 步骤 4/5：执行与重试
	result, err := xretry.DoWithResult(ctx, retryer, func(ctx context.Context) (any, error) {
		attempt := int(attempts.Add(1))
		o.progress("attempt", float64(attempt)/float64(o.maxAttempts))

		v, err := e.breakers.Do(id, func() (any, error) {
			return e.runWithSoftCancel(ctx, action)
		})
		e.metrics.RecordAttempt(ctx, id, err == nil)
		if err == nil {
			return v, nil
		}

		ce := e.classifyAttempt(ctx, id, err)
		e.history.record(id, RetryRecord{
			At:     time.Now(),
			Detail: ce.Error(),
		})
		if o.hooks.OnError != nil {
			o.hooks.OnError(ce, attempt)
		}
		return nil, ce
	})

	n := int(attempts.Load())
	if err != nil {
		// 尝试耗尽或不可重试，错误已分类
		return nil, n, e.classifyAttempt(ctx, id, err)
	}

	// 步骤 6：成功即清除该操作的失败痕迹
	e.breakers.Reset(id)
	e.history.clear(id)
	if n > 1 && o.hooks.OnRecovery != nil {
		o.hooks.OnRecovery(n)
	}
	o.progress("complete", 1)
	return result, n, nil
}

// runWithSoftCancel 执行动作并与 ctx 竞争
//
// ctx 先结束时立即返回其错误；动作 goroutine 持有缓冲通道，
// 完成后自行退出（软取消，不强行终止）。
func (e *Executor) runWithSoftCancel(ctx context.Context, action func(ctx context.Context) (any, error)) (any, error) {
	type outcome struct {
		v   any
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		v, err := action(ctx)
		ch <- outcome{v: v, err: err}
	}()

	select {
	case out := <-ch:
		return out.v, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// classifyAttempt 分类一次失败
//
// 已分类的错误原样通过（分类恰好一次），熔断拦截归为不可重试的
// UNKNOWN，其余交给分类器。
func (e *Executor) classifyAttempt(ctx context.Context, id string, err error) *xclassify.ClassifiedError {
	if ce, ok := xclassify.As(err); ok {
		return ce
	}
	if xbreaker.IsOpen(err) {
		e.metrics.RecordBreakerOpen(ctx, id)
		return xclassify.NewClassified(
			xclassify.KindUnknown, xclassify.SeverityHigh,
			fmt.Sprintf("circuit breaker open for operation %s", id),
			false, err,
		)
	}
	return e.classifier.Classify(err)
}
