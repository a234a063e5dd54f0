package xexec

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gorbagana/slotkit/pkg/resilience/xclassify"
)

// 指标名称，前缀与 Meter scope 名称一致
const (
	// metricNameAttemptsTotal 动作执行次数计数器（含重试）
	metricNameAttemptsTotal = "xexec.attempts.total"

	// metricNameBreakerOpenTotal 熔断拦截次数计数器
	metricNameBreakerOpenTotal = "xexec.breaker_open.total"

	// metricNameOperationsTotal 操作完成次数计数器
	metricNameOperationsTotal = "xexec.operations.total"

	// metricNameOperationDuration 操作总耗时直方图（含重试与等待）
	metricNameOperationDuration = "xexec.operation.duration"
)

// durationBuckets 操作耗时直方图的桶边界
var durationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0}

// Metrics 执行器指标收集器
type Metrics struct {
	attemptsTotal     metric.Int64Counter
	breakerOpenTotal  metric.Int64Counter
	operationsTotal   metric.Int64Counter
	operationDuration metric.Float64Histogram
}

// NewMetrics 创建指标收集器
//
// meterProvider 为 nil 时返回 nil（不收集指标），所有 Record 方法
// 对 nil 接收者安全。
func NewMetrics(meterProvider metric.MeterProvider) (*Metrics, error) {
	if meterProvider == nil {
		return nil, nil
	}

	meter := meterProvider.Meter(tracerName)
	m := &Metrics{}

	var err error
	if m.attemptsTotal, err = meter.Int64Counter(metricNameAttemptsTotal,
		metric.WithDescription("动作执行次数（含重试）"), metric.WithUnit("{attempt}")); err != nil {
		return nil, err
	}
	if m.breakerOpenTotal, err = meter.Int64Counter(metricNameBreakerOpenTotal,
		metric.WithDescription("熔断拦截次数"), metric.WithUnit("{rejection}")); err != nil {
		return nil, err
	}
	if m.operationsTotal, err = meter.Int64Counter(metricNameOperationsTotal,
		metric.WithDescription("操作完成次数"), metric.WithUnit("{operation}")); err != nil {
		return nil, err
	}
	if m.operationDuration, err = meter.Float64Histogram(metricNameOperationDuration,
		metric.WithDescription("操作总耗时"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordAttempt 记录一次动作执行
func (m *Metrics) RecordAttempt(ctx context.Context, operation string, success bool) {
	if m == nil {
		return
	}
	m.attemptsTotal.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.Bool(attrSuccess, success),
	))
}

// RecordBreakerOpen 记录一次熔断拦截
func (m *Metrics) RecordBreakerOpen(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.breakerOpenTotal.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
	))
}

// RecordOperation 记录一次操作完成
func (m *Metrics) RecordOperation(ctx context.Context, operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	metricsCtx := context.WithoutCancel(ctx)

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.Bool(attrSuccess, err == nil),
	}
	if ce, ok := xclassify.As(err); ok {
		attrs = append(attrs, attribute.String(attrKind, string(ce.Kind)))
	}

	m.operationsTotal.Add(metricsCtx, 1, metric.WithAttributes(attrs...))
	m.operationDuration.Record(metricsCtx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}
