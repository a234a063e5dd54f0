package xexec

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName 追踪器名称
const tracerName = "xexec"

// Span 操作名称
const (
	spanNameExecute     = "xexec.Execute"
	spanNameWallet      = "xexec.ExecuteWallet"
	spanNameTransaction = "xexec.ExecuteTransaction"
	spanNameBatch       = "xexec.ExecuteBatch"
)

// Span 属性名称（metrics 复用这些常量，确保键名一致）
const (
	attrOperation = "xexec.operation"
	attrAttempts  = "xexec.attempts"
	attrSuccess   = "xexec.success"
	attrBatchSize = "xexec.batch_size"
	attrKind      = "xexec.error_kind"
)

// getTracer 获取 tracer 实例
//
// 未配置 TracerProvider 时使用全局默认（可能是 noop）。
func getTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}

// setSpanError 设置 span 错误状态
func setSpanError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// setSpanOK 设置 span 成功状态
func setSpanOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// startSpan 创建新的 span
func startSpan(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, opts...)
}
