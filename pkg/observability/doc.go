// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//
// 追踪与指标不做统一封装：各包直接使用 OpenTelemetry API，
// 由进程入口注入 TracerProvider / MeterProvider。
package observability
