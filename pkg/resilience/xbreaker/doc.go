// Package xbreaker 提供按操作 id 隔离的熔断器注册表。
//
// # 设计理念
//
// 底层使用 sony/gobreaker/v2。每个操作 id 拥有独立的熔断器实例，
// 状态互不影响；同一份策略配置在注册表级别统一设置。
//
// 熔断器打开时的错误被包装为 OpenError，实现 Retryable() 返回 false，
// 与 xretry 组合时会立即终止重试而不是继续退避。
//
// # 触发策略
//
// 默认策略为两个条件任一满足：
//   - 统计窗口内失败率 >= 0.8 且请求数 >= 5
//   - 连续失败 >= 5 次
//
// 这些阈值来自观测到的上游行为而非协议要求，全部可配置。
package xbreaker
