// Package xlog 提供基于 log/slog 的结构化日志能力。
//
// # 设计理念
//
//   - 强制 context 传递，方法签名只接受 slog.Attr，避免隐式 key-value 转换
//   - 动态级别控制：SetLevel 运行时生效，无需重启
//   - 可选的日志轮转输出（lumberjack）
//   - NewNop 返回空实现，供测试和默认值使用
//
// 核心层的所有组件都通过注入 Logger 输出诊断日志，未注入时使用 NewNop()。
package xlog
