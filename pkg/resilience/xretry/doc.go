// Package xretry 提供有界重试与指数退避能力。
//
// # 设计理念
//
// 底层使用 avast/retry-go/v5 驱动重试循环，本包只定义两件事：
//
//   - Backoff：退避公式 delay = min(base × multiplier^(attempt-1), cap)，
//     再叠加最多 jitter 比例的随机抖动（默认 10%）
//   - RetryableError：实现 Retryable() bool 的错误可以自行声明可否重试，
//     xclassify.ClassifiedError 与 xbreaker 的熔断错误都实现了此接口
//
// 重试预算语义：MaxAttempts 为总执行次数（含首次）。失败两次后第三次成功的
// 操作，在 MaxAttempts=3 下恰好被调用 3 次；不可重试错误只调用 1 次。
package xretry
