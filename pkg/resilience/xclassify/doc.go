// Package xclassify 提供错误分类能力，把任意原始错误映射到封闭的错误分类。
//
// # 设计理念
//
// 分类只发生一次：原始失败在第一个捕获点被 Classify 归类为 ClassifiedError，
// 之后的所有层只会看到并转发 ClassifiedError，原始错误不会跨越核心层边界。
//
// ClassifiedError 实现 Retryable() bool，与 xretry 组合使用时，
// 不可重试的分类会立即终止重试。
//
// # 分类规则
//
// 维护一张有序的 (子串模式, 分类, 严重度, 可否重试) 表，
// 用小写化后的错误消息按表序匹配，首个命中生效；
// 无命中归类为 KindUnknown / SeverityMedium / 可重试。
// 建议重试延迟由分类决定：NETWORK 2s、TRANSACTION 3s、CONTRACT 5s、其余 1s。
package xclassify
