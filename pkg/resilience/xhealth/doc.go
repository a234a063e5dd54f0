// Package xhealth 提供基于法定数探测的网络健康监控。
//
// # 探测模型
//
// 一轮检查并发发起三个独立的轻量读调用（最新引用、当前高度、节点版本），
// 至少 quorum 个成功才判定为健康。法定数是配置常量而非协议要求，默认 2/3。
//
// 结果缓存固定间隔（默认 30s），force 可跳过缓存。每次检查（无论命中缓存
// 与否）都会把布尔结论通知所有订阅者。后台定时器按同一间隔自动重探。
//
// Destroy 停止定时器并清空订阅者，可安全地多次调用。
package xhealth
