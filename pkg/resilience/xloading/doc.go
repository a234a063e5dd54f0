// Package xloading 提供按操作 id 的并发加载状态跟踪。
//
// 纯内存记账：维护 id -> bool 的映射，支持聚合查询与按 id 订阅通知。
// 订阅回调只在对应 id 状态变化时触发，返回的 disposer 用于取消订阅。
package xloading
