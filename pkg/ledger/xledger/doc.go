// Package xledger 定义远端账本网络的连接抽象与交易数据模型。
//
// 核心层不实现账本的线上协议，只依赖这里的 Connection 接口：
// 所有方法都是异步可失败的黑盒调用，由弹性层（xexec）包装后使用。
//
// # 数据模型
//
//   - Ref：提交操作后返回的不透明交易引用
//   - SignatureStatus：结算查询结果（确认数、是否确认、是否失败）
//   - Transaction：已结算交易，包含结构化事件与人类可读日志行
//
// 测试中请使用本地 fake 实现 Connection，不要依赖真实网络。
package xledger
