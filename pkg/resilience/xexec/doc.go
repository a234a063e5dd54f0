// Package xexec 提供操作执行器，把熔断、重试、加载跟踪、健康预检与
// 错误分类组合成一条固定的执行管线。
//
// 单次 Execute 的步骤顺序是固定的：
//
//  1. 熔断预检：熔断器处于 Open 时立即失败，动作不会被调用
//  2. 置位加载状态
//  3. 可选的网络健康预检，不健康时等待恢复至多 RecoveryWait
//  4. 执行动作，与总超时竞争（见下文软取消）
//  5. 失败则分类一次、记录熔断失败与重试历史、触发 OnError，
//     按退避策略重试可重试错误直到预算耗尽
//  6. 成功则清除该操作的熔断状态与重试历史，重试后成功触发 OnRecovery
//  7. 无论成败清除加载状态并触发 OnOperationComplete
//
// # 软取消
//
// 动作超时时 Execute 立即返回超时错误，但正在执行的动作 goroutine
// 不会被强行终止，它持有缓冲为 1 的结果通道，完成后自行退出。
// 动作实现应尊重传入的 context 以便尽早结束。
//
// # 操作隔离
//
// 熔断状态、重试历史与加载状态都按操作 id 隔离，同一 id 内步骤
// 严格有序，不同 id 之间没有顺序约束。
package xexec
