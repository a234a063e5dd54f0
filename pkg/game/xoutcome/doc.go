// Package xoutcome 提供回退结果的确定性生成与结果校验。
//
// # 回退生成
//
// 当无法从已结算交易中恢复权威结果时，Generate 基于交易引用与下注金额
// 合成一个符合规则的结果。优先级从高到低：
//
//  1. 确定性：相同的 (ref, wager, txSucceeded, config) 永远产生相同的
//     符号与赔付，种子来自 xxhash 对输入的顺序敏感哈希
//  2. 公平边界：赢局赔付封顶为
//     min(wager × multiplier, wager − wager × houseEdge/100, maxPayoutPerWager)，
//     回退结果没有链上背书，保守封顶保证庄家优势不被违反
//  3. 成功门控：交易失败的回退结果赔付恒为 0，且三个符号保证不全相同
//
// # 校验
//
// Validator 独立地复查任何结果（提取的或生成的）：符号 id 必须在合法
// 范围内；三个符号不全相同时赔付必须为 0；全相同时赔付不得超过用同样
// 公式重算出的封顶值。
package xoutcome
