// Package game 提供游戏结果相关的子包。
//
// 子包列表：
//   - xsymbol: 符号表与加权抽取
//   - xoutcome: 回退结果生成与结果校验
//   - xextract: 从已结算交易中恢复权威结果
//
// 结果来源的优先级：链上提取（xextract）优先，提取不到时由
// xoutcome 合成确定性的回退结果，两者都经同一个校验器复查。
package game
