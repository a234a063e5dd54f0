// Package xextract 从已结算交易中恢复权威的旋转结果。
//
// 结果来源按可信度排序：
//
//  1. 结构化事件：交易里最后一个 SpinResult 事件
//  2. 日志行：正则扫描程序日志，最后一次出现为准
//
// 同一笔交易可能因重试在日志里出现多条结果记录，链上最终状态由最后
// 一条决定，所以两个来源都取最后一次出现。两个来源都缺失时返回带
// 原因的失败结果，由调用方决定是否回退到本地合成。
package xextract
