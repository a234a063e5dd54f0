// Package xsymbol 定义老虎机的符号表与加权抽取。
//
// 符号表是运行期只读的固定映射：8 个符号（id 0..7），各自带三连线
// 赔率与抽取权重。权重之和构成加权抽取的模数：把种子派生的整数对
// 总权重取模，落入累积权重区间即选中对应符号。
//
// 赔率与符号命名来自链上程序的赔付表；权重反映稀有度（赔率越高越稀有），
// 可通过自定义表替换。
package xsymbol
