package xsymbol

import "fmt"

// Count 符号总数，合法的符号 id 为 [0, Count)
const Count = 8

// Symbol 单个符号的定义
type Symbol struct {
	// ID 符号 id，[0, Count)
	ID uint8

	// Name 符号名称，仅用于展示与日志
	Name string

	// Multiplier 三连线赔率（payout = wager × Multiplier，再经赔付封顶）
	Multiplier uint64

	// Weight 加权抽取权重，必须大于 0
	Weight uint32
}

// Table 只读符号表
//
// 构造时预计算累积权重，之后所有方法并发安全。
type Table struct {
	symbols [Count]Symbol
	cum     [Count]uint32
	total   uint32
}

// defaultSymbols 链上赔付表对应的符号定义
//
// 权重随赔率递减（越稀有权重越小），总和 128。
var defaultSymbols = [Count]Symbol{
	{ID: 0, Name: "Gorbagana", Multiplier: 100, Weight: 2},
	{ID: 1, Name: "Wild", Multiplier: 50, Weight: 4},
	{ID: 2, Name: "Bonus Chest", Multiplier: 25, Weight: 6},
	{ID: 3, Name: "Trash", Multiplier: 20, Weight: 10},
	{ID: 4, Name: "Takeout", Multiplier: 15, Weight: 14},
	{ID: 5, Name: "Fish", Multiplier: 10, Weight: 22},
	{ID: 6, Name: "Rat", Multiplier: 5, Weight: 30},
	{ID: 7, Name: "Banana", Multiplier: 2, Weight: 40},
}

// defaultTable 包级默认表，Default 返回共享实例
var defaultTable = mustNewTable(defaultSymbols)

// Default 返回默认符号表
func Default() *Table {
	return defaultTable
}

// NewTable 用自定义符号定义构造符号表
//
// 要求每个符号的 ID 与其下标一致且 Weight > 0。
func NewTable(symbols [Count]Symbol) (*Table, error) {
	t := &Table{symbols: symbols}
	for i, s := range symbols {
		if int(s.ID) != i {
			return nil, fmt.Errorf("xsymbol: symbol at index %d has id %d", i, s.ID)
		}
		if s.Weight == 0 {
			return nil, fmt.Errorf("xsymbol: symbol %d has zero weight", i)
		}
		t.total += s.Weight
		t.cum[i] = t.total
	}
	return t, nil
}

func mustNewTable(symbols [Count]Symbol) *Table {
	t, err := NewTable(symbols)
	if err != nil {
		panic(err)
	}
	return t
}

// Pick 加权抽取
//
// 把 n 对总权重取模，映射进累积权重区间。相同的 n 总是返回相同的符号，
// 这是回退结果可复现的基础。
func (t *Table) Pick(n uint64) Symbol {
	v := uint32(n % uint64(t.total))
	for i := range t.cum {
		if v < t.cum[i] {
			return t.symbols[i]
		}
	}
	// total 为正且 v < total，不会走到这里
	return t.symbols[Count-1]
}

// Multiplier 返回符号的三连线赔率，非法 id 返回 0
func (t *Table) Multiplier(id uint8) uint64 {
	if !Valid(id) {
		return 0
	}
	return t.symbols[id].Multiplier
}

// Symbol 返回符号定义，非法 id 返回零值
func (t *Table) Symbol(id uint8) Symbol {
	if !Valid(id) {
		return Symbol{}
	}
	return t.symbols[id]
}

// TotalWeight 返回权重之和
func (t *Table) TotalWeight() uint32 {
	return t.total
}

// Valid 判断符号 id 是否在合法范围内
func Valid(id uint8) bool {
	return id < Count
}
