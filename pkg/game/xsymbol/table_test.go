package xsymbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tbl := Default()

	assert.Equal(t, uint32(128), tbl.TotalWeight())
	assert.Equal(t, uint64(100), tbl.Multiplier(0))
	assert.Equal(t, uint64(2), tbl.Multiplier(7))
	assert.Equal(t, "Gorbagana", tbl.Symbol(0).Name)

	// 默认表为共享实例
	assert.Same(t, Default(), tbl)
}

func TestTable_Pick(t *testing.T) {
	tbl := Default()

	t.Run("deterministic for same input", func(t *testing.T) {
		for _, n := range []uint64{0, 1, 63, 127, 128, 1 << 40} {
			assert.Equal(t, tbl.Pick(n), tbl.Pick(n))
		}
	})

	t.Run("maps into cumulative ranges", func(t *testing.T) {
		// 权重 {2,4,6,10,14,22,30,40}，累积 {2,6,12,22,36,58,88,128}
		assert.Equal(t, uint8(0), tbl.Pick(0).ID)
		assert.Equal(t, uint8(0), tbl.Pick(1).ID)
		assert.Equal(t, uint8(1), tbl.Pick(2).ID)
		assert.Equal(t, uint8(2), tbl.Pick(6).ID)
		assert.Equal(t, uint8(7), tbl.Pick(127).ID)
		// 取模回绕
		assert.Equal(t, uint8(0), tbl.Pick(128).ID)
	})

	t.Run("all symbols reachable", func(t *testing.T) {
		seen := make(map[uint8]bool)
		for n := uint64(0); n < 128; n++ {
			seen[tbl.Pick(n).ID] = true
		}
		assert.Len(t, seen, Count)
	})
}

func TestTable_Multiplier(t *testing.T) {
	tbl := Default()
	assert.Zero(t, tbl.Multiplier(8))
	assert.Zero(t, tbl.Multiplier(255))
}

func TestNewTable(t *testing.T) {
	t.Run("id mismatch rejected", func(t *testing.T) {
		symbols := defaultSymbols
		symbols[3].ID = 5
		_, err := NewTable(symbols)
		require.Error(t, err)
	})

	t.Run("zero weight rejected", func(t *testing.T) {
		symbols := defaultSymbols
		symbols[0].Weight = 0
		_, err := NewTable(symbols)
		require.Error(t, err)
	})
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(0))
	assert.True(t, Valid(7))
	assert.False(t, Valid(8))
}
