package xretry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_NextDelay(t *testing.T) {
	t.Run("exponential growth without jitter", func(t *testing.T) {
		b := NewBackoff(WithBase(time.Second), WithCap(time.Minute), WithMultiplier(2), WithJitter(0))

		assert.Equal(t, time.Second, b.NextDelay(1))
		assert.Equal(t, 2*time.Second, b.NextDelay(2))
		assert.Equal(t, 4*time.Second, b.NextDelay(3))
		assert.Equal(t, 8*time.Second, b.NextDelay(4))
	})

	t.Run("cap bounds the delay", func(t *testing.T) {
		b := NewBackoff(WithBase(time.Second), WithCap(5*time.Second), WithJitter(0))

		assert.Equal(t, 5*time.Second, b.NextDelay(10))
		// 极大 attempt 不应溢出或绕过上限
		assert.Equal(t, 5*time.Second, b.NextDelay(1<<30))
	})

	t.Run("jitter only adds and stays within ratio", func(t *testing.T) {
		b := NewBackoff(WithBase(time.Second), WithCap(time.Minute), WithJitter(0.1))

		for range 100 {
			d := b.NextDelay(1)
			assert.GreaterOrEqual(t, d, time.Second)
			assert.LessOrEqual(t, d, time.Second+time.Second/10)
		}
	})

	t.Run("attempt below one treated as one", func(t *testing.T) {
		b := NewBackoff(WithJitter(0))
		assert.Equal(t, b.NextDelay(1), b.NextDelay(0))
		assert.Equal(t, b.NextDelay(1), b.NextDelay(-5))
	})

	t.Run("cap raised to base when smaller", func(t *testing.T) {
		b := NewBackoff(WithBase(10*time.Second), WithCap(time.Second), WithJitter(0))
		assert.Equal(t, 10*time.Second, b.NextDelay(1))
	})

	t.Run("invalid options ignored", func(t *testing.T) {
		b := NewBackoff(WithBase(-1), WithCap(-1), WithMultiplier(0.5), WithJitter(5))
		assert.Equal(t, time.Second, b.base)
		assert.Equal(t, 30*time.Second, b.cap)
		assert.Equal(t, 2.0, b.multiplier)
		assert.Equal(t, 1.0, b.jitter)
	})
}
