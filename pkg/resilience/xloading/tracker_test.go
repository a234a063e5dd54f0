package xloading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_SetAndQuery(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.IsLoading("spin"))
	assert.False(t, tr.AnyLoading())

	tr.Set("spin", true)
	assert.True(t, tr.IsLoading("spin"))
	assert.True(t, tr.AnyLoading())
	assert.False(t, tr.IsLoading("claim"))

	tr.Set("claim", true)
	tr.Set("spin", false)
	assert.False(t, tr.IsLoading("spin"))
	assert.True(t, tr.AnyLoading())

	tr.Set("claim", false)
	assert.False(t, tr.AnyLoading())
}

func TestTracker_Subscribe(t *testing.T) {
	t.Run("notifies only the subscribed id", func(t *testing.T) {
		tr := NewTracker()
		var spinEvents, claimEvents []bool

		tr.Subscribe("spin", func(v bool) { spinEvents = append(spinEvents, v) })
		tr.Subscribe("claim", func(v bool) { claimEvents = append(claimEvents, v) })

		tr.Set("spin", true)
		tr.Set("spin", false)

		assert.Equal(t, []bool{true, false}, spinEvents)
		assert.Empty(t, claimEvents)
	})

	t.Run("no notification when state unchanged", func(t *testing.T) {
		tr := NewTracker()
		calls := 0
		tr.Subscribe("spin", func(bool) { calls++ })

		tr.Set("spin", true)
		tr.Set("spin", true)

		assert.Equal(t, 1, calls)
	})

	t.Run("unsubscribe stops notifications", func(t *testing.T) {
		tr := NewTracker()
		calls := 0
		unsub := tr.Subscribe("spin", func(bool) { calls++ })

		tr.Set("spin", true)
		unsub()
		unsub() // 多次调用安全
		tr.Set("spin", false)

		assert.Equal(t, 1, calls)
	})

	t.Run("nil callback is a no-op", func(t *testing.T) {
		tr := NewTracker()
		unsub := tr.Subscribe("spin", nil)
		unsub()
		tr.Set("spin", true)
	})
}

func TestTracker_Reset(t *testing.T) {
	t.Run("reset specific id", func(t *testing.T) {
		tr := NewTracker()
		tr.Set("spin", true)
		tr.Set("claim", true)

		tr.Reset("spin")

		assert.False(t, tr.IsLoading("spin"))
		assert.True(t, tr.IsLoading("claim"))
	})

	t.Run("reset all notifies loading ids", func(t *testing.T) {
		tr := NewTracker()
		var events []bool
		tr.Subscribe("spin", func(v bool) { events = append(events, v) })

		tr.Set("spin", true)
		tr.Set("claim", true)
		tr.Reset()

		assert.False(t, tr.AnyLoading())
		assert.Equal(t, []bool{true, false}, events)
	})
}
