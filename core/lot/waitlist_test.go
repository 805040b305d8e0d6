package lot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitlistFIFO(t *testing.T) {
	w := NewWaitlist()
	assert.True(t, w.Add("A", "u1"))
	assert.True(t, w.Add("A", "u2"))
	assert.True(t, w.Add("B", "u1"))

	id, ok := w.Pop("A")
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
	id, ok = w.Pop("A")
	assert.True(t, ok)
	assert.Equal(t, "u2", id)
	_, ok = w.Pop("A")
	assert.False(t, ok)

	// The B queue is untouched.
	assert.Equal(t, 1, w.Len("B"))
}

func TestWaitlistNoDuplicates(t *testing.T) {
	w := NewWaitlist()
	assert.True(t, w.Add("A", "u1"))
	assert.False(t, w.Add("A", "u1"))
	assert.Equal(t, 1, w.Len("A"))
}

func TestWaitlistRemove(t *testing.T) {
	w := NewWaitlist()
	w.Add("A", "u1")
	w.Add("A", "u2")
	w.Add("A", "u3")

	assert.True(t, w.Remove("A", "u2"))
	assert.False(t, w.Remove("A", "u2"))

	id, _ := w.Pop("A")
	assert.Equal(t, "u1", id)
	id, _ = w.Pop("A")
	assert.Equal(t, "u3", id)
}

func TestWaitlistDepths(t *testing.T) {
	w := NewWaitlist()
	w.Add("A", "u1")
	w.Add("A", "u2")
	w.Add("B", "u3")
	w.Pop("B")

	assert.Equal(t, map[string]int{"A": 2}, w.Depths())
}
