package consolebox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionCyclePeriod(t *testing.T) {
	var c Completion
	candidates := []string{"get", "put", "del"}
	c.Begin(candidates)

	// After len presses the cycle repeats from the first candidate
	seen := make([]string, 0, len(candidates)+1)
	for i := 0; i < len(candidates)+1; i++ {
		s, ok := c.Next()
		assert.True(t, ok)
		seen = append(seen, s)
	}
	assert.Equal(t, []string{"get", "put", "del", "get"}, seen)
}

func TestCompletionEmptySource(t *testing.T) {
	var c Completion
	c.Begin(nil)
	_, ok := c.Next()
	assert.False(t, ok)
}

func TestCompletionReset(t *testing.T) {
	var c Completion
	c.Begin([]string{"a", "b"})
	c.Next()
	assert.True(t, c.Active())

	c.Reset()
	assert.False(t, c.Active())
	_, ok := c.Next()
	assert.False(t, ok)
}

func TestTabSessionSnapshotsSourceOnce(t *testing.T) {
	b := NewBuffer()
	calls := 0
	b.SetCompletionSource(func() []string {
		calls++
		return []string{"alpha", "beta"}
	})

	b.HandleKey(KeyEvent{Key: KeyTab})
	b.HandleKey(KeyEvent{Key: KeyTab})
	b.HandleKey(KeyEvent{Key: KeyTab})
	assert.Equal(t, 1, calls, "source snapshotted once per session")
	assert.Equal(t, "alpha", b.EditableText(), "wrapped around")

	// Any non-Tab key ends the session; the next Tab re-snapshots
	b.HandleKey(KeyEvent{Key: KeyRune, Rune: 'x'})
	b.HandleKey(KeyEvent{Key: KeyTab})
	assert.Equal(t, 2, calls)
	assert.Equal(t, "alpha", b.EditableText())
}

func TestTabWithoutSourceIsNoop(t *testing.T) {
	b := NewBuffer()
	typeString(b, "abc")
	assert.True(t, b.HandleKey(KeyEvent{Key: KeyTab}))
	assert.Equal(t, "abc", b.EditableText())
}
