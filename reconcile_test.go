package consolebox

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineTexts(b *Buffer) []string {
	var out []string
	for _, ln := range b.DisplayLines() {
		out = append(out, ln.Text)
	}
	return out
}

func TestBindEmptyCollectionClears(t *testing.T) {
	b := NewBuffer()
	b.AppendDisplayLines([]DisplayLine{{Text: "stale"}})
	b.Bind(NewItemList())
	assert.Equal(t, 0, b.LineCount())
}

func TestBindFullReplace(t *testing.T) {
	b := NewBuffer()
	b.AppendDisplayLines([]DisplayLine{{Text: "stale"}})
	b.Bind(NewItemList("x", "y"))
	assert.Equal(t, []string{"x", "y"}, lineTexts(b))
}

func TestAddAppendsWithoutTouchingExisting(t *testing.T) {
	b := NewBuffer()
	list := NewItemList("x", "y")
	b.Bind(list)

	list.Add("z")
	assert.Equal(t, []string{"x", "y", "z"}, lineTexts(b))
}

func TestRemoveDelta(t *testing.T) {
	b := NewBuffer()
	list := NewItemList("x", "y", "z")
	b.Bind(list)

	list.Remove("y")
	assert.Equal(t, []string{"x", "z"}, lineTexts(b))

	// Removing an absent item is a silent no-op
	list.Remove("missing")
	assert.Equal(t, []string{"x", "z"}, lineTexts(b))
}

// Remove matches by extracted text, first match only. With duplicate display
// lines this can remove a line belonging to a different logical item; that
// ambiguity is inherited behavior, kept on purpose.
func TestRemoveDuplicateTextRemovesFirstMatch(t *testing.T) {
	type entry struct {
		ID   int
		Text string
	}
	b := NewBuffer()
	b.SetDisplayPath("Text")
	first := entry{ID: 1, Text: "dup"}
	second := entry{ID: 2, Text: "dup"}
	list := NewItemList(first, second, entry{ID: 3, Text: "tail"})
	b.Bind(list)

	// Removing the *second* logical item still removes the first line
	list.Remove(second)
	assert.Equal(t, []string{"dup", "tail"}, lineTexts(b))
}

func TestReplaceDelta(t *testing.T) {
	b := NewBuffer()
	list := NewItemList("a", "b", "c")
	b.Bind(list)

	list.Replace("b", "B")
	assert.Equal(t, []string{"a", "c", "B"}, lineTexts(b), "replace removes old then appends new")
}

func TestResetRebuildsFromLiveCollection(t *testing.T) {
	b := NewBuffer()
	list := NewItemList("a", "b")
	b.Bind(list)

	list.Reset("p", "q", "r")
	assert.Equal(t, []string{"p", "q", "r"}, lineTexts(b))

	list.Reset()
	assert.Equal(t, 0, b.LineCount())
}

// Reconciliation is order-convergent for add/remove/reset deltas: the
// incremental result equals a single rebuild from the final collection
// state. Replace is excluded: it moves the replaced item to the tail of the
// display (see TestReplaceDelta) while the collection keeps it in place.
func TestDeltaSequenceConvergesToRebuild(t *testing.T) {
	mutate := func(l *ItemList) {
		l.Add("a", "b", "c")
		l.Remove("b")
		l.Add("d")
		l.Remove("a")
		l.Add("e", "f")
	}

	incremental := NewBuffer()
	list := NewItemList()
	incremental.Bind(list)
	mutate(list)

	rebuilt := NewBuffer()
	final := NewItemList()
	mutate(final) // no observer bound yet: deltas go nowhere
	rebuilt.Bind(final)

	assert.Equal(t, lineTexts(rebuilt), lineTexts(incremental))
}

func TestReconcileResetsEditTail(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("> ")
	list := NewItemList("x")
	b.Bind(list)
	typeString(b, "in progress")

	list.Add("y")
	assert.Equal(t, "", b.EditableText(), "reconciliation re-establishes an empty editable tail")
	assert.Equal(t, b.DocumentLength(), b.Caret(), "caret moved to document end")
	assert.Equal(t, "> ", b.Prompt())
}

func TestRebindCancelsPreviousSubscription(t *testing.T) {
	b := NewBuffer()
	old := NewItemList("old")
	b.Bind(old)

	replacement := NewItemList("new")
	b.Bind(replacement)
	require.Equal(t, []string{"new"}, lineTexts(b))

	// Deltas from the old collection must no longer be delivered
	old.Add("ghost")
	assert.Equal(t, []string{"new"}, lineTexts(b))
}

func TestUnbindStopsDeltasKeepsLines(t *testing.T) {
	b := NewBuffer()
	list := NewItemList("keep")
	b.Bind(list)
	b.Unbind()

	list.Add("dropped")
	assert.Equal(t, []string{"keep"}, lineTexts(b))
}

type panickySource struct{}

func (panickySource) Items() []any { panic("collection mutated during enumeration") }

func TestEnumerationPanicTreatedAsEmpty(t *testing.T) {
	b := NewBuffer()
	assert.NotPanics(t, func() { b.Bind(panickySource{}) })
	assert.Equal(t, 0, b.LineCount())
}

func TestBindNilClears(t *testing.T) {
	b := NewBuffer()
	b.AppendDisplayLines([]DisplayLine{{Text: "stale"}})
	b.Bind(nil)
	assert.Equal(t, 0, b.LineCount())
}

func TestErrorItemsGetErrorColor(t *testing.T) {
	type job struct {
		Name   string
		Failed bool
	}
	b := NewBuffer()
	b.SetDisplayPath("Name")
	b.SetErrorPath("Failed")
	b.Bind(NewItemList(job{Name: "ok"}, job{Name: "boom", Failed: true}))

	lines := b.DisplayLines()
	require.Len(t, lines, 2)
	assert.False(t, lines[0].IsError)
	assert.Equal(t, b.Scheme().Foreground, lines[0].Color)
	assert.True(t, lines[1].IsError)
	assert.Equal(t, b.Scheme().Error, lines[1].Color)
}

func TestColorResolver(t *testing.T) {
	b := NewBuffer()
	green := RGB(0, 200, 0)
	b.SetColorResolver(func(item any) Color {
		if item == "special" {
			return green
		}
		return Color{}
	})
	b.Bind(NewItemList("plain", "special"))

	lines := b.DisplayLines()
	require.Len(t, lines, 2)
	assert.Equal(t, b.Scheme().Foreground, lines[0].Color)
	assert.Equal(t, green, lines[1].Color)
}

func TestMultilineItemTruncatedOnReconcile(t *testing.T) {
	b := NewBuffer()
	b.Bind(NewItemList("head\nrest"))
	assert.Equal(t, []string{"head"}, lineTexts(b))
}

type stringerItem struct{ n int }

func (s stringerItem) String() string { return fmt.Sprintf("item-%d", s.n) }

func TestDefaultStringConversion(t *testing.T) {
	b := NewBuffer()
	b.Bind(NewItemList(stringerItem{n: 7}, 42))
	assert.Equal(t, []string{"item-7", "42"}, lineTexts(b))
}
