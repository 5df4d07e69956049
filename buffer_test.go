package consolebox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeString(b *Buffer, s string) {
	for _, r := range s {
		b.HandleKey(KeyEvent{Key: KeyRune, Rune: r})
	}
}

func TestNewBufferDefaults(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, "", b.Prompt())
	assert.Equal(t, 10, b.LineHeight())
	assert.Equal(t, 0, b.Margin())
	assert.True(t, b.AutoScroll())
	assert.False(t, b.ReadOnly())
	assert.Equal(t, 0, b.Boundary())
	assert.Equal(t, 0, b.LineCount())
}

func TestBoundaryAccountsForLinesAndPrompt(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("> ")
	assert.Equal(t, 2, b.Boundary())

	b.AppendDisplayLines([]DisplayLine{{Text: "abc"}, {Text: "de"}})
	// "abc\n" + "de\n" + "> " = 4 + 3 + 2
	assert.Equal(t, 9, b.Boundary())
}

func TestAppendDisplayLinesTruncatesToFirstLine(t *testing.T) {
	b := NewBuffer()
	b.AppendDisplayLines([]DisplayLine{{Text: "first\nsecond\nthird"}})
	lines := b.DisplayLines()
	require.Len(t, lines, 1)
	assert.Equal(t, "first", lines[0].Text)
}

func TestAppendDisplayLinesEmptyIsNoop(t *testing.T) {
	b := NewBuffer()
	dirty := 0
	b.SetDirtyCallback(func() { dirty++ })
	b.AppendDisplayLines(nil)
	b.AppendDisplayLines([]DisplayLine{})
	assert.Equal(t, 0, dirty)
	assert.Equal(t, 0, b.LineCount())
}

func TestAppendKeepsCaretOnEditableText(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("> ")
	typeString(b, "hello")
	b.HandleKey(KeyEvent{Key: KeyLeft})
	b.HandleKey(KeyEvent{Key: KeyLeft})
	caretInEditable := b.Caret() - b.Boundary()

	b.AppendDisplayLines([]DisplayLine{{Text: "output"}})
	assert.Equal(t, caretInEditable, b.Caret()-b.Boundary())
	assert.Equal(t, "hello", b.EditableText())
}

func TestRemoveDisplayLine(t *testing.T) {
	tests := []struct {
		name   string
		have   []string
		remove string
		want   []string
	}{
		{"removes first match", []string{"a", "b", "a"}, "a", []string{"b", "a"}},
		{"absent is noop", []string{"a", "b"}, "c", []string{"a", "b"}},
		{"middle", []string{"a", "b", "c"}, "b", []string{"a", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer()
			for _, s := range tt.have {
				b.AppendDisplayLines([]DisplayLine{{Text: s}})
			}
			b.RemoveDisplayLine(tt.remove)
			var got []string
			for _, ln := range b.DisplayLines() {
				got = append(got, ln.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClearDisplayLinesKeepsPromptAndEditable(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("$ ")
	b.AppendDisplayLines([]DisplayLine{{Text: "one"}, {Text: "two"}})
	typeString(b, "keep")

	b.ClearDisplayLines()
	assert.Equal(t, 0, b.LineCount())
	assert.Equal(t, "$ ", b.Prompt())
	assert.Equal(t, "keep", b.EditableText())
	assert.Equal(t, 2, b.Boundary())
}

func TestCurrentLineMatchesTypedTextRegardlessOfPrompt(t *testing.T) {
	for _, prompt := range []string{"", "> ", "very long prompt $ "} {
		b := NewBuffer()
		b.SetPrompt(prompt)
		b.AppendDisplayLines([]DisplayLine{{Text: "noise"}})
		typeString(b, "axc")
		b.HandleKey(KeyEvent{Key: KeyLeft})
		b.HandleKey(KeyEvent{Key: KeyBackspace})
		typeString(b, "b")
		assert.Equal(t, "abc", b.CurrentLine(), "prompt %q", prompt)
	}
}

func TestSetEditableTextMovesCaretToEnd(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("> ")
	b.SetEditableText("hello")
	assert.Equal(t, b.DocumentLength(), b.Caret())
	assert.Equal(t, "hello", b.CurrentLine())
}

func TestCurrentLineChangedCallback(t *testing.T) {
	b := NewBuffer()
	var published []string
	b.SetCurrentLineChangedCallback(func(line string) { published = append(published, line) })
	typeString(b, "ab")
	b.HandleKey(KeyEvent{Key: KeyEscape})
	assert.Equal(t, []string{"a", "ab", ""}, published)
}

func TestDocument(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("> ")
	b.AppendDisplayLines([]DisplayLine{{Text: "x"}, {Text: "y"}})
	typeString(b, "in")
	assert.Equal(t, "x\ny\n> in", b.Document())
}

func TestUpdateBlockCoalescesDirty(t *testing.T) {
	b := NewBuffer()
	dirty := 0
	b.SetDirtyCallback(func() { dirty++ })

	b.BeginUpdate()
	b.AppendDisplayLines([]DisplayLine{{Text: "a"}})
	b.AppendDisplayLines([]DisplayLine{{Text: "b"}})
	b.SetEditableText("z")
	assert.Equal(t, 0, dirty, "no dirty inside the block")
	b.EndUpdate()
	assert.Equal(t, 1, dirty, "one dirty at block end")
}

func TestNestedUpdateBlocks(t *testing.T) {
	b := NewBuffer()
	dirty := 0
	b.SetDirtyCallback(func() { dirty++ })

	b.BeginUpdate()
	b.BeginUpdate()
	b.AppendDisplayLines([]DisplayLine{{Text: "a"}})
	b.EndUpdate()
	assert.Equal(t, 0, dirty)
	b.EndUpdate()
	assert.Equal(t, 1, dirty)
}

func TestSelectionAndCopy(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("> ")
	b.AppendDisplayLines([]DisplayLine{{Text: "out"}})
	typeString(b, "input")

	// Select "t\n> in" across the boundary
	b.SetSelection(2, 8)
	assert.Equal(t, "t\n> in", b.Copy())

	// Copy is selection-only
	b.ClearSelection()
	assert.Equal(t, "", b.Copy())
}

func TestSelectAll(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("> ")
	b.AppendDisplayLines([]DisplayLine{{Text: "ab"}})
	typeString(b, "cd")
	b.SelectAll()
	assert.Equal(t, "ab\n> cd", b.SelectedText())
}

func TestPasteClipping(t *testing.T) {
	t.Run("paste at caret inside editable", func(t *testing.T) {
		b := NewBuffer()
		b.SetPrompt("> ")
		typeString(b, "ad")
		b.HandleKey(KeyEvent{Key: KeyLeft})
		b.Paste("bc")
		assert.Equal(t, "abcd", b.EditableText())
	})

	t.Run("paste replaces selection in editable", func(t *testing.T) {
		b := NewBuffer()
		b.SetPrompt("> ")
		typeString(b, "aXYd")
		boundary := b.Boundary()
		b.SetSelection(boundary+1, boundary+3)
		b.Paste("bc")
		assert.Equal(t, "abcd", b.EditableText())
	})

	t.Run("paste before boundary is blocked", func(t *testing.T) {
		b := NewBuffer()
		b.SetPrompt("> ")
		typeString(b, "abc")
		b.SetCaret(0)
		b.Paste("nope")
		assert.Equal(t, "abc", b.EditableText())
	})

	t.Run("paste truncates to first line", func(t *testing.T) {
		b := NewBuffer()
		b.Paste("one\ntwo")
		assert.Equal(t, "one", b.EditableText())
	})
}

func TestCut(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("> ")
	typeString(b, "abcd")
	boundary := b.Boundary()

	b.SetSelection(boundary+1, boundary+3)
	assert.Equal(t, "bc", b.Cut())
	assert.Equal(t, "ad", b.EditableText())
	assert.Equal(t, boundary+1, b.Caret(), "caret collapses to the removed range start")

	// Typing resumes at the collapse point
	typeString(b, "x")
	assert.Equal(t, "axd", b.EditableText())

	// Selection reaching before the boundary is not cuttable
	b.SetSelection(0, b.DocumentLength())
	assert.Equal(t, "", b.Cut())
	assert.Equal(t, "axd", b.EditableText())
}

func TestSetPromptKeepsCaretPosition(t *testing.T) {
	b := NewBuffer()
	b.SetPrompt("> ")
	typeString(b, "abc")
	b.HandleKey(KeyEvent{Key: KeyLeft})
	within := b.Caret() - b.Boundary()

	b.SetPrompt("$$$ ")
	assert.Equal(t, within, b.Caret()-b.Boundary())
	assert.Equal(t, "abc", b.EditableText())
}
