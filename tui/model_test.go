package consoleboxtui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	consolebox "github.com/mkeddie/consolebox"
)

func newTestModel() *Model {
	m := New(Options{Prompt: "> ", AutoScroll: true})
	m.SetSize(40, 10)
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func appendLines(b *consolebox.Buffer, texts ...string) {
	lines := make([]consolebox.DisplayLine, len(texts))
	for i, text := range texts {
		lines[i] = consolebox.DisplayLine{Text: text}
	}
	b.AppendDisplayLines(lines)
}

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want consolebox.KeyEvent
	}{
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, consolebox.KeyEvent{Key: consolebox.KeyEnter}},
		{"up", tea.KeyMsg{Type: tea.KeyUp}, consolebox.KeyEvent{Key: consolebox.KeyUp}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, consolebox.KeyEvent{Key: consolebox.KeyTab}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, consolebox.KeyEvent{Key: consolebox.KeyBackspace}},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: ' '}},
		{"rune", keyRunes("x"), consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'x'}},
		{"ctrl+a", tea.KeyMsg{Type: tea.KeyCtrlA}, consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'a', Ctrl: true}},
		{"ctrl+v", tea.KeyMsg{Type: tea.KeyCtrlV}, consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'v', Ctrl: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := translateKey(tt.msg)
			require.True(t, ok)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestTypingAndEnter(t *testing.T) {
	m := newTestModel()

	for _, r := range "hello" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "hello", m.Buffer().EditableText())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "", m.Buffer().EditableText())
	assert.Equal(t, []string{"hello"}, m.Buffer().HistoryLines())
}

func TestCtrlQQuits(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsPromptAndEditable(t *testing.T) {
	m := newTestModel()
	appendLines(m.Buffer(), "first", "second")
	for _, r := range "cmd" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	view := m.View()
	assert.Contains(t, view, "first")
	assert.Contains(t, view, "second")
	assert.Contains(t, view, ">")
	assert.Contains(t, view, "cmd")
}

func TestViewClipsToHeight(t *testing.T) {
	m := newTestModel()
	m.SetSize(40, 3)
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}
	appendLines(m.Buffer(), texts...)

	view := m.View()
	rows := strings.Split(view, "\n")
	assert.Len(t, rows, 3)
	// The tail is visible: the last two lines plus the edit row
	assert.Contains(t, rows[0], strings.Repeat("x", 9))
	assert.Contains(t, rows[1], strings.Repeat("x", 10))
}

func TestScrollerClampsAtTop(t *testing.T) {
	m := newTestModel()
	m.SetSize(40, 3)
	appendLines(m.Buffer(), "a", "b", "c", "d", "e")

	m.ScrollPages(-10)
	// 6 logical rows, 3 visible: at most 3 rows above the tail
	assert.Equal(t, 3, m.scrollOffset)

	m.ScrollLines(100)
	assert.Equal(t, 0, m.scrollOffset)
}

func TestReadOnlyRoutesArrowsToScroller(t *testing.T) {
	m := newTestModel()
	m.SetSize(40, 3)
	appendLines(m.Buffer(), "a", "b", "c", "d", "e")
	m.Buffer().SetReadOnly(true)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.scrollOffset)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.scrollOffset)
}

func TestReadOnlyScrollSurvivesAutoScroll(t *testing.T) {
	m := newTestModel() // auto-scroll on
	m.SetSize(40, 3)
	appendLines(m.Buffer(), "a", "b", "c", "d", "e")
	m.Buffer().SetReadOnly(true)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, m.scrollOffset)

	// 6 logical rows, 3 visible: a page up clamps at the top
	m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, 3, m.scrollOffset)

	// Swallowed keys leave the viewport alone
	m.Update(keyRunes("q"))
	assert.Equal(t, 3, m.scrollOffset)
}

func TestTypingFollowsTailAfterScroll(t *testing.T) {
	m := newTestModel()
	m.SetSize(40, 3)
	appendLines(m.Buffer(), "a", "b", "c", "d", "e")

	m.Update(keyRunes("x"))
	m.ScrollPages(-1)
	assert.Equal(t, 3, m.scrollOffset)

	// An edit pulls the viewport back to the tail
	m.Update(keyRunes("y"))
	assert.Equal(t, 0, m.scrollOffset)
}
