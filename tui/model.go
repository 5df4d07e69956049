// Package consoleboxtui embeds a console box in a Bubble Tea program.
//
// The Model wraps a consolebox.Buffer, translating Bubble Tea key
// messages into buffer key events and rendering the buffer contents
// with Lip Gloss. Embed it in a parent model, or run it standalone:
//
//	m := consoleboxtui.New(consoleboxtui.Options{Prompt: "> "})
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	p.Run()
package consoleboxtui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	consolebox "github.com/mkeddie/consolebox"
)

// Options configures the model.
type Options struct {
	Prompt     string
	Scheme     consolebox.Scheme
	Margin     int
	AutoScroll bool
	ReadOnly   bool

	CompletionSource func() []string
}

// Model is a Bubble Tea component wrapping a console buffer.
type Model struct {
	buffer *consolebox.Buffer

	width  int
	height int

	// Lines of scrollback hidden below the viewport bottom
	scrollOffset int

	// Set by the dirty callback when buffer content changed; followTail
	// consumes it
	contentDirty bool

	lineStyle   lipgloss.Style
	promptStyle lipgloss.Style
	caretStyle  lipgloss.Style
}

// New creates a console model.
func New(opts Options) *Model {
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.Scheme == (consolebox.Scheme{}) {
		opts.Scheme = consolebox.DefaultScheme()
	}

	buffer := consolebox.NewBuffer()
	buffer.SetPrompt(opts.Prompt)
	buffer.SetScheme(opts.Scheme)
	buffer.SetMargin(opts.Margin)
	buffer.SetAutoScroll(opts.AutoScroll)
	buffer.SetReadOnly(opts.ReadOnly)
	if opts.CompletionSource != nil {
		buffer.SetCompletionSource(opts.CompletionSource)
	}

	m := &Model{
		buffer: buffer,
		width:  80,
		height: 24,
	}
	m.applyScheme(opts.Scheme)
	buffer.SetScroller(m)
	buffer.SetDirtyCallback(func() { m.contentDirty = true })
	return m
}

func (m *Model) applyScheme(s consolebox.Scheme) {
	bg := lipgloss.Color(hexColor(s.Background))
	m.lineStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor(s.Foreground))).
		Background(bg)
	m.promptStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor(s.Prompt))).
		Background(bg)
	m.caretStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor(s.Background))).
		Background(lipgloss.Color(hexColor(s.Foreground)))
}

func hexColor(c consolebox.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Buffer returns the underlying console buffer.
func (m *Model) Buffer() *consolebox.Buffer {
	return m.buffer
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampScroll()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlQ {
		return m, tea.Quit
	}

	// Viewport scrolling chords, independent of the edit state
	switch msg.String() {
	case "shift+pgup":
		m.ScrollPages(-1)
		return m, nil
	case "shift+pgdown":
		m.ScrollPages(1)
		return m, nil
	}

	ev, ok := translateKey(msg)
	if !ok {
		return m, nil
	}

	// Content appended since the last key follows the tail before the key
	// acts, so a read-only scroll is never undone by a stale reset
	m.followTail()

	if !m.buffer.HandleKey(ev) {
		// Dispatcher allowed the event through: clipboard bridging
		if ev.Ctrl && ev.Key == consolebox.KeyRune {
			switch ev.Rune {
			case 'c':
				if text := m.buffer.Copy(); text != "" {
					clipboard.WriteAll(text)
				}
			case 'x':
				if text := m.buffer.Cut(); text != "" {
					clipboard.WriteAll(text)
				}
			case 'v':
				if text, err := clipboard.ReadAll(); err == nil {
					m.buffer.Paste(text)
				}
			}
		}
	}

	m.followTail()
	return m, nil
}

// followTail resets the viewport to the tail when buffer content changed
// and auto-scroll is on. Scroller calls never set the flag, so viewport
// navigation sticks.
func (m *Model) followTail() {
	if !m.contentDirty {
		return
	}
	m.contentDirty = false
	if m.buffer.AutoScroll() {
		m.scrollOffset = 0
	}
}

// translateKey maps a Bubble Tea key message to a buffer key event.
func translateKey(msg tea.KeyMsg) (consolebox.KeyEvent, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return consolebox.KeyEvent{Key: consolebox.KeyEnter}, true
	case tea.KeyUp:
		return consolebox.KeyEvent{Key: consolebox.KeyUp}, true
	case tea.KeyDown:
		return consolebox.KeyEvent{Key: consolebox.KeyDown}, true
	case tea.KeyLeft:
		return consolebox.KeyEvent{Key: consolebox.KeyLeft}, true
	case tea.KeyRight:
		return consolebox.KeyEvent{Key: consolebox.KeyRight}, true
	case tea.KeyHome:
		return consolebox.KeyEvent{Key: consolebox.KeyHome}, true
	case tea.KeyEnd:
		return consolebox.KeyEvent{Key: consolebox.KeyEnd}, true
	case tea.KeyTab:
		return consolebox.KeyEvent{Key: consolebox.KeyTab}, true
	case tea.KeyEscape:
		return consolebox.KeyEvent{Key: consolebox.KeyEscape}, true
	case tea.KeyBackspace:
		return consolebox.KeyEvent{Key: consolebox.KeyBackspace}, true
	case tea.KeyDelete:
		return consolebox.KeyEvent{Key: consolebox.KeyDelete}, true
	case tea.KeyPgUp:
		return consolebox.KeyEvent{Key: consolebox.KeyPageUp}, true
	case tea.KeyPgDown:
		return consolebox.KeyEvent{Key: consolebox.KeyPageDown}, true
	case tea.KeyCtrlA:
		return consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'a', Ctrl: true}, true
	case tea.KeyCtrlC:
		return consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'c', Ctrl: true}, true
	case tea.KeyCtrlX:
		return consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'x', Ctrl: true}, true
	case tea.KeyCtrlV:
		return consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'v', Ctrl: true}, true
	case tea.KeySpace:
		return consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: ' '}, true
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) != 1 {
			return consolebox.KeyEvent{}, false
		}
		return consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: msg.Runes[0]}, true
	}
	return consolebox.KeyEvent{}, false
}

// View implements tea.Model.
func (m *Model) View() string {
	scheme := m.buffer.Scheme()
	margin := strings.Repeat(" ", m.buffer.Margin())
	lines := m.buffer.DisplayLines()
	prompt := m.buffer.Prompt()
	editable := m.buffer.EditableText()
	caret := m.buffer.Caret() - m.buffer.Boundary()

	total := len(lines) + 1
	top := total - m.height - m.scrollOffset
	if top < 0 {
		top = 0
	}

	var rows []string
	for i := top; i < total && len(rows) < m.height; i++ {
		if i < len(lines) {
			style := m.lineStyle
			if lines[i].Color != scheme.Foreground {
				style = style.Foreground(lipgloss.Color(hexColor(lines[i].Color)))
			}
			rows = append(rows, margin+style.Render(clipLine(lines[i].Text, m.width-len(margin))))
			continue
		}
		rows = append(rows, margin+m.renderEditRow(prompt, editable, caret))
	}
	return strings.Join(rows, "\n")
}

// renderEditRow draws the prompt and editable tail with a block caret.
func (m *Model) renderEditRow(prompt, editable string, caret int) string {
	runes := []rune(editable)
	if caret < 0 || caret > len(runes) {
		return m.promptStyle.Render(prompt) + m.lineStyle.Render(editable)
	}

	before := string(runes[:caret])
	at := " "
	after := ""
	if caret < len(runes) {
		at = string(runes[caret])
		after = string(runes[caret+1:])
	}
	return m.promptStyle.Render(prompt) +
		m.lineStyle.Render(before) +
		m.caretStyle.Render(at) +
		m.lineStyle.Render(after)
}

func clipLine(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "")
}

// --- Scroller ---

// ScrollLines scrolls the viewport by n lines, positive toward the tail.
func (m *Model) ScrollLines(n int) {
	m.scrollOffset -= n
	m.clampScroll()
}

// ScrollPages scrolls the viewport by n pages.
func (m *Model) ScrollPages(n int) {
	if m.height > 0 {
		m.scrollOffset -= n * m.height
	}
	m.clampScroll()
}

func (m *Model) clampScroll() {
	max := m.buffer.LineCount() + 1 - m.height
	if max < 0 {
		max = 0
	}
	if m.scrollOffset > max {
		m.scrollOffset = max
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
