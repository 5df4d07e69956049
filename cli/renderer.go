package cli

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	consolebox "github.com/mkeddie/consolebox"
)

// Renderer draws the console contents to the host terminal using
// ANSI escape sequences, repainting only the rows that changed.
type Renderer struct {
	console *Console

	renderRequest chan struct{}

	// Last frame, one rendered string per terminal row; guarded by mu
	mu        sync.Mutex
	lastFrame []string
}

// NewRenderer creates a renderer for the given console
func NewRenderer(c *Console) *Renderer {
	return &Renderer{
		console:       c,
		renderRequest: make(chan struct{}, 1),
	}
}

// RequestRender schedules a repaint; coalesces bursts
func (r *Renderer) RequestRender() {
	select {
	case r.renderRequest <- struct{}{}:
	default:
	}
}

// InvalidateFrame forces the next render to repaint every row
func (r *Renderer) InvalidateFrame() {
	r.mu.Lock()
	r.lastFrame = nil
	r.mu.Unlock()
}

// RenderLoop processes render requests until the console stops
func (r *Renderer) RenderLoop() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-r.renderRequest:
			pending = true
		case <-ticker.C:
			if pending {
				pending = false
				r.render()
			}
		case <-r.console.stopRender:
			return
		}
	}
}

// renderRow is one terminal row with styling already resolved
type renderRow struct {
	text  string
	color consolebox.Color
	caret int // caret column, -1 when the caret is not on this row
}

// render paints the current viewport
func (r *Renderer) render() {
	c := r.console

	followTail := c.contentDirty.Swap(false) && c.buffer.AutoScroll()

	c.mu.Lock()
	if followTail {
		c.scrollOffset = 0
	}
	cols := c.hostCols
	rows := c.contentRowsLocked()
	offset := c.scrollOffset
	c.mu.Unlock()

	buf := c.buffer
	scheme := buf.Scheme()
	margin := buf.Margin()
	lines := buf.DisplayLines()
	prompt := buf.Prompt()
	editable := buf.EditableText()
	caret := buf.Caret()
	boundary := buf.Boundary()

	// Logical rows: every display line, then the edit row
	total := len(lines) + 1
	top := total - rows - offset
	if top < 0 {
		top = 0
	}

	frame := make([]renderRow, 0, rows)
	for i := top; i < total && len(frame) < rows; i++ {
		if i < len(lines) {
			frame = append(frame, renderRow{
				text:  lines[i].Text,
				color: lines[i].Color,
				caret: -1,
			})
			continue
		}
		// Edit row
		col := -1
		if caret >= boundary {
			col = margin + runewidth.StringWidth(prompt) +
				runewidth.StringWidth(string([]rune(editable)[:caret-boundary]))
		}
		frame = append(frame, renderRow{
			text:  prompt + editable,
			color: scheme.Foreground,
			caret: col,
		})
	}

	var sb strings.Builder
	sb.WriteString("\033[?25l")

	caretRow, caretCol := -1, -1
	rendered := make([]string, rows)
	r.mu.Lock()
	for row := 0; row < rows; row++ {
		var line string
		if row < len(frame) {
			line = r.renderLine(frame[row], cols, margin, scheme)
			if frame[row].caret >= 0 {
				caretRow, caretCol = row, frame[row].caret
			}
		} else {
			line = ansiBackground(scheme.Background) + "\033[2K"
		}
		rendered[row] = line
		if row < len(r.lastFrame) && r.lastFrame[row] == line {
			continue
		}
		sb.WriteString(fmt.Sprintf("\033[%d;1H", row+1))
		sb.WriteString(line)
	}
	r.lastFrame = rendered
	r.mu.Unlock()

	if caretRow >= 0 {
		sb.WriteString(fmt.Sprintf("\033[%d;%dH\033[?25h", caretRow+1, caretCol+1))
	}
	sb.WriteString("\033[0m")
	fmt.Print(sb.String())
}

// renderLine builds the escape-sequence string for a single row
func (r *Renderer) renderLine(row renderRow, cols, margin int, scheme consolebox.Scheme) string {
	var sb strings.Builder
	sb.WriteString(ansiBackground(scheme.Background))
	sb.WriteString("\033[2K")
	if margin > 0 {
		sb.WriteString(strings.Repeat(" ", margin))
	}
	sb.WriteString(ansiForeground(row.color))
	sb.WriteString(clipToWidth(row.text, cols-margin))
	return sb.String()
}

// clipToWidth truncates text to the given display width
func clipToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "")
}

func ansiForeground(c consolebox.Color) string {
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", c.R, c.G, c.B)
}

func ansiBackground(c consolebox.Color) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm", c.R, c.G, c.B)
}
