package consolebox

import (
	"strings"
	"unicode/utf8"
)

// --- Display Line Methods ---

// AppendDisplayLines inserts display lines before the prompt, preserving
// order. Each line's text is truncated to its first physical line: embedded
// newlines and everything after them are dropped. A nil or empty slice is a
// no-op.
func (b *Buffer) AppendDisplayLines(lines []DisplayLine) {
	if len(lines) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendDisplayLinesLocked(lines)
	b.markDirty()
}

func (b *Buffer) appendDisplayLinesLocked(lines []DisplayLine) {
	insertAt := b.boundaryLocked() - utf8.RuneCountInString(b.prompt)
	added := 0
	for _, ln := range lines {
		ln.Text = firstLine(ln.Text)
		if ln.Color == (Color{}) {
			ln.Color = b.scheme.Foreground
		}
		if ln.IsError {
			ln.Color = b.scheme.Error
		}
		b.lines = append(b.lines, ln)
		added += utf8.RuneCountInString(ln.Text) + 1
	}
	b.shiftOffsetsLocked(insertAt, added)
}

// RemoveDisplayLine removes the first display line whose text equals text.
// Removing a line that is not present is a no-op, not an error. When two
// display lines share the same text only the first is removed.
func (b *Buffer) RemoveDisplayLine(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.removeDisplayLineLocked(text) {
		b.markDirty()
	}
}

func (b *Buffer) removeDisplayLineLocked(text string) bool {
	offset := 0
	for i, ln := range b.lines {
		n := utf8.RuneCountInString(ln.Text) + 1
		if ln.Text == text {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			b.shiftOffsetsLocked(offset, -n)
			b.clampLocked()
			return true
		}
		offset += n
	}
	return false
}

// ClearDisplayLines removes all display lines. The prompt and the editable
// segment are kept.
func (b *Buffer) ClearDisplayLines() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearDisplayLinesLocked()
	b.markDirty()
}

func (b *Buffer) clearDisplayLinesLocked() {
	removed := b.boundaryLocked() - utf8.RuneCountInString(b.prompt)
	b.lines = nil
	b.shiftOffsetsLocked(0, -removed)
	b.clampLocked()
}

// DisplayLines returns a copy of the current display lines.
func (b *Buffer) DisplayLines() []DisplayLine {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]DisplayLine, len(b.lines))
	copy(out, b.lines)
	return out
}

// LineCount returns the number of display lines, excluding the edit row.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// firstLine returns the text up to the first newline. Display lines are one
// visual line per logical item; the remainder is intentionally dropped.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, "\r")
}
