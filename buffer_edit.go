package consolebox

import (
	"strings"
	"unicode/utf8"
)

// --- Editable Segment and Caret ---

// SetEditableText replaces the editable segment's content and moves the caret
// to the end of the document. Used by history navigation, completion and
// paste. Text is truncated to its first physical line.
func (b *Buffer) SetEditableText(text string) {
	b.mu.Lock()
	notify := b.setEditableTextLocked(text)
	b.markDirty()
	b.mu.Unlock()
	notify()
}

func (b *Buffer) setEditableTextLocked(text string) func() {
	b.editable = firstLine(text)
	b.caret = b.docEndLocked()
	b.selStart, b.selEnd = b.caret, b.caret
	return b.publishCurrentLineLocked(b.editable)
}

// publishCurrentLineLocked updates the published current-line value and
// returns the notification to run after the lock is released.
func (b *Buffer) publishCurrentLineLocked(line string) func() {
	if b.currentLine == line {
		return func() {}
	}
	b.currentLine = line
	fn := b.onCurrentLineChanged
	if fn == nil {
		return func() {}
	}
	return func() { fn(line) }
}

// EditableText returns the editable segment's content.
func (b *Buffer) EditableText() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.editable
}

// CurrentLine returns the published current-line value: the concatenation of
// all text strictly after the prompt boundary. After Enter it holds the
// entered line until the user types again.
func (b *Buffer) CurrentLine() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.currentLine
}

// Document returns the full document text: display lines, each followed by a
// newline, then the prompt and the editable segment.
func (b *Buffer) Document() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.documentLocked()
}

func (b *Buffer) documentLocked() string {
	var sb strings.Builder
	for _, ln := range b.lines {
		sb.WriteString(ln.Text)
		sb.WriteByte('\n')
	}
	sb.WriteString(b.prompt)
	sb.WriteString(b.editable)
	return sb.String()
}

// Caret returns the caret position as a rune offset into the document.
func (b *Buffer) Caret() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.caret
}

// SetCaret moves the caret, clamping to the document bounds. The selection
// is collapsed to the new position.
func (b *Buffer) SetCaret(pos int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caret = pos
	b.selStart, b.selEnd = pos, pos
	b.clampLocked()
	b.markDirty()
}

// InsertText inserts text at the caret, replacing any selection that lies
// within the editable region. Blocked without effect when the caret sits
// before the boundary. Text is truncated to its first physical line.
func (b *Buffer) InsertText(text string) {
	if text == "" {
		return
	}
	b.mu.Lock()
	notify := b.insertTextLocked(text)
	b.mu.Unlock()
	notify()
}

func (b *Buffer) insertTextLocked(text string) func() {
	boundary := b.boundaryLocked()
	if b.selStart != b.selEnd {
		if min(b.selStart, b.selEnd) < boundary {
			return func() {}
		}
		b.deleteEditableRangeLocked(min(b.selStart, b.selEnd), max(b.selStart, b.selEnd))
	}
	if b.caret < boundary {
		return func() {}
	}
	text = firstLine(text)
	idx := b.caret - boundary
	runes := []rune(b.editable)
	b.editable = string(runes[:idx]) + text + string(runes[idx:])
	b.caret += utf8.RuneCountInString(text)
	b.selStart, b.selEnd = b.caret, b.caret
	notify := b.publishCurrentLineLocked(b.editable)
	b.markDirty()
	return notify
}

// deleteEditableRangeLocked removes document range [start, end), which must
// lie within the editable segment, and collapses the selection to start.
func (b *Buffer) deleteEditableRangeLocked(start, end int) {
	boundary := b.boundaryLocked()
	if start < boundary {
		start = boundary
	}
	if end > b.docEndLocked() {
		end = b.docEndLocked()
	}
	if start >= end {
		return
	}
	runes := []rune(b.editable)
	b.editable = string(runes[:start-boundary]) + string(runes[end-boundary:])
	b.caret = start
	b.selStart, b.selEnd = start, start
}

// DeleteBackward removes the selection, or the rune before the caret.
// Swallowed when the caret is on or before the boundary.
func (b *Buffer) DeleteBackward() {
	b.mu.Lock()
	notify := b.deleteBackwardLocked()
	b.mu.Unlock()
	notify()
}

func (b *Buffer) deleteBackwardLocked() func() {
	boundary := b.boundaryLocked()
	if b.selStart != b.selEnd {
		if min(b.selStart, b.selEnd) < boundary {
			return func() {}
		}
		b.deleteEditableRangeLocked(min(b.selStart, b.selEnd), max(b.selStart, b.selEnd))
	} else {
		if b.caret <= boundary {
			return func() {}
		}
		b.deleteEditableRangeLocked(b.caret-1, b.caret)
	}
	notify := b.publishCurrentLineLocked(b.editable)
	b.markDirty()
	return notify
}

// DeleteForward removes the selection, or the rune at the caret.
// Swallowed when the caret is strictly before the boundary.
func (b *Buffer) DeleteForward() {
	b.mu.Lock()
	notify := b.deleteForwardLocked()
	b.mu.Unlock()
	notify()
}

func (b *Buffer) deleteForwardLocked() func() {
	boundary := b.boundaryLocked()
	if b.selStart != b.selEnd {
		if min(b.selStart, b.selEnd) < boundary {
			return func() {}
		}
		b.deleteEditableRangeLocked(min(b.selStart, b.selEnd), max(b.selStart, b.selEnd))
	} else {
		if b.caret < boundary || b.caret >= b.docEndLocked() {
			return func() {}
		}
		b.deleteEditableRangeLocked(b.caret, b.caret+1)
	}
	notify := b.publishCurrentLineLocked(b.editable)
	b.markDirty()
	return notify
}

// clearEditableLocked empties the editable segment and parks the caret at
// the boundary.
func (b *Buffer) clearEditableLocked() func() {
	b.editable = ""
	b.caret = b.docEndLocked()
	b.selStart, b.selEnd = b.caret, b.caret
	return b.publishCurrentLineLocked("")
}
