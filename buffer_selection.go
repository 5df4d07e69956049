package consolebox

// --- Selection and Clipboard Semantics ---
//
// The core tracks the selection as a (start, end) rune-offset pair and
// implements the boundary clipping for copy, cut and paste. Moving bytes to
// and from the OS clipboard is the frontend's job.

// SetSelection sets the selection range in document rune offsets. The caret
// follows the selection end. Offsets are clamped to the document.
func (b *Buffer) SetSelection(start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selStart, b.selEnd = start, end
	b.caret = end
	b.clampLocked()
	b.markDirty()
}

// Selection returns the normalized selection bounds and whether a selection
// is active.
func (b *Buffer) Selection() (start, end int, active bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.selStart == b.selEnd {
		return b.caret, b.caret, false
	}
	return min(b.selStart, b.selEnd), max(b.selStart, b.selEnd), true
}

// HasSelection returns true if there is an active selection.
func (b *Buffer) HasSelection() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selStart != b.selEnd
}

// ClearSelection collapses the selection to the caret.
func (b *Buffer) ClearSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selStart, b.selEnd = b.caret, b.caret
	b.markDirty()
}

// SelectAll selects the entire document, display lines included.
func (b *Buffer) SelectAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selStart = 0
	b.selEnd = b.docEndLocked()
	b.caret = b.selEnd
	b.markDirty()
}

// SelectedText returns the text inside the current selection, or "" when
// nothing is selected.
func (b *Buffer) SelectedText() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.selStart == b.selEnd {
		return ""
	}
	runes := []rune(b.documentLocked())
	start := min(b.selStart, b.selEnd)
	end := max(b.selStart, b.selEnd)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}

// Copy returns the text to place on the clipboard: only the current
// selection is exposed.
func (b *Buffer) Copy() string {
	return b.SelectedText()
}

// canClipboardLocked reports whether a clipboard mutation may proceed: the
// caret, or the selection start when a selection is active, must be at or
// after the boundary.
func (b *Buffer) canClipboardLocked() bool {
	boundary := b.boundaryLocked()
	if b.selStart != b.selEnd {
		return min(b.selStart, b.selEnd) >= boundary
	}
	return b.caret >= boundary
}

// Cut returns the selected text and removes it from the editable segment,
// collapsing the caret to the start of the removed range. When the selection
// starts before the boundary nothing is removed and "" is returned.
func (b *Buffer) Cut() string {
	b.mu.Lock()
	if b.selStart == b.selEnd || !b.canClipboardLocked() {
		b.mu.Unlock()
		return ""
	}
	runes := []rune(b.documentLocked())
	start := min(b.selStart, b.selEnd)
	end := max(b.selStart, b.selEnd)
	text := string(runes[start:end])
	b.deleteEditableRangeLocked(start, end)
	notify := b.publishCurrentLineLocked(b.editable)
	b.markDirty()
	b.mu.Unlock()
	notify()
	return text
}

// Paste inserts plain clipboard text at the caret. An active selection
// inside the editable region is replaced. Blocked without effect when the
// insertion point lies before the boundary.
func (b *Buffer) Paste(text string) {
	if text == "" {
		return
	}
	b.mu.Lock()
	if !b.canClipboardLocked() {
		b.mu.Unlock()
		return
	}
	notify := b.insertTextLocked(text)
	b.mu.Unlock()
	notify()
}
