package consolebox

// Key identifies a dispatched key. Frontends translate their native key
// events into these before calling HandleKey.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // A printable character; Rune carries it
	KeyEnter
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyTab
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyCopy  // Dedicated clipboard keys, where the keyboard has them
	KeyCut
	KeyPaste
)

// KeyEvent is one keyboard event as seen by the dispatcher.
type KeyEvent struct {
	Key   Key
	Rune  rune
	Ctrl  bool
	Shift bool
	Alt   bool
}

// HandleKey runs one key event through the dispatcher. It returns true when
// the event was consumed: either an edit was performed or the key was
// deliberately swallowed to protect the prompt boundary. False means the
// frontend's default handling may proceed; in particular, an allowed
// Ctrl+C/X/V returns false so the frontend can bridge the OS clipboard via
// Copy, Cut and Paste.
//
// Any key other than Tab ends the current completion session.
func (b *Buffer) HandleKey(ev KeyEvent) bool {
	if b.ReadOnly() {
		return b.handleReadOnlyKey(ev)
	}
	if ev.Key == KeyTab && !ev.Ctrl && !ev.Alt {
		return b.handleTab()
	}

	b.mu.Lock()
	handled, notify := b.dispatchLocked(ev)
	b.mu.Unlock()
	for _, fn := range notify {
		fn()
	}
	return handled
}

// handleReadOnlyKey routes navigation keys to the external viewport and
// swallows everything else.
func (b *Buffer) handleReadOnlyKey(ev KeyEvent) bool {
	b.mu.RLock()
	sc := b.scroller
	b.mu.RUnlock()
	if sc != nil {
		switch ev.Key {
		case KeyUp:
			sc.ScrollLines(-1)
		case KeyDown:
			sc.ScrollLines(1)
		case KeyPageUp:
			sc.ScrollPages(-1)
		case KeyPageDown:
			sc.ScrollPages(1)
		}
	}
	return true
}

// handleTab advances the completion session, starting one on the first Tab
// press after a reset by snapshotting the completion source. The source is
// invoked without the buffer lock held.
func (b *Buffer) handleTab() bool {
	b.mu.RLock()
	starting := !b.completion.Active()
	src := b.completionSource
	b.mu.RUnlock()

	var snapshot []string
	if starting && src != nil {
		snapshot = src()
	}

	b.mu.Lock()
	if starting {
		b.completion.Begin(snapshot)
	}
	candidate, ok := b.completion.Next()
	var notify func()
	if ok {
		notify = b.setEditableTextLocked(candidate)
		b.markDirty()
	} else {
		notify = func() {}
	}
	b.mu.Unlock()
	notify()
	return true
}

func (b *Buffer) dispatchLocked(ev KeyEvent) (bool, []func()) {
	// Completing -> Normal on any non-Tab key
	b.completion.Reset()

	boundary := b.boundaryLocked()

	if ev.Ctrl && ev.Key == KeyRune {
		switch ev.Rune {
		case 'a', 'A':
			b.selStart = 0
			b.selEnd = b.docEndLocked()
			b.caret = b.selEnd
			b.markDirty()
			return true, nil
		case 'c', 'C', 'x', 'X', 'v', 'V':
			// Allowed clipboard chords proceed to the frontend's handler
			return !b.canClipboardLocked(), nil
		}
		return false, nil
	}

	switch ev.Key {
	case KeyEnter:
		return true, b.enterLocked()

	case KeyUp, KeyDown:
		if b.history.Len() == 0 || b.caret < boundary {
			return true, nil
		}
		var line string
		if ev.Key == KeyUp {
			line, _ = b.history.RotateUp()
		} else {
			line, _ = b.history.RotateDown()
		}
		notify := b.setEditableTextLocked(line)
		b.markDirty()
		return true, []func(){notify}

	case KeyEscape:
		notify := b.clearEditableLocked()
		b.markDirty()
		return true, []func(){notify}

	case KeyLeft:
		if b.caret <= boundary {
			return true, nil
		}
		b.caret--
		b.selStart, b.selEnd = b.caret, b.caret
		b.markDirty()
		return true, nil

	case KeyRight:
		if b.caret < b.docEndLocked() {
			b.caret++
			b.selStart, b.selEnd = b.caret, b.caret
			b.markDirty()
		}
		return true, nil

	case KeyHome:
		b.caret = boundary
		b.selStart, b.selEnd = b.caret, b.caret
		b.markDirty()
		return true, nil

	case KeyEnd:
		b.caret = b.docEndLocked()
		b.selStart, b.selEnd = b.caret, b.caret
		b.markDirty()
		return true, nil

	case KeyBackspace:
		return true, []func(){b.deleteBackwardLocked()}

	case KeyDelete:
		return true, []func(){b.deleteForwardLocked()}

	case KeyPageUp, KeyPageDown:
		// Scrolling is the external viewer's job when read-only; while
		// editable these keys are swallowed outright.
		return true, nil

	case KeyCopy, KeyCut, KeyPaste:
		return !b.canClipboardLocked(), nil

	case KeyRune:
		if b.caret < boundary {
			return true, nil
		}
		return true, []func(){b.insertTextLocked(string(ev.Rune))}
	}

	return false, nil
}

// enterLocked implements Enter: read the current line, clear the editable
// segment, push the line onto the history ring, publish the current-line
// value, and raise the line-entered notification.
func (b *Buffer) enterLocked() []func() {
	line := b.editable
	b.editable = ""
	b.caret = b.docEndLocked()
	b.selStart, b.selEnd = b.caret, b.caret
	b.history.Push(line)
	publish := b.publishCurrentLineLocked(line)
	entered := b.onLineEntered
	b.markDirty()
	if entered == nil {
		return []func(){publish}
	}
	return []func(){publish, entered}
}
