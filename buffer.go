package consolebox

import (
	"sync"
	"unicode/utf8"
)

// defaultLineHeight is the default rendered height of one console line,
// in the frontend's native units.
const defaultLineHeight = 10

// DisplayLine is a single non-editable line rendered from a bound item.
// Once appended it is never mutated, only removed.
type DisplayLine struct {
	Text    string
	Color   Color
	IsError bool
}

// Scroller is the external viewport the key dispatcher drives while the
// console is read-only. Frontends that can scroll implement it.
type Scroller interface {
	ScrollLines(n int) // Positive n scrolls down
	ScrollPages(n int)
}

// Buffer is the console box model: an ordered sequence of display lines
// followed by a prompt and the single editable tail segment.
//
// The prompt boundary is not a sentinel object in the line sequence; it is
// the computed rune offset of the first editable position. No mutation may
// remove characters before it.
//
// All exported methods are safe for concurrent use, but the intended model
// is a single UI thread delivering keyboard events and collection
// notifications serially.
type Buffer struct {
	mu sync.RWMutex

	lines    []DisplayLine
	prompt   string
	editable string

	// Caret and selection as rune offsets into the document (display lines
	// joined by newlines, then prompt, then editable text).
	// selStart == selEnd means no selection.
	caret    int
	selStart int
	selEnd   int

	// Published current-line value. Tracks the editable text while typing;
	// after Enter it holds the entered line even though the editable is
	// already empty again.
	currentLine string

	history    History
	completion Completion

	// Completion source, snapshotted once per Tab session
	completionSource func() []string

	// Item binding state (see reconcile.go)
	source    ItemSource
	cancelSub func()

	// Accessor configuration (see accessor.go)
	accessor    Accessor // typed override; nil means use reflection paths
	displayPath string
	errorPath   string
	displayRes  *pathResolver
	errorRes    *pathResolver

	colorResolver func(item any) Color

	scheme Scheme

	// Config surface
	lineHeight int
	margin     int
	autoScroll bool
	readOnly   bool

	scroller Scroller

	// Change-block nesting: dirty notification is withheld until the
	// outermost EndUpdate so frontends never observe intermediate states.
	updateDepth  int
	dirtyPending bool

	onDirty              func()
	onLineEntered        func()
	onCurrentLineChanged func(line string)
}

// NewBuffer creates an empty console buffer: no display lines, empty prompt,
// empty editable segment, caret at the boundary.
func NewBuffer() *Buffer {
	return &Buffer{
		scheme:     DefaultScheme(),
		lineHeight: defaultLineHeight,
		autoScroll: true,
	}
}

// --- Callbacks ---

// SetDirtyCallback sets a callback invoked whenever the buffer content or
// caret changes. Inside an update block the callback fires once, at the end.
// The callback runs with the buffer lock held: schedule a redraw, do not
// call back into the Buffer.
func (b *Buffer) SetDirtyCallback(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDirty = fn
}

// SetLineEnteredCallback sets a zero-argument callback raised after Enter
// processing. Consumers read CurrentLine for the entered text.
func (b *Buffer) SetLineEnteredCallback(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onLineEntered = fn
}

// SetCurrentLineChangedCallback sets a callback invoked when the published
// current-line value changes.
func (b *Buffer) SetCurrentLineChangedCallback(fn func(line string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onCurrentLineChanged = fn
}

func (b *Buffer) markDirty() {
	if b.updateDepth > 0 {
		b.dirtyPending = true
		return
	}
	if b.onDirty != nil {
		b.onDirty()
	}
}

// BeginUpdate opens a change block. Blocks nest; the dirty callback is
// deferred until the outermost EndUpdate.
func (b *Buffer) BeginUpdate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updateDepth++
}

// EndUpdate closes a change block, firing the dirty callback if anything
// changed inside the block.
func (b *Buffer) EndUpdate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.updateDepth == 0 {
		return
	}
	b.updateDepth--
	if b.updateDepth == 0 && b.dirtyPending {
		b.dirtyPending = false
		if b.onDirty != nil {
			b.onDirty()
		}
	}
}

// --- Prompt ---

// SetPrompt sets the prompt text shown before the editable segment.
// An empty prompt places the boundary at the start of the edit row.
func (b *Buffer) SetPrompt(prompt string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.prompt == prompt {
		return
	}
	oldBoundary := b.boundaryLocked()
	b.prompt = prompt
	// Keep the caret on the same editable character
	delta := b.boundaryLocked() - oldBoundary
	b.shiftOffsetsLocked(oldBoundary, delta)
	b.clampLocked()
	b.markDirty()
}

// Prompt returns the configured prompt text.
func (b *Buffer) Prompt() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.prompt
}

// --- Config surface ---

// SetScheme sets the color scheme used for new display lines and rendering.
func (b *Buffer) SetScheme(s Scheme) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scheme = s
	b.markDirty()
}

// Scheme returns the current color scheme.
func (b *Buffer) Scheme() Scheme {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scheme
}

// SetLineHeight sets the rendered line height hint for frontends.
func (b *Buffer) SetLineHeight(h int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h <= 0 {
		h = defaultLineHeight
	}
	b.lineHeight = h
	b.markDirty()
}

// LineHeight returns the rendered line height hint.
func (b *Buffer) LineHeight() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineHeight
}

// SetMargin sets the outer margin hint for frontends.
func (b *Buffer) SetMargin(m int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m < 0 {
		m = 0
	}
	b.margin = m
	b.markDirty()
}

// Margin returns the outer margin hint.
func (b *Buffer) Margin() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.margin
}

// SetAutoScroll enables or disables follow-tail scrolling after mutations.
func (b *Buffer) SetAutoScroll(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoScroll = on
}

// AutoScroll returns whether follow-tail scrolling is enabled.
func (b *Buffer) AutoScroll() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.autoScroll
}

// SetReadOnly switches the console into read-only mode. While read-only the
// dispatcher routes navigation keys to the Scroller and swallows everything
// else.
func (b *Buffer) SetReadOnly(ro bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readOnly = ro
}

// ReadOnly returns whether the console is read-only.
func (b *Buffer) ReadOnly() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readOnly
}

// SetScroller sets the external viewport used in read-only mode.
func (b *Buffer) SetScroller(s Scroller) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scroller = s
}

// SetColorResolver sets an optional per-item foreground resolver. Items with
// the error flag set use the scheme's error color regardless.
func (b *Buffer) SetColorResolver(fn func(item any) Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.colorResolver = fn
}

// SetCompletionSource sets the auto-completion source. The source is invoked
// once per completion session, on the first Tab press after a reset.
func (b *Buffer) SetCompletionSource(fn func() []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completionSource = fn
}

// --- History ---

// PushHistory inserts a line at the front of the history ring.
func (b *Buffer) PushHistory(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.Push(line)
}

// HistoryLines returns a copy of the history ring, most recent first.
func (b *Buffer) HistoryLines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history.Entries()
}

// --- Offset helpers (lock held) ---

// boundaryLocked returns the rune offset immediately after the prompt: the
// first position the user is allowed to edit.
func (b *Buffer) boundaryLocked() int {
	n := 0
	for _, ln := range b.lines {
		n += utf8.RuneCountInString(ln.Text) + 1 // +1 for the newline
	}
	return n + utf8.RuneCountInString(b.prompt)
}

func (b *Buffer) docEndLocked() int {
	return b.boundaryLocked() + utf8.RuneCountInString(b.editable)
}

// shiftOffsetsLocked shifts caret and selection offsets at or after from by
// delta. Used when text before the boundary grows or shrinks so the caret
// stays on the same logical character.
func (b *Buffer) shiftOffsetsLocked(from, delta int) {
	shift := func(p int) int {
		if p < from {
			return p
		}
		p += delta
		if p < from {
			p = from
		}
		return p
	}
	b.caret = shift(b.caret)
	b.selStart = shift(b.selStart)
	b.selEnd = shift(b.selEnd)
}

func (b *Buffer) clampLocked() {
	end := b.docEndLocked()
	clamp := func(p int) int {
		if p < 0 {
			return 0
		}
		if p > end {
			return end
		}
		return p
	}
	b.caret = clamp(b.caret)
	b.selStart = clamp(b.selStart)
	b.selEnd = clamp(b.selEnd)
}

// Boundary returns the rune offset of the first editable position.
func (b *Buffer) Boundary() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.boundaryLocked()
}

// DocumentLength returns the document length in runes.
func (b *Buffer) DocumentLength() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.docEndLocked()
}
