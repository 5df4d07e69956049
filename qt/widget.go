// Package consoleboxqt provides a Qt console box widget built on the
// consolebox buffer.
package consoleboxqt

import (
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/mappu/miqt/qt"

	consolebox "github.com/mkeddie/consolebox"
)

// Left padding for console content (pixels)
const consoleLeftPadding = 8

const scrollbarWidth = 12

// Widget is a Qt console box widget
type Widget struct {
	widget    *qt.QWidget    // The console drawing area
	scrollbar *qt.QScrollBar // Vertical scrollbar (child of widget)

	mu sync.Mutex

	// Console state
	buffer *consolebox.Buffer

	// Font settings
	fontFamily string
	fontSize   int
	charWidth  int
	charHeight int
	charAscent int

	// Viewport: rows hidden below the bottom edge
	scrollOffset int
	visibleRows  int

	// Selection drag state
	mouseDown   bool
	dragAnchor  int
	dragCurrent int

	// Update coalescing for thread-safe redraws
	updatePending atomic.Bool
	updateTimer   *qt.QTimer

	// Caret blink
	caretOn    bool
	blinkTimer *qt.QTimer

	// Focus state
	hasFocus bool

	// Context menu
	contextMenu *qt.QMenu

	// Scrollbar update flag
	scrollbarUpdating bool
}

// NewWidget creates a new console widget
func NewWidget() *Widget {
	w := &Widget{
		widget:     qt.NewQWidget2(),
		fontFamily: "Monospace",
		fontSize:   14,
		charWidth:  10,
		charHeight: 20,
		charAscent: 16,
		caretOn:    true,
		buffer:     consolebox.NewBuffer(),
	}

	w.buffer.SetScroller(w)

	// Create update timer for thread-safe redraws (16ms, roughly 60fps).
	// This coalesces updates from background threads onto the Qt main thread.
	w.updateTimer = qt.NewQTimer2(w.widget.QObject)
	w.updateTimer.OnTimeout(func() {
		if w.updatePending.Swap(false) {
			w.mu.Lock()
			if w.buffer.AutoScroll() {
				w.scrollOffset = 0
			}
			w.mu.Unlock()
			w.widget.Update()
			w.updateScrollbar()
		}
	})
	w.updateTimer.Start(16)

	// The dirty callback runs while the buffer holds its lock, so only
	// set a flag here and let the timer do the actual work.
	w.buffer.SetDirtyCallback(func() {
		w.updatePending.Store(true)
	})

	w.widget.SetFocusPolicy(qt.StrongFocus)
	w.widget.SetMouseTracking(true)

	w.updateFontMetrics()
	w.widget.SetMinimumSize2(100, 50)

	// Caret blink timer
	w.blinkTimer = qt.NewQTimer2(w.widget.QObject)
	w.blinkTimer.OnTimeout(func() {
		w.mu.Lock()
		if w.hasFocus {
			w.caretOn = !w.caretOn
		} else {
			w.caretOn = true
		}
		w.mu.Unlock()
		w.widget.Update()
	})
	w.blinkTimer.Start(500)

	// Connect events using miqt's OnXxxEvent pattern
	w.widget.OnPaintEvent(func(super func(event *qt.QPaintEvent), event *qt.QPaintEvent) {
		w.paintEvent(event)
	})
	w.widget.OnKeyPressEvent(func(super func(event *qt.QKeyEvent), event *qt.QKeyEvent) {
		w.keyPressEvent(super, event)
	})
	w.widget.OnMousePressEvent(func(super func(event *qt.QMouseEvent), event *qt.QMouseEvent) {
		w.mousePressEvent(event)
	})
	w.widget.OnMouseReleaseEvent(func(super func(event *qt.QMouseEvent), event *qt.QMouseEvent) {
		w.mouseReleaseEvent(event)
	})
	w.widget.OnMouseMoveEvent(func(super func(event *qt.QMouseEvent), event *qt.QMouseEvent) {
		w.mouseMoveEvent(event)
	})
	w.widget.OnWheelEvent(func(super func(event *qt.QWheelEvent), event *qt.QWheelEvent) {
		w.wheelEvent(event)
	})
	w.widget.OnFocusInEvent(func(super func(event *qt.QFocusEvent), event *qt.QFocusEvent) {
		w.focusInEvent(event)
	})
	w.widget.OnFocusOutEvent(func(super func(event *qt.QFocusEvent), event *qt.QFocusEvent) {
		w.focusOutEvent(event)
	})
	w.widget.OnResizeEvent(func(super func(event *qt.QResizeEvent), event *qt.QResizeEvent) {
		w.resizeEvent(event)
	})

	// Context menu for right-click
	w.contextMenu = qt.NewQMenu(w.widget)

	copyAction := w.contextMenu.AddAction("Copy")
	copyAction.OnTriggered(func() {
		w.CopySelection()
	})

	pasteAction := w.contextMenu.AddAction("Paste")
	pasteAction.OnTriggered(func() {
		w.PasteClipboard()
	})

	w.contextMenu.AddSeparator()

	selectAllAction := w.contextMenu.AddAction("Select All")
	selectAllAction.OnTriggered(func() {
		w.buffer.SelectAll()
	})

	w.widget.SetContextMenuPolicy(qt.CustomContextMenu)
	w.widget.OnCustomContextMenuRequested(func(pos *qt.QPoint) {
		w.contextMenu.ExecWithPos(w.widget.MapToGlobal(pos))
	})

	// Qt intercepts Tab for focus navigation before keyPressEvent, so
	// capture it with a QShortcut when this widget has focus.
	tabShortcut := qt.NewQShortcut2(qt.NewQKeySequence2("Tab"), w.widget)
	tabShortcut.SetContext(qt.WidgetWithChildrenShortcut)
	tabShortcut.OnActivated(func() {
		w.buffer.HandleKey(consolebox.KeyEvent{Key: consolebox.KeyTab})
	})

	ctrlTabShortcut := qt.NewQShortcut2(qt.NewQKeySequence2("Ctrl+Tab"), w.widget)
	ctrlTabShortcut.SetContext(qt.WidgetWithChildrenShortcut)
	ctrlTabShortcut.OnActivated(func() {
		w.widget.FocusNextChild()
	})

	shiftTabShortcut := qt.NewQShortcut2(qt.NewQKeySequence2("Shift+Tab"), w.widget)
	shiftTabShortcut.SetContext(qt.WidgetWithChildrenShortcut)
	shiftTabShortcut.OnActivated(func() {
		w.widget.FocusPreviousChild()
	})

	return w
}

// initScrollbar creates the scrollbar lazily (called on first resize)
func (w *Widget) initScrollbar() {
	if w.scrollbar != nil {
		return
	}
	w.scrollbarUpdating = true

	w.scrollbar = qt.NewQScrollBar(w.widget)
	w.scrollbar.SetOrientation(qt.Vertical)
	w.scrollbar.SetMinimum(0)
	w.scrollbar.SetMaximum(0)

	w.scrollbar.SetStyleSheet(`
		QScrollBar:vertical {
			background: transparent;
			width: 12px;
			margin: 2px 2px 2px 0px;
		}
		QScrollBar::handle:vertical {
			background: rgba(128, 128, 128, 0.5);
			min-height: 30px;
			border-radius: 4px;
			margin: 0px 2px 0px 2px;
		}
		QScrollBar::handle:vertical:hover {
			background: rgba(128, 128, 128, 0.7);
		}
		QScrollBar::add-line:vertical, QScrollBar::sub-line:vertical {
			height: 0px;
		}
		QScrollBar::add-page:vertical, QScrollBar::sub-page:vertical {
			background: transparent;
		}
	`)

	w.scrollbar.OnValueChanged(func(value int) {
		if w.scrollbarUpdating {
			return
		}
		w.mu.Lock()
		total := w.buffer.LineCount() + 1
		w.scrollOffset = total - w.visibleRows - value
		w.clampScrollLocked()
		w.mu.Unlock()
		w.widget.Update()
	})

	w.scrollbarUpdating = false
}

// QWidget returns the console widget
func (w *Widget) QWidget() *qt.QWidget {
	return w.widget
}

// Buffer returns the underlying console buffer
func (w *Widget) Buffer() *consolebox.Buffer {
	return w.buffer
}

// SetFont sets the console font
func (w *Widget) SetFont(family string, size int) {
	w.mu.Lock()
	w.fontFamily = family
	w.fontSize = size
	w.mu.Unlock()
	w.updateFontMetrics()
	w.widget.Update()
}

func (w *Widget) updateFontMetrics() {
	w.mu.Lock()
	defer w.mu.Unlock()
	font := qt.NewQFont6(w.fontFamily, w.fontSize)
	font.SetFixedPitch(true)
	metrics := qt.NewQFontMetrics(font)
	w.charWidth = metrics.AverageCharWidth()
	w.charHeight = metrics.Height()
	w.charAscent = metrics.Ascent()
	if w.charWidth < 1 {
		w.charWidth = w.fontSize * 6 / 10
	}
	if w.charHeight < 1 {
		w.charHeight = w.fontSize * 12 / 10
	}
}

// --- Scroller (read-only viewport) ---

// ScrollLines scrolls the viewport by n lines, positive toward the tail.
func (w *Widget) ScrollLines(n int) {
	w.mu.Lock()
	w.scrollOffset -= n
	w.clampScrollLocked()
	w.mu.Unlock()
	w.widget.Update()
	w.updateScrollbar()
}

// ScrollPages scrolls the viewport by n pages.
func (w *Widget) ScrollPages(n int) {
	w.mu.Lock()
	rows := w.visibleRows
	if rows < 1 {
		rows = 1
	}
	w.scrollOffset -= n * rows
	w.clampScrollLocked()
	w.mu.Unlock()
	w.widget.Update()
	w.updateScrollbar()
}

func (w *Widget) clampScrollLocked() {
	max := w.buffer.LineCount() + 1 - w.visibleRows
	if max < 0 {
		max = 0
	}
	if w.scrollOffset > max {
		w.scrollOffset = max
	}
	if w.scrollOffset < 0 {
		w.scrollOffset = 0
	}
}

func (w *Widget) updateScrollbar() {
	if w.scrollbar == nil {
		return
	}

	w.mu.Lock()
	total := w.buffer.LineCount() + 1
	rows := w.visibleRows
	top := total - rows - w.scrollOffset
	if top < 0 {
		top = 0
	}
	w.mu.Unlock()

	max := total - rows
	if max < 0 {
		max = 0
	}

	w.scrollbarUpdating = true
	w.scrollbar.SetMaximum(max)
	w.scrollbar.SetPageStep(rows)
	w.scrollbar.SetValue(top)
	w.scrollbarUpdating = false
}

// --- Painting ---

func qColor(c consolebox.Color) *qt.QColor {
	return qt.NewQColor3(int(c.R), int(c.G), int(c.B))
}

func (w *Widget) paintEvent(event *qt.QPaintEvent) {
	w.mu.Lock()
	fontFamily := w.fontFamily
	fontSize := w.fontSize
	charWidth := w.charWidth
	charHeight := w.charHeight
	charAscent := w.charAscent
	scrollOffset := w.scrollOffset
	caretOn := w.caretOn && w.hasFocus
	w.mu.Unlock()

	scheme := w.buffer.Scheme()
	margin := w.buffer.Margin()
	lines := w.buffer.DisplayLines()
	prompt := w.buffer.Prompt()
	editable := w.buffer.EditableText()
	caret := w.buffer.Caret()
	boundary := w.buffer.Boundary()
	selStart, selEnd, _ := w.buffer.Selection()

	painter := qt.NewQPainter2(w.widget.QPaintDevice)
	defer painter.End()

	painter.FillRect5(0, 0, w.widget.Width(), w.widget.Height(), qColor(scheme.Background))

	font := qt.NewQFont6(fontFamily, fontSize)
	font.SetFixedPitch(true)
	painter.SetFont(font)

	rows := w.widget.Height() / charHeight
	if rows < 1 {
		rows = 1
	}
	w.mu.Lock()
	w.visibleRows = rows
	w.mu.Unlock()

	total := len(lines) + 1
	top := total - rows - scrollOffset
	if top < 0 {
		top = 0
	}

	leftEdge := consoleLeftPadding + margin*charWidth
	lineOffset := 0
	for i := 0; i < top && i < len(lines); i++ {
		lineOffset += utf8.RuneCountInString(lines[i].Text) + 1
	}

	y := 0
	drawn := 0
	for i := top; i < total && drawn < rows; i, drawn = i+1, drawn+1 {
		if i < len(lines) {
			text := lines[i].Text
			n := utf8.RuneCountInString(text)
			w.paintSelection(painter, scheme, selStart, selEnd, lineOffset, n, leftEdge, y, charWidth, charHeight)
			painter.SetPen(qColor(lines[i].Color))
			painter.DrawText3(leftEdge, y+charAscent, text)
			lineOffset += n + 1
			y += charHeight
			continue
		}

		// Edit row: prompt then editable tail
		promptRunes := utf8.RuneCountInString(prompt)
		editRunes := utf8.RuneCountInString(editable)
		w.paintSelection(painter, scheme, selStart, selEnd, lineOffset, promptRunes+editRunes, leftEdge, y, charWidth, charHeight)

		painter.SetPen(qColor(scheme.Prompt))
		painter.DrawText3(leftEdge, y+charAscent, prompt)

		painter.SetPen(qColor(scheme.Foreground))
		painter.DrawText3(leftEdge+promptRunes*charWidth, y+charAscent, editable)

		// Block caret
		if caretOn && caret >= boundary {
			col := promptRunes + caret - boundary
			x := leftEdge + col*charWidth
			painter.FillRect5(x, y, charWidth, charHeight, qColor(scheme.Foreground))
			if caret-boundary < editRunes {
				painter.SetPen(qColor(scheme.Background))
				painter.DrawText3(x, y+charAscent, string([]rune(editable)[caret-boundary]))
			}
		}
		y += charHeight
	}
}

// paintSelection fills the selection highlight behind one row. rowStart is
// the document rune offset of the row's first character, rowLen its length.
func (w *Widget) paintSelection(painter *qt.QPainter, scheme consolebox.Scheme,
	selStart, selEnd, rowStart, rowLen, leftEdge, y, charWidth, charHeight int) {
	if selStart == selEnd {
		return
	}
	from := selStart - rowStart
	to := selEnd - rowStart
	if from < 0 {
		from = 0
	}
	if to > rowLen {
		to = rowLen
	}
	if from >= to {
		return
	}
	painter.FillRect5(leftEdge+from*charWidth, y, (to-from)*charWidth, charHeight, qColor(scheme.Selection))
}

// --- Keyboard ---

func (w *Widget) keyPressEvent(super func(event *qt.QKeyEvent), event *qt.QKeyEvent) {
	event.Accept()

	modifiers := event.Modifiers()
	hasShift := modifiers&qt.ShiftModifier != 0
	hasCtrl := modifiers&qt.ControlModifier != 0
	hasAlt := modifiers&qt.AltModifier != 0

	ev, ok := translateQtKey(qt.Key(event.Key()), event.Text(), hasShift, hasCtrl, hasAlt)
	if !ok {
		return
	}

	if w.buffer.HandleKey(ev) {
		return
	}

	// The dispatcher let the event through: clipboard chords
	if ev.Ctrl && ev.Key == consolebox.KeyRune {
		switch ev.Rune {
		case 'c', 'C':
			w.CopySelection()
		case 'x', 'X':
			w.CutSelection()
		case 'v', 'V':
			w.PasteClipboard()
		}
	}
}

// translateQtKey maps a Qt key event to a buffer key event
func translateQtKey(key qt.Key, text string, hasShift, hasCtrl, hasAlt bool) (consolebox.KeyEvent, bool) {
	ev := consolebox.KeyEvent{Shift: hasShift, Ctrl: hasCtrl, Alt: hasAlt}

	switch key {
	case qt.Key_Return, qt.Key_Enter:
		ev.Key = consolebox.KeyEnter
	case qt.Key_Up:
		ev.Key = consolebox.KeyUp
	case qt.Key_Down:
		ev.Key = consolebox.KeyDown
	case qt.Key_Left:
		ev.Key = consolebox.KeyLeft
	case qt.Key_Right:
		ev.Key = consolebox.KeyRight
	case qt.Key_Home:
		ev.Key = consolebox.KeyHome
	case qt.Key_End:
		ev.Key = consolebox.KeyEnd
	case qt.Key_Escape:
		ev.Key = consolebox.KeyEscape
	case qt.Key_Backspace:
		ev.Key = consolebox.KeyBackspace
	case qt.Key_Delete:
		ev.Key = consolebox.KeyDelete
	case qt.Key_PageUp:
		ev.Key = consolebox.KeyPageUp
	case qt.Key_PageDown:
		ev.Key = consolebox.KeyPageDown
	default:
		if hasCtrl {
			// Qt reports Ctrl+letter with a control-char Text(); use the
			// key code to recover the letter
			if key >= qt.Key_A && key <= qt.Key_Z {
				ev.Key = consolebox.KeyRune
				ev.Rune = rune('a' + int(key) - int(qt.Key_A))
				return ev, true
			}
			return consolebox.KeyEvent{}, false
		}
		r, size := utf8.DecodeRuneInString(text)
		if size == 0 || r == utf8.RuneError || r < 0x20 {
			return consolebox.KeyEvent{}, false
		}
		ev.Key = consolebox.KeyRune
		ev.Rune = r
	}
	return ev, true
}

// --- Mouse ---

// screenToOffset converts widget pixel coordinates to a document rune offset
func (w *Widget) screenToOffset(screenX, screenY int) int {
	w.mu.Lock()
	charWidth := w.charWidth
	charHeight := w.charHeight
	scrollOffset := w.scrollOffset
	rows := w.visibleRows
	w.mu.Unlock()

	margin := w.buffer.Margin()
	lines := w.buffer.DisplayLines()
	prompt := w.buffer.Prompt()

	leftEdge := consoleLeftPadding + margin*charWidth
	col := (screenX - leftEdge) / charWidth
	if col < 0 {
		col = 0
	}
	row := screenY / charHeight

	total := len(lines) + 1
	top := total - rows - scrollOffset
	if top < 0 {
		top = 0
	}
	row += top

	offset := 0
	for i := 0; i < row && i < len(lines); i++ {
		offset += utf8.RuneCountInString(lines[i].Text) + 1
	}
	if row < len(lines) {
		n := utf8.RuneCountInString(lines[row].Text)
		if col > n {
			col = n
		}
		return offset + col
	}

	editLen := utf8.RuneCountInString(prompt) + utf8.RuneCountInString(w.buffer.EditableText())
	if col > editLen {
		col = editLen
	}
	return offset + col
}

func (w *Widget) mousePressEvent(event *qt.QMouseEvent) {
	if event.Button() != qt.LeftButton {
		return
	}
	pos := event.Pos()
	offset := w.screenToOffset(pos.X(), pos.Y())

	w.mu.Lock()
	w.mouseDown = true
	w.dragAnchor = offset
	w.dragCurrent = offset
	w.mu.Unlock()

	w.buffer.ClearSelection()
	w.buffer.SetCaret(offset)
	w.widget.SetFocus()
	w.widget.Update()
}

func (w *Widget) mouseReleaseEvent(event *qt.QMouseEvent) {
	if event.Button() == qt.LeftButton {
		w.mu.Lock()
		w.mouseDown = false
		w.mu.Unlock()
	}
}

func (w *Widget) mouseMoveEvent(event *qt.QMouseEvent) {
	w.mu.Lock()
	down := w.mouseDown
	anchor := w.dragAnchor
	w.mu.Unlock()
	if !down {
		return
	}

	pos := event.Pos()
	offset := w.screenToOffset(pos.X(), pos.Y())

	w.mu.Lock()
	w.dragCurrent = offset
	w.mu.Unlock()

	w.buffer.SetSelection(anchor, offset)
	w.widget.Update()
}

func (w *Widget) wheelEvent(event *qt.QWheelEvent) {
	deltaY := event.AngleDelta().Y()
	if deltaY > 0 {
		w.ScrollLines(-3)
	} else if deltaY < 0 {
		w.ScrollLines(3)
	}
}

func (w *Widget) focusInEvent(event *qt.QFocusEvent) {
	w.mu.Lock()
	w.hasFocus = true
	w.caretOn = true
	w.mu.Unlock()
	w.widget.Update()
}

func (w *Widget) focusOutEvent(event *qt.QFocusEvent) {
	w.mu.Lock()
	w.hasFocus = false
	w.mu.Unlock()
	w.widget.Update()
}

func (w *Widget) resizeEvent(event *qt.QResizeEvent) {
	w.updateFontMetrics()

	// Create scrollbar lazily on first resize (Qt is fully initialized by now)
	w.initScrollbar()

	widgetWidth := w.widget.Width()
	widgetHeight := w.widget.Height()

	if w.scrollbar != nil {
		w.scrollbar.SetGeometry(widgetWidth-scrollbarWidth, 0, scrollbarWidth, widgetHeight)
		w.scrollbar.Show()
	}

	w.mu.Lock()
	if w.charHeight > 0 {
		w.visibleRows = widgetHeight / w.charHeight
	}
	w.clampScrollLocked()
	w.mu.Unlock()

	w.updateScrollbar()
}

// --- Clipboard ---

// CopySelection copies selected text to clipboard
func (w *Widget) CopySelection() {
	if text := w.buffer.Copy(); text != "" {
		qt.QGuiApplication_Clipboard().SetText(text)
	}
}

// CutSelection cuts the selection into the clipboard when the buffer
// allows it
func (w *Widget) CutSelection() {
	if text := w.buffer.Cut(); text != "" {
		qt.QGuiApplication_Clipboard().SetText(text)
	}
}

// PasteClipboard pastes clipboard text into the editable segment
func (w *Widget) PasteClipboard() {
	text := qt.QGuiApplication_Clipboard().Text()
	if text != "" {
		w.buffer.Paste(text)
	}
}
