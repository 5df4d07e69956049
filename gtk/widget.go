// Package consoleboxgtk provides a GTK3 console box widget built on the
// consolebox buffer.
package consoleboxgtk

import (
	"sync"
	"unicode/utf8"

	"github.com/gotk3/gotk3/cairo"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	consolebox "github.com/mkeddie/consolebox"
)

// Left padding for console content (pixels)
const consoleLeftPadding = 4

// Widget is a GTK console box widget
type Widget struct {
	mu sync.Mutex

	// GTK widgets
	drawingArea *gtk.DrawingArea
	scrollbar   *gtk.Scrollbar
	box         *gtk.Box

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

	// Caret blink
	caretOn      bool
	blinkTimerID glib.SourceHandle

	// Focus state
	hasFocus bool

	// Clipboard
	clipboard *gtk.Clipboard

	// Context menu for right-click
	contextMenu *gtk.Menu
}

// NewWidget creates a new console widget
func NewWidget() (*Widget, error) {
	w := &Widget{
		fontFamily: "Monospace",
		fontSize:   14,
		charWidth:  10, // Will be calculated properly
		charHeight: 20,
		charAscent: 16,
		caretOn:    true,
		buffer:     consolebox.NewBuffer(),
	}

	w.buffer.SetScroller(w)

	// Set up dirty callback to trigger redraws and scrollbar updates
	w.buffer.SetDirtyCallback(func() {
		glib.IdleAdd(func() {
			if w.drawingArea == nil {
				return
			}
			w.mu.Lock()
			if w.buffer.AutoScroll() {
				w.scrollOffset = 0
			}
			w.mu.Unlock()
			w.drawingArea.QueueDraw()
			w.updateScrollbar()
		})
	})

	var err error

	w.box, err = gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return nil, err
	}

	w.drawingArea, err = gtk.DrawingAreaNew()
	if err != nil {
		return nil, err
	}

	// Enable events
	w.drawingArea.AddEvents(int(gdk.BUTTON_PRESS_MASK | gdk.BUTTON_RELEASE_MASK |
		gdk.POINTER_MOTION_MASK | gdk.SCROLL_MASK | gdk.KEY_PRESS_MASK))
	w.drawingArea.SetCanFocus(true)

	// Connect signals
	w.drawingArea.Connect("draw", w.onDraw)
	w.drawingArea.Connect("button-press-event", w.onButtonPress)
	w.drawingArea.Connect("button-release-event", w.onButtonRelease)
	w.drawingArea.Connect("motion-notify-event", w.onMotionNotify)
	w.drawingArea.Connect("scroll-event", w.onScroll)
	w.drawingArea.Connect("key-press-event", w.onKeyPress)
	w.drawingArea.Connect("configure-event", w.onConfigure)
	w.drawingArea.Connect("focus-in-event", w.onFocusIn)
	w.drawingArea.Connect("focus-out-event", w.onFocusOut)

	// Vertical scrollbar
	adjustment, _ := gtk.AdjustmentNew(0, 0, 100, 1, 10, 10)
	w.scrollbar, err = gtk.ScrollbarNew(gtk.ORIENTATION_VERTICAL, adjustment)
	if err != nil {
		return nil, err
	}
	w.scrollbar.Connect("value-changed", w.onScrollbarChanged)

	w.box.PackStart(w.drawingArea, true, true, 0)
	w.box.PackStart(w.scrollbar, false, false, 0)

	// Get clipboard
	w.clipboard, _ = gtk.ClipboardGet(gdk.SELECTION_CLIPBOARD)

	// Context menu for right-click
	w.contextMenu, _ = gtk.MenuNew()
	copyItem, _ := gtk.MenuItemNewWithLabel("Copy")
	copyItem.Connect("activate", func() {
		w.CopySelection()
	})
	w.contextMenu.Append(copyItem)

	pasteItem, _ := gtk.MenuItemNewWithLabel("Paste")
	pasteItem.Connect("activate", func() {
		w.PasteClipboard()
	})
	w.contextMenu.Append(pasteItem)

	separator, _ := gtk.SeparatorMenuItemNew()
	w.contextMenu.Append(separator)

	selectAllItem, _ := gtk.MenuItemNewWithLabel("Select All")
	selectAllItem.Connect("activate", func() {
		w.buffer.SelectAll()
	})
	w.contextMenu.Append(selectAllItem)

	w.contextMenu.ShowAll()

	w.drawingArea.SetSizeRequest(100, 50)

	// Caret blink timer (~500ms)
	w.blinkTimerID = glib.TimeoutAdd(500, func() bool {
		w.mu.Lock()
		if w.hasFocus {
			w.caretOn = !w.caretOn
		} else {
			w.caretOn = true
		}
		w.mu.Unlock()
		w.drawingArea.QueueDraw()
		return true // Keep timer running
	})

	return w, nil
}

// Box returns the container widget
func (w *Widget) Box() *gtk.Box {
	return w.box
}

// DrawingArea returns the drawing area widget
func (w *Widget) DrawingArea() *gtk.DrawingArea {
	return w.drawingArea
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
	w.drawingArea.QueueDraw()
}

// updateFontMetrics measures the cell size on a temporary surface
func (w *Widget) updateFontMetrics() {
	surface := cairo.CreateImageSurface(cairo.FORMAT_ARGB32, 1, 1)
	cr := cairo.Create(surface)

	w.mu.Lock()
	cr.SelectFontFace(w.fontFamily, cairo.FONT_SLANT_NORMAL, cairo.FONT_WEIGHT_NORMAL)
	cr.SetFontSize(float64(w.fontSize))
	ext := cr.TextExtents("M")
	w.charWidth = int(ext.XAdvance + 0.5)
	if w.charWidth < 1 {
		w.charWidth = 1
	}
	w.charHeight = w.fontSize + w.fontSize/3
	w.charAscent = w.fontSize
	w.mu.Unlock()

	surface.Close()
}

// --- Scroller (read-only viewport) ---

// ScrollLines scrolls the viewport by n lines, positive toward the tail.
func (w *Widget) ScrollLines(n int) {
	w.mu.Lock()
	w.scrollOffset -= n
	w.clampScrollLocked()
	w.mu.Unlock()
	w.drawingArea.QueueDraw()
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
	w.drawingArea.QueueDraw()
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

// --- Drawing ---

func setSourceColor(cr *cairo.Context, c consolebox.Color) {
	cr.SetSourceRGB(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0)
}

func (w *Widget) onDraw(da *gtk.DrawingArea, cr *cairo.Context) bool {
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

	alloc := da.GetAllocation()
	width := alloc.GetWidth()
	height := alloc.GetHeight()

	rows := height / charHeight
	if rows < 1 {
		rows = 1
	}
	w.mu.Lock()
	w.visibleRows = rows
	w.mu.Unlock()

	// Background
	setSourceColor(cr, scheme.Background)
	cr.Rectangle(0, 0, float64(width), float64(height))
	cr.Fill()

	cr.SelectFontFace(fontFamily, cairo.FONT_SLANT_NORMAL, cairo.FONT_WEIGHT_NORMAL)
	cr.SetFontSize(float64(fontSize))

	total := len(lines) + 1
	top := total - rows - scrollOffset
	if top < 0 {
		top = 0
	}

	leftEdge := consoleLeftPadding + margin*charWidth
	y := 0
	lineOffset := 0
	for i := 0; i < top && i < len(lines); i++ {
		lineOffset += utf8.RuneCountInString(lines[i].Text) + 1
	}

	drawn := 0
	for i := top; i < total && drawn < rows; i, drawn = i+1, drawn+1 {
		if i < len(lines) {
			text := lines[i].Text
			n := utf8.RuneCountInString(text)
			w.drawSelection(cr, scheme, selStart, selEnd, lineOffset, n, leftEdge, y, charWidth, charHeight)
			setSourceColor(cr, lines[i].Color)
			cr.MoveTo(float64(leftEdge), float64(y+charAscent))
			cr.ShowText(text)
			lineOffset += n + 1
			y += charHeight
			continue
		}

		// Edit row: prompt then editable tail
		promptRunes := utf8.RuneCountInString(prompt)
		editRunes := utf8.RuneCountInString(editable)
		w.drawSelection(cr, scheme, selStart, selEnd, lineOffset, promptRunes+editRunes, leftEdge, y, charWidth, charHeight)

		setSourceColor(cr, scheme.Prompt)
		cr.MoveTo(float64(leftEdge), float64(y+charAscent))
		cr.ShowText(prompt)

		setSourceColor(cr, scheme.Foreground)
		cr.MoveTo(float64(leftEdge+promptRunes*charWidth), float64(y+charAscent))
		cr.ShowText(editable)

		// Block caret
		if caretOn && caret >= boundary {
			col := promptRunes + caret - boundary
			x := leftEdge + col*charWidth
			setSourceColor(cr, scheme.Foreground)
			cr.Rectangle(float64(x), float64(y), float64(charWidth), float64(charHeight))
			cr.Fill()
			if caret-boundary < editRunes {
				setSourceColor(cr, scheme.Background)
				cr.MoveTo(float64(x), float64(y+charAscent))
				cr.ShowText(string([]rune(editable)[caret-boundary]))
			}
		}
		y += charHeight
	}

	return true
}

// drawSelection paints the selection highlight behind one row. rowStart is
// the document rune offset of the row's first character, rowLen its length.
func (w *Widget) drawSelection(cr *cairo.Context, scheme consolebox.Scheme,
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
	setSourceColor(cr, scheme.Selection)
	cr.Rectangle(float64(leftEdge+from*charWidth), float64(y),
		float64((to-from)*charWidth), float64(charHeight))
	cr.Fill()
}

// --- Mouse ---

// screenToOffset converts widget pixel coordinates to a document rune offset
func (w *Widget) screenToOffset(screenX, screenY float64) int {
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
	col := int(screenX-float64(leftEdge)) / charWidth
	if col < 0 {
		col = 0
	}
	row := int(screenY) / charHeight

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

	// Edit row
	editLen := utf8.RuneCountInString(prompt) + utf8.RuneCountInString(w.buffer.EditableText())
	if col > editLen {
		col = editLen
	}
	return offset + col
}

func (w *Widget) onButtonPress(da *gtk.DrawingArea, ev *gdk.Event) bool {
	btn := gdk.EventButtonNewFromEvent(ev)
	da.GrabFocus()

	if btn.Button() == 3 {
		w.contextMenu.PopupAtPointer(ev)
		return true
	}
	if btn.Button() != 1 {
		return false
	}

	offset := w.screenToOffset(btn.X(), btn.Y())
	w.mu.Lock()
	w.mouseDown = true
	w.dragAnchor = offset
	w.dragCurrent = offset
	w.mu.Unlock()

	w.buffer.ClearSelection()
	w.buffer.SetCaret(offset)
	da.QueueDraw()
	return true
}

func (w *Widget) onButtonRelease(da *gtk.DrawingArea, ev *gdk.Event) bool {
	w.mu.Lock()
	w.mouseDown = false
	w.mu.Unlock()
	return true
}

func (w *Widget) onMotionNotify(da *gtk.DrawingArea, ev *gdk.Event) bool {
	w.mu.Lock()
	down := w.mouseDown
	anchor := w.dragAnchor
	w.mu.Unlock()
	if !down {
		return false
	}

	motion := gdk.EventMotionNewFromEvent(ev)
	x, y := motion.MotionVal()
	offset := w.screenToOffset(x, y)

	w.mu.Lock()
	w.dragCurrent = offset
	w.mu.Unlock()

	w.buffer.SetSelection(anchor, offset)
	da.QueueDraw()
	return true
}

func (w *Widget) onScroll(da *gtk.DrawingArea, ev *gdk.Event) bool {
	scroll := gdk.EventScrollNewFromEvent(ev)
	switch scroll.Direction() {
	case gdk.SCROLL_UP:
		w.ScrollLines(-3)
	case gdk.SCROLL_DOWN:
		w.ScrollLines(3)
	}
	return true
}

// --- Keyboard ---

func (w *Widget) onKeyPress(da *gtk.DrawingArea, ev *gdk.Event) bool {
	key := gdk.EventKeyNewFromEvent(ev)
	keyval := key.KeyVal()
	state := key.State()

	hasShift := state&uint(gdk.SHIFT_MASK) != 0
	hasCtrl := state&uint(gdk.CONTROL_MASK) != 0
	hasAlt := state&uint(gdk.MOD1_MASK) != 0

	// Shift+Tab: let GTK handle focus navigation
	if keyval == gdk.KEY_ISO_Left_Tab || (keyval == gdk.KEY_Tab && hasShift) {
		return false
	}

	kev, ok := translateKeyval(keyval, hasShift, hasCtrl, hasAlt)
	if !ok {
		return false
	}

	if w.buffer.HandleKey(kev) {
		return true
	}

	// The dispatcher let the event through: clipboard chords
	if kev.Ctrl && kev.Key == consolebox.KeyRune {
		switch kev.Rune {
		case 'c', 'C':
			w.CopySelection()
			return true
		case 'x', 'X':
			w.CutSelection()
			return true
		case 'v', 'V':
			w.PasteClipboard()
			return true
		}
	}
	return false
}

// translateKeyval maps a GDK keyval to a buffer key event
func translateKeyval(keyval uint, hasShift, hasCtrl, hasAlt bool) (consolebox.KeyEvent, bool) {
	ev := consolebox.KeyEvent{Shift: hasShift, Ctrl: hasCtrl, Alt: hasAlt}

	switch keyval {
	case gdk.KEY_Return, gdk.KEY_KP_Enter:
		ev.Key = consolebox.KeyEnter
	case gdk.KEY_Up:
		ev.Key = consolebox.KeyUp
	case gdk.KEY_Down:
		ev.Key = consolebox.KeyDown
	case gdk.KEY_Left:
		ev.Key = consolebox.KeyLeft
	case gdk.KEY_Right:
		ev.Key = consolebox.KeyRight
	case gdk.KEY_Home:
		ev.Key = consolebox.KeyHome
	case gdk.KEY_End:
		ev.Key = consolebox.KeyEnd
	case gdk.KEY_Tab:
		ev.Key = consolebox.KeyTab
	case gdk.KEY_Escape:
		ev.Key = consolebox.KeyEscape
	case gdk.KEY_BackSpace:
		ev.Key = consolebox.KeyBackspace
	case gdk.KEY_Delete:
		ev.Key = consolebox.KeyDelete
	case gdk.KEY_Page_Up:
		ev.Key = consolebox.KeyPageUp
	case gdk.KEY_Page_Down:
		ev.Key = consolebox.KeyPageDown
	default:
		r := gdk.KeyvalToUnicode(keyval)
		if r == 0 {
			return consolebox.KeyEvent{}, false
		}
		ev.Key = consolebox.KeyRune
		ev.Rune = r
	}
	return ev, true
}

// --- Clipboard ---

// CopySelection copies selected text to clipboard
func (w *Widget) CopySelection() {
	if w.clipboard == nil {
		return
	}
	if text := w.buffer.Copy(); text != "" {
		w.clipboard.SetText(text)
	}
}

// CutSelection cuts the selection into the clipboard when the buffer
// allows it
func (w *Widget) CutSelection() {
	if w.clipboard == nil {
		return
	}
	if text := w.buffer.Cut(); text != "" {
		w.clipboard.SetText(text)
	}
}

// PasteClipboard pastes clipboard text into the editable segment
func (w *Widget) PasteClipboard() {
	if w.clipboard == nil {
		return
	}
	text, err := w.clipboard.WaitForText()
	if err != nil || text == "" {
		return
	}
	w.buffer.Paste(text)
}

// --- Scrollbar and layout ---

func (w *Widget) onScrollbarChanged(sb *gtk.Scrollbar) {
	adj := sb.GetAdjustment()
	val := int(adj.GetValue())

	w.mu.Lock()
	total := w.buffer.LineCount() + 1
	w.scrollOffset = total - w.visibleRows - val
	w.clampScrollLocked()
	w.mu.Unlock()

	w.drawingArea.QueueDraw()
}

func (w *Widget) updateScrollbar() {
	w.mu.Lock()
	total := w.buffer.LineCount() + 1
	rows := w.visibleRows
	top := total - rows - w.scrollOffset
	if top < 0 {
		top = 0
	}
	w.mu.Unlock()

	adj := w.scrollbar.GetAdjustment()
	adj.SetLower(0)
	adj.SetUpper(float64(total))
	adj.SetPageSize(float64(rows))
	adj.SetValue(float64(top))
}

func (w *Widget) onConfigure(da *gtk.DrawingArea, ev *gdk.Event) bool {
	w.updateFontMetrics()

	alloc := da.GetAllocation()
	w.mu.Lock()
	if w.charHeight > 0 {
		w.visibleRows = alloc.GetHeight() / w.charHeight
	}
	w.clampScrollLocked()
	w.mu.Unlock()

	w.updateScrollbar()
	return false
}

func (w *Widget) onFocusIn(da *gtk.DrawingArea, ev *gdk.Event) bool {
	w.mu.Lock()
	w.hasFocus = true
	w.caretOn = true
	w.mu.Unlock()
	da.QueueDraw()
	return false
}

func (w *Widget) onFocusOut(da *gtk.DrawingArea, ev *gdk.Event) bool {
	w.mu.Lock()
	w.hasFocus = false
	w.mu.Unlock()
	da.QueueDraw()
	return false
}
