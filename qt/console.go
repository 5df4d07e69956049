package consoleboxqt

import (
	"github.com/mappu/miqt/qt"

	consolebox "github.com/mkeddie/consolebox"
)

// Options configures console creation
type Options struct {
	Prompt     string            // Prompt text (default: "> ")
	FontFamily string            // Font family (default: "Monospace")
	FontSize   int               // Font size in points (default: 14)
	Scheme     consolebox.Scheme // Color scheme (default: DefaultScheme())
	Margin     int               // Left margin in columns
	AutoScroll bool              // Follow the tail on new output (default: on)
	ReadOnly   bool              // Start in read-only scroll mode

	// Completion source, snapshotted once per Tab session
	CompletionSource func() []string
}

// Console is a complete console box widget
type Console struct {
	widget  *Widget
	options Options
}

// New creates a new console widget
func New(opts Options) *Console {
	// Apply defaults
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.FontFamily == "" {
		opts.FontFamily = "Monospace"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 14
	}
	if opts.Scheme == (consolebox.Scheme{}) {
		opts.Scheme = consolebox.DefaultScheme()
	}

	widget := NewWidget()
	widget.SetFont(opts.FontFamily, opts.FontSize)

	buffer := widget.Buffer()
	buffer.SetPrompt(opts.Prompt)
	buffer.SetScheme(opts.Scheme)
	buffer.SetMargin(opts.Margin)
	buffer.SetAutoScroll(opts.AutoScroll)
	buffer.SetReadOnly(opts.ReadOnly)
	if opts.CompletionSource != nil {
		buffer.SetCompletionSource(opts.CompletionSource)
	}

	return &Console{
		widget:  widget,
		options: opts,
	}
}

// QWidget returns the Qt widget containing the console
func (c *Console) QWidget() *qt.QWidget {
	return c.widget.QWidget()
}

// Buffer returns the underlying console buffer
func (c *Console) Buffer() *consolebox.Buffer {
	return c.widget.Buffer()
}

// Println appends a line of output above the prompt
func (c *Console) Println(text string) {
	c.Buffer().AppendDisplayLines([]consolebox.DisplayLine{{Text: text}})
}

// Errorln appends a line of output styled with the error color
func (c *Console) Errorln(text string) {
	c.Buffer().AppendDisplayLines([]consolebox.DisplayLine{{Text: text, IsError: true}})
}

// Clear removes all output lines, keeping the prompt and any typed text
func (c *Console) Clear() {
	c.Buffer().ClearDisplayLines()
}
