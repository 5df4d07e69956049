// Package consolebox provides the core line-editing and scrollback logic for
// a console-style text box widget, shared between GUI toolkit implementations
// (GTK, Qt, terminal CLI, Bubble Tea).
//
// This package contains:
//   - Color types and the default scheme
//   - The console buffer: display lines, prompt boundary, editable tail
//   - History ring and tab-completion cursor
//   - Item binding/reconciliation against an external collection
//   - The key dispatcher that enforces the prompt boundary
//
// GUI-specific packages (consolebox/gtk, consolebox/qt, consolebox/cli,
// consolebox/tui) provide the widget implementations that use this core.
package consolebox

// Color is a 24-bit RGB color used for display line foregrounds.
type Color struct {
	R, G, B uint8
}

// RGB creates a color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Predefined colors
var (
	DefaultForeground = Color{R: 212, G: 212, B: 212}
	DefaultBackground = Color{R: 30, G: 30, B: 30}
	ErrorForeground   = Color{R: 229, G: 115, B: 115}
	PromptForeground  = Color{R: 130, G: 170, B: 255}
)

// Scheme groups the colors a frontend needs to render the console box.
type Scheme struct {
	Foreground Color // Ambient foreground for display lines and input
	Background Color
	Prompt     Color // Prompt marker text
	Error      Color // Display lines whose item carries the error flag
	Selection  Color // Selection highlight background
}

// DefaultScheme returns the default dark color scheme.
func DefaultScheme() Scheme {
	return Scheme{
		Foreground: DefaultForeground,
		Background: DefaultBackground,
		Prompt:     PromptForeground,
		Error:      ErrorForeground,
		Selection:  Color{R: 38, G: 79, B: 120},
	}
}
