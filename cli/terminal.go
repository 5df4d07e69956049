package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	consolebox "github.com/mkeddie/consolebox"
)

// Options configures console creation
type Options struct {
	Prompt     string            // Prompt text (default: "> ")
	Scheme     consolebox.Scheme // Color scheme (default: DefaultScheme())
	Margin     int               // Left margin in columns
	AutoScroll bool              // Follow the tail on new output (default: on)
	ReadOnly   bool              // Start in read-only scroll mode

	// Completion source, snapshotted once per Tab session
	CompletionSource func() []string
}

// Console is a console box running inside a CLI terminal
type Console struct {
	mu sync.Mutex

	buffer  *consolebox.Buffer
	options Options

	renderer *Renderer
	input    *InputHandler

	// Viewport scroll offset in lines above the tail
	scrollOffset int

	// Set by the dirty callback; the renderer consumes it to follow the
	// tail after content changes
	contentDirty atomic.Bool

	// Host terminal size
	hostCols int
	hostRows int

	running    bool
	done       chan struct{}
	stopRender chan struct{}

	// Original terminal state for restoration
	oldState *term.State
}

// New creates a new CLI console
func New(opts Options) (*Console, error) {
	// Apply defaults
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.Scheme == (consolebox.Scheme{}) {
		opts.Scheme = consolebox.DefaultScheme()
	}

	buffer := consolebox.NewBuffer()
	buffer.SetPrompt(opts.Prompt)
	buffer.SetScheme(opts.Scheme)
	buffer.SetMargin(opts.Margin)
	buffer.SetAutoScroll(opts.AutoScroll)
	buffer.SetReadOnly(opts.ReadOnly)
	if opts.CompletionSource != nil {
		buffer.SetCompletionSource(opts.CompletionSource)
	}

	hostCols, hostRows := getHostTerminalSize()

	c := &Console{
		buffer:     buffer,
		options:    opts,
		done:       make(chan struct{}),
		stopRender: make(chan struct{}),
		hostCols:   hostCols,
		hostRows:   hostRows,
	}

	buffer.SetScroller(c)

	c.renderer = NewRenderer(c)
	c.input = NewInputHandler(c)

	// Schedule a repaint whenever the buffer changes. The callback runs
	// with the buffer lock held, so it must not call back into the buffer
	// or touch c.mu; the render goroutine applies the follow-tail reset.
	buffer.SetDirtyCallback(func() {
		c.contentDirty.Store(true)
		c.renderer.RequestRender()
	})

	debugf("console created cols=%d rows=%d", hostCols, hostRows)
	return c, nil
}

// getHostTerminalSize returns the current size of the host terminal
func getHostTerminalSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return cols, rows
}

// Buffer returns the underlying console buffer
func (c *Console) Buffer() *consolebox.Buffer {
	return c.buffer
}

// Start enters raw mode and starts the render and input loops
func (c *Console) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	c.oldState = oldState
	c.running = true

	// Alternate screen, clear, home
	fmt.Print("\033[?1049h\033[2J\033[H")

	go c.handleSIGWINCH()
	go c.renderer.RenderLoop()
	go c.input.InputLoop()

	c.renderer.RequestRender()
	return nil
}

// Stop restores the terminal and stops the loops
func (c *Console) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stopRender)

	// Leave alternate screen, show cursor
	fmt.Print("\033[?1049l\033[?25h")

	if c.oldState != nil {
		term.Restore(int(os.Stdin.Fd()), c.oldState)
		c.oldState = nil
	}
	close(c.done)
}

// Wait blocks until the console is stopped
func (c *Console) Wait() {
	<-c.done
}

// IsRunning returns true while the console is active
func (c *Console) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// handleSIGWINCH tracks host terminal resizes
func (c *Console) handleSIGWINCH() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	defer signal.Stop(ch)
	for {
		select {
		case <-ch:
			cols, rows := getHostTerminalSize()
			c.mu.Lock()
			c.hostCols = cols
			c.hostRows = rows
			c.mu.Unlock()
			c.renderer.InvalidateFrame()
			c.renderer.RequestRender()
		case <-c.stopRender:
			return
		}
	}
}

// --- Scroller (read-only viewport) ---

// ScrollLines scrolls the viewport by n lines, positive toward the tail.
func (c *Console) ScrollLines(n int) {
	c.mu.Lock()
	c.scrollOffset -= n
	c.clampScrollLocked()
	c.mu.Unlock()
	c.renderer.RequestRender()
}

// ScrollPages scrolls the viewport by n pages.
func (c *Console) ScrollPages(n int) {
	c.mu.Lock()
	c.scrollOffset -= n * (c.contentRowsLocked())
	c.clampScrollLocked()
	c.mu.Unlock()
	c.renderer.RequestRender()
}

func (c *Console) contentRowsLocked() int {
	if c.hostRows < 1 {
		return 1
	}
	return c.hostRows
}

func (c *Console) clampScrollLocked() {
	max := c.buffer.LineCount() + 1 - c.contentRowsLocked()
	if max < 0 {
		max = 0
	}
	if c.scrollOffset > max {
		c.scrollOffset = max
	}
	if c.scrollOffset < 0 {
		c.scrollOffset = 0
	}
}

// handleKey runs one decoded key event through the core dispatcher and
// bridges the OS clipboard for allowed chords.
func (c *Console) handleKey(ev consolebox.KeyEvent) {
	if c.buffer.HandleKey(ev) {
		return
	}

	// The dispatcher let the event through: clipboard chords
	if ev.Ctrl && ev.Key == consolebox.KeyRune {
		switch ev.Rune {
		case 'c', 'C':
			if text := c.buffer.Copy(); text != "" {
				if err := clipboard.WriteAll(text); err != nil {
					debugf("clipboard write: %v", err)
				}
			}
		case 'x', 'X':
			if text := c.buffer.Cut(); text != "" {
				if err := clipboard.WriteAll(text); err != nil {
					debugf("clipboard write: %v", err)
				}
			}
		case 'v', 'V':
			text, err := clipboard.ReadAll()
			if err != nil {
				debugf("clipboard read: %v", err)
				return
			}
			c.buffer.Paste(text)
		}
	}
}
