package cli

import (
	"os"
	"unicode/utf8"

	consolebox "github.com/mkeddie/consolebox"
)

// Modifier flags decoded from CSI parameters
const (
	modShift = 1 << iota
	modAlt
	modCtrl
)

// InputHandler reads keyboard input from the host terminal and feeds
// decoded key events to the console
type InputHandler struct {
	console      *Console
	escapeBuffer []byte
}

// NewInputHandler creates a new input handler
func NewInputHandler(c *Console) *InputHandler {
	return &InputHandler{
		console:      c,
		escapeBuffer: make([]byte, 0, 32),
	}
}

// InputLoop reads and processes input from stdin
func (h *InputHandler) InputLoop() {
	buf := make([]byte, 256)

	for {
		select {
		case <-h.console.stopRender:
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if err != nil {
			h.console.Stop()
			return
		}
		if n == 0 {
			continue
		}

		h.processInput(buf[:n])
	}
}

// processInput handles raw input bytes
func (h *InputHandler) processInput(data []byte) {
	for i := 0; i < len(data); {
		b := data[i]

		if b == 0x1b { // ESC
			h.escapeBuffer = append(h.escapeBuffer[:0], b)
			i++

			for i < len(data) && len(h.escapeBuffer) < 32 {
				h.escapeBuffer = append(h.escapeBuffer, data[i])
				i++

				ev, consumed := h.parseEscapeSequence(h.escapeBuffer)
				if consumed > 0 {
					if ev.Key != consolebox.KeyNone {
						h.dispatch(ev)
					}
					h.escapeBuffer = h.escapeBuffer[:0]
					break
				}
			}

			// Bare ESC, or a sequence we do not recognize
			if len(h.escapeBuffer) > 0 {
				if len(h.escapeBuffer) == 1 {
					h.dispatch(consolebox.KeyEvent{Key: consolebox.KeyEscape})
				}
				h.escapeBuffer = h.escapeBuffer[:0]
			}
			continue
		}

		if b < 0x20 || b == 0x7f {
			h.dispatch(h.decodeControlByte(b))
			i++
			continue
		}

		// Regular character, possibly multi-byte UTF-8
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		h.dispatch(consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: r})
		i += size
	}
}

// decodeControlByte maps C0 control bytes to key events
func (h *InputHandler) decodeControlByte(b byte) consolebox.KeyEvent {
	switch b {
	case '\r', '\n':
		return consolebox.KeyEvent{Key: consolebox.KeyEnter}
	case '\t':
		return consolebox.KeyEvent{Key: consolebox.KeyTab}
	case 0x7f, 0x08:
		return consolebox.KeyEvent{Key: consolebox.KeyBackspace}
	default:
		// Ctrl+letter: 0x01..0x1a
		if b >= 0x01 && b <= 0x1a {
			return consolebox.KeyEvent{
				Key:  consolebox.KeyRune,
				Rune: rune('a' + b - 1),
				Ctrl: true,
			}
		}
	}
	return consolebox.KeyEvent{Key: consolebox.KeyNone}
}

// parseEscapeSequence attempts to parse an escape sequence.
// Returns the decoded event and the number of bytes consumed; consumed
// is zero while the sequence is still incomplete.
func (h *InputHandler) parseEscapeSequence(seq []byte) (consolebox.KeyEvent, int) {
	if len(seq) < 2 {
		return consolebox.KeyEvent{}, 0
	}

	// CSI sequences: ESC [
	if seq[1] == '[' {
		return h.parseCSISequence(seq)
	}

	// SS3 sequences: ESC O
	if seq[1] == 'O' {
		return h.parseSS3Sequence(seq)
	}

	// Alt+key: ESC followed by a regular character
	if seq[1] >= 0x20 && seq[1] < 0x7f {
		return consolebox.KeyEvent{
			Key:  consolebox.KeyRune,
			Rune: rune(seq[1]),
			Alt:  true,
		}, 2
	}

	return consolebox.KeyEvent{}, len(seq)
}

// parseCSISequence parses CSI (ESC [) sequences
func (h *InputHandler) parseCSISequence(seq []byte) (consolebox.KeyEvent, int) {
	if len(seq) < 3 {
		return consolebox.KeyEvent{}, 0
	}

	last := seq[len(seq)-1]
	if !(last >= 'A' && last <= 'Z' || last == '~') {
		if len(seq) >= 32 {
			return consolebox.KeyEvent{}, len(seq)
		}
		return consolebox.KeyEvent{}, 0
	}

	params := seq[2 : len(seq)-1]
	var ev consolebox.KeyEvent

	switch last {
	case 'A':
		ev.Key = consolebox.KeyUp
	case 'B':
		ev.Key = consolebox.KeyDown
	case 'C':
		ev.Key = consolebox.KeyRight
	case 'D':
		ev.Key = consolebox.KeyLeft
	case 'H':
		ev.Key = consolebox.KeyHome
	case 'F':
		ev.Key = consolebox.KeyEnd
	case 'Z': // Shift+Tab
		ev.Key = consolebox.KeyTab
		ev.Shift = true
	case '~':
		if len(params) > 0 {
			switch params[0] {
			case '1':
				ev.Key = consolebox.KeyHome
			case '3':
				ev.Key = consolebox.KeyDelete
			case '4':
				ev.Key = consolebox.KeyEnd
			case '5':
				ev.Key = consolebox.KeyPageUp
			case '6':
				ev.Key = consolebox.KeyPageDown
			}
		}
	}

	// Modifiers in extended format: <param> ; <mod>
	mods := csiModifiers(params)
	ev.Shift = ev.Shift || mods&modShift != 0
	ev.Alt = mods&modAlt != 0
	ev.Ctrl = mods&modCtrl != 0

	return ev, len(seq)
}

// csiModifiers extracts the xterm modifier parameter from a CSI
// parameter block such as "1;5" or "5;2"
func csiModifiers(params []byte) int {
	semi := -1
	for i, b := range params {
		if b == ';' {
			semi = i
			break
		}
	}
	if semi < 0 || semi+1 >= len(params) {
		return 0
	}
	modByte := params[semi+1]
	if modByte < '2' || modByte > '8' {
		return 0
	}
	modNum := int(modByte - '1')
	var mods int
	if modNum&1 != 0 {
		mods |= modShift
	}
	if modNum&2 != 0 {
		mods |= modAlt
	}
	if modNum&4 != 0 {
		mods |= modCtrl
	}
	return mods
}

// parseSS3Sequence parses SS3 (ESC O) sequences
func (h *InputHandler) parseSS3Sequence(seq []byte) (consolebox.KeyEvent, int) {
	if len(seq) < 3 {
		return consolebox.KeyEvent{}, 0
	}
	var ev consolebox.KeyEvent
	switch seq[2] {
	case 'A':
		ev.Key = consolebox.KeyUp
	case 'B':
		ev.Key = consolebox.KeyDown
	case 'C':
		ev.Key = consolebox.KeyRight
	case 'D':
		ev.Key = consolebox.KeyLeft
	case 'H':
		ev.Key = consolebox.KeyHome
	case 'F':
		ev.Key = consolebox.KeyEnd
	}
	return ev, 3
}

// dispatch routes a decoded event, intercepting the host-level chords
// before the buffer sees them
func (h *InputHandler) dispatch(ev consolebox.KeyEvent) {
	debugf("key=%d rune=%q ctrl=%v shift=%v alt=%v", ev.Key, ev.Rune, ev.Ctrl, ev.Shift, ev.Alt)

	// Ctrl+Q quits
	if ev.Ctrl && ev.Key == consolebox.KeyRune && (ev.Rune == 'q' || ev.Rune == 'Q') {
		h.console.Stop()
		return
	}

	// Shift+PageUp/PageDown scroll the viewport
	if ev.Shift {
		switch ev.Key {
		case consolebox.KeyPageUp:
			h.console.ScrollPages(-1)
			return
		case consolebox.KeyPageDown:
			h.console.ScrollPages(1)
			return
		}
	}

	h.console.handleKey(ev)
}
