package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	consolebox "github.com/mkeddie/consolebox"
)

func TestDecodeControlBytes(t *testing.T) {
	h := &InputHandler{}

	tests := []struct {
		name string
		b    byte
		want consolebox.KeyEvent
	}{
		{"carriage return", '\r', consolebox.KeyEvent{Key: consolebox.KeyEnter}},
		{"newline", '\n', consolebox.KeyEvent{Key: consolebox.KeyEnter}},
		{"tab", '\t', consolebox.KeyEvent{Key: consolebox.KeyTab}},
		{"del", 0x7f, consolebox.KeyEvent{Key: consolebox.KeyBackspace}},
		{"bs", 0x08, consolebox.KeyEvent{Key: consolebox.KeyBackspace}},
		{"ctrl-a", 0x01, consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'a', Ctrl: true}},
		{"ctrl-q", 0x11, consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'q', Ctrl: true}},
		{"ctrl-v", 0x16, consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'v', Ctrl: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.decodeControlByte(tt.b))
		})
	}
}

func TestParseCSISequences(t *testing.T) {
	h := &InputHandler{}

	tests := []struct {
		name string
		seq  string
		want consolebox.KeyEvent
	}{
		{"up", "\x1b[A", consolebox.KeyEvent{Key: consolebox.KeyUp}},
		{"down", "\x1b[B", consolebox.KeyEvent{Key: consolebox.KeyDown}},
		{"right", "\x1b[C", consolebox.KeyEvent{Key: consolebox.KeyRight}},
		{"left", "\x1b[D", consolebox.KeyEvent{Key: consolebox.KeyLeft}},
		{"home", "\x1b[H", consolebox.KeyEvent{Key: consolebox.KeyHome}},
		{"end", "\x1b[F", consolebox.KeyEvent{Key: consolebox.KeyEnd}},
		{"delete", "\x1b[3~", consolebox.KeyEvent{Key: consolebox.KeyDelete}},
		{"page up", "\x1b[5~", consolebox.KeyEvent{Key: consolebox.KeyPageUp}},
		{"page down", "\x1b[6~", consolebox.KeyEvent{Key: consolebox.KeyPageDown}},
		{"shift tab", "\x1b[Z", consolebox.KeyEvent{Key: consolebox.KeyTab, Shift: true}},
		{"shift page up", "\x1b[5;2~", consolebox.KeyEvent{Key: consolebox.KeyPageUp, Shift: true}},
		{"shift page down", "\x1b[6;2~", consolebox.KeyEvent{Key: consolebox.KeyPageDown, Shift: true}},
		{"ctrl left", "\x1b[1;5D", consolebox.KeyEvent{Key: consolebox.KeyLeft, Ctrl: true}},
		{"shift up", "\x1b[1;2A", consolebox.KeyEvent{Key: consolebox.KeyUp, Shift: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, consumed := h.parseEscapeSequence([]byte(tt.seq))
			assert.Equal(t, len(tt.seq), consumed)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestParseSS3Sequences(t *testing.T) {
	h := &InputHandler{}

	ev, consumed := h.parseEscapeSequence([]byte("\x1bOA"))
	assert.Equal(t, 3, consumed)
	assert.Equal(t, consolebox.KeyUp, ev.Key)

	ev, consumed = h.parseEscapeSequence([]byte("\x1bOF"))
	assert.Equal(t, 3, consumed)
	assert.Equal(t, consolebox.KeyEnd, ev.Key)
}

func TestParseAltKey(t *testing.T) {
	h := &InputHandler{}

	ev, consumed := h.parseEscapeSequence([]byte("\x1bx"))
	assert.Equal(t, 2, consumed)
	assert.Equal(t, consolebox.KeyEvent{Key: consolebox.KeyRune, Rune: 'x', Alt: true}, ev)
}

func TestIncompleteSequenceConsumesNothing(t *testing.T) {
	h := &InputHandler{}

	_, consumed := h.parseEscapeSequence([]byte("\x1b["))
	assert.Equal(t, 0, consumed)

	_, consumed = h.parseEscapeSequence([]byte("\x1b[1;5"))
	assert.Equal(t, 0, consumed)
}
