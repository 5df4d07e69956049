package consolebox

// History is the entered-line carousel: most recent first, unbounded.
// Navigating does not discard entries, it rotates them between the front and
// the back of the ring, so repeated navigation cycles through every line.
type History struct {
	entries []string
}

// Push inserts a line at the front of the ring.
func (h *History) Push(line string) {
	h.entries = append([]string{line}, h.entries...)
}

// Len returns the number of lines in the ring.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the ring, most recent first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// RotateUp rotates the front entry to the tail and returns it. This walks
// backwards through history: most recent line first, then older ones.
// Returns false when the ring is empty.
func (h *History) RotateUp() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	line := h.entries[0]
	h.entries = append(h.entries[1:], line)
	return line, true
}

// RotateDown rotates the tail entry to the front and returns it, walking
// forwards through history. Exactly Len rotations restore the original
// order. Returns false when the ring is empty.
func (h *History) RotateDown() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	line := h.entries[len(h.entries)-1]
	h.entries = append([]string{line}, h.entries[:len(h.entries)-1]...)
	return line, true
}
