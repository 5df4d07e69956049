package consolebox

// Completion cycles through one snapshot of candidates for the duration of a
// Tab session. A session begins lazily on the first Tab press after a reset;
// any other key resets it.
type Completion struct {
	candidates []string
	cursor     int
	active     bool
}

// Active returns true while a Tab session is in progress.
func (c *Completion) Active() bool {
	return c.active
}

// Begin starts a session with a snapshot of the candidate list.
func (c *Completion) Begin(candidates []string) {
	c.candidates = candidates
	c.cursor = 0
	c.active = true
}

// Next returns the candidate at the cursor and advances it, wrapping at the
// list length. Returns false when the candidate list is empty.
func (c *Completion) Next() (string, bool) {
	if len(c.candidates) == 0 {
		return "", false
	}
	s := c.candidates[c.cursor%len(c.candidates)]
	c.cursor++
	return s, true
}

// Reset empties the candidate list and zeroes the cursor, ending the session.
func (c *Completion) Reset() {
	c.candidates = nil
	c.cursor = 0
	c.active = false
}
