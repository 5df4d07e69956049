package consolebox

// --- Item Binding and Reconciliation ---
//
// The console's non-editable region mirrors an externally owned item
// collection. The collection pushes delta notifications (added, removed,
// replaced, reset) and the reconciler keeps the display lines consistent
// without rebuilding untouched lines.

// ChangeKind tags a collection delta notification.
type ChangeKind int

const (
	ChangeAdded    ChangeKind = iota // Added carries the new items
	ChangeRemoved                    // Removed carries the removed items
	ChangeReplaced                   // Removed carries old items, Added the new
	ChangeReset                      // Full rebuild from the live collection
)

// Change is one delta notification from the bound collection.
type Change struct {
	Kind    ChangeKind
	Added   []any
	Removed []any
}

// ItemSource is any ordered collection of opaque items the console can be
// bound to. Only iteration is required.
type ItemSource interface {
	Items() []any
}

// NotifyingSource is an ItemSource that pushes delta notifications.
// Subscribe registers a single observer and returns its cancel func.
type NotifyingSource interface {
	ItemSource
	Subscribe(fn func(Change)) (cancel func())
}

// Bind attaches the console to an item collection and performs the initial
// reconciliation: clear when the collection is empty, full replace
// otherwise. Rebinding cancels the previous subscription first so deltas are
// never delivered twice. Bind(nil) just clears.
func (b *Buffer) Bind(src ItemSource) {
	b.mu.Lock()
	if b.cancelSub != nil {
		b.cancelSub()
		b.cancelSub = nil
	}
	b.source = src
	items := snapshotItems(src)
	b.lines = nil
	if len(items) > 0 {
		b.appendItemsLocked(items)
	} else {
		b.clearDisplayLinesLocked()
	}
	notify := b.resetEditTailLocked()
	b.markDirty()
	ns, _ := src.(NotifyingSource)
	b.mu.Unlock()
	notify()

	if ns != nil {
		cancel := ns.Subscribe(b.ApplyChange)
		b.mu.Lock()
		b.cancelSub = cancel
		b.mu.Unlock()
	}
}

// Unbind detaches the console from its collection. Display lines are left
// in place.
func (b *Buffer) Unbind() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancelSub != nil {
		b.cancelSub()
		b.cancelSub = nil
	}
	b.source = nil
}

// ApplyChange reconciles one collection delta against the display lines.
// Unknown kinds and empty item sets are no-ops.
func (b *Buffer) ApplyChange(ch Change) {
	b.mu.Lock()
	switch ch.Kind {
	case ChangeAdded:
		b.appendItemsLocked(ch.Added)
	case ChangeRemoved:
		b.removeItemsLocked(ch.Removed)
	case ChangeReplaced:
		b.removeItemsLocked(ch.Removed)
		b.appendItemsLocked(ch.Added)
	case ChangeReset:
		items := snapshotItems(b.source)
		b.lines = nil
		if len(items) > 0 {
			b.appendItemsLocked(items)
		} else {
			b.clearDisplayLinesLocked()
		}
	}
	notify := b.resetEditTailLocked()
	b.markDirty()
	b.mu.Unlock()
	notify()
}

// appendItemsLocked extracts and appends display lines for the given items.
func (b *Buffer) appendItemsLocked(items []any) {
	if len(items) == 0 {
		return
	}
	lines := make([]DisplayLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, b.itemLineLocked(item))
	}
	b.appendDisplayLinesLocked(lines)
}

// removeItemsLocked removes the first display line matching each removed
// item's extracted text. When duplicate lines share the same text the first
// match is removed, which may not be the line of the removed logical item;
// that ambiguity is inherent to remove-by-text and deliberately preserved.
func (b *Buffer) removeItemsLocked(items []any) {
	for _, item := range items {
		text, _ := b.extractLocked(item)
		b.removeDisplayLineLocked(firstLine(text))
	}
}

// itemLineLocked builds the display line for one item: extracted text, error
// flag, and resolved foreground.
func (b *Buffer) itemLineLocked(item any) DisplayLine {
	text, isErr := b.extractLocked(item)
	ln := DisplayLine{Text: text, IsError: isErr}
	if !isErr && b.colorResolver != nil {
		ln.Color = b.colorResolver(item)
	}
	return ln
}

// resetEditTailLocked re-establishes the prompt and an empty editable
// segment after a reconciliation and moves the caret to the document end.
func (b *Buffer) resetEditTailLocked() func() {
	notify := b.clearEditableLocked()
	b.caret = b.docEndLocked()
	b.selStart, b.selEnd = b.caret, b.caret
	return notify
}

// snapshotItems enumerates the source, treating a nil source or a panic
// during enumeration (source mutated mid-iteration) as an empty sequence.
func snapshotItems(src ItemSource) (items []any) {
	if src == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			items = nil
		}
	}()
	return src.Items()
}
