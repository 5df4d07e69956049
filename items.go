package consolebox

// SliceSource adapts a plain slice as a non-notifying ItemSource.
type SliceSource []any

// Items returns the slice itself.
func (s SliceSource) Items() []any { return s }

// Strings wraps a string slice as a SliceSource.
func Strings(ss []string) SliceSource {
	out := make(SliceSource, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ItemList is a mutable, change-notifying item collection for callers that
// do not already have one. Mutations notify the single subscriber with the
// matching delta. It is not synchronized; use it from the UI thread like
// everything else here.
type ItemList struct {
	items []any
	fn    func(Change)
	sub   int // Subscription generation, so a stale cancel is a no-op
}

// NewItemList creates an ItemList with the given initial items.
func NewItemList(items ...any) *ItemList {
	l := &ItemList{}
	l.items = append(l.items, items...)
	return l
}

// Items returns a copy of the current items.
func (l *ItemList) Items() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items.
func (l *ItemList) Len() int { return len(l.items) }

// Subscribe registers the observer. Only one observer is held at a time; a
// new subscription replaces the previous one. The returned cancel func
// detaches the observer it registered.
func (l *ItemList) Subscribe(fn func(Change)) (cancel func()) {
	l.sub++
	id := l.sub
	l.fn = fn
	return func() {
		if l.sub == id {
			l.fn = nil
		}
	}
}

func (l *ItemList) notify(ch Change) {
	if l.fn != nil {
		l.fn(ch)
	}
}

// Add appends items and notifies with ChangeAdded.
func (l *ItemList) Add(items ...any) {
	if len(items) == 0 {
		return
	}
	l.items = append(l.items, items...)
	l.notify(Change{Kind: ChangeAdded, Added: items})
}

// Remove deletes the first occurrence of each item and notifies with
// ChangeRemoved. Items not present are skipped.
func (l *ItemList) Remove(items ...any) {
	var removed []any
	for _, item := range items {
		for i, have := range l.items {
			if have == item {
				l.items = append(l.items[:i], l.items[i+1:]...)
				removed = append(removed, item)
				break
			}
		}
	}
	if len(removed) > 0 {
		l.notify(Change{Kind: ChangeRemoved, Removed: removed})
	}
}

// Replace swaps old for new in place and notifies with ChangeReplaced.
func (l *ItemList) Replace(old, new any) {
	for i, have := range l.items {
		if have == old {
			l.items[i] = new
			l.notify(Change{Kind: ChangeReplaced, Added: []any{new}, Removed: []any{old}})
			return
		}
	}
}

// Reset replaces the whole collection and notifies with ChangeReset.
func (l *ItemList) Reset(items ...any) {
	l.items = append(l.items[:0:0], items...)
	l.notify(Change{Kind: ChangeReset})
}
