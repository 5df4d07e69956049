package consolebox

import (
	"fmt"
	"reflect"
)

// Accessor extracts the display text and error flag from a bound item. When
// set it bypasses path-based reflection entirely.
type Accessor func(item any) (text string, isError bool)

// SetAccessor sets a typed accessor override for item extraction.
func (b *Buffer) SetAccessor(fn Accessor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessor = fn
}

// SetDisplayPath names the property resolved on each bound item for its
// display text. An empty path falls back to the item's default string form.
// Changing the path invalidates the cached resolver.
func (b *Buffer) SetDisplayPath(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.displayPath == name {
		return
	}
	b.displayPath = name
	b.displayRes = newPathResolver(name)
}

// DisplayPath returns the configured display property name.
func (b *Buffer) DisplayPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.displayPath
}

// SetErrorPath names the boolean property resolved on each bound item for
// its error flag. An empty or unresolvable path yields false.
func (b *Buffer) SetErrorPath(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.errorPath == name {
		return
	}
	b.errorPath = name
	b.errorRes = newPathResolver(name)
}

// ErrorPath returns the configured error property name.
func (b *Buffer) ErrorPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.errorPath
}

// extractLocked derives the display text and error flag for one item using
// the accessor override or the configured paths.
func (b *Buffer) extractLocked(item any) (string, bool) {
	if b.accessor != nil {
		return b.accessor(item)
	}
	text := ""
	if b.displayPath == "" {
		text = defaultString(item)
	} else if v, ok := b.displayRes.resolve(item); ok {
		text = defaultString(v)
	}
	isErr := false
	if b.errorPath != "" {
		if v, ok := b.errorRes.resolve(item); ok {
			if flag, ok := v.(bool); ok {
				isErr = flag
			}
		}
	}
	return text, isErr
}

// defaultString is the fallback string conversion for items without a
// display path.
func defaultString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// extractor pulls the named value out of one concrete item representation.
type extractor func(item any) (any, bool)

// pathResolver resolves a named property on arbitrary items: a map key, an
// exported struct field, or a no-argument method. The resolution strategy is
// cached per concrete type and re-resolved only when the path name changes.
type pathResolver struct {
	name   string
	byType map[reflect.Type]extractor
}

func newPathResolver(name string) *pathResolver {
	return &pathResolver{name: name, byType: make(map[reflect.Type]extractor)}
}

func (r *pathResolver) resolve(item any) (any, bool) {
	if r == nil || r.name == "" || item == nil {
		return nil, false
	}
	t := reflect.TypeOf(item)
	ex, ok := r.byType[t]
	if !ok {
		ex = r.compile(t)
		r.byType[t] = ex
	}
	if ex == nil {
		return nil, false
	}
	return ex(item)
}

// compile builds the extraction strategy for one concrete type, or nil when
// the type has no property with the configured name.
func (r *pathResolver) compile(t reflect.Type) extractor {
	name := r.name

	// Map with string keys
	if t.Kind() == reflect.Map && t.Key().Kind() == reflect.String {
		return func(item any) (any, bool) {
			v := reflect.ValueOf(item).MapIndex(reflect.ValueOf(name))
			if !v.IsValid() {
				return nil, false
			}
			return v.Interface(), true
		}
	}

	// No-argument method, value or pointer receiver
	if m, ok := t.MethodByName(name); ok && m.Type.NumIn() == 1 && m.Type.NumOut() >= 1 {
		idx := m.Index
		return func(item any) (any, bool) {
			out := reflect.ValueOf(item).Method(idx).Call(nil)
			return out[0].Interface(), true
		}
	}

	// Exported struct field, possibly behind pointers
	st := t
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() == reflect.Struct {
		if f, ok := st.FieldByName(name); ok && f.IsExported() {
			fieldIndex := f.Index
			return func(item any) (any, bool) {
				v := reflect.ValueOf(item)
				for v.Kind() == reflect.Pointer {
					if v.IsNil() {
						return nil, false
					}
					v = v.Elem()
				}
				return v.FieldByIndex(fieldIndex).Interface(), true
			}
		}
	}

	return nil
}
