package table

// Selection is an immutable set of row keys. The zero value is an empty
// selection; every change returns a new set so snapshots handed to
// renderers are never mutated behind their back.
type Selection[K comparable] struct {
	keys map[K]struct{}
}

// NewSelection returns a selection holding keys.
func NewSelection[K comparable](keys ...K) Selection[K] {
	s := Selection[K]{keys: make(map[K]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}

	return s
}

// Len returns the number of selected keys.
func (s Selection[K]) Len() int {
	return len(s.keys)
}

// Has reports whether k is selected.
func (s Selection[K]) Has(k K) bool {
	_, ok := s.keys[k]
	return ok
}

// Empty reports whether nothing is selected.
func (s Selection[K]) Empty() bool {
	return len(s.keys) == 0
}

// Toggle returns a copy with k flipped.
func (s Selection[K]) Toggle(k K) Selection[K] {
	out := s.clone()
	if _, ok := out.keys[k]; ok {
		delete(out.keys, k)
	} else {
		out.keys[k] = struct{}{}
	}

	return out
}

// Restrict returns a copy keeping only keys for which allowed returns true.
func (s Selection[K]) Restrict(allowed func(K) bool) Selection[K] {
	out := Selection[K]{keys: make(map[K]struct{}, len(s.keys))}
	for k := range s.keys {
		if allowed(k) {
			out.keys[k] = struct{}{}
		}
	}

	return out
}

// Keys returns the selected keys in no particular order.
func (s Selection[K]) Keys() []K {
	out := make([]K, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}

	return out
}

// Equal reports whether both selections hold the same keys.
func (s Selection[K]) Equal(other Selection[K]) bool {
	if len(s.keys) != len(other.keys) {
		return false
	}

	for k := range s.keys {
		if !other.Has(k) {
			return false
		}
	}

	return true
}

func (s Selection[K]) clone() Selection[K] {
	out := Selection[K]{keys: make(map[K]struct{}, len(s.keys)+1)}
	for k := range s.keys {
		out.keys[k] = struct{}{}
	}

	return out
}

// SelectableKeys returns, in data order, the keys of rows whose select
// rule does not fire.
func SelectableKeys[R any, K comparable](data []R, key func(R) K, selectCol Column[R]) []K {
	out := make([]K, 0, len(data))

	for _, row := range data {
		if !IsSelectionDisabled(row, selectCol) {
			out = append(out, key(row))
		}
	}

	return out
}

// ToggleRow flips k unless it does not name a selectable key, in which
// case sel is returned unchanged.
func ToggleRow[K comparable](sel Selection[K], selectable []K, k K) Selection[K] {
	for _, candidate := range selectable {
		if candidate == k {
			return sel.Toggle(k)
		}
	}

	return sel
}

// ToggleAll clears a fully checked selection and otherwise selects every
// selectable key.
func ToggleAll[K comparable](sel Selection[K], selectable []K) Selection[K] {
	if len(selectable) == 0 {
		return Selection[K]{}
	}

	if State(sel.Len(), len(selectable)) == Checked {
		return Selection[K]{}
	}

	return NewSelection(selectable...)
}

// Sanitize drops keys that are not selectable any more.
func Sanitize[K comparable](sel Selection[K], selectable []K) Selection[K] {
	allowed := make(map[K]struct{}, len(selectable))
	for _, k := range selectable {
		allowed[k] = struct{}{}
	}

	return sel.Restrict(func(k K) bool {
		_, ok := allowed[k]
		return ok
	})
}

// SelectedRows returns the selected rows in data order.
func SelectedRows[R any, K comparable](data []R, key func(R) K, sel Selection[K]) []R {
	out := make([]R, 0, sel.Len())

	for _, row := range data {
		if sel.Has(key(row)) {
			out = append(out, row)
		}
	}

	return out
}
