package table

import "fmt"

// SelectionDisableRule disables selection of a row when the stringified
// field value is one of Value.
type SelectionDisableRule[R any] struct {
	// Prop names the field the rule reads. It documents Field and is
	// shown in logs; evaluation goes through Field.
	Prop  string
	Value map[string]struct{}
	Field func(R) any
}

// NewDisableRule builds a rule over the given field accessor.
func NewDisableRule[R any](prop string, field func(R) any, values ...string) *SelectionDisableRule[R] {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	return &SelectionDisableRule[R]{Prop: prop, Value: set, Field: field}
}

// Fires reports whether the rule disables selection of row. A nil rule,
// a missing accessor or a nil field value never fires.
func (r *SelectionDisableRule[R]) Fires(row R) bool {
	if r == nil || r.Field == nil {
		return false
	}

	v := r.Field(row)
	if v == nil {
		return false
	}

	_, ok := r.Value[fmt.Sprint(v)]

	return ok
}

// Column describes one renderable field of rows of type R.
type Column[R any] struct {
	HeaderStyle   map[string]string
	DisabledRules *SelectionDisableRule[R]
	// Value reads the raw field from a row.
	Value func(R) any
	// Format renders the cell text. When nil the text is fmt.Sprint(Value(row)).
	Format func(R) string
	Prop   string
	Label  string
	Width  int
	// Status marks a status-like column whose cells get a success marker
	// when their text equals StatusAvailable.
	Status bool
}

// Text returns the display text of the column for row.
func (c Column[R]) Text(row R) string {
	if c.Format != nil {
		return c.Format(row)
	}

	if c.Value == nil {
		return ""
	}

	v := c.Value(row)
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}

// IsSelectionDisabled reports whether col's disable rule fires for row.
func IsSelectionDisabled[R any](row R, col Column[R]) bool {
	return col.DisabledRules.Fires(row)
}

// ValidateColumns rejects empty and duplicate props.
func ValidateColumns[R any](cols []Column[R]) error {
	seen := make(map[string]bool, len(cols))

	for i, col := range cols {
		if col.Prop == "" {
			return fmt.Errorf("column %d: %w", i, ErrEmptyProp)
		}

		if seen[col.Prop] {
			return fmt.Errorf("%w: %q", ErrDuplicateProp, col.Prop)
		}

		seen[col.Prop] = true
	}

	return nil
}

// SelectColumn returns the select affordance from cols. When cols has no
// column with SelectProp a rule-less one is synthesized.
func SelectColumn[R any](cols []Column[R]) Column[R] {
	for _, col := range cols {
		if col.Prop == SelectProp {
			return col
		}
	}

	return Column[R]{Prop: SelectProp}
}

// DataColumns returns cols without the select affordance.
func DataColumns[R any](cols []Column[R]) []Column[R] {
	out := make([]Column[R], 0, len(cols))

	for _, col := range cols {
		if col.Prop != SelectProp {
			out = append(out, col)
		}
	}

	return out
}
