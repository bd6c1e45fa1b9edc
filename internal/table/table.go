package table

import "fmt"

// Props is the snapshot a table is rendered from.
type Props[R any, K comparable] struct {
	Selected  Selection[K]
	Key       func(R) K
	AriaLabel string
	Columns   []Column[R]
	Data      []R
	TotalRows int
	Loading   bool
	// Selectable adds the leading select column.
	Selectable bool
}

// SelectColumn returns the select affordance of the table.
func (p Props[R, K]) SelectColumn() Column[R] {
	return SelectColumn(p.Columns)
}

// RowDisabled reports whether row cannot be selected.
func (p Props[R, K]) RowDisabled(row R) bool {
	return IsSelectionDisabled(row, p.SelectColumn())
}

// SelectableKeys returns the keys of selectable rows in data order. A
// table that is not selectable has none.
func (p Props[R, K]) SelectableKeys() []K {
	if !p.Selectable {
		return nil
	}

	return SelectableKeys(p.Data, p.Key, p.SelectColumn())
}

// HeaderCell is one header cell.
type HeaderCell struct {
	Style  map[string]string
	Prop   string
	Label  string
	TestID string
	Width  int
	// Select marks the leading select column header.
	Select bool
}

// Cell is one body cell.
type Cell struct {
	Prop   string
	Text   string
	TestID string
	Width  int
	// Success is set on status cells whose text is StatusAvailable.
	Success bool
}

// RowView is one body row.
type RowView[K comparable] struct {
	Key K
	// Checkbox is nil when the table is not selectable.
	Checkbox *Checkbox
	Class    string
	Cells    []Cell
}

// View is a rendered table.
type View[K comparable] struct {
	AriaLabel  string
	Header     []HeaderCell
	Rows       []RowView[K]
	TotalRows  int
	Loading    bool
	NoData     bool
	Selectable bool
}

// Build renders props into a View. While loading the body is suppressed;
// once loaded an empty data set yields the NoData placeholder. Columns with
// empty or duplicate props are rejected.
func Build[R any, K comparable](p Props[R, K]) (View[K], error) {
	if err := ValidateColumns(p.Columns); err != nil {
		return View[K]{}, fmt.Errorf("building table: %w", err)
	}

	v := View[K]{
		AriaLabel:  p.AriaLabel,
		TotalRows:  p.TotalRows,
		Loading:    p.Loading,
		Selectable: p.Selectable,
	}

	cols := DataColumns(p.Columns)

	if len(p.Columns) > 0 {
		if p.Selectable {
			sel := p.SelectColumn()
			v.Header = append(v.Header, HeaderCell{
				Prop:   SelectProp,
				Label:  sel.Label,
				Width:  sel.Width,
				Style:  sel.HeaderStyle,
				TestID: TestIDSelectHeader,
				Select: true,
			})
		}

		for _, col := range cols {
			v.Header = append(v.Header, HeaderCell{
				Prop:  col.Prop,
				Label: col.Label,
				Width: col.Width,
				Style: col.HeaderStyle,
			})
		}
	}

	if p.Loading {
		return v, nil
	}

	if len(p.Data) == 0 {
		v.NoData = true
		return v, nil
	}

	selectCol := p.SelectColumn()
	v.Rows = make([]RowView[K], 0, len(p.Data))

	for _, row := range p.Data {
		k := p.Key(row)
		rv := RowView[K]{Key: k, Class: ClassBodyRow, Cells: make([]Cell, 0, len(cols))}

		if p.Selectable {
			disabled := IsSelectionDisabled(row, selectCol)
			rv.Checkbox = &Checkbox{
				Name:     ControlNameSelect,
				Class:    ClassAccessibleFocus,
				Checked:  !disabled && p.Selected.Has(k),
				Disabled: disabled,
			}
		}

		for _, col := range cols {
			cell := Cell{Prop: col.Prop, Text: col.Text(row), Width: col.Width}
			if col.Status {
				cell.TestID = TestIDStatusSlot
				cell.Success = cell.Text == StatusAvailable
			}

			rv.Cells = append(rv.Cells, cell)
		}

		v.Rows = append(v.Rows, rv)
	}

	return v, nil
}

// Controls derives the controls bar that belongs to this table.
func (p Props[R, K]) Controls(ariaLabel, actionLabel string) ControlsView {
	return BuildControls(ControlsProps{
		AriaLabel:      ariaLabel,
		ActionLabel:    actionLabel,
		Selectable:     p.Selectable,
		Selected:       p.Selected.Len(),
		SelectableRows: len(p.SelectableKeys()),
		TotalRows:      p.TotalRows,
	})
}
