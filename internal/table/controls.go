package table

import "strconv"

// TriState is the display state of the select-all control.
type TriState int

// Select-all display states.
const (
	// Unchecked means nothing is selected (or nothing can be).
	Unchecked TriState = iota
	// Indeterminate means some but not all selectable rows are selected.
	Indeterminate
	// Checked means every selectable row is selected.
	Checked
)

func (s TriState) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Indeterminate:
		return "indeterminate"
	case Checked:
		return "checked"
	}

	return "unknown"
}

// State derives the tri-state from k selected keys out of n selectable rows.
func State(k, n int) TriState {
	switch {
	case n <= 0 || k <= 0:
		return Unchecked
	case k < n:
		return Indeterminate
	default:
		return Checked
	}
}

// Checkbox is a checkbox-like control as seen by renderers.
type Checkbox struct {
	Name          string
	TestID        string
	Class         string
	Checked       bool
	Disabled      bool
	Indeterminate bool
}

// IndeterminateAttr renders the indeterminate marker as "true" or "false".
func (c Checkbox) IndeterminateAttr() string {
	return strconv.FormatBool(c.Indeterminate)
}

// Button is an action control as seen by renderers.
type Button struct {
	TestID   string
	Class    string
	Label    string
	Disabled bool
}

// ControlsProps is the snapshot a controls bar is rendered from.
type ControlsProps struct {
	AriaLabel      string
	ActionLabel    string
	Selected       int
	SelectableRows int
	TotalRows      int
	Selectable     bool
}

// ControlsView is the rendered controls bar.
type ControlsView struct {
	// SelectAll is nil when the table is not selectable.
	SelectAll *Checkbox
	AriaLabel string
	Download  Button
	Selected  int
	TotalRows int
}

// SelectAllCheckbox derives the select-all control for k selected keys out
// of n selectable rows.
func SelectAllCheckbox(k, n int) Checkbox {
	state := State(k, n)

	return Checkbox{
		TestID:        TestIDSelectAll,
		Class:         ClassAccessibleFocus,
		Checked:       state == Checked,
		Indeterminate: state == Indeterminate,
		Disabled:      n <= 0,
	}
}

// BuildControls derives the controls bar from props.
func BuildControls(p ControlsProps) ControlsView {
	label := p.ActionLabel
	if label == "" {
		label = "Download Selected"
	}

	v := ControlsView{
		AriaLabel: p.AriaLabel,
		Selected:  p.Selected,
		TotalRows: p.TotalRows,
		Download: Button{
			TestID:   TestIDDownloadButton,
			Class:    ClassAccessibleFocus,
			Label:    label,
			Disabled: p.Selected <= 0,
		},
	}

	if p.Selectable {
		cb := SelectAllCheckbox(p.Selected, p.SelectableRows)
		v.SelectAll = &cb
	}

	return v
}
