// Package page is the file table page container: it owns the fetched
// rows, the selection and the loading phase, and reduces every user and
// fetch event into a new state.
package page

import (
	"fmt"

	"github.com/AntoineGS/tidyfiles/internal/catalog"
	"github.com/AntoineGS/tidyfiles/internal/table"
	"github.com/AntoineGS/tidyfiles/internal/textutil"
)

// Labels of the page's accessible regions.
const (
	TableLabel    = "Files Table"
	ControlsLabel = "Files Table Controls"
	ActionLabel   = "Download Selected"
)

// Phase is the fetch lifecycle of the page.
type Phase int

// Page phases.
const (
	// PhaseIdle is the state before the first fetch.
	PhaseIdle Phase = iota
	// PhaseFetching means a fetch is in flight.
	PhaseFetching
	// PhaseLoaded means the last fetch succeeded.
	PhaseLoaded
	// PhaseFailed means the last fetch failed.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	}

	return "unknown"
}

// State is the single source of truth of the page. Values are snapshots:
// Reduce never mutates the state it is given.
type State struct {
	Err error
	// AriaLabel overrides TableLabel when set.
	AriaLabel string
	Selected  table.Selection[string]
	Files     []catalog.File
	TotalRows int
	Phase     Phase
}

// Loading reports whether the loading signal is raised.
func (s State) Loading() bool {
	return s.Phase == PhaseFetching
}

// ErrorMessage is the user-visible text of a failed fetch, or "".
func (s State) ErrorMessage() string {
	if s.Phase != PhaseFailed || s.Err == nil {
		return ""
	}

	return fmt.Sprintf("Failed to load files: %v", s.Err)
}

// FileKey is the selection key of a file.
func FileKey(f catalog.File) string {
	return f.ID
}

// Columns returns the file table columns. The select column disables
// selection of scheduled files.
func Columns() []table.Column[catalog.File] {
	return []table.Column[catalog.File]{
		{
			Prop: table.SelectProp,
			DisabledRules: table.NewDisableRule("status", func(f catalog.File) any {
				return f.Status
			}, string(catalog.StatusScheduled)),
		},
		{Prop: "name", Label: "Name", Width: 16, Value: func(f catalog.File) any { return f.Name }},
		{Prop: "device", Label: "Device", Width: 12, Value: func(f catalog.File) any { return f.Device }},
		{Prop: "path", Label: "Path", Width: 48, Value: func(f catalog.File) any { return f.Path }},
		{
			Prop:   "status",
			Label:  "Status",
			Width:  12,
			Status: true,
			Value:  func(f catalog.File) any { return f.Status },
			Format: func(f catalog.File) string { return textutil.Capitalize(string(f.Status)) },
		},
	}
}

// Props returns the table snapshot for s.
func (s State) Props() table.Props[catalog.File, string] {
	return table.Props[catalog.File, string]{
		Loading:    s.Loading(),
		Columns:    Columns(),
		Data:       s.Files,
		Key:        FileKey,
		Selectable: true,
		Selected:   s.Selected,
		TotalRows:  s.TotalRows,
		AriaLabel:  s.tableLabel(),
	}
}

func (s State) tableLabel() string {
	if s.AriaLabel == "" {
		return TableLabel
	}

	return s.AriaLabel
}

// Mount returns the state of a freshly mounted page with a fetch in
// flight, and the effect that issues it.
func Mount(ariaLabel string) (State, Effect) {
	return Reduce(State{AriaLabel: ariaLabel}, FetchStarted{})
}

// Table renders the table view of s.
func (s State) Table() (table.View[string], error) {
	return table.Build(s.Props())
}

// Controls renders the controls bar of s.
func (s State) Controls() table.ControlsView {
	return s.Props().Controls(ControlsLabel, ActionLabel)
}

// SelectedFiles returns the selected files in listing order.
func (s State) SelectedFiles() []catalog.File {
	return table.SelectedRows(s.Files, FileKey, s.Selected)
}
