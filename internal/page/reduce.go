package page

import (
	"github.com/AntoineGS/tidyfiles/internal/catalog"
	"github.com/AntoineGS/tidyfiles/internal/table"
)

// Event is user or fetch intent reported to the page.
type Event interface {
	event()
}

// FetchStarted requests a (re)load of the listing.
type FetchStarted struct{}

// FetchResolved delivers a successful fetch.
type FetchResolved struct {
	Result catalog.Result
}

// FetchFailed delivers a failed fetch.
type FetchFailed struct {
	Err error
}

// RowToggled flips the selection of one row.
type RowToggled struct {
	Key string
}

// SelectAllToggled activates the select-all control.
type SelectAllToggled struct{}

// ActionInvoked activates the download button.
type ActionInvoked struct{}

func (FetchStarted) event()     {}
func (FetchResolved) event()    {}
func (FetchFailed) event()      {}
func (RowToggled) event()       {}
func (SelectAllToggled) event() {}
func (ActionInvoked) event()    {}

// Effect is work the container must perform after a reduction.
type Effect struct {
	// Download lists the files of a gated action, in listing order.
	Download []catalog.File
	// Fetch asks the container to issue the data request.
	Fetch bool
}

// Reduce applies e to s. It is the only place the selection changes.
func Reduce(s State, e Event) (State, Effect) {
	var eff Effect

	switch e := e.(type) {
	case FetchStarted:
		if s.Phase == PhaseFetching {
			return s, eff
		}

		s.Phase = PhaseFetching
		s.Err = nil
		s.Files = nil
		s.TotalRows = 0
		s.Selected = table.Selection[string]{}
		eff.Fetch = true

	case FetchResolved:
		if s.Phase != PhaseFetching {
			return s, eff
		}

		s.Phase = PhaseLoaded
		s.Files = e.Result.Files
		s.TotalRows = e.Result.Total
		s.Selected = table.Selection[string]{}

	case FetchFailed:
		if s.Phase != PhaseFetching {
			return s, eff
		}

		s.Phase = PhaseFailed
		s.Err = e.Err
		s.Files = nil
		s.TotalRows = 0
		s.Selected = table.Selection[string]{}

	case RowToggled:
		if s.Phase != PhaseLoaded {
			return s, eff
		}

		s.Selected = table.ToggleRow(s.Selected, s.Props().SelectableKeys(), e.Key)

	case SelectAllToggled:
		if s.Phase != PhaseLoaded {
			return s, eff
		}

		s.Selected = table.ToggleAll(s.Selected, s.Props().SelectableKeys())

	case ActionInvoked:
		if s.Phase != PhaseLoaded || s.Selected.Empty() {
			return s, eff
		}

		eff.Download = s.SelectedFiles()
	}

	s.Selected = table.Sanitize(s.Selected, s.Props().SelectableKeys())

	return s, eff
}
