// Package table implements a generic selectable data table.
//
// The package is renderer-agnostic: Build turns table props into a View
// (header cells, rows, checkboxes) and BuildControls derives the select-all
// and action controls from a selection. The terminal and web front ends
// render these views and report user intent back as events; neither this
// package nor the renderers own the selection.
package table

// Identifiers exposed by rendered tables. Front ends and tests locate
// elements through these values, so they must not change.
const (
	TestIDLoading        = "loading"
	TestIDNoData         = "table-nodata"
	TestIDSelectHeader   = "table-header-select"
	TestIDStatusSlot     = "status-slot"
	TestIDSelectAll      = "select-all-checkbox"
	TestIDDownloadButton = "download-files-button"

	// ControlNameSelect is the shared name of every row checkbox.
	ControlNameSelect = "select"
	// SelectProp is the column prop of the select affordance.
	SelectProp = "select"

	ClassAccessibleFocus = "accessible-focus"
	ClassSuccessCircle   = "success-circle"
	ClassBodyRow         = "table-body-row"

	NoDataText = "No Data"
	// StatusAvailable is the status cell value that gets a success marker.
	StatusAvailable = "Available"
)
