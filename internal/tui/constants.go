package tui

// Key binding constants for TUI navigation and interaction
const (
	KeyEnter    = "enter"
	KeyEsc      = "esc"
	KeyCtrlC    = "ctrl+c"
	KeyUp       = "up"
	KeyDown     = "down"
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
)

// UI element constants
const (
	CheckboxUnchecked     = "[ ]"
	CheckboxChecked       = "[x]"
	CheckboxIndeterminate = "[-]"
	CheckboxDisabled      = " - "
	SuccessCircle         = "●"
	SelectAllLabel        = "Select all"
	LoadingText           = "Loading..."
	RetryHint             = "press r to retry"
)

// Layout constants
const (
	// controlsTop is the line of the controls bar.
	controlsTop = 0
	// tableTop is the first line of the table block, below the controls
	// bar and a blank line.
	tableTop = 2
	// loadingRows is the number of blank body rows shown under the mask.
	loadingRows = 3
	// controlsGap separates controls bar segments.
	controlsGap = "  "
)
