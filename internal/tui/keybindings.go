package tui

import "github.com/charmbracelet/bubbles/key"

// SharedKeyMap defines keybindings available on every view.
type SharedKeyMap struct {
	ForceQuit key.Binding
	Quit      key.Binding
}

// SharedKeys are available on every view.
var SharedKeys = SharedKeyMap{
	ForceQuit: key.NewBinding(
		key.WithKeys(KeyCtrlC),
		key.WithHelp("ctrl+c", "force quit"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}

// TableKeyMap defines keybindings for the file table page.
type TableKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Activate key.Binding
	Reload   key.Binding
}

// TableKeys are the keybindings for the file table page. Activate is the
// keyboard equivalent of a click on the focused control.
var TableKeys = TableKeyMap{
	Up: key.NewBinding(
		key.WithKeys(KeyUp, "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys(KeyDown, "j"),
		key.WithHelp("↓/j", "down"),
	),
	Next: key.NewBinding(
		key.WithKeys(KeyTab),
		key.WithHelp("tab", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys(KeyShiftTab),
		key.WithHelp("shift+tab", "prev"),
	),
	Activate: key.NewBinding(
		key.WithKeys(KeyEnter, " ", "space"),
		key.WithHelp("enter/space", "toggle"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
}

// AlertKeyMap defines keybindings while the download alert is shown.
type AlertKeyMap struct {
	Dismiss key.Binding
}

// AlertKeys are the keybindings for the download alert.
var AlertKeys = AlertKeyMap{
	Dismiss: key.NewBinding(
		key.WithKeys(KeyEnter, KeyEsc, " ", "space"),
		key.WithHelp("enter/esc", "dismiss"),
	),
}

func tableHelp() string {
	return renderBindings(
		TableKeys.Up, TableKeys.Down, TableKeys.Next, TableKeys.Activate,
		TableKeys.Reload, SharedKeys.Quit,
	)
}

func alertHelp() string {
	return renderBindings(AlertKeys.Dismiss, SharedKeys.ForceQuit)
}

func renderBindings(bindings ...key.Binding) string {
	keys := make([]string, 0, len(bindings)*2)
	for _, b := range bindings {
		h := b.Help()
		keys = append(keys, h.Key, h.Desc)
	}

	return RenderHelp(keys...)
}
