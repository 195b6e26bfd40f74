package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the console.
type KeyMap struct {
	OpenBrowser key.Binding
	CopyURL     key.Binding
	Status      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns a KeyMap with default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		OpenBrowser: key.NewBinding(
			key.WithKeys("o", "enter"),
			key.WithHelp("o/enter", "open console in browser"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("y", "c"),
			key.WithHelp("y", "copy console URL"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle service status"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "shut down and quit"),
		),
	}
}

// FullHelp returns bindings for the main help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.OpenBrowser, k.CopyURL, k.Status},
		{k.Help, k.Quit},
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.OpenBrowser, k.Status, k.Help, k.Quit}
}
