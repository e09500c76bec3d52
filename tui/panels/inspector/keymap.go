package inspector

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the parameter inspector.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Increase  key.Binding
	Decrease  key.Binding
	BigStep   key.Binding
	Component key.Binding
	Filter    key.Binding
	Accept    key.Binding
	Cancel    key.Binding
}

// DefaultKeyMap is the default set of keybindings.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Increase: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "increase"),
	),
	Decrease: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "decrease"),
	),
	BigStep: key.NewBinding(
		key.WithKeys("shift+right", "shift+left", "L", "H"),
		key.WithHelp("shift+←/→", "step x10"),
	),
	Component: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next component"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter operators"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select operator"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// ShortHelp returns keybindings to be shown in the compact help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Increase, k.Decrease, k.Filter}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Increase, k.Decrease},
		{k.BigStep, k.Component, k.Filter, k.Accept, k.Cancel},
	}
}
