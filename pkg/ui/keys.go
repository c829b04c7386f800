package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the dashboard bindings. Any key other than Quit skips the
// welcome screen.
type KeyMap struct {
	Quit         key.Binding
	Pause        key.Binding
	ClearSignals key.Binding
	ClearErrors  key.Binding
	Up           key.Binding
	Down         key.Binding
	Help         key.Binding
}

func bind(helpKey, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:         bind("q", "quit", "q", "ctrl+c"),
		Pause:        bind("p", "freeze signals", "p"),
		ClearSignals: bind("c", "clear signals", "c"),
		ClearErrors:  bind("e", "clear errors", "e"),
		Up:           bind("↑/k", "newer signals", "up", "k"),
		Down:         bind("↓/j", "older signals", "down", "j"),
		Help:         bind("?", "more keys", "?"),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Pause, k.ClearSignals, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Pause, k.ClearSignals, k.ClearErrors},
		{k.Up, k.Down, k.Help},
	}
}
