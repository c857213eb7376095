package display

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Inc    key.Binding
	Dec    key.Binding
	IncBig key.Binding
	DecBig key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "shift+tab"),
			key.WithHelp("↑/k", "previous field"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "tab"),
			key.WithHelp("↓/j", "next field"),
		),
		Inc: key.NewBinding(
			key.WithKeys("right", "l", "+"),
			key.WithHelp("→/+", "increase"),
		),
		Dec: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←/-", "decrease"),
		),
		IncBig: key.NewBinding(
			key.WithKeys("pgup", "L"),
			key.WithHelp("pgup", "increase a lot"),
		),
		DecBig: key.NewBinding(
			key.WithKeys("pgdown", "H"),
			key.WithHelp("pgdn", "decrease a lot"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Dec, k.Inc, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Dec, k.Inc, k.DecBig, k.IncBig},
		{k.Help, k.Quit},
	}
}
