package timertui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Reset      key.Binding
	Work       key.Binding
	ShortBreak key.Binding
	LongBreak  key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "start/stop")),
		Reset:      key.NewBinding(key.WithKeys("s", "r"), key.WithHelp("s", "reset")),
		Work:       key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "focus")),
		ShortBreak: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "short break")),
		LongBreak:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "long break")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset},
		{k.Work, k.ShortBreak, k.LongBreak},
		{k.Help, k.Quit},
	}
}
