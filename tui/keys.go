package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Solve  key.Binding
	Cancel key.Binding
	New    key.Binding
	More   key.Binding
	Fewer  key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Solve:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "solve")),
		Cancel: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new game")),
		More:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more disks")),
		Fewer:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "fewer disks")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Solve, k.Cancel, k.New, k.More, k.Fewer, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Solve, k.Cancel}, {k.New, k.More, k.Fewer}, {k.Quit}}
}
