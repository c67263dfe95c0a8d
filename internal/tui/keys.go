package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the interactive loop's bindings. It satisfies help.KeyMap
// so the footer legend renders from the same definitions that drive Update.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Start     key.Binding
	ClearSel  key.Binding
	SwitchSel key.Binding
	Copy      key.Binding
	Quit      key.Binding
}

// InputKeys is the binding set used by the attachment list.
var InputKeys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "queue"),
	),
	Start: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "download"),
	),
	ClearSel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "deselect"),
	),
	SwitchSel: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "selection on/off"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy path"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Start, k.Copy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Start},
		{k.ClearSel, k.SwitchSel, k.Copy, k.Quit},
	}
}
