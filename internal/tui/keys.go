// internal/tui/keys.go
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Recheck key.Binding
	Combos  key.Binding
	Close   key.Binding
	Copy    key.Binding
	Save    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Recheck: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recheck status")),
	Combos:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "combos")),
	Close:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy list")),
	Save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save list")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
