package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Home      key.Binding
	Help      key.Binding
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Down      key.Binding
	Up        key.Binding
	PageDown  key.Binding
	PageUp    key.Binding
	Open      key.Binding
	WebSearch key.Binding
	Query     key.Binding
	Retry     key.Binding
	Submit    key.Binding
	Cancel    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Home:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "faq")),
		Tab1:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "tech")),
		Tab2:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "nvidia")),
		Tab3:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "custom")),
		NextTab:   key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next tab")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev tab")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "move")),
		Up:        key.NewBinding(key.WithKeys("k", "up")),
		PageDown:  key.NewBinding(key.WithKeys("J", "pgdown"), key.WithHelp("J/K", "scroll preview")),
		PageUp:    key.NewBinding(key.WithKeys("K", "pgup")),
		Open:      key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open")),
		WebSearch: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "search web")),
		Query:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "custom query")),
		Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// hints renders bindings as a compact "key desc" line.
func hints(bindings ...key.Binding) string {
	var out string
	for i, b := range bindings {
		h := b.Help()
		if i > 0 {
			out += "  "
		}
		out += h.Key + " " + h.Desc
	}
	return out
}
