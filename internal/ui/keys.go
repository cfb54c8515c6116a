package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the content-view bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Open     key.Binding
	Back     key.Binding
	Forward  key.Binding
	Stop     key.Binding
	Reload   key.Binding
	GoTo     key.Binding
	Search   key.Binding
	Save     key.Binding
	Pager    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d", " "), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "bottom")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:     key.NewBinding(key.WithKeys("left", "h", "backspace"), key.WithHelp("←/h", "back")),
		Forward:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "forward")),
		Stop:     key.NewBinding(key.WithKeys("esc", "x"), key.WithHelp("esc/x", "stop")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		GoTo:     key.NewBinding(key.WithKeys("g", "ctrl+l"), key.WithHelp("g", "address bar")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Pager:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in pager")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Forward, k.GoTo, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Open, k.Back, k.Forward, k.Stop, k.Reload},
		{k.GoTo, k.Search, k.Save, k.Pager, k.Help, k.Quit},
	}
}
