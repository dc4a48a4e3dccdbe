package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Tab        key.Binding
	Enter      key.Binding
	Add        key.Binding
	Edit       key.Binding
	Tags       key.Binding
	Archive    key.Binding
	Brainstorm key.Binding
	ShowAll    key.Binding
	Help       key.Binding
	Quit       key.Binding
	Escape     key.Binding
	Refresh    key.Binding
}

var keys = keyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "list pane")),
	Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "detail pane")),
	Tab:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add idea")),
	Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
	Tags:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "edit tags")),
	Archive:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "archive/restore")),
	Brainstorm: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "brainstorm")),
	ShowAll:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "toggle archived")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Refresh:    key.NewBinding(key.WithKeys("R", "r"), key.WithHelp("R", "refresh/sync")),
}
