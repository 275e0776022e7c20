package editpost

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit  key.Binding
	Next    key.Binding
	Prev    key.Binding
	Diff    key.Binding
	Preview key.Binding
	Help    key.Binding
}

var keys = keyMap{
	Submit:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "update post")),
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
	Diff:    key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "content diff")),
	Preview: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "markdown preview")),
	Help:    key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "help")),
}

// escapeKey is the bus key the open modal listens on.
const escapeKey = "esc"
