package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up           key.Binding
	down         key.Binding
	esc          key.Binding
	quit         key.Binding
	reset        key.Binding
	sync         key.Binding
	probe        key.Binding
	acceptServer key.Binding
	acceptClient key.Binding
	copy         key.Binding
}

var keys = keyMap{
	up:           key.NewBinding(key.WithKeys("up", "k")),
	down:         key.NewBinding(key.WithKeys("down", "j")),
	esc:          key.NewBinding(key.WithKeys("esc", "enter")),
	quit:         key.NewBinding(key.WithKeys("q", "ctrl+c")),
	reset:        key.NewBinding(key.WithKeys("r")),
	sync:         key.NewBinding(key.WithKeys("s")),
	probe:        key.NewBinding(key.WithKeys("p")),
	acceptServer: key.NewBinding(key.WithKeys("a")),
	acceptClient: key.NewBinding(key.WithKeys("c")),
	copy:         key.NewBinding(key.WithKeys("y")),
}
