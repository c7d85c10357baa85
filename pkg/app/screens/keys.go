package screens

import "github.com/charmbracelet/bubbles/key"

var (
	keyUp      = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	keyDown    = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	keyNext    = key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/n", "next page"))
	keyPrev    = key.NewBinding(key.WithKeys("left", "p", "b"), key.WithHelp("←/p", "prev page"))
	keyEnter   = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	keyEdit    = key.NewBinding(key.WithKeys("e", "/"), key.WithHelp("e", "edit"))
	keyEsc     = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	keySearch  = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "search"))
	keyOptions = key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "options"))
	keyHome    = key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home"))
	keyRefresh = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	keyQuit    = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
)
