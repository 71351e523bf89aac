package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the agenda.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Show canceled and completed reservations too
	ToggleAll key.Binding

	// Reservation actions
	Book     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Complete key.Binding
	Delete   key.Binding

	// Run the completion sweep now
	Sweep key.Binding

	// Open the notification inbox
	Inbox key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "show/hide finished"),
		),
		Book: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new booking"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel"),
		),
		Complete: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "complete"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete"),
		),
		Sweep: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sweep elapsed"),
		),
		Inbox: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "notifications"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Book, k.Confirm,
		k.Cancel, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Command, k.Help, k.Refresh, k.ToggleAll, k.Inbox},
		{k.Book, k.Confirm, k.Cancel, k.Complete, k.Delete, k.Sweep},
	}
}
