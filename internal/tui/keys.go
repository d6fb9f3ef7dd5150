package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the calendar's key bindings outside of forms.
type KeyMap struct {
	PreviousDay key.Binding
	NextDay     key.Binding
	Today       key.Binding

	NextColumn     key.Binding
	PreviousColumn key.Binding
	Down           key.Binding
	Up             key.Binding

	AddChore    key.Binding
	AddUser     key.Binding
	EditChore   key.Binding
	EditUser    key.Binding
	DeleteChore key.Binding
	DeleteUser  key.Binding

	Chat key.Binding
	Quit key.Binding
}

// FormKeyMap is active while a modal form or the chat input has focus.
type FormKeyMap struct {
	NextField     key.Binding
	PreviousField key.Binding
	Submit        key.Binding
	Close         key.Binding
	// Option cycling on select fields.
	PreviousOption key.Binding
	NextOption     key.Binding
}

var DefaultKeyMap = KeyMap{
	PreviousDay: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "prev day"),
	),
	NextDay: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "next day"),
	),
	Today: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "today"),
	),
	NextColumn: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next column"),
	),
	PreviousColumn: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "prev column"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "next chore"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "prev chore"),
	),
	AddChore: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add chore"),
	),
	AddUser: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "add user"),
	),
	EditChore: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit chore"),
	),
	EditUser: key.NewBinding(
		key.WithKeys("E"),
		key.WithHelp("E", "edit user"),
	),
	DeleteChore: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete chore"),
	),
	DeleteUser: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "delete user"),
	),
	Chat: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "chat"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

var DefaultFormKeyMap = FormKeyMap{
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	PreviousField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-tab", "prev field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	PreviousOption: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "prev option"),
	),
	NextOption: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next option"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PreviousDay, k.NextDay, k.Today, k.AddChore, k.AddUser, k.Chat, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PreviousDay, k.NextDay, k.Today},
		{k.NextColumn, k.PreviousColumn, k.Down, k.Up},
		{k.AddChore, k.EditChore, k.DeleteChore},
		{k.AddUser, k.EditUser, k.DeleteUser},
		{k.Chat, k.Quit},
	}
}

func (k FormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Submit, k.Close}
}

func (k FormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.NextField, k.PreviousField, k.PreviousOption, k.NextOption, k.Submit, k.Close}}
}
