package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Add       key.Binding
	Edit      key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Filter    key.Binding
	All       key.Binding
	Active    key.Binding
	Done      key.Binding
	Clear     key.Binding
	Grab      key.Binding
	MoveDown  key.Binding
	MoveUp    key.Binding
	Copy      key.Binding
	Logout    key.Binding
	Help      key.Binding
	Quit      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	DropAtEnd key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Toggle:    key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "done/undo")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle filter")),
		All:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		Active:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		Done:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "done")),
		Clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear completed")),
		Grab:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "grab to reorder")),
		MoveDown:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		MoveUp:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy active")),
		Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		DropAtEnd: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "drop at end")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Filter, k.Grab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Edit, k.Toggle, k.Delete},
		{k.Filter, k.All, k.Active, k.Done, k.Clear},
		{k.Grab, k.MoveDown, k.MoveUp, k.DropAtEnd},
		{k.Copy, k.Logout, k.Help, k.Quit},
	}
}

// dragKeys is the help shown while a task is held.
type dragKeys struct{ k keyMap }

func (d dragKeys) ShortHelp() []key.Binding {
	return []key.Binding{d.k.Up, d.k.Down, d.k.DropAtEnd, d.k.Confirm, d.k.Cancel}
}

func (d dragKeys) FullHelp() [][]key.Binding { return [][]key.Binding{d.ShortHelp()} }

// inputKeys is the help shown while typing.
type inputKeys struct{ k keyMap }

func (i inputKeys) ShortHelp() []key.Binding {
	return []key.Binding{i.k.Confirm, i.k.Cancel}
}

func (i inputKeys) FullHelp() [][]key.Binding { return [][]key.Binding{i.ShortHelp()} }
