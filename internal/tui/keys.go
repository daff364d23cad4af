package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Submit   key.Binding
	Back     key.Binding
	Quit     key.Binding
	Register key.Binding

	Add      key.Binding
	Edit     key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Priority key.Binding
	Complete key.Binding
	Overdue  key.Binding
	SortBy   key.Binding
	Order    key.Binding
	Label    key.Binding
	Reset    key.Binding
	Refresh  key.Binding
	Labels   key.Binding
	Profile  key.Binding
	Logout   key.Binding
	Help     key.Binding

	screen screen
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit:   key.NewBinding(key.WithKeys("ctrl+s", "enter"), key.WithHelp("enter", "submit")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Register: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "register")),

		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle done")),
		Delete:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		Confirm:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Priority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "status")),
		Overdue:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overdue")),
		SortBy:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Order:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "order")),
		Label:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "label filter")),
		Reset:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset filters")),
		Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
		Labels:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "labels")),
		Profile:  key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "profile")),
		Logout:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "logout")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	switch k.screen {
	case screenTasks:
		return []key.Binding{k.Add, k.Edit, k.Toggle, k.Delete, k.Reset, k.Labels, k.Help}
	case screenLabels:
		return []key.Binding{k.Add, k.Edit, k.Delete, k.Back}
	case screenLogin:
		return []key.Binding{k.Next, k.Submit, k.Register, k.Quit}
	default:
		return []key.Binding{k.Next, k.Submit, k.Back, k.Quit}
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	if k.screen != screenTasks {
		return [][]key.Binding{k.ShortHelp()}
	}
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Edit, k.Toggle, k.Delete},
		{k.Priority, k.Complete, k.Overdue, k.SortBy, k.Order, k.Label, k.Reset},
		{k.Refresh, k.Labels, k.Profile, k.Logout, k.Quit},
	}
}
