package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Drag      key.Binding
	Drop      key.Binding
	Cancel    key.Binding
	Bulk      key.Binding
	History   key.Binding
	Search    key.Binding
	Refresh   key.Binding
	Export    key.Binding
	Messaging key.Binding
	StartDate key.Binding
	Quit      key.Binding

	Yes key.Binding
	No  key.Binding

	Register key.Binding

	NextField  key.Binding
	PrevOption key.Binding
	NextOption key.Binding

	FocusNext  key.Binding
	PrevFilter key.Binding
	NextFilter key.Binding
	PrevDate   key.Binding
	NextDate   key.Binding
	Mark       key.Binding
	Move       key.Binding
	MoveAll    key.Binding
	Query      key.Binding
	Send       key.Binding
	Deliveries key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "card")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "card")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Drag:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Drop:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Bulk:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "bulk action")),
		History:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "history")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Export:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export column")),
		Messaging: key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "messaging")),
		StartDate: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "start date")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Yes: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "yes")),
		No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),

		Register: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "register attendance")),

		NextField:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevOption: key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous")),
		NextOption: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next")),

		FocusNext:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		PrevFilter: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "process")),
		NextFilter: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "process")),
		PrevDate:   key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "date")),
		NextDate:   key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "date")),
		Mark:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
		Move:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "move marked")),
		MoveAll:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "move all")),
		Query:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter list")),
		Send:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "send")),
		Deliveries: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "task detail")),
	}
}

func helpLine(bs ...key.Binding) string {
	out := ""
	for i, b := range bs {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
