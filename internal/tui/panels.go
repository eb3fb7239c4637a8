package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"jobmate/recruiting-board/internal/gateway"
	"jobmate/recruiting-board/internal/messaging"
)

type historyView struct {
	dni string
	h   gateway.History
}

// attendanceView is the check-in prompt opened by an exact-DNI search.
type attendanceView struct {
	att         gateway.Attendance
	registering bool
}

type msgFocus int

const (
	focusAvailable msgFocus = iota
	focusChosen
	focusMessage
)

// messagingView is the bulk messaging panel.
type messagingView struct {
	filter   int
	dates    []string
	date     int
	transfer *messaging.Transfer
	focus    msgFocus
	cursor   [2]int
	message  textinput.Model
	query    textinput.Model
	querying bool
	sending  bool
	// task is the index into App.tasks shown with its deliveries.
	task       int
	deliveries *deliveriesMsg
}

func (v *messagingView) currentFilter() gateway.ProcessFilter {
	return gateway.ProcessFilters()[v.filter]
}

func (v *messagingView) currentDate() string {
	if v.date < 0 || v.date >= len(v.dates) {
		return ""
	}
	return v.dates[v.date]
}

func (v *messagingView) side() messaging.Side {
	if v.focus == focusChosen {
		return messaging.Chosen
	}
	return messaging.Available
}

func (a *App) openMessaging() tea.Cmd {
	msg := textinput.New()
	msg.Placeholder = "Message"
	msg.Prompt = "> "
	msg.CharLimit = 1000
	q := textinput.New()
	q.Prompt = "filter: "

	a.messaging = &messagingView{message: msg, query: q, date: -1, task: -1}
	a.mode = modeMessaging
	return tea.Batch(a.loadDates(a.messaging.currentFilter()), a.loadTasks())
}

func (a *App) messagingKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	v, k := a.messaging, a.keys

	if v.querying {
		switch {
		case key.Matches(m, k.Cancel), key.Matches(m, k.Drop):
			v.querying = false
			v.query.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		v.query, cmd = v.query.Update(m)
		if v.transfer != nil {
			v.transfer.SetQuery(v.side(), v.query.Value())
			v.cursor[v.side()] = 0
		}
		return a, cmd
	}

	switch {
	case key.Matches(m, k.Cancel):
		a.messaging = nil
		a.mode = modeBoard
		return a, nil
	case key.Matches(m, k.FocusNext):
		v.focus = (v.focus + 1) % 3
		if v.focus == focusMessage {
			return a, v.message.Focus()
		}
		v.message.Blur()
		return a, nil
	case key.Matches(m, k.Send):
		return a, a.sendMessages()
	}

	if v.focus == focusMessage {
		var cmd tea.Cmd
		v.message, cmd = v.message.Update(m)
		if v.transfer != nil {
			v.transfer.SetMessage(v.message.Value())
		}
		return a, cmd
	}

	switch {
	case key.Matches(m, k.PrevFilter), key.Matches(m, k.NextFilter):
		n := len(gateway.ProcessFilters())
		if key.Matches(m, k.PrevFilter) {
			v.filter = (v.filter + n - 1) % n
		} else {
			v.filter = (v.filter + 1) % n
		}
		v.dates, v.date, v.transfer = nil, -1, nil
		return a, a.loadDates(v.currentFilter())
	case key.Matches(m, k.PrevDate), key.Matches(m, k.NextDate):
		if len(v.dates) == 0 {
			return a, nil
		}
		if key.Matches(m, k.PrevDate) {
			v.date = (v.date + len(v.dates) - 1) % len(v.dates)
		} else {
			v.date = (v.date + 1) % len(v.dates)
		}
		v.transfer = nil
		return a, a.loadContacts(v.currentFilter(), v.currentDate())
	case key.Matches(m, k.Deliveries):
		if len(a.tasks) == 0 {
			return a, nil
		}
		v.task = (v.task + 1) % len(a.tasks)
		return a, a.loadDeliveries(a.tasks[v.task])
	}

	if v.transfer == nil {
		return a, nil
	}
	side := v.side()
	items := v.transfer.Items(side)
	switch {
	case key.Matches(m, k.Up):
		if v.cursor[side] > 0 {
			v.cursor[side]--
		}
	case key.Matches(m, k.Down):
		if v.cursor[side] < len(items)-1 {
			v.cursor[side]++
		}
	case key.Matches(m, k.Mark):
		if c := v.cursor[side]; c < len(items) {
			if !v.transfer.Mark(items[c].Contact.DNI) && items[c].Disabled {
				return a, a.flash(levelWarn, items[c].Tooltip)
			}
		}
	case key.Matches(m, k.Move):
		v.transfer.MoveMarked(side)
		v.clampCursors()
	case key.Matches(m, k.MoveAll):
		v.transfer.MoveAll(side)
		v.clampCursors()
	case key.Matches(m, k.Query):
		v.querying = true
		return a, v.query.Focus()
	}
	return a, nil
}

func (v *messagingView) clampCursors() {
	for _, s := range []messaging.Side{messaging.Available, messaging.Chosen} {
		if n := len(v.transfer.Items(s)); v.cursor[s] >= n {
			v.cursor[s] = max(n-1, 0)
		}
	}
}

func (a *App) sendMessages() tea.Cmd {
	v := a.messaging
	if v.transfer == nil || v.sending {
		return nil
	}
	req, err := v.transfer.Request()
	if err != nil {
		return a.flash(levelWarn, err.Error())
	}
	v.sending = true
	return a.send(req)
}

func (a *App) messagingResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	v := a.messaging
	if v == nil {
		return a, nil
	}
	switch m := msg.(type) {
	case datesMsg:
		if m.filter != v.currentFilter() {
			return a, nil
		}
		if m.err != nil {
			return a, a.flash(levelError, gateway.Notice(m.err))
		}
		v.dates = m.dates
		if len(v.dates) == 0 {
			v.date = -1
			return a, nil
		}
		v.date = 0
		return a, a.loadContacts(v.currentFilter(), v.currentDate())

	case contactsMsg:
		if m.filter != v.currentFilter() || m.date != v.currentDate() {
			return a, nil
		}
		if m.err != nil {
			return a, a.flash(levelError, gateway.Notice(m.err))
		}
		v.transfer = messaging.NewTransfer(m.filter, m.date, m.contacts)
		v.transfer.SetMessage(v.message.Value())
		v.cursor = [2]int{}
		return a, nil

	case deliveriesMsg:
		if m.err != nil {
			return a, a.flash(levelError, gateway.Notice(m.err))
		}
		v.deliveries = &m
		return a, nil

	case sentMsg:
		v.sending = false
		if m.err != nil {
			return a, a.flash(levelError, gateway.Notice(m.err))
		}
		text := m.res.Message
		if text == "" {
			text = "Messages queued."
		}
		v.message.SetValue("")
		return a, tea.Batch(
			a.flash(levelInfo, text),
			a.loadTasks(),
			a.loadContacts(v.currentFilter(), v.currentDate()),
		)
	}
	return a, nil
}
