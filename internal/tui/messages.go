package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"jobmate/recruiting-board/internal/export"
	"jobmate/recruiting-board/internal/gateway"
	"jobmate/recruiting-board/internal/kanban"
	"jobmate/recruiting-board/internal/pipeline"
)

// BoardSource loads the read model.
type BoardSource interface {
	LoadBoard(ctx context.Context, q kanban.BoardQuery) (*kanban.Board, error)
	Supervisors(ctx context.Context) ([]kanban.Supervisor, error)
	StartDates(ctx context.Context) ([]time.Time, error)
}

// Backend is the part of the recruiting backend the panels use.
type Backend interface {
	CheckAttendance(ctx context.Context, dni string) (gateway.Attendance, error)
	RegisterAttendance(ctx context.Context, processID, phase string) (gateway.Result, error)
	History(ctx context.Context, dni string) (gateway.History, error)
	MessagingDates(ctx context.Context, filter gateway.ProcessFilter) ([]string, error)
	MessagingContacts(ctx context.Context, filter gateway.ProcessFilter, date string) ([]gateway.Contact, error)
	SendMessages(ctx context.Context, req gateway.SendRequest) (gateway.SendResult, error)
	MessagingTasks(ctx context.Context) ([]gateway.Task, error)
	TaskDeliveries(ctx context.Context, taskID string) ([]gateway.TaskDelivery, error)
}

// Messages other goroutines send into the program.

// RefreshRequested reloads the board keeping the selection.
type RefreshRequested struct{}

// RemoteMove reports a move committed on another board.
type RemoteMove struct{ Event kanban.MoveEvent }

// TasksLoaded delivers the messaging send history.
type TasksLoaded struct {
	Tasks []gateway.Task
	Err   error
}

type boardMsg struct {
	board   *kanban.Board
	discard bool
	err     error
}

type supervisorsMsg struct {
	list []kanban.Supervisor
	err  error
}

type startDatesMsg struct {
	dates []time.Time
	err   error
}

type submittedMsg struct {
	res gateway.Result
	err error
}

type attendanceMsg struct {
	query string
	att   gateway.Attendance
	err   error
}

type registeredMsg struct {
	processID string
	res       gateway.Result
	err       error
}

type historyMsg struct {
	dni string
	h   gateway.History
	err error
}

type datesMsg struct {
	filter gateway.ProcessFilter
	dates  []string
	err    error
}

type contactsMsg struct {
	filter   gateway.ProcessFilter
	date     string
	contacts []gateway.Contact
	err      error
}

type sentMsg struct {
	res gateway.SendResult
	err error
}

type deliveriesMsg struct {
	task gateway.Task
	list []gateway.TaskDelivery
	err  error
}

type exportedMsg struct {
	path string
	err  error
}

type clearNoticeMsg struct{ id int }

const noticeTTL = 4 * time.Second

func (a *App) loadBoard(discard bool) tea.Cmd {
	q := kanban.BoardQuery{}
	if a.dateIdx >= 0 && a.dateIdx < len(a.startDates) {
		d := a.startDates[a.dateIdx]
		q.StartDate = &d
	}
	return func() tea.Msg {
		b, err := a.source.LoadBoard(a.ctx, q)
		return boardMsg{board: b, discard: discard, err: err}
	}
}

func (a *App) loadSupervisors() tea.Cmd {
	return func() tea.Msg {
		list, err := a.source.Supervisors(a.ctx)
		return supervisorsMsg{list: list, err: err}
	}
}

func (a *App) loadStartDates() tea.Cmd {
	return func() tea.Msg {
		dates, err := a.source.StartDates(a.ctx)
		return startDatesMsg{dates: dates, err: err}
	}
}

func (a *App) execute(s gateway.Submission) tea.Cmd {
	return func() tea.Msg {
		res, err := a.coord.Execute(a.ctx, s)
		return submittedMsg{res: res, err: err}
	}
}

func (a *App) checkAttendance(query string) tea.Cmd {
	return func() tea.Msg {
		att, err := a.backend.CheckAttendance(a.ctx, query)
		return attendanceMsg{query: query, att: att, err: err}
	}
}

func (a *App) registerAttendance(processID, phase string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.backend.RegisterAttendance(a.ctx, processID, phase)
		return registeredMsg{processID: processID, res: res, err: err}
	}
}

func (a *App) loadHistory(dni string) tea.Cmd {
	return func() tea.Msg {
		h, err := a.backend.History(a.ctx, dni)
		return historyMsg{dni: dni, h: h, err: err}
	}
}

func (a *App) loadDates(f gateway.ProcessFilter) tea.Cmd {
	return func() tea.Msg {
		dates, err := a.backend.MessagingDates(a.ctx, f)
		return datesMsg{filter: f, dates: dates, err: err}
	}
}

func (a *App) loadContacts(f gateway.ProcessFilter, date string) tea.Cmd {
	return func() tea.Msg {
		cs, err := a.backend.MessagingContacts(a.ctx, f, date)
		return contactsMsg{filter: f, date: date, contacts: cs, err: err}
	}
}

func (a *App) send(req gateway.SendRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := a.backend.SendMessages(a.ctx, req)
		return sentMsg{res: res, err: err}
	}
}

func (a *App) loadTasks() tea.Cmd {
	return func() tea.Msg {
		tasks, err := a.backend.MessagingTasks(a.ctx)
		return TasksLoaded{Tasks: tasks, Err: err}
	}
}

func (a *App) loadDeliveries(t gateway.Task) tea.Cmd {
	return func() tea.Msg {
		list, err := a.backend.TaskDeliveries(a.ctx, t.ID.String())
		return deliveriesMsg{task: t, list: list, err: err}
	}
}

func (a *App) exportColumn(st pipeline.Stage) tea.Cmd {
	b, dir, now := a.coord.Board(), a.exportDir, a.now()
	return func() tea.Msg {
		path, err := export.WriteFile(dir, b, st, now)
		return exportedMsg{path: path, err: err}
	}
}
