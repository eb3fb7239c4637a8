// Package tui hosts the board in a terminal. Key presses become board
// events for the kanban coordinator; network work runs as tea.Cmds and
// comes back as messages, so all state changes happen on the Update loop.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"jobmate/recruiting-board/internal/gateway"
	"jobmate/recruiting-board/internal/kanban"
	"jobmate/recruiting-board/internal/modal"
	"jobmate/recruiting-board/internal/pipeline"
)

type mode string

const (
	modeBoard      mode = "board"
	modeBulkMenu   mode = "bulkMenu"
	modeConfirm    mode = "confirm"
	modeForm       mode = "form"
	modeSearch     mode = "search"
	modeHistory    mode = "history"
	modeAttendance mode = "attendance"
	modeMessaging  mode = "messaging"
)

type noticeLevel int

const (
	levelInfo noticeLevel = iota
	levelWarn
	levelError
)

type notice struct {
	id    int
	text  string
	level noticeLevel
}

// Deps are the collaborators the App drives.
type Deps struct {
	Coordinator *kanban.Coordinator
	Source      BoardSource
	Backend     Backend
	ExportDir   string
	Logger      logrus.FieldLogger
	// Now defaults to time.Now.
	Now func() time.Time
}

// App is the bubbletea model of the board.
type App struct {
	ctx       context.Context
	coord     *kanban.Coordinator
	source    BoardSource
	backend   Backend
	exportDir string
	log       logrus.FieldLogger
	now       func() time.Time
	keys      keyMap

	mode   mode
	width  int
	height int

	col    int
	row    int
	query  string
	search textinput.Model

	indicator string
	loading   bool
	notice    *notice
	noticeSeq int

	bulkCursor  int
	supervisors []kanban.Supervisor
	startDates  []time.Time
	// dateIdx indexes startDates; -1 shows every start date.
	dateIdx int

	form      *formView
	history   *historyView
	attend    *attendanceView
	messaging *messagingView
	tasks     []gateway.Task
}

// New builds the App. The coordinator's selection reports every change back
// so the bulk menu closes when the selection empties.
func New(ctx context.Context, d Deps) *App {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	search := textinput.New()
	search.Placeholder = "DNI or name"
	search.Prompt = "/ "

	a := &App{
		ctx:       ctx,
		coord:     d.Coordinator,
		source:    d.Source,
		backend:   d.Backend,
		exportDir: d.ExportDir,
		log:       d.Logger.WithField("component", "tui"),
		now:       d.Now,
		keys:      defaultKeys(),
		mode:      modeBoard,
		search:    search,
		loading:   true,
		dateIdx:   -1,
	}
	a.coord.Selection().OnChange(a.selectionChanged)
	return a
}

func (a *App) selectionChanged(c kanban.Change) {
	if c.Emptied() && a.mode == modeBulkMenu {
		a.mode = modeBoard
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadBoard(true), a.loadSupervisors(), a.loadStartDates())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil

	case tea.KeyMsg:
		if key.Matches(m, a.keys.Quit) && m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(m)

	case boardMsg:
		a.loading = false
		if m.err != nil {
			a.log.WithError(m.err).Error("board load failed")
			return a, a.flash(levelError, "Could not load the board: "+m.err.Error())
		}
		a.coord.SetBoard(m.board, m.discard)
		a.clampCursor()
		return a, nil

	case supervisorsMsg:
		if m.err != nil {
			a.log.WithError(m.err).Warn("supervisors load failed")
			return a, nil
		}
		a.supervisors = m.list
		return a, nil

	case startDatesMsg:
		if m.err != nil {
			a.log.WithError(m.err).Warn("start dates load failed")
			return a, nil
		}
		a.startDates = m.dates
		if a.dateIdx >= len(a.startDates) {
			a.dateIdx = -1
		}
		return a, nil

	case RefreshRequested:
		if a.coord.Busy() {
			return a, nil
		}
		return a, a.loadBoard(false)

	case RemoteMove:
		return a, tea.Batch(
			a.loadBoard(false),
			a.flash(levelInfo, fmt.Sprintf("%d candidate(s) moved to %s elsewhere", len(m.Event.DNIs), stageLabel(m.Event.To))),
		)

	case TasksLoaded:
		if m.Err != nil {
			a.log.WithError(m.Err).Warn("messaging tasks load failed")
			return a, nil
		}
		a.tasks = m.Tasks
		return a, nil

	case submittedMsg:
		return a.submitted(m)

	case attendanceMsg:
		return a.attendanceResult(m)

	case registeredMsg:
		return a.attendanceRegistered(m)

	case historyMsg:
		if m.err != nil {
			return a, a.flash(levelError, gateway.Notice(m.err))
		}
		a.history = &historyView{dni: m.dni, h: m.h}
		a.mode = modeHistory
		return a, nil

	case datesMsg, contactsMsg, sentMsg, deliveriesMsg:
		return a.messagingResult(m)

	case exportedMsg:
		if m.err != nil {
			return a, a.flash(levelError, "Export failed: "+m.err.Error())
		}
		return a, a.flash(levelInfo, "Exported to "+m.path)

	case clearNoticeMsg:
		if a.notice != nil && a.notice.id == m.id {
			a.notice = nil
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.mode {
	case modeBulkMenu:
		return a.bulkMenuKey(m)
	case modeConfirm:
		return a.confirmKey(m)
	case modeForm:
		return a.formKey(m)
	case modeSearch:
		return a.searchKey(m)
	case modeHistory:
		if key.Matches(m, a.keys.Cancel) || key.Matches(m, a.keys.Drop) {
			a.mode = modeBoard
			a.history = nil
		}
		return a, nil
	case modeAttendance:
		return a.attendanceKey(m)
	case modeMessaging:
		return a.messagingKey(m)
	}
	return a.boardKey(m)
}

func (a *App) boardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	_, dragging := a.coord.Drag().Active()

	switch {
	case key.Matches(m, k.Quit):
		return a, tea.Quit
	case key.Matches(m, k.Left):
		if a.col > 0 {
			a.col--
			a.clampCursor()
		}
	case key.Matches(m, k.Right):
		if a.col < len(pipeline.BoardStages())-1 {
			a.col++
			a.clampCursor()
		}
	case key.Matches(m, k.Up):
		if a.row > 0 {
			a.row--
		}
	case key.Matches(m, k.Down):
		if a.row < len(a.visibleColumn())-1 {
			a.row++
		}
	case key.Matches(m, k.Toggle):
		if c, ok := a.current(); ok {
			a.coord.Handle(kanban.CardToggled{Card: c})
		}
	case key.Matches(m, k.Drag):
		if dragging {
			return a, nil
		}
		if c, ok := a.current(); ok {
			out := a.coord.Handle(kanban.DragStarted{Card: c})
			a.indicator = out.Indicator
			if a.indicator == "" {
				a.indicator = "Moving " + c.Name
			}
		}
	case key.Matches(m, k.Drop):
		if !dragging {
			return a, nil
		}
		a.indicator = ""
		out := a.coord.Handle(kanban.Dropped{ColumnID: a.currentStage().ColumnID()})
		return a, a.perform(out.Action)
	case key.Matches(m, k.Cancel):
		if dragging {
			a.coord.Handle(kanban.DragCancelled{})
			a.indicator = ""
			return a, nil
		}
		a.coord.Selection().Clear()
	case key.Matches(m, k.Bulk):
		if a.coord.Selection().Len() == 0 {
			return a, a.flash(levelWarn, kanban.MsgEmptySelection)
		}
		a.bulkCursor = 0
		a.mode = modeBulkMenu
	case key.Matches(m, k.History):
		if c, ok := a.current(); ok {
			return a, a.loadHistory(c.DNI)
		}
	case key.Matches(m, k.Search):
		a.search.SetValue(a.query)
		a.search.CursorEnd()
		a.mode = modeSearch
		return a, a.search.Focus()
	case key.Matches(m, k.Refresh):
		a.loading = true
		return a, a.loadBoard(false)
	case key.Matches(m, k.Export):
		return a, a.exportColumn(a.currentStage())
	case key.Matches(m, k.Messaging):
		return a, a.openMessaging()
	case key.Matches(m, k.StartDate):
		return a, a.cycleStartDate()
	}
	return a, nil
}

// cycleStartDate narrows the board to the next process start date, wrapping
// back to every date after the last one.
func (a *App) cycleStartDate() tea.Cmd {
	if len(a.startDates) == 0 {
		return a.flash(levelWarn, "No process start dates to filter by.")
	}
	a.dateIdx++
	if a.dateIdx >= len(a.startDates) {
		a.dateIdx = -1
	}
	a.loading = true
	return a.loadBoard(false)
}

// perform carries out what the router decided.
func (a *App) perform(act kanban.Action) tea.Cmd {
	switch act.Kind {
	case kanban.KindReject:
		if act.Message == "" {
			return nil
		}
		return a.flash(levelWarn, act.Message)
	case kanban.KindSubmit:
		return a.execute(act.Submission)
	case kanban.KindConfirm:
		a.mode = modeConfirm
		return nil
	case kanban.KindModal:
		ctx := modal.Context{Supervisors: a.supervisors, Today: a.now()}
		if act.Count() == 1 {
			if c, ok := a.coord.Board().Locate(act.Request.Subjects[0].DNI); ok {
				ctx.Name = c.Name
			}
		}
		f, err := modal.Open(act, ctx)
		if err != nil {
			return a.flash(levelWarn, err.Error())
		}
		a.form = newFormView(f)
		a.mode = modeForm
		return a.form.focus()
	}
	return nil
}

func (a *App) bulkMenuKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	targets := pipeline.All()
	switch {
	case key.Matches(m, a.keys.Up):
		if a.bulkCursor > 0 {
			a.bulkCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.bulkCursor < len(targets)-1 {
			a.bulkCursor++
		}
	case key.Matches(m, a.keys.Cancel):
		a.mode = modeBoard
	case key.Matches(m, a.keys.Drop):
		a.mode = modeBoard
		out := a.coord.Handle(kanban.BulkActionRequested{Target: targets[a.bulkCursor]})
		return a, a.perform(out.Action)
	}
	return a, nil
}

func (a *App) confirmKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Yes):
		a.mode = modeBoard
		if s, ok := a.coord.Confirm(true); ok {
			return a, a.execute(s)
		}
	case key.Matches(m, a.keys.No):
		a.mode = modeBoard
		a.coord.Confirm(false)
	}
	return a, nil
}

func (a *App) formKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.form
	switch {
	case key.Matches(m, a.keys.Cancel):
		f.form.Cancel()
		a.form = nil
		a.mode = modeBoard
		return a, nil
	case key.Matches(m, a.keys.Drop):
		if err := f.commit(); err != nil {
			return a, a.flash(levelWarn, err.Error())
		}
		s, err := f.form.Submit()
		if err != nil {
			return a, a.flash(levelWarn, err.Error())
		}
		return a, a.execute(s)
	}
	return a, f.update(m, a.keys)
}

func (a *App) searchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Cancel):
		a.search.Blur()
		a.mode = modeBoard
		return a, nil
	case key.Matches(m, a.keys.Drop):
		a.search.Blur()
		a.mode = modeBoard
		q := strings.TrimSpace(a.search.Value())
		if gateway.LooksLikeDNI(q) {
			return a, a.checkAttendance(q)
		}
		a.applyQuery(q)
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	return a, cmd
}

func (a *App) applyQuery(q string) {
	a.query = q
	a.row = 0
	a.clampCursor()
}

// attendanceResult opens the attendance prompt for a found candidate who
// has not checked in yet. The board is filtered by the search either way.
func (a *App) attendanceResult(m attendanceMsg) (tea.Model, tea.Cmd) {
	a.applyQuery(m.query)
	if m.err != nil {
		a.log.WithError(m.err).WithField("dni", m.query).Warn("attendance lookup failed")
		return a, nil
	}
	if m.att.NeedsCheckIn() {
		a.attend = &attendanceView{att: m.att}
		a.mode = modeAttendance
	}
	return a, nil
}

// attendanceKey registers the pending attendance on Register and closes
// the prompt on Cancel. A registration in flight ignores further keys.
func (a *App) attendanceKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.attend == nil {
		a.mode = modeBoard
		return a, nil
	}
	if a.attend.registering {
		return a, nil
	}
	switch {
	case key.Matches(m, a.keys.Cancel):
		a.attend = nil
		a.mode = modeBoard
	case key.Matches(m, a.keys.Register):
		a.attend.registering = true
		att := a.attend.att
		return a, a.registerAttendance(att.ProcessID.String(), a.attendancePhase(att.DNI))
	}
	return a, nil
}

// attendancePhase is the stage code the candidate is attending under: the
// column it sits in, or CALLED when the current board does not show it.
func (a *App) attendancePhase(dni string) string {
	if st, ok := a.coord.Board().StageOf(dni); ok {
		return st.Code()
	}
	return pipeline.StageCalled.Code()
}

func (a *App) attendanceRegistered(m registeredMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		a.log.WithError(m.err).WithField("process_id", m.processID).Warn("attendance registration failed")
		if a.attend != nil {
			a.attend.registering = false
		}
		return a, a.flash(levelError, gateway.Notice(m.err))
	}
	a.attend = nil
	if a.mode == modeAttendance {
		a.mode = modeBoard
	}
	text := m.res.Message
	if text == "" {
		text = "Attendance registered."
	}
	return a, tea.Batch(a.loadBoard(false), a.flash(levelInfo, text))
}

func (a *App) submitted(m submittedMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		if a.form != nil {
			a.form.form.Fail(m.err)
		}
		return a, a.flash(levelError, gateway.Notice(m.err))
	}
	if a.form != nil {
		a.form.form.Done()
		a.form = nil
		a.mode = modeBoard
	}
	text := m.res.Message
	if text == "" {
		text = "Update saved."
	}
	a.loading = true
	return a, tea.Batch(a.loadBoard(true), a.flash(levelInfo, text))
}

// flash shows text until it is replaced or noticeTTL passes.
func (a *App) flash(level noticeLevel, text string) tea.Cmd {
	a.noticeSeq++
	id := a.noticeSeq
	a.notice = &notice{id: id, text: text, level: level}
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{id: id} })
}

func (a *App) currentStage() pipeline.Stage {
	return pipeline.BoardStages()[a.col]
}

func (a *App) visibleBoard() *kanban.Board {
	return a.coord.Board().Filter(a.query)
}

func (a *App) visibleColumn() []kanban.Card {
	return a.visibleBoard().Column(a.currentStage())
}

func (a *App) current() (kanban.Card, bool) {
	col := a.visibleColumn()
	if a.row < 0 || a.row >= len(col) {
		return kanban.Card{}, false
	}
	return col[a.row], true
}

func (a *App) clampCursor() {
	n := len(a.visibleColumn())
	if a.row >= n {
		a.row = n - 1
	}
	if a.row < 0 {
		a.row = 0
	}
}

func stageLabel(code string) string {
	if st, err := pipeline.FromCode(code); err == nil {
		return st.Label()
	}
	return code
}
