package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobmate/recruiting-board/internal/kanban"
	"jobmate/recruiting-board/internal/messaging"
	"jobmate/recruiting-board/internal/pipeline"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	columnStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	activeColumn  = columnStyle.BorderForeground(lipgloss.Color("63"))
	dropColumn    = columnStyle.BorderForeground(lipgloss.Color("214"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	overlayStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2)
	noticeStyles  = map[noticeLevel]lipgloss.Style{
		levelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		levelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		levelError: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

const (
	defaultWidth  = 120
	defaultHeight = 30
)

func (a *App) View() string {
	var body string
	switch a.mode {
	case modeMessaging:
		body = a.renderMessaging()
	default:
		body = a.renderBoard()
	}

	switch a.mode {
	case modeBulkMenu:
		body += "\n" + a.renderBulkMenu()
	case modeConfirm:
		body += "\n" + a.renderConfirm()
	case modeForm:
		body += "\n" + a.renderForm()
	case modeSearch:
		body += "\n" + a.search.View()
	case modeHistory:
		body += "\n" + a.renderHistory()
	case modeAttendance:
		body += "\n" + a.renderAttendance()
	}
	return body + "\n" + a.renderStatus()
}

func (a *App) renderBoard() string {
	width, height := a.width, a.height
	if width == 0 {
		width = defaultWidth
	}
	if height == 0 {
		height = defaultHeight
	}
	stages := pipeline.BoardStages()
	colWidth := max(width/len(stages)-4, 16)
	maxCards := max((height-8)/2, 3)

	board := a.visibleBoard()
	payload, dragging := a.coord.Drag().Active()
	sel := a.coord.Selection()

	cols := make([]string, len(stages))
	for i, st := range stages {
		cards := board.Column(st)
		var b strings.Builder
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", st.Label(), len(cards))))
		b.WriteString("\n")

		start := 0
		if i == a.col && a.row >= maxCards {
			start = a.row - maxCards + 1
		}
		for j := start; j < len(cards) && j < start+maxCards; j++ {
			b.WriteString(a.renderCard(cards[j], colWidth, i == a.col && j == a.row, sel.Contains(cards[j].DNI), dragging && carries(payload, cards[j].DNI)))
			b.WriteString("\n")
		}
		if rest := len(cards) - start - maxCards; rest > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", rest)))
		}

		style := columnStyle
		switch {
		case i == a.col && dragging:
			style = dropColumn
		case i == a.col:
			style = activeColumn
		}
		cols[i] = style.Width(colWidth).Render(b.String())
	}

	title := titleStyle.Render("Recruiting pipeline")
	if a.loading {
		title += dimStyle.Render("  loading…")
	}
	if a.query != "" {
		title += dimStyle.Render(fmt.Sprintf("  filter: %q", a.query))
	}
	if a.dateIdx >= 0 && a.dateIdx < len(a.startDates) {
		title += dimStyle.Render("  start: " + a.startDates[a.dateIdx].Format("02/01/2006"))
	}
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func carries(p kanban.Payload, dni string) bool {
	for _, k := range p.Keys() {
		if k == dni {
			return true
		}
	}
	return false
}

func (a *App) renderCard(c kanban.Card, width int, cursor, selected, moving bool) string {
	mark := "[ ]"
	if selected {
		mark = "[x]"
	}
	name := truncate(c.Name, width-4)
	line := mark + " " + name
	detail := c.DNI
	if c.Company != "" {
		detail += " · " + c.Company
	}
	if c.StartDate != nil {
		detail += " · " + c.StartDate.Format("02/01")
	}
	detail = "    " + truncate(detail, width-4)

	switch {
	case moving:
		line = dimStyle.Render(line + " ⇢")
	case cursor:
		line = cursorStyle.Render(line)
	case selected:
		line = selectedStyle.Render(line)
	}
	return line + "\n" + dimStyle.Render(detail)
}

func (a *App) renderBulkMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Move %d selected candidate(s) to", a.coord.Selection().Len())))
	b.WriteString("\n")
	for i, st := range pipeline.All() {
		marker := "  "
		if i == a.bulkCursor {
			marker = "▶ "
		}
		b.WriteString(marker + st.Label() + "\n")
	}
	b.WriteString(dimStyle.Render(helpLine(a.keys.Up, a.keys.Down, a.keys.Drop, a.keys.Cancel)))
	return overlayStyle.Render(b.String())
}

func (a *App) renderConfirm() string {
	act, ok := a.coord.Pending()
	if !ok {
		return ""
	}
	return overlayStyle.Render(titleStyle.Render("Confirm") + "\n" + act.Message + "\n" +
		dimStyle.Render(helpLine(a.keys.Yes, a.keys.No)))
}

func (a *App) renderForm() string {
	v := a.form
	if v == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.form.Title()))
	b.WriteString("\n\n")
	for i, fd := range v.form.Fields() {
		marker := "  "
		if i == v.field {
			marker = "▶ "
		}
		b.WriteString(marker + fd.Label + ": ")
		if len(fd.Options) > 0 {
			val := dimStyle.Render("‹ choose ›")
			if c := v.choice[i]; c >= 0 {
				val = "‹ " + fd.Options[c].Label + " ›"
			}
			b.WriteString(val)
		} else {
			b.WriteString(v.inputs[i].View())
		}
		b.WriteString("\n")
	}
	switch {
	case v.form.Submitting():
		b.WriteString("\n" + dimStyle.Render("Submitting…"))
	case v.form.Err() != nil:
		b.WriteString("\n" + noticeStyles[levelError].Render(v.form.Err().Error()))
	}
	b.WriteString("\n" + dimStyle.Render(helpLine(a.keys.NextField, a.keys.PrevOption, a.keys.NextOption)+"  enter submit  esc cancel"))
	return overlayStyle.Render(b.String())
}

func (a *App) renderHistory() string {
	v := a.history
	if v == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("History of %s (%s)", v.h.Candidate.Name, v.dni)))
	b.WriteString("\n")
	if len(v.h.Processes) == 0 {
		b.WriteString(dimStyle.Render("No processes."))
	}
	for _, p := range v.h.Processes {
		line := fmt.Sprintf("%s  %-22s %-16s %s", p.StartDate, p.Status, p.Company, p.Supervisor)
		if p.Active {
			line = selectedStyle.Render(line + "  (active)")
		}
		b.WriteString(line + "\n")
		if p.Active && p.LastAttendance != "" {
			b.WriteString(dimStyle.Render("    last attendance: "+p.LastAttendance) + "\n")
		}
	}
	return overlayStyle.Render(b.String())
}

func (a *App) renderAttendance() string {
	if a.attend == nil {
		return ""
	}
	att := a.attend.att
	body := fmt.Sprintf("DNI %s has no attendance registered today.\nActive process: %s\nPhase: %s",
		att.DNI, att.ProcessID, stageLabel(a.attendancePhase(att.DNI)))
	foot := helpLine(a.keys.Register, a.keys.Cancel)
	if a.attend.registering {
		foot = "Registering…"
	}
	return overlayStyle.Render(titleStyle.Render("Attendance pending") + "\n" + body + "\n\n" + dimStyle.Render(foot))
}

func (a *App) renderMessaging() string {
	v := a.messaging
	if v == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Bulk messaging"))
	b.WriteString(fmt.Sprintf("\nProcess: %s   Date: %s\n\n", v.currentFilter().Label(), orDash(v.currentDate())))

	if v.transfer == nil {
		b.WriteString(dimStyle.Render("No contacts loaded.") + "\n")
	} else {
		left := a.renderList(v, messaging.Available, "Available")
		right := a.renderList(v, messaging.Chosen, "Chosen")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right) + "\n")
	}
	if v.querying {
		b.WriteString(v.query.View() + "\n")
	}
	b.WriteString(v.message.View() + "\n")
	if v.transfer != nil && v.transfer.CanSend() && !v.sending {
		b.WriteString(selectedStyle.Render("ready to send") + "\n")
	}

	if len(a.tasks) > 0 {
		b.WriteString("\n" + headerStyle.Render("Recent tasks") + "\n")
		for i, t := range a.tasks {
			if i == 5 {
				break
			}
			b.WriteString(fmt.Sprintf("%s  %-22s %d/%d  %s\n", t.SentAt, t.ProcessLabel, t.Delivered, t.Total, t.StatusLabel))
		}
	}
	if d := v.deliveries; d != nil {
		b.WriteString("\n" + headerStyle.Render(fmt.Sprintf("Task %s · %s", d.task.ID, d.task.SentAt)) + "\n")
		for _, r := range d.list {
			b.WriteString(fmt.Sprintf("%-10s %-28s %-12s %s\n", r.DNI, truncate(r.Name, 28), r.Status, r.Time))
		}
	}
	b.WriteString(dimStyle.Render(helpLine(a.keys.FocusNext, a.keys.PrevFilter, a.keys.PrevDate, a.keys.Mark, a.keys.Move, a.keys.MoveAll, a.keys.Query, a.keys.Send, a.keys.Deliveries, a.keys.Cancel)))
	return b.String()
}

func (a *App) renderList(v *messagingView, side messaging.Side, title string) string {
	style := columnStyle
	if (side == messaging.Chosen) == (v.focus == focusChosen) && v.focus != focusMessage {
		style = activeColumn
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", title, v.transfer.Len(side))) + "\n")
	for i, it := range v.transfer.Items(side) {
		mark := "[ ]"
		if it.Marked {
			mark = "[x]"
		}
		line := mark + " " + truncate(it.Display, 44)
		switch {
		case it.Disabled:
			line = dimStyle.Render(line + "  " + it.Tooltip)
		case i == v.cursor[side] && v.side() == side && v.focus != focusMessage:
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return style.Width(60).Render(b.String())
}

func (a *App) renderStatus() string {
	var parts []string
	if n := a.coord.Selection().Len(); n > 0 {
		parts = append(parts, selectedStyle.Render(fmt.Sprintf("%d selected · %s", n, helpLine(a.keys.Bulk))))
	}
	if a.indicator != "" {
		parts = append(parts, noticeStyles[levelWarn].Render(a.indicator))
	}
	if a.coord.Busy() {
		parts = append(parts, dimStyle.Render("saving…"))
	}
	if a.notice != nil {
		parts = append(parts, noticeStyles[a.notice.level].Render(a.notice.text))
	}
	if a.mode == modeBoard {
		parts = append(parts, dimStyle.Render(helpLine(a.keys.Toggle, a.keys.Drag, a.keys.Search, a.keys.History, a.keys.Messaging, a.keys.StartDate, a.keys.Export, a.keys.Refresh, a.keys.Quit)))
	}
	return strings.Join(parts, "  │  ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
