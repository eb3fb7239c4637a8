package gateway

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// dniPattern is what the quick-search treats as an exact document number.
var dniPattern = regexp.MustCompile(`^\d{8,10}$`)

// LooksLikeDNI reports whether a search text should trigger an attendance
// lookup rather than a plain board filter.
func LooksLikeDNI(s string) bool { return dniPattern.MatchString(strings.TrimSpace(s)) }

// Attendance is the quick-search lookup result.
type Attendance struct {
	Found     bool   `json:"candidato_encontrado"`
	Checked   bool   `json:"asistencia_registrada"`
	ProcessID ID     `json:"proceso_id"`
	DNI       string `json:"dni"`
}

// NeedsCheckIn reports whether the candidate can have attendance registered
// now: known, enrolled in a process, not registered yet today.
func (a Attendance) NeedsCheckIn() bool {
	return a.Found && !a.Checked && a.ProcessID != ""
}

// CheckAttendance looks a candidate up by DNI for the quick-search panel.
func (c *Client) CheckAttendance(ctx context.Context, dni string) (Attendance, error) {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return Attendance{}, &ValidationError{Msg: "DNI is required"}
	}
	var out struct {
		envelope
		Attendance
	}
	resp, err := c.get(ctx, c.endpoint(c.paths.AttendanceCheck, url.Values{"dni": {dni}}, nil), &out)
	if err != nil {
		return Attendance{}, err
	}
	if err := out.envelope.check(resp); err != nil {
		return Attendance{}, err
	}
	if out.DNI == "" {
		out.DNI = dni
	}
	return out.Attendance, nil
}

// RegisterAttendance records today's next attendance movement (entry, then
// exit) for a process. phase is the stage code the candidate is attending
// under. The reply is {success, message}; success false is an application
// error whatever the HTTP status.
func (c *Client) RegisterAttendance(ctx context.Context, processID, phase string) (Result, error) {
	processID = strings.TrimSpace(processID)
	phase = strings.TrimSpace(phase)
	if processID == "" || phase == "" {
		return Result{}, &ValidationError{Msg: "process ID and phase are required"}
	}

	form := url.Values{}
	form.Set(FieldProcessID, processID)
	form.Set("fase_actual", phase)

	log := c.log.WithFields(logrus.Fields{"process_id": processID, "phase": phase})
	resp, err := c.do(ctx, http.MethodPost, c.endpoint(c.paths.AttendanceRegister, nil, nil),
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return Result{}, err
	}

	var reply struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := decode(resp, &reply); err != nil {
		log.WithError(err).Warn("attendance registration failed")
		return Result{}, err
	}
	if !reply.Success {
		err := &ApplicationError{Msg: reply.Message, Status: resp.status}
		if err.Msg == "" {
			err.Msg = "Attendance was not registered."
		}
		log.WithError(err).Warn("attendance registration rejected")
		return Result{}, err
	}
	if !resp.ok() {
		return Result{}, &TransportError{Kind: KindStatus, Status: resp.status, Msg: reply.Message}
	}
	log.Info("attendance registered")
	return Result{Message: reply.Message, Reload: true, ProcessID: ID(processID)}, nil
}

// HistoryCandidate is the header of a history reply.
type HistoryCandidate struct {
	DNI         string `json:"dni"`
	Name        string `json:"nombre"`
	MasterStage string `json:"estado_maestro"`
}

// HistoryProcess is one hiring process a candidate went through. The
// attendance, document, comment and test fields are only filled for the
// active process.
type HistoryProcess struct {
	ID             ID     `json:"proceso_id"`
	StartDate      string `json:"fecha_inicio"`
	Status         string `json:"estado_proceso"`
	Company        string `json:"empresa_proceso"`
	Site           string `json:"sede_proceso"`
	Supervisor     string `json:"supervisor_nombre"`
	Outcome        string `json:"resultado_final"`
	Active         bool   `json:"es_activo"`
	LastAttendance string `json:"ultima_momento,omitempty"`
	Documents      string `json:"documentacion,omitempty"`
	Comments       int    `json:"num_comentarios,omitempty"`
	Tests          int    `json:"num_tests,omitempty"`
}

// History is a candidate's process history, newest first.
type History struct {
	Candidate HistoryCandidate `json:"candidato_info"`
	Processes []HistoryProcess `json:"procesos"`
}

// Active returns the process currently participating on the board.
func (h History) Active() (HistoryProcess, bool) {
	for _, p := range h.Processes {
		if p.Active {
			return p, true
		}
	}
	return HistoryProcess{}, false
}

// History fetches the process history of one candidate.
func (c *Client) History(ctx context.Context, dni string) (History, error) {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return History{}, &ValidationError{Msg: "DNI is required"}
	}
	var out struct {
		envelope
		History
	}
	resp, err := c.get(ctx, c.endpoint(c.paths.History, nil, map[string]string{"dni": dni}), &out)
	if err != nil {
		return History{}, err
	}
	if err := out.envelope.check(resp); err != nil {
		return History{}, err
	}
	return out.History, nil
}
