// Package modal holds the gating forms a transition may need before it can
// be sent: a start date for a call-up, a supervisor for practice training, a
// reason for a bulk withdrawal.
//
//	InitiateProcess       single  REGISTERED → CALLED              fecha_inicio
//	AssignSupervisor      single  THEORY → PRACTICE                proceso_id, supervisor_id
//	BulkConvocatoria      bulk    REGISTERED → CALLED              fecha_inicio
//	BulkAssignSupervisor  bulk    THEORY → PRACTICE                supervisor_id
//	BulkDiscard           bulk    any → WITHDRAWN                  motivo_descarte
//
// A form validates locally, then hands back a gateway.Submission. It never
// talks to the network itself.
package modal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"jobmate/recruiting-board/internal/gateway"
	"jobmate/recruiting-board/internal/kanban"
	"jobmate/recruiting-board/internal/pipeline"
)

// DateLayout is the wire format of fecha_inicio.
const DateLayout = "2006-01-02"

var (
	// ErrSubmitting is returned by Submit while a previous submission has not
	// come back yet.
	ErrSubmitting = errors.New("the form is already being submitted")
	// ErrClosed is returned by operations on a cancelled or finished form.
	ErrClosed = errors.New("the form is closed")
)

// Context is what the board knows when the form opens.
type Context struct {
	// Name of the candidate for single forms.
	Name        string
	Supervisors []kanban.Supervisor
	// Today pre-fills date fields. Zero leaves them empty.
	Today time.Time
}

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes an input the form collects.
type Field struct {
	Key     string
	Label   string
	Options []Option
}

// Form is one open gating form.
type Form struct {
	kind       kanban.Modal
	req        kanban.Request
	stage      pipeline.Stage
	processID  int
	title      string
	fields     []Field
	values     gateway.Extra
	known      map[string]bool
	submitting bool
	closed     bool
	err        error
}

// Open builds the form an Action asks for.
func Open(a kanban.Action, ctx Context) (*Form, error) {
	if a.Kind != kanban.KindModal {
		return nil, errors.Errorf("action %s does not open a form", a.Kind)
	}
	if a.Count() == 0 {
		return nil, &gateway.ValidationError{Msg: gateway.ErrEmptyDNIList}
	}

	f := &Form{kind: a.Modal, req: a.Request, values: gateway.Extra{}}
	date := Field{Key: gateway.FieldStartDate, Label: "Start date (YYYY-MM-DD)"}
	supervisor := Field{Key: gateway.FieldSupervisorID, Label: "Supervisor", Options: supervisorOptions(ctx.Supervisors)}

	switch a.Modal {
	case kanban.ModalInitiateProcess:
		f.stage = pipeline.StageCalled
		f.title = "Start process for " + nameOr(ctx.Name, a.Request.Subjects[0].DNI)
		f.fields = []Field{date}

	case kanban.ModalAssignSupervisor:
		pid, err := pipeline.ParseProcessID(a.Request.Subjects[0].ProcessID)
		if err != nil {
			return nil, &gateway.ValidationError{Msg: kanban.MsgMissingProcessID}
		}
		f.processID = pid
		f.stage = pipeline.StagePracticeTraining
		f.title = fmt.Sprintf("Assign supervisor to %s (process %d)", nameOr(ctx.Name, a.Request.Subjects[0].DNI), pid)
		f.fields = []Field{supervisor}

	case kanban.ModalBulkConvocatoria:
		f.stage = pipeline.StageCalled
		f.title = fmt.Sprintf("Call %d candidate(s)", a.Count())
		f.fields = []Field{date}

	case kanban.ModalBulkAssignSupervisor:
		f.stage = pipeline.StagePracticeTraining
		f.title = fmt.Sprintf("Assign a supervisor to %d candidate(s)", a.Count())
		f.fields = []Field{supervisor}

	case kanban.ModalBulkDiscard:
		f.stage = pipeline.StageWithdrawn
		f.title = fmt.Sprintf("Withdraw %d candidate(s)", a.Count())
		f.fields = []Field{{Key: gateway.FieldDiscardReason, Label: "Reason", Options: reasonOptions()}}

	default:
		return nil, errors.Errorf("unknown form %s", a.Modal)
	}

	f.known = make(map[string]bool, len(f.fields))
	for _, fd := range f.fields {
		f.known[fd.Key] = true
	}
	if f.known[gateway.FieldStartDate] && !ctx.Today.IsZero() {
		f.values[gateway.FieldStartDate] = ctx.Today.Format(DateLayout)
	}
	return f, nil
}

func (f *Form) Kind() kanban.Modal      { return f.kind }
func (f *Form) Title() string           { return f.title }
func (f *Form) Fields() []Field         { return f.fields }
func (f *Form) Request() kanban.Request { return f.req }
func (f *Form) Count() int              { return f.req.Count() }
func (f *Form) Submitting() bool        { return f.submitting }
func (f *Form) Closed() bool            { return f.closed }

// Err is the last validation or submission failure, shown inside the form.
func (f *Form) Err() error { return f.err }

// Value returns the current input for key.
func (f *Form) Value(key string) string { return f.values[key] }

// Set records an input. Inputs are validated on Submit.
func (f *Form) Set(key, value string) error {
	if f.closed {
		return ErrClosed
	}
	if !f.known[key] {
		return errors.Errorf("field %q is not part of this form", key)
	}
	f.values[key] = strings.TrimSpace(value)
	f.err = nil
	return nil
}

// Submit validates the inputs and returns the submission to send. The form
// stays locked until Fail or Done is called.
func (f *Form) Submit() (gateway.Submission, error) {
	if f.closed {
		return gateway.Submission{}, ErrClosed
	}
	if f.submitting {
		return gateway.Submission{}, ErrSubmitting
	}
	extra, err := f.validate()
	if err != nil {
		f.err = err
		return gateway.Submission{}, err
	}
	f.submitting = true
	f.err = nil
	return gateway.Submission{
		DNIs:  f.req.DNIs(),
		From:  f.req.From,
		Stage: f.stage,
		Extra: extra,
		Bulk:  f.req.Bulk,
	}, nil
}

func (f *Form) validate() (gateway.Extra, error) {
	extra := gateway.Extra{}
	for _, fd := range f.fields {
		v := f.values[fd.Key]
		switch fd.Key {
		case gateway.FieldStartDate:
			if v == "" {
				return nil, &gateway.ValidationError{Msg: "start date is required"}
			}
			if _, err := time.Parse(DateLayout, v); err != nil {
				return nil, &gateway.ValidationError{Msg: "start date must be YYYY-MM-DD"}
			}

		case gateway.FieldSupervisorID:
			id, err := strconv.Atoi(v)
			if err != nil || id <= 0 {
				return nil, &gateway.ValidationError{Msg: "select a supervisor"}
			}
			if len(fd.Options) > 0 && !hasOption(fd.Options, v) {
				return nil, &gateway.ValidationError{Msg: "unknown supervisor " + v}
			}

		case gateway.FieldDiscardReason:
			if _, err := pipeline.ParseDiscardReason(v); err != nil {
				return nil, &gateway.ValidationError{Msg: "select a discard reason"}
			}
		}
		extra[fd.Key] = v
	}
	if f.processID > 0 {
		extra[gateway.FieldProcessID] = strconv.Itoa(f.processID)
	}
	return extra, nil
}

// Fail re-enables the form after a rejected submission.
func (f *Form) Fail(err error) {
	f.submitting = false
	f.err = err
}

// Done closes the form after a committed submission.
func (f *Form) Done() {
	f.submitting = false
	f.closed = true
}

// Cancel closes the form without sending anything. Safe to call repeatedly.
func (f *Form) Cancel() {
	f.closed = true
	f.submitting = false
}

func supervisorOptions(svs []kanban.Supervisor) []Option {
	out := make([]Option, 0, len(svs))
	for _, s := range svs {
		out = append(out, Option{Value: strconv.Itoa(s.ID), Label: s.Name})
	}
	return out
}

func reasonOptions() []Option {
	reasons := pipeline.DiscardReasons()
	out := make([]Option, len(reasons))
	for i, r := range reasons {
		out[i] = Option{Value: string(r), Label: r.Label()}
	}
	return out
}

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func nameOr(name, dni string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return dni
}
