package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"jobmate/recruiting-board/internal/pipeline"
)

// Extra field names understood by the update endpoints.
const (
	FieldStartDate     = "fecha_inicio"
	FieldSupervisorID  = "supervisor_id"
	FieldProcessID     = "proceso_id"
	FieldDiscardReason = "motivo_descarte"
)

// Extra carries transition-specific fields collected by a gating form.
type Extra map[string]string

// keys returns the non-empty field names in a stable order.
func (e Extra) keys() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		if v != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Submission is a fully resolved stage change ready to be sent.
type Submission struct {
	DNIs []string
	// From is the column the cards left. It is not sent; the change feed
	// reports it.
	From  pipeline.Stage
	Stage pipeline.Stage
	Extra Extra
	// Bulk selects the multi-candidate endpoint even for a single DNI.
	Bulk bool
}

// Count is the number of candidates the submission touches.
func (s Submission) Count() int { return len(s.DNIs) }

// Result is a committed update. The board is never patched locally: Reload
// asks the caller to rebuild it from the backend.
type Result struct {
	Message   string
	Reload    bool
	ProcessID ID
}

type updateReply struct {
	envelope
	ProcessID ID     `json:"proceso_id"`
	NewStatus string `json:"new_status"`
}

// Submit sends s through the endpoint matching its cardinality. A single
// move carrying both a process and a supervisor goes to the supervisor
// assignment view, which is the one that records the supervisor.
func (c *Client) Submit(ctx context.Context, s Submission) (Result, error) {
	if s.Bulk {
		return c.UpdateMany(ctx, s.DNIs, s.Stage, s.Extra)
	}
	if len(s.DNIs) != 1 {
		return Result{}, &ValidationError{Msg: "exactly one DNI is required for an individual update"}
	}
	if pid, sup := s.Extra[FieldProcessID], s.Extra[FieldSupervisorID]; pid != "" && sup != "" {
		return c.AssignSupervisor(ctx, pid, sup)
	}
	return c.UpdateOne(ctx, s.DNIs[0], s.Stage, s.Extra)
}

// AssignSupervisor sets the supervisor of one process, which also moves its
// candidate to practice training. The view answers with a redirect to the
// dashboard rather than JSON, so any 2xx after redirects is a success unless
// the body is a JSON error envelope.
func (c *Client) AssignSupervisor(ctx context.Context, processID, supervisorID string) (Result, error) {
	processID = strings.TrimSpace(processID)
	supervisorID = strings.TrimSpace(supervisorID)
	if processID == "" {
		return Result{}, &ValidationError{Msg: "process ID is required"}
	}
	if supervisorID == "" {
		return Result{}, &ValidationError{Msg: "select a supervisor"}
	}

	form := url.Values{}
	form.Set(FieldSupervisorID, supervisorID)

	log := c.log.WithFields(logrus.Fields{"process_id": processID, "supervisor_id": supervisorID})
	target := c.endpoint(c.paths.AssignSupervisor, nil, map[string]string{"id": processID})
	resp, err := c.do(ctx, http.MethodPost, target,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return Result{}, err
	}

	var reply envelope
	if json.Unmarshal(resp.body, &reply) != nil {
		reply = envelope{}
	}
	if err := reply.check(resp); err != nil {
		log.WithError(err).Warn("supervisor assignment rejected")
		return Result{}, err
	}
	msg := reply.Message
	if msg == "" {
		msg = "Supervisor assigned."
	}
	log.Info("supervisor assigned")
	return Result{Message: msg, Reload: true, ProcessID: ID(processID)}, nil
}

// UpdateOne moves a single candidate. The body is form-encoded.
func (c *Client) UpdateOne(ctx context.Context, dni string, stage pipeline.Stage, extra Extra) (Result, error) {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return Result{}, &ValidationError{Msg: "DNI is required"}
	}
	if !stage.Valid() {
		return Result{}, &ValidationError{Msg: "unknown target stage " + stage.String()}
	}

	form := url.Values{}
	form.Set("dni", dni)
	form.Set("new_status", stage.Code())
	for _, k := range extra.keys() {
		form.Set(k, extra[k])
	}

	log := c.log.WithFields(logrus.Fields{"dni": dni, "stage": stage.Code()})
	resp, err := c.do(ctx, http.MethodPost, c.endpoint(c.paths.Update, nil, nil),
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return Result{}, err
	}

	var reply updateReply
	if err := decode(resp, &reply); err != nil {
		log.WithError(err).Warn("update rejected")
		return Result{}, err
	}
	if err := reply.check(resp); err != nil {
		log.WithError(err).Warn("update rejected")
		return Result{}, err
	}
	log.Info("candidate moved")
	return Result{Message: reply.Message, Reload: true, ProcessID: reply.ProcessID}, nil
}

// UpdateMany moves every DNI to stage in one request. The body is multipart
// with one dnis[] part per candidate. Any non-2xx reply is a hard failure.
func (c *Client) UpdateMany(ctx context.Context, dnis []string, stage pipeline.Stage, extra Extra) (Result, error) {
	clean := make([]string, 0, len(dnis))
	for _, d := range dnis {
		if d = strings.TrimSpace(d); d != "" {
			clean = append(clean, d)
		}
	}
	if len(clean) == 0 {
		return Result{}, &ValidationError{Msg: ErrEmptyDNIList}
	}
	if !stage.Valid() {
		return Result{}, &ValidationError{Msg: "unknown target stage " + stage.String()}
	}

	body, contentType, err := multipartBody(func(w *multipart.Writer) error {
		for _, d := range clean {
			if err := w.WriteField("dnis[]", d); err != nil {
				return err
			}
		}
		if err := w.WriteField("new_status", stage.Code()); err != nil {
			return err
		}
		for _, k := range extra.keys() {
			if err := w.WriteField(k, extra[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log := c.log.WithFields(logrus.Fields{"count": len(clean), "stage": stage.Code()})
	resp, err := c.do(ctx, http.MethodPost, c.endpoint(c.paths.BulkUpdate, nil, nil), body, contentType)
	if err != nil {
		return Result{}, err
	}

	var reply envelope
	decodeErr := decode(resp, &reply)
	if !resp.ok() {
		err := &TransportError{Kind: KindStatus, Status: resp.status, Msg: reply.Message}
		log.WithError(err).Warn("bulk update failed")
		return Result{}, err
	}
	if decodeErr != nil {
		log.WithError(decodeErr).Warn("bulk update failed")
		return Result{}, decodeErr
	}
	if err := reply.check(resp); err != nil {
		log.WithError(err).Warn("bulk update rejected")
		return Result{}, err
	}
	log.Info("candidates moved")
	return Result{Message: reply.Message, Reload: true}, nil
}

// multipartBody renders a multipart form through fill.
func multipartBody(fill func(*multipart.Writer) error) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := fill(w); err != nil {
		return nil, "", errors.Wrap(err, "write multipart field")
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart body")
	}
	return buf, w.FormDataContentType(), nil
}
