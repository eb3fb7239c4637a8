package gateway

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// ProcessFilter selects which population the messaging panel targets.
type ProcessFilter string

const (
	FilterRegistered ProcessFilter = "REGISTRADOS"
	FilterCalled     ProcessFilter = "CONVOCADOS"
	FilterConfirmed  ProcessFilter = "CONFIRMADOS"
	FilterTheory     ProcessFilter = "TEORIA"
	FilterPractice   ProcessFilter = "PRACTICA"
	FilterHired      ProcessFilter = "CONTRATADOS"
)

var filterLabels = map[ProcessFilter]string{
	FilterRegistered: "Registrados",
	FilterCalled:     "Convocados",
	FilterConfirmed:  "Confirmados",
	FilterTheory:     "Capacitación Teórica",
	FilterPractice:   "Capacitación Práctica",
	FilterHired:      "Contratados",
}

// ProcessFilters returns the filters in the order the panel offers them.
func ProcessFilters() []ProcessFilter {
	return []ProcessFilter{FilterRegistered, FilterCalled, FilterConfirmed, FilterTheory, FilterPractice, FilterHired}
}

// ParseProcessFilter validates a filter code.
func ParseProcessFilter(s string) (ProcessFilter, error) {
	f := ProcessFilter(s)
	if _, ok := filterLabels[f]; !ok {
		return "", fmt.Errorf("unknown process filter %q", s)
	}
	return f, nil
}

func (f ProcessFilter) Label() string {
	if l, ok := filterLabels[f]; ok {
		return l
	}
	return string(f)
}

// Contact is a messaging recipient. SentCount counts successful deliveries
// already made to this contact.
type Contact struct {
	PK        ID     `json:"pk"`
	DNI       string `json:"DNI"`
	Name      string `json:"nombres_completos"`
	Phone     string `json:"telefono_whatsapp"`
	SentCount int    `json:"conteo_envios_exitosos"`
}

// MessagingDates lists the dates with contacts for filter, newest first.
func (c *Client) MessagingDates(ctx context.Context, filter ProcessFilter) ([]string, error) {
	if _, err := ParseProcessFilter(string(filter)); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	q := url.Values{"accion": {"get_fechas"}, "proceso": {string(filter)}}
	var out struct {
		envelope
		Dates []string `json:"fechas"`
	}
	resp, err := c.get(ctx, c.endpoint(c.paths.Messaging, q, nil), &out)
	if err != nil {
		return nil, err
	}
	if err := out.envelope.check(resp); err != nil {
		return nil, err
	}
	return out.Dates, nil
}

// MessagingContacts lists the contacts for filter on date (YYYY-MM-DD).
func (c *Client) MessagingContacts(ctx context.Context, filter ProcessFilter, date string) ([]Contact, error) {
	if _, err := ParseProcessFilter(string(filter)); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if strings.TrimSpace(date) == "" {
		return nil, &ValidationError{Msg: "a date is required to list contacts"}
	}
	q := url.Values{"accion": {"get_contactos"}, "proceso": {string(filter)}, "fecha": {date}}
	var out struct {
		envelope
		Contacts []Contact `json:"contactos"`
	}
	resp, err := c.get(ctx, c.endpoint(c.paths.Messaging, q, nil), &out)
	if err != nil {
		return nil, err
	}
	if err := out.envelope.check(resp); err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

// SendRequest starts a bulk messaging task.
type SendRequest struct {
	Filter     ProcessFilter
	Date       string
	// ContactIDs are the chosen candidates' DNIs.
	ContactIDs []string
	Message    string
}

// SendResult acknowledges a queued messaging task.
type SendResult struct {
	Message string
	TaskID  ID
	JobID   string
}

// SendMessages queues a message for the chosen contacts. The backend replies
// {success, message, tarea_id?}.
func (c *Client) SendMessages(ctx context.Context, req SendRequest) (SendResult, error) {
	switch {
	case len(req.ContactIDs) == 0:
		return SendResult{}, &ValidationError{Msg: "select at least one contact"}
	case strings.TrimSpace(req.Message) == "":
		return SendResult{}, &ValidationError{Msg: "the message is empty"}
	case req.Filter == "" || req.Date == "":
		return SendResult{}, &ValidationError{Msg: "process and date filters are required"}
	}

	body, contentType, err := multipartBody(func(w *multipart.Writer) error {
		fields := [][2]string{
			{"mensaje_contenido", req.Message},
			{"proceso_filtro", string(req.Filter)},
			{"fecha_filtro", req.Date},
		}
		for _, id := range req.ContactIDs {
			fields = append(fields, [2]string{"candidatos_seleccionados[]", id})
		}
		for _, f := range fields {
			if err := w.WriteField(f[0], f[1]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SendResult{}, err
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint(c.paths.MessagingSend, nil, nil), body, contentType)
	if err != nil {
		return SendResult{}, err
	}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		TaskID  ID     `json:"tarea_id"`
		JobID   string `json:"task_id"`
	}
	if err := decode(resp, &out); err != nil {
		return SendResult{}, err
	}
	if !out.Success {
		if out.Message == "" && !resp.ok() {
			return SendResult{}, &TransportError{Kind: KindStatus, Status: resp.status}
		}
		return SendResult{}, &ApplicationError{Msg: out.Message, Status: resp.status}
	}
	c.log.WithFields(logrus.Fields{
		"task_id":    out.TaskID,
		"recipients": len(req.ContactIDs),
		"filter":     req.Filter,
	}).Info("messaging task queued")
	return SendResult{Message: out.Message, TaskID: out.TaskID, JobID: out.JobID}, nil
}

// Task is one entry of the messaging send history.
type Task struct {
	ID           ID      `json:"id"`
	Process      string  `json:"proceso"`
	ProcessLabel string  `json:"proceso_display"`
	OriginDate   string  `json:"fechaOrigen"`
	Delivered    int     `json:"enviados"`
	Total        int     `json:"total"`
	SuccessRate  float64 `json:"tasa_exito"`
	SentAt       string  `json:"fechaEnvio"`
	Status       string  `json:"estado"`
	StatusLabel  string  `json:"estado_display"`
}

// Done reports whether the task reached a final state.
func (t Task) Done() bool {
	switch t.Status {
	case "COMPLETADO", "FALLIDO":
		return true
	}
	return false
}

// MessagingTasks returns the send history, newest first.
func (c *Client) MessagingTasks(ctx context.Context) ([]Task, error) {
	var out struct {
		envelope
		Tasks []Task `json:"historialData"`
	}
	resp, err := c.get(ctx, c.endpoint(c.paths.MessagingTasks, nil, nil), &out)
	if err != nil {
		return nil, err
	}
	if err := out.envelope.check(resp); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// TaskDelivery is the per-recipient outcome of a messaging task.
type TaskDelivery struct {
	DNI        string `json:"dni"`
	Name       string `json:"nombre"`
	Phone      string `json:"telefono"`
	Status     string `json:"estado"`
	StatusCode string `json:"estado_codigo"`
	Time       string `json:"fecha_hora"`
}

// TaskDeliveries returns the recipients of one messaging task.
func (c *Client) TaskDeliveries(ctx context.Context, taskID string) ([]TaskDelivery, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, &ValidationError{Msg: "task id is required"}
	}
	var out struct {
		envelope
		Deliveries []TaskDelivery `json:"detalles"`
	}
	resp, err := c.get(ctx, c.endpoint(c.paths.TaskDetail, nil, map[string]string{"id": taskID}), &out)
	if err != nil {
		return nil, err
	}
	if err := out.envelope.check(resp); err != nil {
		return nil, err
	}
	return out.Deliveries, nil
}
