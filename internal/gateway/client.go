// Package gateway is the HTTP client for the recruiting backend. Every call
// carries the session cookie, the CSRF token and the AJAX marker header the
// backend's session-authenticated views expect.
package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20

	headerCSRF      = "X-CSRFToken"
	headerAjax      = "X-Requested-With"
	headerRequestID = "X-Request-ID"
	ajaxMarker      = "XMLHttpRequest"

	csrfCookie    = "csrftoken"
	sessionCookie = "sessionid"
)

// Paths are the backend endpoints, relative to the base URL. History,
// AssignSupervisor and TaskDetail are templates: "{dni}" and "{id}" are
// substituted.
type Paths struct {
	Update             string
	BulkUpdate         string
	AssignSupervisor   string
	AttendanceCheck    string
	AttendanceRegister string
	History            string
	Messaging          string
	MessagingSend      string
	MessagingTasks     string
	TaskDetail         string
}

// DefaultPaths mirrors the backend's URL configuration.
func DefaultPaths() Paths {
	return Paths{
		Update:             "/candidatos/candidato/update-status/",
		BulkUpdate:         "/candidatos/candidato/update-status-multiple/",
		AssignSupervisor:   "/candidatos/proceso/asignar_supervisor/{id}/",
		AttendanceCheck:    "/candidatos/api/asistencia-check/",
		AttendanceRegister: "/candidatos/api/asistencia/registrar/",
		History:            "/candidatos/api/history/{dni}/",
		Messaging:          "/candidatos/api/mensajeria/",
		MessagingSend:      "/candidatos/mensajeria/iniciar-envio/",
		MessagingTasks:     "/candidatos/api/mensajeria/historial/",
		TaskDetail:         "/candidatos/api/mensajeria/tarea/{id}/",
	}
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	CSRFToken string
	// SessionID is the backend session cookie value.
	SessionID string
	Paths     Paths
	// Timeout bounds every request; zero means the default.
	Timeout time.Duration
	Logger  logrus.FieldLogger
	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// Client talks to the recruiting backend.
type Client struct {
	base  *url.URL
	paths Paths
	csrf  string
	http  *http.Client
	log   logrus.FieldLogger
}

// New validates opts and returns a ready client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "cookie jar")
		}
		hc.Jar = jar
	}
	var cookies []*http.Cookie
	if opts.CSRFToken != "" {
		cookies = append(cookies, &http.Cookie{Name: csrfCookie, Value: opts.CSRFToken, Path: "/"})
	}
	if opts.SessionID != "" {
		cookies = append(cookies, &http.Cookie{Name: sessionCookie, Value: opts.SessionID, Path: "/"})
	}
	if len(cookies) > 0 {
		hc.Jar.SetCookies(base, cookies)
	}

	paths := opts.Paths
	if paths == (Paths{}) {
		paths = DefaultPaths()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{
		base:  base,
		paths: paths,
		csrf:  opts.CSRFToken,
		http:  hc,
		log:   log.WithField("component", "gateway"),
	}, nil
}

// ─── Plumbing ────────────────────────────────────────────────────────────────

// endpoint resolves a configured path, substituting template values.
func (c *Client) endpoint(path string, query url.Values, vars map[string]string) string {
	for k, v := range vars {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// response is a fully read HTTP reply.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

// do sends one request with the backend's required headers and reads the
// whole body. A nil error means a response arrived, whatever its status.
func (c *Client) do(ctx context.Context, method, target string, body io.Reader, contentType string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return response{}, errors.Wrap(err, "build request")
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAjax, ajaxMarker)
	req.Header.Set(headerRequestID, reqID)
	if c.csrf != "" {
		req.Header.Set(headerCSRF, c.csrf)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log := c.log.WithFields(logrus.Fields{"method": method, "url": target, "request_id": reqID})
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return response{}, &TransportError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.WithError(err).Warn("reading response body failed")
		return response{}, &TransportError{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}
	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(started).String(),
	}).Debug("request done")
	return response{status: resp.StatusCode, body: raw}, nil
}

// get issues a GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, target string, out any) (response, error) {
	resp, err := c.do(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return resp, err
	}
	return resp, decode(resp, out)
}

// decode unmarshals the body. Non-JSON is a decode failure on a 2xx and a
// status failure otherwise (an HTML error page, typically).
func decode(resp response, out any) error {
	if err := json.Unmarshal(resp.body, out); err != nil {
		if !resp.ok() {
			return &TransportError{Kind: KindStatus, Status: resp.status}
		}
		return &TransportError{Kind: KindDecode, Status: resp.status, Err: err}
	}
	return nil
}

// envelope is the {status, message} shape shared by most endpoints.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// check maps a decoded envelope onto the error taxonomy. A JSON body with
// status "error" is an application error whatever the HTTP status; any other
// non-2xx is a transport failure.
func (e envelope) check(resp response) error {
	if e.Status == "error" {
		return &ApplicationError{Msg: e.Message, Status: resp.status}
	}
	if !resp.ok() {
		return &TransportError{Kind: KindStatus, Status: resp.status, Msg: e.Message}
	}
	if e.Status != "" && e.Status != "success" {
		return &TransportError{
			Kind:   KindDecode,
			Status: resp.status,
			Err:    errors.Errorf("unexpected status %q", e.Status),
		}
	}
	return nil
}

// ID is an identifier the backend renders either as a JSON number or a
// string (and null when absent).
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*id = ID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Wrap(err, "id")
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
