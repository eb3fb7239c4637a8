package gateway

import (
	"fmt"

	"github.com/pkg/errors"
)

// ─── Error taxonomy ──────────────────────────────────────────────────────────

// ValidationError is a client-side rejection. No request was sent.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ApplicationError carries the backend's own message for a request it
// understood but refused ({"status":"error"} or {"success":false}).
type ApplicationError struct {
	Msg    string
	Status int
}

func (e *ApplicationError) Error() string { return e.Msg }

// TransportKind distinguishes the ways a request can fail below the
// application level.
type TransportKind int

const (
	// KindNetwork means no response was received at all.
	KindNetwork TransportKind = iota
	// KindStatus means the server answered with a non-2xx status.
	KindStatus
	// KindDecode means the body was not the JSON document expected.
	KindDecode
)

func (k TransportKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// TransportError wraps a failure to obtain a well-formed response.
type TransportError struct {
	Kind   TransportKind
	Status int
	// Msg is the server message when a non-2xx response still carried one.
	Msg string
	Err error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Msg != "" {
			return fmt.Sprintf("HTTP %d: %s", e.Status, e.Msg)
		}
		return fmt.Sprintf("HTTP %d", e.Status)
	case KindDecode:
		return fmt.Sprintf("malformed response (HTTP %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Cause lets errors.Cause walk through a TransportError.
func (e *TransportError) Cause() error { return e.Err }

// ErrEmptyDNIList is the message returned when a bulk update has no subjects.
const ErrEmptyDNIList = "DNI list is required"

// Notice turns any gateway error into the text shown to the recruiter.
// Connection failure, HTTP status and corrupt payload read differently so
// the user knows whether retrying makes sense.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *ValidationError
		ae *ApplicationError
		te *TransportError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.As(err, &ae):
		return ae.Msg
	case errors.As(err, &te):
		switch te.Kind {
		case KindNetwork:
			return "Could not reach the server. Check the connection and try again."
		case KindStatus:
			if te.Msg != "" {
				return fmt.Sprintf("Server error (HTTP %d): %s", te.Status, te.Msg)
			}
			return fmt.Sprintf("Server error (HTTP %d).", te.Status)
		case KindDecode:
			return fmt.Sprintf("The server sent an unreadable response (HTTP %d).", te.Status)
		}
	}
	return err.Error()
}
