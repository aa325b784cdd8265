package domain

import (
	"errors"
	"strings"
)

// Common domain errors
var (
	ErrStampWrite     = errors.New("failed to write stamp")
	ErrRangeRejected  = errors.New("range request not satisfied")
	ErrNoHistoryStore = errors.New("fetch history store not configured")
)

// Transport operation names, used verbatim in failure log lines.
const (
	OpDownloadHeaders = "download headers of"
	OpDownload        = "download"
)

// TransportError reports a failed network exchange. Detail carries the
// transport's human-readable last-error buffer when it was non-empty;
// otherwise Err supplies a more generic description of the failure.
type TransportError struct {
	Op     string // OpDownloadHeaders or OpDownload
	URL    string
	Detail string
	Err    error
}

// NewTransportError creates a transport error for the given operation.
func NewTransportError(op, url, detail string, err error) *TransportError {
	return &TransportError{Op: op, URL: url, Detail: detail, Err: err}
}

// reason picks the detail buffer when non-empty, falling back to the
// generic error description.
func (e *TransportError) reason() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "transport error"
}

// Message formats the failure as a single log line, terminated by exactly
// one newline. The detail buffer may or may not carry its own trailing
// newline; generic descriptions never do.
func (e *TransportError) Message() string {
	msg := "Failed to " + e.Op + " " + e.URL + ": " + e.reason()
	if strings.HasSuffix(msg, "\n") {
		return msg
	}
	return msg + "\n"
}

// Error returns the failure message without the trailing newline.
func (e *TransportError) Error() string {
	return strings.TrimSuffix(e.Message(), "\n")
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport returns true if the error originated in the transport
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsTransport extracts the transport error from an error chain, if any.
func AsTransport(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
