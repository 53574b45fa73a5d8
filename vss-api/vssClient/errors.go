package vssClient

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned by the constructor before any
	// network I/O happens.
	ErrMissingCredentials = errors.New("vss api key and secret are required")

	// ErrNotFound maps HTTP 404: the device or session is unknown to VSS.
	// For a device this usually means it has not powered on in range yet.
	ErrNotFound = errors.New("not found")

	// ErrAuth maps HTTP 401/403.
	ErrAuth = errors.New("api credentials rejected")

	// ErrFieldsRejected means a session PUT got a 2xx but the follow-up GET
	// came back with empty backend fields. VSS accepts unknown field-name
	// casings without complaint and then ignores them, so a 204 alone is
	// not proof the url was stored.
	ErrFieldsRejected = errors.New("session stored with empty backend fields")
)

// StatusError carries any non-2xx response not covered by a sentinel above.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("vss api: %s %s: HTTP %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("vss api: %s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Body)
}
