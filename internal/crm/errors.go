package crm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned when the endpoint for an operation has no URL.
var ErrNotConfigured = errors.New("crm endpoint not configured")

// Operation names used in errors and logs.
const (
	OpLogin            = "login"
	OpListStaff        = "list_staff"
	OpAddStaff         = "add_staff"
	OpEditStaff        = "edit_staff"
	OpDeleteStaff      = "delete_staff"
	OpFetchIncidents   = "fetch_incidents"
	OpFetchIncident    = "fetch_incident"
	OpUpdateIncident   = "update_incident"
	OpDeleteIncident   = "delete_incident"
	OpSubmitIncident   = "submit_incident"
	OpConfirmIncident  = "confirm_incident"
	OpRetrieveMessages = "retrieve_messages"
	OpPostMessage      = "post_message"
)

// Error wraps any failure of a CRM call. StatusCode is zero when no HTTP
// response was received.
type Error struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("crm %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("crm %s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("crm %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("crm %s failed", e.Op)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var crmErr *Error
	if errors.As(err, &crmErr) {
		return crmErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether the CRM answered 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func notFound(op string) error {
	return &Error{Op: op, StatusCode: http.StatusNotFound}
}

func badRequest(op string, err error) error {
	return &Error{Op: op, StatusCode: http.StatusBadRequest, Err: err}
}
