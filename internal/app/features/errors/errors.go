package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// HTTPError is an error that knows which status it should be rendered with.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// New builds an HTTPError. An empty msg falls back to the status text.
func New(status int, msg string) *HTTPError {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: msg}
}

// ValidationError is a 400 carrying the user-facing violation messages.
func ValidationError(msg string) *HTTPError {
	return New(http.StatusBadRequest, msg)
}

// TooLarge is a 413 for request bodies over the accepted size.
func TooLarge(msg string) *HTTPError {
	return New(http.StatusRequestEntityTooLarge, msg)
}

// StatusOf returns the status err should render with: the HTTPError's
// status when err wraps one, otherwise 500.
func StatusOf(err error) int {
	var he *HTTPError
	if stderrors.As(err, &he) && he.Status != 0 {
		return he.Status
	}
	return http.StatusInternalServerError
}
