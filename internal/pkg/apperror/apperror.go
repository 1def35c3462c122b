package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure with an HTTP-ish status attached. Services raise it
// before any write; transport layers map Status straight to the response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s: %s", http.StatusText(e.Status), e.Message)
}

// New builds an Error with an optional message.
func New(status int, message ...string) *Error {
	e := &Error{Status: status}
	if len(message) > 0 {
		e.Message = message[0]
	}
	return e
}

func NotFound(message ...string) *Error      { return New(http.StatusNotFound, message...) }
func Forbidden(message ...string) *Error     { return New(http.StatusForbidden, message...) }
func Conflict(message ...string) *Error      { return New(http.StatusConflict, message...) }
func BadRequest(message ...string) *Error    { return New(http.StatusBadRequest, message...) }
func Unauthorized(message ...string) *Error  { return New(http.StatusUnauthorized, message...) }
func Unprocessable(message ...string) *Error { return New(http.StatusUnprocessableEntity, message...) }

// Validation reports a payload shape violation with a field-level message.
func Validation(message string) *Error {
	return New(http.StatusUnprocessableEntity, message)
}

// StatusOf extracts the status code from err, falling back to 500 for
// anything that is not an *Error.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// IsStatus reports whether err is an *Error carrying the given status.
func IsStatus(err error, status int) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == status
}
