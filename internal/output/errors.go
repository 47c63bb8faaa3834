package output

import (
	"errors"
	"fmt"
)

// Error is a structured error with code, message, and optional hint.
type Error struct {
	Code       string
	Message    string
	Hint       string
	HTTPStatus int
	Cause      error
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Hint)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

// Error constructors for common cases.

func ErrUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg}
}

func ErrUsageHint(msg, hint string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Hint: hint}
}

// ErrUnauthenticated is returned before any network attempt when there is
// no usable session.
func ErrUnauthenticated(msg string) *Error {
	return &Error{
		Code:    CodeUnauthenticated,
		Message: msg,
		Hint:    "Run: mp auth login",
	}
}

func ErrLoginFailed(msg string) *Error {
	return &Error{
		Code:    CodeLoginFailed,
		Message: msg,
		Hint:    "Check the server URL, username and password",
	}
}

func ErrLoginFailedStatus(status int) *Error {
	e := ErrLoginFailed(fmt.Sprintf("login failed: status %d", status))
	e.HTTPStatus = status
	return e
}

// ErrRequestFailed reports a response whose status was not 200.
func ErrRequestFailed(status int) *Error {
	return &Error{
		Code:       CodeRequestFailed,
		Message:    fmt.Sprintf("request failed: status %d", status),
		HTTPStatus: status,
	}
}

// ErrTransport reports a request that never produced a response.
func ErrTransport(cause error) *Error {
	return &Error{
		Code:    CodeRequestFailed,
		Message: fmt.Sprintf("request failed: %v", cause),
		Cause:   cause,
	}
}

// AsError attempts to convert an error to an *Error.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    CodeRequestFailed,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsCode reports whether err is an *Error carrying code.
func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
