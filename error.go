package harvest

import (
	"errors"
	"fmt"
)

// Error codes map domain errors to machine-readable classes.
const (
	EBUDGET   = "budget"    // run cost ceiling reached
	EFETCH    = "fetch"     // network failure, non-2xx status, or blocked response
	EINTERNAL = "internal"  // unexpected internal error
	EINVALID  = "invalid"   // invalid input (the only fatal class)
	EMODEL    = "model"     // model call failed or returned garbage
	ENOTFOUND = "not_found" // entity does not exist
	EPARSE    = "parse"     // document could not be parsed
	ETIMEOUT  = "timeout"   // operation exceeded its deadline
)

// Error represents a domain error. Application code inspects errors via
// ErrorCode and ErrorMessage rather than unwrapping the concrete type.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description safe to surface to users.
	Message string

	// Status carries the HTTP status for EFETCH errors, when a response
	// was received. Zero means the request never completed.
	Status int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("harvest error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode returns the code of the root error, if available.
// Returns EINTERNAL for non-domain errors and an empty string for nil.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the root error,
// if available. Returns a generic message for non-domain errors and an
// empty string for nil.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorStatus returns the HTTP status attached to the root error, or zero.
func ErrorStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Errorf constructs an Error with formatting.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// FetchErrorf constructs an EFETCH Error carrying the HTTP status.
func FetchErrorf(status int, format string, args ...any) *Error {
	e := Errorf(EFETCH, format, args...)
	e.Status = status
	return e
}
