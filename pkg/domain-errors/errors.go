// Package domainerrors defines the error envelope shared by services and the
// HTTP boundary. Services return *Error values (optionally wrapping an
// underlying cause) and transport code translates the Code into a status.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, client-facing error identifier.
type Code string

const (
	CodeBadRequest  Code = "bad_request"
	CodeValidation  Code = "validation_error"
	CodeNotFound    Code = "not_found"
	CodeUnavailable Code = "unavailable"
	CodeInternal    Code = "internal_error"
	CodeRateLimited Code = "rate_limited"

	// Extraction failures surfaced to viewer clients.
	CodeInvalidPath             Code = "invalid_path"
	CodeSourceNotFound          Code = "source_not_found"
	CodeSourceUnavailable       Code = "source_unavailable"
	CodeUnsupportedOrCorruptDoc Code = "unsupported_or_corrupt_document"
)

// Error carries a Code, a human-readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is reports whether err is a domain error, returning it when it is.
func Is(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ToHTTPStatus maps a Code to the HTTP status used by the transport layer.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeInvalidPath:
		return http.StatusBadRequest
	case CodeNotFound, CodeSourceNotFound:
		return http.StatusNotFound
	case CodeUnsupportedOrCorruptDoc:
		return http.StatusUnprocessableEntity
	case CodeSourceUnavailable:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
