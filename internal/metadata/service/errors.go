package service

import (
	"errors"

	dErrors "dicomviewer/pkg/domain-errors"
)

// Kind is the closed set of extraction failures.
type Kind string

const (
	KindInvalidPath                  Kind = "invalid_path"
	KindSourceNotFound               Kind = "source_not_found"
	KindSourceUnavailable            Kind = "source_unavailable"
	KindUnsupportedOrCorruptDocument Kind = "unsupported_or_corrupt_document"
)

// Error is returned by Extract. Err holds the collaborator failure that
// caused it, for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code maps the kind onto the shared domain error codes.
func (e *Error) Code() dErrors.Code {
	switch e.Kind {
	case KindInvalidPath:
		return dErrors.CodeInvalidPath
	case KindSourceNotFound:
		return dErrors.CodeSourceNotFound
	case KindSourceUnavailable:
		return dErrors.CodeSourceUnavailable
	case KindUnsupportedOrCorruptDocument:
		return dErrors.CodeUnsupportedOrCorruptDoc
	default:
		return dErrors.CodeInternal
	}
}

// KindOf returns the extraction failure kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}
