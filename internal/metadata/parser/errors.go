package parser

import (
	"errors"
	"fmt"
)

// Kind classifies fatal parse failures.
type Kind string

const (
	// KindNotThisFormat means the bytes do not carry the DICM signature.
	KindNotThisFormat Kind = "not_this_format"
	// KindMalformed means the element stream cannot be walked any further.
	KindMalformed Kind = "malformed"
)

// Error is returned for fatal parse failures. Offset is the byte position at
// which the problem was detected (within the inflated stream for deflated
// documents).
type Error struct {
	Kind   Kind
	Offset int
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("dicom %s at offset %d: %s", e.Kind, e.Offset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the parse failure kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

func malformed(offset int, format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
