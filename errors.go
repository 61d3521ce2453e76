package ats

import (
	"errors"
	"fmt"
)

// Error is an ATS error code. Every error returned by this package matches
// exactly one code under errors.Is.
type Error int

// Error codes.
const (
	ErrNone              Error = 0
	ErrTruncatedFile     Error = 1
	ErrMalformedHeader   Error = 2
	ErrUnsupportedFormat Error = 3
	ErrNonMonotonicTime  Error = 4
	ErrMalformedFrame    Error = 5
	ErrInvalidParameter  Error = 6
	ErrInvalidOffset     Error = 7
	ErrNilBuffer         Error = 8
	ErrNilEngine         Error = 9
	ErrNoDocument        Error = 10
	ErrUnknownHandle     Error = 11
)

var errMessages = [12]string{
	"No error",
	"File is truncated",
	"Malformed header",
	"Unsupported file format",
	"Frame times are not strictly increasing",
	"Malformed frame value",
	"Invalid parameter",
	"Offset out of range",
	"Nil input buffer",
	"Nil engine",
	"No document loaded",
	"Unknown document handle",
}

// Error implements the error interface.
func (e Error) Error() string {
	if e >= 0 && int(e) < len(errMessages) {
		return errMessages[e]
	}
	return "unknown error"
}

// Code returns the error code carried by err, ErrNone for a nil error, or
// -1 when err carries no code.
func Code(err error) Error {
	if err == nil {
		return ErrNone
	}
	var code Error
	if errors.As(err, &code) {
		return code
	}
	return -1
}

// DecodeError describes where decoding stopped.
type DecodeError struct {
	Code   Error
	Offset int    // byte offset of the failing record
	Frame  int    // frame index, -1 for the header
	Field  string // failing field name, if known
	Err    error  // underlying cause, may be nil
}

func (e *DecodeError) Error() string {
	where := "header"
	if e.Frame >= 0 {
		where = fmt.Sprintf("frame %d", e.Frame)
	}
	msg := fmt.Sprintf("ats: %s at %s (offset %d)", e.Code.Error(), where, e.Offset)
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns both the code and the cause, so errors.Is matches either.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Err}
}

// paramError reports a rejected parameter value.
func paramError(name string, value float64) error {
	return fmt.Errorf("ats: %s = %g: %w", name, value, ErrInvalidParameter)
}
