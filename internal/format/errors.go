package format

import (
	"errors"
	"fmt"
)

// Header errors.
var (
	// ErrBadMagic indicates the first field is not 123 in either byte order.
	ErrBadMagic = errors.New("format: magic number does not match")

	// ErrUnsupportedType indicates a type code outside 1-4.
	ErrUnsupportedType = errors.New("format: unsupported file type")

	// ErrHeaderField indicates a header value that is non-finite or out of range.
	ErrHeaderField = errors.New("format: invalid header field")
)

// Frame errors.
var (
	// ErrFrameValue indicates a non-finite or negative value in a frame record.
	ErrFrameValue = errors.New("format: invalid frame value")

	// ErrTimeOrder indicates a frame time not strictly after the previous one.
	ErrTimeOrder = errors.New("format: frame time not increasing")

	// ErrNoFrames indicates the frame table is empty.
	ErrNoFrames = errors.New("format: no frames")
)

// FieldError reports which field failed validation.
type FieldError struct {
	Field string
	Value float64
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s = %g", e.Err, e.Field, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
