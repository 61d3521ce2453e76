// Package wire reads and writes the fixed-width numeric fields of ATS files.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// Reader errors.
var (
	// ErrTruncated indicates a read would run past the end of the buffer.
	ErrTruncated = errors.New("wire: read past end of buffer")

	// ErrInvalidOffset indicates a seek outside [0, len(buffer)].
	ErrInvalidOffset = errors.New("wire: offset out of range")
)

// Reader is a cursor over a byte buffer that decodes fixed-width fields
// in a declared byte order.
//
// A failed read leaves the cursor where it was. The buffer is never modified.
type Reader struct {
	buffer []byte           // Original buffer
	pos    int              // Next byte to read
	order  binary.ByteOrder // Field byte order
}

// NewReader creates a Reader over data using the given byte order.
// A nil order defaults to little-endian.
func NewReader(data []byte, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{
		buffer: data,
		order:  order,
	}
}

// Order returns the byte order fields are decoded with.
func (r *Reader) Order() binary.ByteOrder {
	return r.order
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the total buffer size in bytes.
func (r *Reader) Len() int {
	return len(r.buffer)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buffer) - r.pos
}

// Seek moves the cursor to an absolute offset.
// Seeking to len(buffer) is allowed and leaves nothing to read.
func (r *Reader) Seek(offset int) error {
	if offset < 0 || offset > len(r.buffer) {
		return ErrInvalidOffset
	}
	r.pos = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return ErrInvalidOffset
	}
	if n > r.Remaining() {
		return ErrTruncated
	}
	r.pos += n
	return nil
}

// take returns the next n bytes and advances the cursor.
func (r *Reader) take(n int) ([]byte, error) {
	if n > r.Remaining() {
		return nil, ErrTruncated
	}
	b := r.buffer[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU32 reads an unsigned 32-bit integer.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// ReadI32 reads a signed 32-bit integer.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadF32 reads an IEEE-754 single precision value.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64 reads an IEEE-754 double precision value.
// ATS files store every field as a double.
func (r *Reader) ReadF64() (float64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

// ReadF64s fills dst with consecutive doubles. On error the cursor is
// left at its starting position and dst contents are unspecified.
func (r *Reader) ReadF64s(dst []float64) error {
	if len(dst)*8 > r.Remaining() {
		return ErrTruncated
	}
	for i := range dst {
		dst[i] = math.Float64frombits(r.order.Uint64(r.buffer[r.pos:]))
		r.pos += 8
	}
	return nil
}

// PeekF64 decodes the double at the cursor without consuming it.
func (r *Reader) PeekF64() (float64, error) {
	if r.Remaining() < 8 {
		return 0, ErrTruncated
	}
	return math.Float64frombits(r.order.Uint64(r.buffer[r.pos:])), nil
}
