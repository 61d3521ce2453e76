package wire

import (
	"encoding/binary"
	"math"
)

// Writer appends fixed-width fields to a growing buffer.
// It is the inverse of Reader and is used to build fixtures.
type Writer struct {
	buf   []byte
	order binary.ByteOrder
}

// NewWriter creates a Writer using the given byte order (little-endian if nil).
func NewWriter(order binary.ByteOrder) *Writer {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Writer{order: order}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteU32 appends an unsigned 32-bit integer.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteI32 appends a signed 32-bit integer.
func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

// WriteF32 appends a single precision value.
func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteF64 appends a double precision value.
func (w *Writer) WriteF64(v float64) {
	var b [8]byte
	w.order.PutUint64(b[:], math.Float64bits(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteF64s appends consecutive doubles.
func (w *Writer) WriteF64s(vs ...float64) {
	for _, v := range vs {
		w.WriteF64(v)
	}
}
