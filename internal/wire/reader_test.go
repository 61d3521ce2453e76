package wire

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestNewReader_DefaultsToLittleEndian(t *testing.T) {
	r := NewReader([]byte{1, 0, 0, 0}, nil)
	if r.Order() != binary.LittleEndian {
		t.Errorf("Order = %v, want little-endian", r.Order())
	}
	v, err := r.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if v != 1 {
		t.Errorf("ReadU32 = %d, want 1", v)
	}
}

func TestReader_EmptyBuffer(t *testing.T) {
	r := NewReader(nil, binary.LittleEndian)
	if r.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", r.Remaining())
	}
	if _, err := r.ReadF64(); err != ErrTruncated {
		t.Errorf("ReadF64 on empty buffer: got %v, want ErrTruncated", err)
	}
}

func TestReader_ByteOrder(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56, 0x78}

	tests := []struct {
		name  string
		order binary.ByteOrder
		want  uint32
	}{
		{"little-endian", binary.LittleEndian, 0x78563412},
		{"big-endian", binary.BigEndian, 0x12345678},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(data, tt.order)
			got, err := r.ReadU32()
			if err != nil {
				t.Fatalf("ReadU32: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadU32 = 0x%08X, want 0x%08X", got, tt.want)
			}
		})
	}
}

func TestReader_SignedAndFloat32(t *testing.T) {
	w := NewWriter(binary.BigEndian)
	w.WriteI32(-42)
	w.WriteF32(1.5)

	r := NewReader(w.Bytes(), binary.BigEndian)
	i, err := r.ReadI32()
	if err != nil || i != -42 {
		t.Errorf("ReadI32 = %d, %v; want -42, nil", i, err)
	}
	f, err := r.ReadF32()
	if err != nil || f != 1.5 {
		t.Errorf("ReadF32 = %v, %v; want 1.5, nil", f, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", r.Remaining())
	}
}

func TestReader_F64BitExact(t *testing.T) {
	values := []float64{0, -0.0, 123, math.Pi, 1e-300, math.MaxFloat64, math.SmallestNonzeroFloat64}

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		w := NewWriter(order)
		w.WriteF64s(values...)

		r := NewReader(w.Bytes(), order)
		for i, want := range values {
			got, err := r.ReadF64()
			if err != nil {
				t.Fatalf("%v value %d: %v", order, i, err)
			}
			if math.Float64bits(got) != math.Float64bits(want) {
				t.Errorf("%v value %d: got bits %016X, want %016X",
					order, i, math.Float64bits(got), math.Float64bits(want))
			}
		}
	}
}

func TestReader_TruncatedLeavesCursor(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5, 6, 7}, binary.LittleEndian)
	if _, err := r.ReadF64(); err != ErrTruncated {
		t.Fatalf("ReadF64: got %v, want ErrTruncated", err)
	}
	if r.Pos() != 0 {
		t.Errorf("Pos after failed read = %d, want 0", r.Pos())
	}
	if _, err := r.ReadU32(); err != nil {
		t.Errorf("ReadU32 after failed ReadF64: %v", err)
	}
	if _, err := r.ReadU32(); err != ErrTruncated {
		t.Errorf("second ReadU32: got %v, want ErrTruncated", err)
	}
	if r.Pos() != 4 {
		t.Errorf("Pos = %d, want 4", r.Pos())
	}
}

func TestReader_ReadF64s(t *testing.T) {
	w := NewWriter(nil)
	w.WriteF64s(1, 2, 3)

	r := NewReader(w.Bytes(), nil)
	dst := make([]float64, 3)
	if err := r.ReadF64s(dst); err != nil {
		t.Fatalf("ReadF64s: %v", err)
	}
	for i, want := range []float64{1, 2, 3} {
		if dst[i] != want {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want)
		}
	}

	r = NewReader(w.Bytes(), nil)
	if err := r.ReadF64s(make([]float64, 4)); err != ErrTruncated {
		t.Errorf("ReadF64s past end: got %v, want ErrTruncated", err)
	}
	if r.Pos() != 0 {
		t.Errorf("Pos after failed ReadF64s = %d, want 0", r.Pos())
	}
}

func TestReader_Seek(t *testing.T) {
	r := NewReader(make([]byte, 16), nil)

	tests := []struct {
		offset  int
		wantErr error
	}{
		{0, nil},
		{8, nil},
		{16, nil},
		{17, ErrInvalidOffset},
		{-1, ErrInvalidOffset},
	}

	for _, tt := range tests {
		before := r.Pos()
		err := r.Seek(tt.offset)
		if err != tt.wantErr {
			t.Errorf("Seek(%d) = %v, want %v", tt.offset, err, tt.wantErr)
		}
		if err == nil && r.Pos() != tt.offset {
			t.Errorf("Seek(%d): Pos = %d", tt.offset, r.Pos())
		}
		if err != nil && r.Pos() != before {
			t.Errorf("failed Seek(%d) moved cursor from %d to %d", tt.offset, before, r.Pos())
		}
	}
}

func TestReader_SkipAndPeek(t *testing.T) {
	w := NewWriter(nil)
	w.WriteF64s(7, 9)
	r := NewReader(w.Bytes(), nil)

	v, err := r.PeekF64()
	if err != nil || v != 7 {
		t.Fatalf("PeekF64 = %v, %v; want 7, nil", v, err)
	}
	if r.Pos() != 0 {
		t.Errorf("PeekF64 moved cursor to %d", r.Pos())
	}
	if err := r.Skip(8); err != nil {
		t.Fatalf("Skip(8): %v", err)
	}
	v, _ = r.ReadF64()
	if v != 9 {
		t.Errorf("ReadF64 after Skip = %v, want 9", v)
	}
	if err := r.Skip(1); err != ErrTruncated {
		t.Errorf("Skip past end: got %v, want ErrTruncated", err)
	}
	if err := r.Skip(-1); err != ErrInvalidOffset {
		t.Errorf("Skip(-1): got %v, want ErrInvalidOffset", err)
	}
}
