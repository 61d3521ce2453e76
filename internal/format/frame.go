package format

import (
	"github.com/llehouerou/go-ats/internal/wire"
)

// Layout describes the record structure of one frame.
type Layout struct {
	Partials int  // partial records per frame
	Phase    bool // partial records carry a phase value
	Noise    bool // frame ends with NoiseBands energies
}

// LayoutOf derives the frame layout from a validated header.
func LayoutOf(h Header) Layout {
	t := h.FileType()
	return Layout{
		Partials: int(h.Partials),
		Phase:    t.HasPhase(),
		Noise:    t.HasNoise(),
	}
}

// PartialStride returns the number of doubles in one partial record.
func (l Layout) PartialStride() int {
	if l.Phase {
		return 3
	}
	return 2
}

// NoiseCount returns the number of noise values per frame.
func (l Layout) NoiseCount() int {
	if l.Noise {
		return NoiseBands
	}
	return 0
}

// FrameLen returns the number of doubles in one frame, time included.
func (l Layout) FrameLen() int {
	return 1 + l.Partials*l.PartialStride() + l.NoiseCount()
}

// FrameBytes returns the size of one frame in bytes.
func (l Layout) FrameBytes() int {
	return l.FrameLen() * 8
}

// Partial offsets within a partial record.
const (
	OffsetAmp   = 0
	OffsetFreq  = 1
	OffsetPhase = 2
)

// ReadFrame reads one frame into rec, which must hold FrameLen doubles:
// rec[0] is the time, followed by the partial records and the noise band
// energies. Amplitudes, frequencies and noise energies must be finite and
// non-negative; time and phase must be finite.
//
// On a short buffer ReadFrame returns wire.ErrTruncated without consuming
// anything. Validation failures return a FieldError wrapping ErrFrameValue.
func ReadFrame(r *wire.Reader, l Layout, rec []float64) error {
	rec = rec[:l.FrameLen()]
	if err := r.ReadF64s(rec); err != nil {
		return err
	}

	if !isFinite(rec[0]) {
		return &FieldError{Field: "time", Value: rec[0], Err: ErrFrameValue}
	}
	stride := l.PartialStride()
	for p := 0; p < l.Partials; p++ {
		base := 1 + p*stride
		amp := rec[base+OffsetAmp]
		if !isFinite(amp) || amp < 0 {
			return &FieldError{Field: "amp", Value: amp, Err: ErrFrameValue}
		}
		freq := rec[base+OffsetFreq]
		if !isFinite(freq) || freq < 0 {
			return &FieldError{Field: "freq", Value: freq, Err: ErrFrameValue}
		}
		if l.Phase && !isFinite(rec[base+OffsetPhase]) {
			return &FieldError{Field: "phase", Value: rec[base+OffsetPhase], Err: ErrFrameValue}
		}
	}
	noise := rec[1+l.Partials*stride:]
	for _, e := range noise {
		if !isFinite(e) || e < 0 {
			return &FieldError{Field: "noise", Value: e, Err: ErrFrameValue}
		}
	}
	return nil
}

// WriteHeader appends h to w.
func WriteHeader(w *wire.Writer, h Header) {
	f := h.Fields()
	w.WriteF64s(f[:]...)
}

// WriteFrame appends one frame record to w.
func WriteFrame(w *wire.Writer, rec []float64) {
	w.WriteF64s(rec...)
}
