package format

import (
	"encoding/binary"
	"math"

	"github.com/llehouerou/go-ats/internal/wire"
)

// Header is the raw ATS file header. Field order matches the file.
type Header struct {
	Magic      float64 // always 123
	SampleRate float64 // sr: sampling rate of the analysed sound
	FrameSize  float64 // fs: hop size in samples
	WindowSize float64 // ws: analysis window size in samples
	Partials   float64 // par: partials per frame
	Frames     float64 // fra: frame count
	AmpMax     float64 // ma: maximum amplitude
	FreqMax    float64 // mf: maximum frequency
	Duration   float64 // dur: duration in seconds
	Type       float64 // typ: file type code (1-4)
}

// Limits bounds the header counts accepted by Validate.
type Limits struct {
	MaxPartials int
	MaxFrames   int
}

// DefaultLimits returns the default header limits.
func DefaultLimits() Limits {
	return Limits{
		MaxPartials: DefaultMaxPartials,
		MaxFrames:   DefaultMaxFrames,
	}
}

// DetectOrder returns the byte order in which the leading magic number
// decodes to 123. Little-endian is tried first.
func DetectOrder(data []byte) (binary.ByteOrder, error) {
	if len(data) < 8 {
		return nil, wire.ErrTruncated
	}
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		if math.Float64frombits(order.Uint64(data)) == Magic {
			return order, nil
		}
	}
	return nil, ErrBadMagic
}

// ReadHeader reads the ten header doubles. It does not validate them.
func ReadHeader(r *wire.Reader) (Header, error) {
	var f [HeaderFields]float64
	if err := r.ReadF64s(f[:]); err != nil {
		return Header{}, err
	}
	return Header{
		Magic:      f[0],
		SampleRate: f[1],
		FrameSize:  f[2],
		WindowSize: f[3],
		Partials:   f[4],
		Frames:     f[5],
		AmpMax:     f[6],
		FreqMax:    f[7],
		Duration:   f[8],
		Type:       f[9],
	}, nil
}

// Fields returns the header as the ten doubles written to disk.
func (h Header) Fields() [HeaderFields]float64 {
	return [HeaderFields]float64{
		h.Magic, h.SampleRate, h.FrameSize, h.WindowSize, h.Partials,
		h.Frames, h.AmpMax, h.FreqMax, h.Duration, h.Type,
	}
}

// FileType returns the type code. Call Validate first.
func (h Header) FileType() Type {
	return Type(h.Type)
}

// Validate checks the magic, the type code and every numeric field.
// Type errors are reported as ErrUnsupportedType, everything else as
// ErrHeaderField wrapped in a FieldError.
func (h Header) Validate(lim Limits) error {
	if h.Magic != Magic {
		return ErrBadMagic
	}
	if !isFinite(h.Type) || h.Type != math.Trunc(h.Type) || !Type(h.Type).Valid() {
		return &FieldError{Field: "type", Value: h.Type, Err: ErrUnsupportedType}
	}

	checks := []struct {
		name string
		v    float64
		ok   bool
	}{
		{"sample_rate", h.SampleRate, h.SampleRate > 0},
		{"frame_size", h.FrameSize, h.FrameSize >= 1},
		{"window_size", h.WindowSize, h.WindowSize >= 1},
		{"partials", h.Partials, isCount(h.Partials, lim.MaxPartials)},
		{"frames", h.Frames, isCount(h.Frames, lim.MaxFrames)},
		{"amp_max", h.AmpMax, h.AmpMax >= 0},
		{"freq_max", h.FreqMax, h.FreqMax >= 0},
		{"duration", h.Duration, h.Duration >= 0},
	}
	for _, c := range checks {
		if !isFinite(c.v) || !c.ok {
			return &FieldError{Field: c.name, Value: c.v, Err: ErrHeaderField}
		}
	}
	return nil
}

// isCount reports whether v is an integral value in [0, max].
func isCount(v float64, max int) bool {
	return v >= 0 && v == math.Trunc(v) && v <= float64(max)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
