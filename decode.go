package ats

import (
	"errors"

	"github.com/llehouerou/go-ats/internal/format"
	"github.com/llehouerou/go-ats/internal/wire"
)

// DecodeOptions controls how a file is parsed.
type DecodeOptions struct {
	FramePolicy FramePolicy `mapstructure:"frame_policy"`
	MaxPartials int         `mapstructure:"max_partials"`
	MaxFrames   int         `mapstructure:"max_frames"`
}

// DefaultDecodeOptions returns the options used by Decode.
func DefaultDecodeOptions() DecodeOptions {
	lim := format.DefaultLimits()
	return DecodeOptions{
		FramePolicy: FramePolicyAuto,
		MaxPartials: lim.MaxPartials,
		MaxFrames:   lim.MaxFrames,
	}
}

// Decode parses an ATS file with the default options.
func Decode(data []byte) (*Document, error) {
	return DecodeWithOptions(data, DefaultDecodeOptions())
}

// LoadDocument is an alias for Decode.
func LoadDocument(data []byte) (*Document, error) {
	return Decode(data)
}

// DecodeWithOptions parses an ATS file.
//
// The byte order is taken from the magic number. Errors are *DecodeError
// values carrying one of ErrTruncatedFile, ErrMalformedHeader,
// ErrUnsupportedFormat, ErrNonMonotonicTime or ErrMalformedFrame; a nil
// buffer yields ErrNilBuffer and bad options ErrInvalidParameter.
func DecodeWithOptions(data []byte, opts DecodeOptions) (*Document, error) {
	if data == nil {
		return nil, ErrNilBuffer
	}
	if !opts.FramePolicy.Valid() || opts.MaxPartials < 0 || opts.MaxFrames < 0 {
		return nil, ErrInvalidParameter
	}

	order, err := format.DetectOrder(data)
	if err != nil {
		return nil, headerError(err, 0)
	}
	r := wire.NewReader(data, order)
	h, err := format.ReadHeader(r)
	if err != nil {
		return nil, headerError(err, 0)
	}
	if err := h.Validate(format.Limits{MaxPartials: opts.MaxPartials, MaxFrames: opts.MaxFrames}); err != nil {
		return nil, headerError(err, 0)
	}

	layout := format.LayoutOf(h)
	frames, err := frameCount(r, h, layout, opts)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(FileType(h.FileType()), frames, layout.Partials)
	doc.SampleRate = h.SampleRate
	doc.FrameSize = int(h.FrameSize)
	doc.WindowSize = int(h.WindowSize)
	doc.AmplitudeMax = h.AmpMax
	doc.FrequencyMax = h.FreqMax
	doc.DeclaredDuration = h.Duration
	doc.DeclaredFrames = int(h.Frames)
	doc.ByteOrder = order

	if err := readFrames(r, layout, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// frameCount resolves the number of frames to read and checks that the
// buffer holds all of them.
func frameCount(r *wire.Reader, h format.Header, l format.Layout, opts DecodeOptions) (int, error) {
	size := l.FrameBytes()
	avail := r.Remaining() / size

	exhaust := opts.FramePolicy == FramePolicyExhaust ||
		(opts.FramePolicy == FramePolicyAuto && h.Frames == 0)

	n := int(h.Frames)
	if exhaust {
		if r.Remaining()%size != 0 {
			return 0, &DecodeError{
				Code:   ErrTruncatedFile,
				Offset: r.Pos() + avail*size,
				Frame:  avail,
				Err:    wire.ErrTruncated,
			}
		}
		if avail > opts.MaxFrames {
			return 0, &DecodeError{Code: ErrMalformedHeader, Frame: -1, Field: "frames"}
		}
		n = avail
	}

	if n == 0 {
		return 0, &DecodeError{Code: ErrTruncatedFile, Offset: r.Pos(), Frame: 0, Err: format.ErrNoFrames}
	}
	if n > avail {
		return 0, &DecodeError{
			Code:   ErrTruncatedFile,
			Offset: r.Pos() + avail*size,
			Frame:  avail,
			Err:    wire.ErrTruncated,
		}
	}
	return n, nil
}

func readFrames(r *wire.Reader, l format.Layout, doc *Document) error {
	rec := make([]float64, l.FrameLen())
	stride := l.PartialStride()

	var amps, freqs, shares []float64
	if l.Noise && l.Partials > 0 {
		amps = make([]float64, l.Partials)
		freqs = make([]float64, l.Partials)
		shares = make([]float64, l.Partials)
	}

	for k := range doc.Frames {
		off := r.Pos()
		if err := format.ReadFrame(r, l, rec); err != nil {
			return frameError(err, off, k)
		}

		f := &doc.Frames[k]
		f.Time = rec[0]
		if k > 0 && f.Time <= doc.Frames[k-1].Time {
			return &DecodeError{
				Code:   ErrNonMonotonicTime,
				Offset: off,
				Frame:  k,
				Field:  "time",
				Err:    format.ErrTimeOrder,
			}
		}

		for p := range f.Partials {
			base := 1 + p*stride
			f.Partials[p].Amplitude = rec[base+format.OffsetAmp]
			f.Partials[p].Frequency = rec[base+format.OffsetFreq]
			if l.Phase {
				f.Partials[p].Phase = rec[base+format.OffsetPhase]
			}
		}
		if !l.Noise {
			continue
		}
		copy(f.Noise, rec[1+l.Partials*stride:])

		if amps == nil {
			continue
		}
		for p := range f.Partials {
			amps[p] = f.Partials[p].Amplitude
			freqs[p] = f.Partials[p].Frequency
		}
		format.DistributeNoise(amps, freqs, f.Noise, float64(doc.WindowSize), shares)
		for p := range f.Partials {
			f.Partials[p].NoiseEnergy = shares[p]
		}
	}
	return nil
}

func headerError(err error, off int) error {
	de := &DecodeError{Offset: off, Frame: -1, Err: err}
	var fe *format.FieldError
	if errors.As(err, &fe) {
		de.Field = fe.Field
	}
	switch {
	case errors.Is(err, wire.ErrTruncated):
		de.Code = ErrTruncatedFile
	case errors.Is(err, format.ErrBadMagic), errors.Is(err, format.ErrUnsupportedType):
		de.Code = ErrUnsupportedFormat
	default:
		de.Code = ErrMalformedHeader
	}
	return de
}

func frameError(err error, off, frame int) error {
	de := &DecodeError{Offset: off, Frame: frame, Err: err}
	var fe *format.FieldError
	if errors.As(err, &fe) {
		de.Field = fe.Field
	}
	if errors.Is(err, wire.ErrTruncated) {
		de.Code = ErrTruncatedFile
	} else {
		de.Code = ErrMalformedFrame
	}
	return de
}
