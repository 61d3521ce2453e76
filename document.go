package ats

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Partial is one partial's analysis record in a frame.
type Partial struct {
	Frequency   float64 // Hz, >= 0
	Amplitude   float64 // linear, >= 0
	Phase       float64 // radians; zero unless the file stores phase
	NoiseEnergy float64 // RMS share of the band residual; zero without noise
}

// Frame is one analysis frame.
type Frame struct {
	Time     float64   // seconds
	Partials []Partial // index is the partial's track identity
	Noise    []float64 // NoiseBands residual energies, nil without noise
}

// Document is a decoded ATS analysis. It is immutable once returned by
// Decode and may be shared by any number of engines and goroutines.
type Document struct {
	Type         FileType
	SampleRate   float64 // sample rate of the analysed sound
	FrameSize    int     // hop size in samples
	WindowSize   int     // analysis window in samples
	AmplitudeMax float64
	FrequencyMax float64

	// DeclaredDuration is the header duration, which may disagree with
	// the last frame time.
	DeclaredDuration float64

	// DeclaredFrames is the header frame count; zero when the file leaves
	// it unset.
	DeclaredFrames int

	// ByteOrder is the byte order the file was read in.
	ByteOrder binary.ByteOrder

	Frames []Frame

	partials int
}

// FrameCount returns the number of frames.
func (d *Document) FrameCount() int {
	return len(d.Frames)
}

// PartialCount returns the number of partials in every frame.
func (d *Document) PartialCount() int {
	return d.partials
}

// HasPhase reports whether partials carry a stored phase.
func (d *Document) HasPhase() bool {
	return d.Type.HasPhase()
}

// HasNoise reports whether frames carry noise band energies.
func (d *Document) HasNoise() bool {
	return d.Type.HasNoise()
}

// NoiseBandCount returns the number of noise bands per frame.
func (d *Document) NoiseBandCount() int {
	if d.HasNoise() {
		return NoiseBands
	}
	return 0
}

// StartTime returns the time of the first frame.
func (d *Document) StartTime() float64 {
	if len(d.Frames) == 0 {
		return 0
	}
	return d.Frames[0].Time
}

// Duration returns the time of the last frame.
func (d *Document) Duration() float64 {
	if len(d.Frames) == 0 {
		return 0
	}
	return d.Frames[len(d.Frames)-1].Time
}

// Describe returns a summary of the document.
func (d *Document) Describe() Description {
	return Description{
		FrameCount:   len(d.Frames),
		PartialCount: d.partials,
		Duration:     d.Duration(),
		HasNoise:     d.HasNoise(),
		HasPhase:     d.HasPhase(),
		SampleRate:   d.SampleRate,
		FrameSize:    d.FrameSize,
		WindowSize:   d.WindowSize,
		AmplitudeMax: d.AmplitudeMax,
		FrequencyMax: d.FrequencyMax,
		Type:         d.Type,
	}
}

// Validate checks the document invariants: at least one frame, strictly
// increasing finite times, the same partial count in every frame, finite
// non-negative amplitudes and frequencies, and a full noise record on
// every frame when the type carries noise.
func (d *Document) Validate() error {
	if len(d.Frames) == 0 {
		return &DecodeError{Code: ErrTruncatedFile, Frame: 0}
	}
	for k := range d.Frames {
		f := &d.Frames[k]
		if !finite(f.Time) {
			return &DecodeError{Code: ErrMalformedFrame, Frame: k, Field: "time"}
		}
		if k > 0 && f.Time <= d.Frames[k-1].Time {
			return &DecodeError{Code: ErrNonMonotonicTime, Frame: k, Field: "time"}
		}
		if len(f.Partials) != d.partials {
			return &DecodeError{
				Code:  ErrMalformedFrame,
				Frame: k,
				Field: fmt.Sprintf("partials (%d, want %d)", len(f.Partials), d.partials),
			}
		}
		for i := range f.Partials {
			p := &f.Partials[i]
			if !finite(p.Amplitude) || p.Amplitude < 0 {
				return &DecodeError{Code: ErrMalformedFrame, Frame: k, Field: "amp"}
			}
			if !finite(p.Frequency) || p.Frequency < 0 {
				return &DecodeError{Code: ErrMalformedFrame, Frame: k, Field: "freq"}
			}
		}
		if d.HasNoise() && len(f.Noise) != NoiseBands {
			return &DecodeError{Code: ErrMalformedFrame, Frame: k, Field: "noise"}
		}
	}
	return nil
}

// NewDocument allocates a zeroed document with the given shape. Frames
// share two backing arrays. Callers fill in times and partial values and
// should check the result with Validate.
func NewDocument(typ FileType, frames, partials int) *Document {
	d := &Document{
		Type:     typ,
		Frames:   make([]Frame, frames),
		partials: partials,
	}
	all := make([]Partial, frames*partials)
	var noise []float64
	if typ.HasNoise() {
		noise = make([]float64, frames*NoiseBands)
	}
	for k := range d.Frames {
		d.Frames[k].Partials = all[k*partials : (k+1)*partials : (k+1)*partials]
		if noise != nil {
			d.Frames[k].Noise = noise[k*NoiseBands : (k+1)*NoiseBands : (k+1)*NoiseBands]
		}
	}
	return d
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
