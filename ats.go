package ats

import (
	"github.com/llehouerou/go-ats/internal/format"
)

// FileType is the ATS file type code. It says which optional data each
// frame carries.
type FileType int

// File types.
const (
	TypeAmpFreq           FileType = FileType(format.TypeAmpFreq)
	TypeAmpFreqPhase      FileType = FileType(format.TypeAmpFreqPhase)
	TypeAmpFreqNoise      FileType = FileType(format.TypeAmpFreqNoise)
	TypeAmpFreqPhaseNoise FileType = FileType(format.TypeAmpFreqPhaseNoise)
)

var fileTypeNames = [...]string{
	"",
	"amp-freq",
	"amp-freq-phase",
	"amp-freq-noise",
	"amp-freq-phase-noise",
}

func (t FileType) String() string {
	if t > 0 && int(t) < len(fileTypeNames) {
		return fileTypeNames[t]
	}
	return "unknown"
}

// HasPhase reports whether partials carry a stored phase.
func (t FileType) HasPhase() bool {
	return format.Type(t).HasPhase()
}

// HasNoise reports whether frames carry residual band energies.
func (t FileType) HasNoise() bool {
	return format.Type(t).HasNoise()
}

// NoiseBands is the number of critical bands in a noise record.
const NoiseBands = format.NoiseBands

// NoiseMode selects how residual noise is rendered.
type NoiseMode string

// Noise modes.
const (
	// NoiseModeBands renders one noise generator per critical band.
	NoiseModeBands NoiseMode = "bands"

	// NoiseModePartials spreads band energy over the partials in each band
	// and modulates each oscillator with its share.
	NoiseModePartials NoiseMode = "partials"

	// NoiseModeOff renders sinusoids only.
	NoiseModeOff NoiseMode = "off"
)

// Valid reports whether m is a known mode.
func (m NoiseMode) Valid() bool {
	switch m {
	case NoiseModeBands, NoiseModePartials, NoiseModeOff:
		return true
	}
	return false
}

// NoiseTimePolicy selects how noise energy responds to time scaling.
type NoiseTimePolicy string

// Noise time policies.
const (
	// NoiseTimeInvariant keeps noise energy per frame unchanged.
	NoiseTimeInvariant NoiseTimePolicy = "invariant"

	// NoiseTimeConserve scales noise energy by the time-scale factor so
	// the total residual energy over the document is preserved.
	NoiseTimeConserve NoiseTimePolicy = "conserve"
)

// Valid reports whether p is a known policy.
func (p NoiseTimePolicy) Valid() bool {
	return p == NoiseTimeInvariant || p == NoiseTimeConserve
}

// energyFactor returns the noise energy multiplier for time scale factor f.
func (p NoiseTimePolicy) energyFactor(f float64) float64 {
	if p == NoiseTimeConserve {
		return f
	}
	return 1
}

// FramePolicy selects how the frame count of a file is determined.
type FramePolicy string

// Frame policies.
const (
	// FramePolicyAuto trusts a non-zero header count and otherwise reads
	// whole frames until the buffer ends.
	FramePolicyAuto FramePolicy = "auto"

	// FramePolicyHeader reads exactly the header frame count.
	FramePolicyHeader FramePolicy = "header"

	// FramePolicyExhaust ignores the header count and reads whole frames
	// until the buffer ends.
	FramePolicyExhaust FramePolicy = "exhaust"
)

// Valid reports whether p is a known policy.
func (p FramePolicy) Valid() bool {
	switch p {
	case FramePolicyAuto, FramePolicyHeader, FramePolicyExhaust:
		return true
	}
	return false
}

// Description summarizes a decoded document.
type Description struct {
	FrameCount   int
	PartialCount int
	Duration     float64 // seconds, last frame time
	HasNoise     bool
	HasPhase     bool
	SampleRate   float64
	FrameSize    int
	WindowSize   int
	AmplitudeMax float64
	FrequencyMax float64
	Type         FileType
}
