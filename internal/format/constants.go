// Package format describes the on-disk layout of ATS analysis files and
// parses headers and frame records from a wire.Reader.
//
// An ATS file is a dump of the ATS_HEADER struct followed by the frame
// table. Every field is an IEEE-754 double in the byte order of the machine
// that ran the analysis.
package format

// Magic is the value of the first header field of every ATS file.
const Magic = 123.0

// HeaderFields is the number of doubles in the file header.
const HeaderFields = 10

// HeaderSize is the header size in bytes.
const HeaderSize = HeaderFields * 8

// Type is the ATS file type code stored in the header.
type Type int

// File types.
const (
	TypeAmpFreq           Type = 1 // amplitude and frequency
	TypeAmpFreqPhase      Type = 2 // amplitude, frequency and phase
	TypeAmpFreqNoise      Type = 3 // amplitude, frequency and residual noise
	TypeAmpFreqPhaseNoise Type = 4 // amplitude, frequency, phase and residual noise
)

// Valid reports whether t is one of the four defined file types.
func (t Type) Valid() bool {
	return t >= TypeAmpFreq && t <= TypeAmpFreqPhaseNoise
}

// HasPhase reports whether partial records carry a phase value.
func (t Type) HasPhase() bool {
	return t == TypeAmpFreqPhase || t == TypeAmpFreqPhaseNoise
}

// HasNoise reports whether frames end with residual noise band energies.
func (t Type) HasNoise() bool {
	return t == TypeAmpFreqNoise || t == TypeAmpFreqPhaseNoise
}

// NoiseBands is the number of critical bands in the residual analysis.
const NoiseBands = 25

// BandEdges are the critical band limits in Hz. Band i spans
// [BandEdges[i], BandEdges[i+1]).
var BandEdges = [NoiseBands + 1]float64{
	0, 100, 200, 300, 400, 510, 630, 770, 920, 1080, 1270, 1480, 1720,
	2000, 2320, 2700, 3150, 3700, 4400, 5300, 6400, 7700, 9500, 12000,
	15500, 20000,
}

// NoiseVariance is the variance of the analysis noise used to convert band
// energy to RMS amplitude.
const NoiseVariance = 0.04

// Default header limits.
const (
	DefaultMaxPartials = 1 << 14
	DefaultMaxFrames   = 1 << 22
)
