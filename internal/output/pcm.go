// Package output converts rendered float samples to interleaved PCM.
//
// Input samples are nominally in [-1, 1]. Integer outputs are scaled,
// rounded to nearest (ties to even) and clipped; mono input is duplicated
// across every output channel.
package output

import "math"

// Format is an output sample format.
type Format int

// Output formats.
const (
	Format16Bit Format = iota + 1
	Format24Bit
	Format32Bit
)

// BitDepth returns the sample width in bits.
func (f Format) BitDepth() int {
	switch f {
	case Format16Bit:
		return 16
	case Format24Bit:
		return 24
	case Format32Bit:
		return 32
	}
	return 0
}

// FormatOf returns the integer format with the given bit depth.
func FormatOf(bits int) (Format, bool) {
	switch bits {
	case 16:
		return Format16Bit, true
	case 24:
		return Format24Bit, true
	case 32:
		return Format32Bit, true
	}
	return 0, false
}

// Scale factors from [-1, 1] to each integer range.
const (
	Scale16 = 32768.0
	Scale24 = 8388608.0
	Scale32 = 2147483648.0
)

// clip16 clips and rounds a scaled sample to int16 range.
func clip16(sample float64) int16 {
	if sample >= 32767.0 {
		return 32767
	}
	if sample <= -32768.0 {
		return -32768
	}
	if math.IsNaN(sample) {
		return 0
	}
	return int16(math.RoundToEven(sample))
}

// clip24 clips and rounds a scaled sample to 24-bit signed range.
func clip24(sample float64) int32 {
	if sample >= 8388607.0 {
		return 8388607
	}
	if sample <= -8388608.0 {
		return -8388608
	}
	if math.IsNaN(sample) {
		return 0
	}
	return int32(math.RoundToEven(sample))
}

// clip32 clips and rounds a scaled sample to int32 range.
func clip32(sample float64) int32 {
	if sample >= 2147483647.0 {
		return 2147483647
	}
	if sample <= -2147483648.0 {
		return -2147483648
	}
	if math.IsNaN(sample) {
		return 0
	}
	return int32(math.RoundToEven(sample))
}

// ToPCM16Bit converts mono input to interleaved 16-bit PCM with the given
// number of channels. It returns the number of frames written, limited by
// len(output)/channels.
func ToPCM16Bit(input []float32, channels int, output []int16) int {
	n := frames(len(input), channels, len(output))
	for i := 0; i < n; i++ {
		s := clip16(float64(input[i]) * Scale16)
		for ch := 0; ch < channels; ch++ {
			output[i*channels+ch] = s
		}
	}
	return n
}

// ToInts converts mono input to interleaved integers of the given format,
// for sinks that take plain int samples.
func ToInts(input []float32, f Format, channels int, output []int) int {
	n := frames(len(input), channels, len(output))
	for i := 0; i < n; i++ {
		x := float64(input[i])
		var s int
		switch f {
		case Format24Bit:
			s = int(clip24(x * Scale24))
		case Format32Bit:
			s = int(clip32(x * Scale32))
		default:
			s = int(clip16(x * Scale16))
		}
		for ch := 0; ch < channels; ch++ {
			output[i*channels+ch] = s
		}
	}
	return n
}

func frames(in, channels, out int) int {
	if channels < 1 {
		return 0
	}
	return min(in, out/channels)
}
