package noise

import "math"

// UnitGain scales ring-modulated interpolated noise to unit RMS.
//
// Linearly interpolated uniform noise in [-1, 1) has variance 2/9 and a
// sine carrier has mean square 1/2, so the product has RMS 1/3.
const UnitGain = 3.0

// Randi is interpolated random noise: a new uniform random target is drawn
// at the given rate and the output moves linearly towards it. The result is
// low-pass noise whose bandwidth follows the rate.
type Randi struct {
	rng  RNG
	x0   float64 // current segment start
	x1   float64 // current segment end
	frac float64 // position in the segment, [0, 1)
}

// NewRandi creates an interpolated noise source from rng.
func NewRandi(rng RNG) Randi {
	r := Randi{rng: rng}
	r.x0 = r.rng.Float()
	r.x1 = r.rng.Float()
	return r
}

// Next returns the current value and advances by step segments, where
// step = rate / sampleRate.
func (r *Randi) Next(step float64) float64 {
	v := r.x0 + (r.x1-r.x0)*r.frac
	r.frac += step
	if r.frac >= 1 {
		r.frac -= math.Floor(r.frac)
		r.x0 = r.x1
		r.x1 = r.rng.Float()
	}
	return v
}

// Band renders noise concentrated in one frequency band by ring-modulating
// interpolated noise, drawn at the band width, with a sine at the band
// centre.
type Band struct {
	Center float64 // Hz
	Width  float64 // Hz

	randi   Randi
	phase   float64 // carrier phase in cycles, [0, 1)
	gain    float64 // current output RMS
	invRate float64 // 1 / sample rate
	seedRNG RNG
}

// NewBand creates a band generator. rng seeds the noise source.
func NewBand(center, width, sampleRate float64, rng RNG) *Band {
	b := &Band{
		Center:  center,
		Width:   width,
		invRate: 1 / sampleRate,
		seedRNG: rng,
	}
	b.Reset()
	return b
}

// Gain returns the current output RMS.
func (b *Band) Gain() float64 {
	return b.gain
}

// Reset silences the band and restores its initial noise state.
func (b *Band) Reset() {
	b.randi = NewRandi(b.seedRNG)
	b.phase = 0
	b.gain = 0
}

// Render adds len(out) samples to out. The output RMS moves linearly from
// its current value to target across the block.
func (b *Band) Render(out []float64, target float64) {
	n := len(out)
	if n == 0 {
		return
	}
	if b.gain == 0 && target == 0 {
		return
	}

	step := (target - b.gain) / float64(n)
	noiseStep := b.Width * b.invRate
	carrierStep := b.Center * b.invRate
	g := b.gain
	for i := range out {
		g += step
		s := b.randi.Next(noiseStep) * math.Sin(2*math.Pi*b.phase)
		out[i] += g * UnitGain * s
		b.phase += carrierStep
		if b.phase >= 1 {
			b.phase -= math.Floor(b.phase)
		}
	}
	b.gain = target
}
