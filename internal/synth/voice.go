// Package synth implements the per-partial oscillators of the ATS
// resynthesis engine.
package synth

import (
	"math"

	"github.com/llehouerou/go-ats/internal/noise"
)

const twoPi = 2 * math.Pi

// State is the activation state of a Voice.
type State uint8

// Voice states.
const (
	StateSilent State = iota
	StateAttacking
	StateActive
	StateReleasing
)

var stateNames = [...]string{"silent", "attacking", "active", "releasing"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Params holds the settings shared by all voices of an engine.
type Params struct {
	SampleRate     float64
	RampSamples    int     // attack and release length
	ResetBlocks    int     // silent blocks before a voice's state is reset
	NoiseBandwidth float64 // per-partial noise bandwidth as a fraction of frequency
}

// envStep returns the per-sample envelope increment.
func (p *Params) envStep() float64 {
	if p.RampSamples <= 1 {
		return 1
	}
	return 1 / float64(p.RampSamples)
}

// Voice synthesizes one partial track. Frequency is integrated into a
// running phase so that output stays continuous whatever the stored phase.
//
// The zero value is a silent voice ready for use.
type Voice struct {
	state State
	phase float64 // radians, [0, 2π)
	freq  float64 // Hz
	amp   float64 // partial amplitude
	noise float64 // per-partial noise RMS
	env   float64 // click-suppression envelope, [0, 1]

	randi        noise.Randi
	silentBlocks int
	fresh        bool // state was reset and has not sounded since
}

// Init prepares the voice's noise source. It must be called before Render
// when per-partial noise is used.
func (v *Voice) Init(rng noise.RNG) {
	v.randi = noise.NewRandi(rng)
	v.reset()
}

// State returns the activation state.
func (v *Voice) State() State {
	return v.state
}

// Envelope returns the current envelope level.
func (v *Voice) Envelope() float64 {
	return v.env
}

// Frequency returns the current oscillator frequency in Hz.
func (v *Voice) Frequency() float64 {
	return v.freq
}

// Gain returns the effective sinusoid amplitude, envelope included.
func (v *Voice) Gain() float64 {
	return v.env * v.amp
}

// Phase returns the oscillator phase in radians.
func (v *Voice) Phase() float64 {
	return v.phase
}

// Fresh reports whether the voice's state has been reset since it last
// sounded.
func (v *Voice) Fresh() bool {
	return v.fresh
}

// Render adds len(out) samples to out while frequency, amplitude and noise
// level move linearly to the given targets.
//
// A positive amplitude on a silent voice starts an attack; a zero amplitude
// on a sounding voice starts a release, during which the last frequency and
// amplitude are held and only the envelope falls. Render reports whether the
// voice started an attack (true) during this call.
func (v *Voice) Render(out []float64, freq, amp, noiseRMS float64, p *Params) (attacked bool) {
	if amp > 0 {
		switch v.state {
		case StateSilent:
			// Start from the target so the attack does not glide from stale values.
			v.freq = freq
			v.amp = amp
			v.noise = noiseRMS
			v.env = 0
			v.state = StateAttacking
			v.fresh = false
			attacked = true
		case StateReleasing:
			v.state = StateAttacking
			attacked = true
		}
	} else {
		if v.state == StateAttacking || v.state == StateActive {
			v.state = StateReleasing
		}
		freq, amp, noiseRMS = v.freq, v.amp, v.noise
	}

	if v.state == StateSilent || len(out) == 0 {
		return attacked
	}

	n := float64(len(out))
	df := (freq - v.freq) / n
	da := (amp - v.amp) / n
	dn := (noiseRMS - v.noise) / n
	envStep := p.envStep()
	inv := 1 / p.SampleRate
	bw := p.NoiseBandwidth

	f, a, nz, env, ph := v.freq, v.amp, v.noise, v.env, v.phase
	for i := range out {
		f += df
		a += da
		nz += dn

		switch v.state {
		case StateAttacking:
			env += envStep
			if env >= 1 {
				env = 1
				v.state = StateActive
			}
		case StateReleasing:
			env -= envStep
			if env <= 0 {
				env = 0
				v.state = StateSilent
			}
		}

		s := math.Sin(ph)
		sample := a * s
		if nz > 0 {
			sample += nz * noise.UnitGain * v.randi.Next(f*bw*inv) * s
		}
		out[i] += env * sample

		ph += twoPi * f * inv
		if ph >= twoPi {
			ph -= twoPi * math.Floor(ph/twoPi)
		}

		if v.state == StateSilent {
			break
		}
	}

	v.env, v.phase = env, ph
	if v.state == StateSilent {
		return attacked
	}
	v.freq, v.amp, v.noise = freq, amp, noiseRMS
	return attacked
}

// Release starts a release if the voice is sounding.
func (v *Voice) Release() {
	if v.state == StateAttacking || v.state == StateActive {
		v.state = StateReleasing
	}
}

// Kill silences the voice immediately and resets its state.
func (v *Voice) Kill() {
	v.reset()
}

// EndBlock must be called once per rendered block. A voice that stays
// silent for p.ResetBlocks consecutive blocks has its state reset.
func (v *Voice) EndBlock(p *Params) {
	if v.state != StateSilent {
		v.silentBlocks = 0
		return
	}
	v.silentBlocks++
	if !v.fresh && v.silentBlocks >= p.ResetBlocks {
		v.reset()
	}
}

func (v *Voice) reset() {
	v.state = StateSilent
	v.phase = 0
	v.freq = 0
	v.amp = 0
	v.noise = 0
	v.env = 0
	v.silentBlocks = 0
	v.fresh = true
}
