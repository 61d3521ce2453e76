package ats

import "math"

// FrameSample holds the interpolated state of every partial at one time.
// Allocate it with NewFrameSample and reuse it across queries.
type FrameSample struct {
	Time         float64 // source document time of the query
	Frequencies  []float64
	Amplitudes   []float64
	Phases       []float64 // stored phase of the nearer frame; nil without phase
	PartialNoise []float64 // per-partial noise RMS; nil without noise
	Noise        []float64 // band energies; nil without noise
}

// NewFrameSample allocates a sample sized for doc.
func NewFrameSample(doc *Document) *FrameSample {
	n := doc.PartialCount()
	s := &FrameSample{
		Frequencies: make([]float64, n),
		Amplitudes:  make([]float64, n),
	}
	if doc.HasPhase() {
		s.Phases = make([]float64, n)
	}
	if doc.HasNoise() {
		s.PartialNoise = make([]float64, n)
		s.Noise = make([]float64, NoiseBands)
	}
	return s
}

// Trajectory answers time queries against a document viewed through a
// transform chain. It is immutable and safe for concurrent use; each
// goroutine needs its own FrameSample.
type Trajectory struct {
	doc    *Document
	params Params
	policy NoiseTimePolicy
}

// NewTrajectory returns a trajectory over doc under chain, with noise
// energy invariant under time scaling.
func NewTrajectory(doc *Document, chain Chain) *Trajectory {
	return NewTrajectoryWithPolicy(doc, chain, NoiseTimeInvariant)
}

// NewTrajectoryWithPolicy is NewTrajectory with an explicit noise policy.
func NewTrajectoryWithPolicy(doc *Document, chain Chain, policy NoiseTimePolicy) *Trajectory {
	return &Trajectory{doc: doc, params: chain.Params(), policy: policy}
}

// Document returns the underlying document.
func (tr *Trajectory) Document() *Document {
	return tr.doc
}

// Duration returns the transformed time of the last frame.
func (tr *Trajectory) Duration() float64 {
	return tr.doc.Duration() / tr.params.TimeScale
}

// SampleAt fills s with the partial and noise state at transformed time t.
// Times before the first frame or after the last return that frame's
// values; nothing is extrapolated.
func (tr *Trajectory) SampleAt(t float64, s *FrameSample) {
	sampleDocument(tr.doc, t*tr.params.TimeScale, &tr.params, tr.policy, s)
}

// sampleDocument queries doc at source time ts and applies p. It returns
// the number of frequencies clamped at zero.
//
// Between frames, frequency and amplitude interpolate linearly. When only
// one end of a segment is sounding, the silent end takes the sounding
// end's frequency so a partial fades in or out at a steady pitch.
func sampleDocument(doc *Document, ts float64, p *Params, policy NoiseTimePolicy, s *FrameSample) int {
	frames := doc.Frames
	last := len(frames) - 1
	s.Time = ts

	k, frac := 0, 0.0
	switch {
	case math.IsNaN(ts) || ts <= frames[0].Time:
	case ts >= frames[last].Time:
		k = last
	default:
		lo, hi := 0, last
		for hi-lo > 1 {
			mid := int(uint(lo+hi) >> 1)
			if frames[mid].Time <= ts {
				lo = mid
			} else {
				hi = mid
			}
		}
		k = lo
		frac = (ts - frames[lo].Time) / (frames[hi].Time - frames[lo].Time)
	}

	f0 := &frames[k]
	f1 := f0
	if frac > 0 {
		f1 = &frames[k+1]
	}

	noiseMul := p.NoiseMul * policy.energyFactor(p.TimeScale)
	rmsMul := math.Sqrt(noiseMul)
	clamped := 0

	for i := range f0.Partials {
		a, b := &f0.Partials[i], &f1.Partials[i]
		freq, amp, nz := a.Frequency, a.Amplitude, a.NoiseEnergy
		if frac > 0 {
			fa, fb := a.Frequency, b.Frequency
			switch {
			case a.Amplitude == 0 && b.Amplitude > 0:
				fa = fb
			case b.Amplitude == 0 && a.Amplitude > 0:
				fb = fa
			}
			freq = fa + (fb-fa)*frac
			amp = a.Amplitude + (b.Amplitude-a.Amplitude)*frac
			nz = a.NoiseEnergy + (b.NoiseEnergy-a.NoiseEnergy)*frac
		}

		f, c := p.frequency(freq)
		if c {
			clamped++
		}
		s.Frequencies[i] = f
		if p.keeps(i) {
			amp *= p.AmplitudeMul
			nz *= rmsMul
		} else {
			amp, nz = 0, 0
		}
		s.Amplitudes[i] = amp
		if s.PartialNoise != nil {
			s.PartialNoise[i] = nz
		}
		if s.Phases != nil {
			if frac < 0.5 {
				s.Phases[i] = a.Phase
			} else {
				s.Phases[i] = b.Phase
			}
		}
	}

	for b := range s.Noise {
		e := f0.Noise[b]
		if frac > 0 {
			e += (f1.Noise[b] - e) * frac
		}
		s.Noise[b] = e * noiseMul
	}
	return clamped
}
