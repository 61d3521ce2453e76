package ats

import "math"

// MinTimeScale is the smallest accepted time-scale factor.
const MinTimeScale = 1e-3

type transformKind uint8

const (
	kindTimeScale transformKind = iota + 1
	kindFrequencyScale
	kindFrequencyOffset
	kindAmplitudeScale
	kindNoiseScale
	kindGain
	kindPartialMask
)

// Transform is one validated transformation step. Build it with one of
// the constructors below; the zero value is the identity.
type Transform struct {
	kind  transformKind
	value float64
	mask  PartialSet
}

// TimeScale stretches the timeline: a factor of 2 plays twice as fast, so
// a frame at time t appears at t/2.
func TimeScale(f float64) (Transform, error) {
	if !finite(f) || f < MinTimeScale {
		return Transform{}, paramError("time_scale", f)
	}
	return Transform{kind: kindTimeScale, value: f}, nil
}

// FrequencyScale multiplies every partial frequency by f.
func FrequencyScale(f float64) (Transform, error) {
	if !finite(f) || f <= 0 {
		return Transform{}, paramError("frequency_scale", f)
	}
	return Transform{kind: kindFrequencyScale, value: f}, nil
}

// FrequencyOffset adds hz to every partial frequency. Results below zero
// are clamped to zero.
func FrequencyOffset(hz float64) (Transform, error) {
	if !finite(hz) {
		return Transform{}, paramError("frequency_offset", hz)
	}
	return Transform{kind: kindFrequencyOffset, value: hz}, nil
}

// AmplitudeScale multiplies every partial amplitude by f.
func AmplitudeScale(f float64) (Transform, error) {
	if !finite(f) || f < 0 {
		return Transform{}, paramError("amplitude_scale", f)
	}
	return Transform{kind: kindAmplitudeScale, value: f}, nil
}

// NoiseScale multiplies every noise energy by f.
func NoiseScale(f float64) (Transform, error) {
	if !finite(f) || f < 0 {
		return Transform{}, paramError("noise_scale", f)
	}
	return Transform{kind: kindNoiseScale, value: f}, nil
}

// Gain scales the whole output by f: partial amplitudes by f and noise
// energies by f².
func Gain(f float64) (Transform, error) {
	if !finite(f) || f < 0 {
		return Transform{}, paramError("gain", f)
	}
	return Transform{kind: kindGain, value: f}, nil
}

// PartialMask keeps only the partials in set; all others render with zero
// amplitude. The set is copied.
func PartialMask(set PartialSet) Transform {
	return Transform{kind: kindPartialMask, mask: set.Clone()}
}

// Chain is an immutable ordered list of transforms.
type Chain struct {
	steps []Transform
}

// NewChain returns a chain applying ts in order.
func NewChain(ts ...Transform) Chain {
	return Chain{}.Then(ts...)
}

// Then returns a new chain applying c followed by ts. c is not modified.
func (c Chain) Then(ts ...Transform) Chain {
	steps := make([]Transform, 0, len(c.steps)+len(ts))
	steps = append(steps, c.steps...)
	steps = append(steps, ts...)
	return Chain{steps: steps}
}

// Len returns the number of transforms.
func (c Chain) Len() int {
	return len(c.steps)
}

// Params returns the effective parameters of c.
func (c Chain) Params() Params {
	p := identityParams()
	for i := range c.steps {
		p.apply(&c.steps[i])
	}
	return p
}

// Params are the resolved parameters of a chain. Frequencies map through
// f*FrequencyMul + FrequencyAdd.
type Params struct {
	TimeScale    float64
	FrequencyMul float64
	FrequencyAdd float64
	AmplitudeMul float64
	NoiseMul     float64
	Mask         *PartialSet // nil keeps every partial
}

func identityParams() Params {
	return Params{
		TimeScale:    1,
		FrequencyMul: 1,
		AmplitudeMul: 1,
		NoiseMul:     1,
	}
}

func (p *Params) apply(t *Transform) {
	switch t.kind {
	case kindTimeScale:
		p.TimeScale *= t.value
	case kindFrequencyScale:
		p.FrequencyMul *= t.value
		p.FrequencyAdd *= t.value
	case kindFrequencyOffset:
		p.FrequencyAdd += t.value
	case kindAmplitudeScale:
		p.AmplitudeMul *= t.value
	case kindNoiseScale:
		p.NoiseMul *= t.value
	case kindGain:
		p.AmplitudeMul *= t.value
		p.NoiseMul *= t.value * t.value
	case kindPartialMask:
		if p.Mask == nil {
			m := t.mask.Clone()
			p.Mask = &m
		} else {
			m := p.Mask.Intersect(&t.mask)
			p.Mask = &m
		}
	}
}

// keeps reports whether partial i survives the mask.
func (p *Params) keeps(i int) bool {
	return p.Mask == nil || p.Mask.Contains(i)
}

// frequency maps a source frequency and reports whether it was clamped.
func (p *Params) frequency(f float64) (float64, bool) {
	f = f*p.FrequencyMul + p.FrequencyAdd
	if f < 0 {
		return 0, true
	}
	return f, false
}

// Apply materializes c over doc into a new document. Phases are kept;
// noise energies follow policy under time scaling.
func (c Chain) Apply(doc *Document, policy NoiseTimePolicy) (*Document, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if !policy.Valid() {
		return nil, ErrInvalidParameter
	}
	p := c.Params()
	noiseMul := p.NoiseMul * policy.energyFactor(p.TimeScale)
	rmsMul := math.Sqrt(noiseMul)

	out := NewDocument(doc.Type, len(doc.Frames), doc.partials)
	out.SampleRate = doc.SampleRate
	out.FrameSize = doc.FrameSize
	out.WindowSize = doc.WindowSize
	out.AmplitudeMax = doc.AmplitudeMax * p.AmplitudeMul
	out.FrequencyMax, _ = p.frequency(doc.FrequencyMax)
	out.DeclaredDuration = doc.DeclaredDuration / p.TimeScale
	out.DeclaredFrames = doc.DeclaredFrames
	out.ByteOrder = doc.ByteOrder

	for k := range doc.Frames {
		src, dst := &doc.Frames[k], &out.Frames[k]
		dst.Time = src.Time / p.TimeScale
		for i := range src.Partials {
			sp, dp := &src.Partials[i], &dst.Partials[i]
			dp.Frequency, _ = p.frequency(sp.Frequency)
			dp.Phase = sp.Phase
			if p.keeps(i) {
				dp.Amplitude = sp.Amplitude * p.AmplitudeMul
				dp.NoiseEnergy = sp.NoiseEnergy * rmsMul
			}
		}
		for b := range src.Noise {
			dst.Noise[b] = src.Noise[b] * noiseMul
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
