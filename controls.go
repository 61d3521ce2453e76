package ats

import (
	"math"
	"slices"

	"github.com/llehouerou/go-ats/internal/format"
)

type transport uint8

const (
	transportPlay transport = iota
	transportStop           // release every voice and hold the position
	transportKill           // silence immediately
)

// Controls are the live transform settings of an engine. They apply on
// top of the engine's chain: a partial frequency f becomes
// f*FrequencyScale + FrequencyOffset.
type Controls struct {
	TimeScale       float64
	FrequencyScale  float64
	FrequencyOffset float64
	AmplitudeScale  float64
	NoiseScale      float64
	Mask            *PartialSet // nil keeps every partial
	Chain           Chain

	// NoiseBandwidth is the per-partial noise bandwidth as a fraction of
	// the partial frequency (NoiseModePartials only).
	NoiseBandwidth float64

	// Partials holds per-partial overrides by partial index. Partials past
	// the end use DefaultPartialControls.
	Partials []PartialControls
}

// Partial returns the overrides for partial i.
func (c Controls) Partial(i int) PartialControls {
	if i >= 0 && i < len(c.Partials) {
		return c.Partials[i]
	}
	return DefaultPartialControls()
}

// PartialControls are live settings for a single partial, applied after
// the engine-wide controls.
type PartialControls struct {
	FrequencyScale  float64
	FrequencyOffset float64 // Hz, added after FrequencyScale
	AmplitudeScale  float64
	NoiseScale      float64 // noise energy multiplier

	// NoiseBandwidth replaces the engine's noise bandwidth for this
	// partial when positive.
	NoiseBandwidth float64
}

// DefaultPartialControls returns overrides that leave a partial unchanged.
func DefaultPartialControls() PartialControls {
	return PartialControls{FrequencyScale: 1, AmplitudeScale: 1, NoiseScale: 1}
}

func (pc *PartialControls) validate() error {
	if _, err := FrequencyScale(pc.FrequencyScale); err != nil {
		return err
	}
	if _, err := FrequencyOffset(pc.FrequencyOffset); err != nil {
		return err
	}
	if _, err := AmplitudeScale(pc.AmplitudeScale); err != nil {
		return err
	}
	if _, err := NoiseScale(pc.NoiseScale); err != nil {
		return err
	}
	return validBandwidth(pc.NoiseBandwidth)
}

func validBandwidth(f float64) error {
	if !finite(f) || f < 0 {
		return paramError("noise_bandwidth", f)
	}
	return nil
}

func defaultControls() Controls {
	return Controls{
		TimeScale:      1,
		FrequencyScale: 1,
		AmplitudeScale: 1,
		NoiseScale:     1,
	}
}

func (c *Controls) resolve() Params {
	p := c.Chain.Params()
	p.apply(&Transform{kind: kindTimeScale, value: c.TimeScale})
	p.apply(&Transform{kind: kindFrequencyScale, value: c.FrequencyScale})
	p.apply(&Transform{kind: kindFrequencyOffset, value: c.FrequencyOffset})
	p.apply(&Transform{kind: kindAmplitudeScale, value: c.AmplitudeScale})
	p.apply(&Transform{kind: kindNoiseScale, value: c.NoiseScale})
	if c.Mask != nil {
		p.apply(&Transform{kind: kindPartialMask, mask: *c.Mask})
	}
	return p
}

// snapshot is the immutable control state read by one render block.
// Seeks and transport changes carry sequence numbers so the render path
// applies each exactly once.
type snapshot struct {
	controls Controls
	params   Params
	loop     bool

	seekSeq uint64
	seekTo  float64

	transportSeq uint64
	transport    transport
}

// update publishes a modified copy of the current snapshot. fn may reject
// the change, in which case nothing is published.
func (e *Engine) update(fn func(s *snapshot) error) error {
	if e == nil {
		return ErrNilEngine
	}
	for {
		old := e.ctl.Load()
		next := *old
		if err := fn(&next); err != nil {
			return err
		}
		next.params = next.controls.resolve()
		if e.ctl.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

// SetPlaybackPosition moves playback to t seconds of document time.
// Positions outside the document render silence unless looping.
func (e *Engine) SetPlaybackPosition(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return paramError("position", t)
	}
	return e.update(func(s *snapshot) error {
		s.seekSeq++
		s.seekTo = t
		return nil
	})
}

// SetTimeScale sets the playback speed factor.
func (e *Engine) SetTimeScale(f float64) error {
	if _, err := TimeScale(f); err != nil {
		return err
	}
	return e.update(func(s *snapshot) error {
		s.controls.TimeScale = f
		return nil
	})
}

// SetFrequencyScale sets the frequency multiplier.
func (e *Engine) SetFrequencyScale(f float64) error {
	if _, err := FrequencyScale(f); err != nil {
		return err
	}
	return e.update(func(s *snapshot) error {
		s.controls.FrequencyScale = f
		return nil
	})
}

// SetFrequencyOffset sets the frequency offset in Hz, added after the
// frequency scale.
func (e *Engine) SetFrequencyOffset(hz float64) error {
	if _, err := FrequencyOffset(hz); err != nil {
		return err
	}
	return e.update(func(s *snapshot) error {
		s.controls.FrequencyOffset = hz
		return nil
	})
}

// SetAmplitudeScale sets the partial amplitude multiplier.
func (e *Engine) SetAmplitudeScale(f float64) error {
	if _, err := AmplitudeScale(f); err != nil {
		return err
	}
	return e.update(func(s *snapshot) error {
		s.controls.AmplitudeScale = f
		return nil
	})
}

// SetNoiseScale sets the noise energy multiplier.
func (e *Engine) SetNoiseScale(f float64) error {
	if _, err := NoiseScale(f); err != nil {
		return err
	}
	return e.update(func(s *snapshot) error {
		s.controls.NoiseScale = f
		return nil
	})
}

// SetNoiseBandwidth sets the per-partial noise bandwidth as a fraction of
// the partial frequency.
func (e *Engine) SetNoiseBandwidth(f float64) error {
	if err := validBandwidth(f); err != nil {
		return err
	}
	return e.update(func(s *snapshot) error {
		s.controls.NoiseBandwidth = f
		return nil
	})
}

// SetPartialControls replaces the overrides of partial i. Indices past the
// document's partial count are kept and take effect for documents that
// have that partial.
func (e *Engine) SetPartialControls(i int, pc PartialControls) error {
	if err := pc.validate(); err != nil {
		return err
	}
	return e.updatePartial(i, func(p *PartialControls) { *p = pc })
}

// SetPartialFrequencyScale sets the frequency multiplier of partial i.
func (e *Engine) SetPartialFrequencyScale(i int, f float64) error {
	if _, err := FrequencyScale(f); err != nil {
		return err
	}
	return e.updatePartial(i, func(p *PartialControls) { p.FrequencyScale = f })
}

// SetPartialFrequencyOffset sets the frequency offset of partial i in Hz.
func (e *Engine) SetPartialFrequencyOffset(i int, hz float64) error {
	if _, err := FrequencyOffset(hz); err != nil {
		return err
	}
	return e.updatePartial(i, func(p *PartialControls) { p.FrequencyOffset = hz })
}

// SetPartialAmplitudeScale sets the amplitude multiplier of partial i.
func (e *Engine) SetPartialAmplitudeScale(i int, f float64) error {
	if _, err := AmplitudeScale(f); err != nil {
		return err
	}
	return e.updatePartial(i, func(p *PartialControls) { p.AmplitudeScale = f })
}

// SetPartialNoiseScale sets the noise energy multiplier of partial i.
func (e *Engine) SetPartialNoiseScale(i int, f float64) error {
	if _, err := NoiseScale(f); err != nil {
		return err
	}
	return e.updatePartial(i, func(p *PartialControls) { p.NoiseScale = f })
}

// SetPartialNoiseBandwidth sets the noise bandwidth of partial i. Zero
// returns the partial to the engine-wide bandwidth.
func (e *Engine) SetPartialNoiseBandwidth(i int, f float64) error {
	if err := validBandwidth(f); err != nil {
		return err
	}
	return e.updatePartial(i, func(p *PartialControls) { p.NoiseBandwidth = f })
}

// ClearPartialControls drops every per-partial override.
func (e *Engine) ClearPartialControls() error {
	return e.update(func(s *snapshot) error {
		s.controls.Partials = nil
		return nil
	})
}

// updatePartial applies fn to a copy of the overrides with partial i
// present.
func (e *Engine) updatePartial(i int, fn func(*PartialControls)) error {
	if i < 0 || i >= format.DefaultMaxPartials {
		return paramError("partial", float64(i))
	}
	return e.update(func(s *snapshot) error {
		ps := slices.Clone(s.controls.Partials)
		for len(ps) <= i {
			ps = append(ps, DefaultPartialControls())
		}
		fn(&ps[i])
		s.controls.Partials = ps
		return nil
	})
}

// SetPartialMask restricts playback to the partials in set. Excluded
// partials release.
func (e *Engine) SetPartialMask(set PartialSet) error {
	m := set.Clone()
	return e.update(func(s *snapshot) error {
		s.controls.Mask = &m
		return nil
	})
}

// ClearPartialMask re-enables every partial.
func (e *Engine) ClearPartialMask() error {
	return e.update(func(s *snapshot) error {
		s.controls.Mask = nil
		return nil
	})
}

// SetChain sets the transform chain applied beneath the live controls.
func (e *Engine) SetChain(c Chain) error {
	return e.update(func(s *snapshot) error {
		s.controls.Chain = c
		return nil
	})
}

// Play starts or resumes playback from the current position.
func (e *Engine) Play() error {
	return e.setTransport(transportPlay)
}

// Stop halts playback. A soft stop releases every voice through its
// release ramp; a hard stop silences immediately.
func (e *Engine) Stop(hard bool) error {
	if hard {
		return e.setTransport(transportKill)
	}
	return e.setTransport(transportStop)
}

func (e *Engine) setTransport(t transport) error {
	return e.update(func(s *snapshot) error {
		s.transportSeq++
		s.transport = t
		return nil
	})
}

// SetLoop enables or disables wrapping at the end of the document.
func (e *Engine) SetLoop(loop bool) error {
	return e.update(func(s *snapshot) error {
		s.loop = loop
		return nil
	})
}

// Controls returns the current control settings.
func (e *Engine) Controls() Controls {
	if e == nil {
		return defaultControls()
	}
	c := e.ctl.Load().controls
	if c.Mask != nil {
		m := c.Mask.Clone()
		c.Mask = &m
	}
	c.Partials = slices.Clone(c.Partials)
	return c
}
