package ats

import (
	"math"
	"sync/atomic"

	"github.com/llehouerou/go-ats/internal/format"
	"github.com/llehouerou/go-ats/internal/noise"
	"github.com/llehouerou/go-ats/internal/output"
	"github.com/llehouerou/go-ats/internal/synth"
)

// Engine renders audio from a document.
//
// Rendering (RenderBlock, RenderInto, RenderInt16) must be driven from a
// single goroutine. Control setters and SetDocument may be called from any
// goroutine at any time: their effect is picked up at the start of the
// next block, and the render path never blocks on them.
type Engine struct {
	cfg     Config
	voice   synth.Params
	nyquist float64

	ctl     atomic.Pointer[snapshot]
	pending atomic.Pointer[bank]
	doc     atomic.Pointer[Document]
	posBits atomic.Uint64
	diag    counters

	// Owned by the render goroutine.
	bank         *bank
	cur          *snapshot
	seekSeq      uint64
	transportSeq uint64
	playing      bool

	// The position is anchor + samples/sr*rate, with samples counted since
	// the last seek, wrap or rate change.
	pos     float64
	anchor  float64
	rate    float64
	samples int64
	mix     []float64
	out     []float32
}

// bank is the per-document render state.
type bank struct {
	doc    *Document
	sample *FrameSample
	voices []synth.Voice
	bands  []*noise.Band // nil entries for bands above Nyquist
}

// NewEngine creates an engine. It starts in the playing state with no
// document, rendering silence.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg: cfg,
		voice: synth.Params{
			SampleRate:     cfg.SampleRate,
			RampSamples:    cfg.rampSamples(),
			ResetBlocks:    cfg.VoiceResetBlocks,
			NoiseBandwidth: cfg.NoiseBandwidth,
		},
		nyquist: cfg.SampleRate / 2,
		playing: true,
		rate:    1,
		mix:     make([]float64, cfg.MaxBlockSize),
		out:     make([]float32, cfg.MaxBlockSize),
	}
	s := &snapshot{controls: defaultControls(), loop: cfg.Loop}
	s.controls.NoiseBandwidth = cfg.NoiseBandwidth
	s.params = s.controls.resolve()
	e.ctl.Store(s)
	e.cur = s
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetDocument installs doc for playback from its start. Voices and noise
// generators are allocated here, off the render path. A nil document
// returns ErrNoDocument.
func (e *Engine) SetDocument(doc *Document) error {
	if e == nil {
		return ErrNilEngine
	}
	if doc == nil || len(doc.Frames) == 0 {
		return ErrNoDocument
	}

	seed1, seed2 := uint32(noise.DefaultSeed1), uint32(noise.DefaultSeed2)
	if e.cfg.NoiseSeed != 0 {
		seed1 = e.cfg.NoiseSeed
	}

	b := &bank{
		doc:    doc,
		sample: NewFrameSample(doc),
		voices: make([]synth.Voice, doc.PartialCount()),
	}
	for i := range b.voices {
		b.voices[i].Init(noise.Seeded(seed1, seed2, i))
	}
	if doc.HasNoise() && e.cfg.NoiseMode == NoiseModeBands {
		b.bands = make([]*noise.Band, NoiseBands)
		for i := range b.bands {
			center := format.BandCenter(i)
			if center >= e.nyquist {
				continue
			}
			b.bands[i] = noise.NewBand(center, format.BandWidth(i), e.cfg.SampleRate,
				noise.Seeded(seed1, seed2, len(b.voices)+i))
		}
	}

	e.doc.Store(doc)
	e.pending.Store(b)
	return nil
}

// Document returns the most recently installed document, or nil.
func (e *Engine) Document() *Document {
	return e.doc.Load()
}

// Position returns the playback position in document seconds as of the
// last rendered block.
func (e *Engine) Position() float64 {
	return math.Float64frombits(e.posBits.Load())
}

// Diagnostics returns the engine's counters.
func (e *Engine) Diagnostics() Diagnostics {
	return e.diag.snapshot()
}

// ResetDiagnostics zeroes the counters.
func (e *Engine) ResetDiagnostics() {
	e.diag.reset()
}

// RenderBlock renders n samples into an engine-owned buffer and returns
// it. The slice is valid until the next render call. n is clamped to
// MaxBlockSize.
func (e *Engine) RenderBlock(n int) []float32 {
	if e == nil {
		return nil
	}
	var d Diagnostics
	if n < 0 {
		n = 0
	}
	if n > len(e.out) {
		n = len(e.out)
		d.BlockClamped++
	}
	e.render(e.out[:n], &d)
	return e.out[:n]
}

// RenderInto renders into dst and returns the number of samples written.
// At most MaxBlockSize samples are rendered; the rest of dst is zeroed.
func (e *Engine) RenderInto(dst []float32) int {
	if e == nil {
		return 0
	}
	var d Diagnostics
	n := len(dst)
	if n > len(e.out) {
		n = len(e.out)
		d.BlockClamped++
		clear(dst[n:])
	}
	e.render(dst[:n], &d)
	return n
}

// RenderInt16 renders 16-bit mono PCM into dst and returns the number of
// samples written.
func (e *Engine) RenderInt16(dst []int16) int {
	if e == nil {
		return 0
	}
	var d Diagnostics
	n := len(dst)
	if n > len(e.out) {
		n = len(e.out)
		d.BlockClamped++
		clear(dst[n:])
	}
	e.render(e.out[:n], &d)
	return output.ToPCM16Bit(e.out[:n], 1, dst)
}

func (e *Engine) render(dst []float32, d *Diagnostics) {
	e.beginBlock(d)

	mix := e.mix[:len(dst)]
	clear(mix)
	if e.bank != nil {
		e.renderBank(mix, d)
	}
	for i, v := range mix {
		if !finite(v) {
			v = 0
			d.NonFinite++
		}
		dst[i] = float32(v)
	}
	if e.bank != nil {
		for i := range e.bank.voices {
			e.bank.voices[i].EndBlock(&e.voice)
		}
	}

	d.Blocks++
	e.posBits.Store(math.Float64bits(e.pos))
	e.diag.add(d)
}

// beginBlock picks up a new document and applies pending seeks and
// transport changes.
func (e *Engine) beginBlock(d *Diagnostics) {
	if b := e.pending.Swap(nil); b != nil {
		e.bank = b
		e.seek(0)
	}

	s := e.ctl.Load()
	e.cur = s
	if s.seekSeq != e.seekSeq {
		e.seekSeq = s.seekSeq
		e.seek(s.seekTo)
	}
	if s.transportSeq != e.transportSeq {
		e.transportSeq = s.transportSeq
		switch s.transport {
		case transportPlay:
			e.playing = true
		case transportStop:
			e.playing = false
			e.release(d)
		case transportKill:
			e.playing = false
			e.kill()
		}
	}
}

// seek moves the position to pos and restarts the sample count.
func (e *Engine) seek(pos float64) {
	e.pos = pos
	e.anchor = pos
	e.samples = 0
}

// advance moves the position forward by n output samples at the given
// time scale.
func (e *Engine) advance(n int, rate float64) {
	if rate != e.rate {
		e.seek(e.pos)
		e.rate = rate
	}
	e.samples += int64(n)
	e.pos = e.anchor + float64(e.samples)/e.cfg.SampleRate*e.rate
}

// release starts the release ramp of every sounding voice.
func (e *Engine) release(d *Diagnostics) {
	if e.bank == nil {
		return
	}
	for i := range e.bank.voices {
		v := &e.bank.voices[i]
		if st := v.State(); st == synth.StateAttacking || st == synth.StateActive {
			v.Release()
			d.Releases++
		}
	}
}

func (e *Engine) kill() {
	if e.bank == nil {
		return
	}
	for i := range e.bank.voices {
		e.bank.voices[i].Kill()
	}
	for _, b := range e.bank.bands {
		if b != nil {
			b.Reset()
		}
	}
}

// renderBank walks the block in control steps. At the end of each step
// the trajectory is queried and every voice moves linearly to the new
// values across the step.
func (e *Engine) renderBank(mix []float64, d *Diagnostics) {
	b := e.bank
	p := &e.cur.params
	dur := b.doc.Duration()
	period := e.cfg.ControlPeriod

	for off := 0; off < len(mix); off += period {
		seg := mix[off:min(off+period, len(mix))]

		sounding := e.playing
		if e.playing {
			e.advance(len(seg), p.TimeScale)
			if e.cur.loop && dur > 0 && (e.pos > dur || e.pos < 0) {
				wrapped := math.Mod(e.pos, dur)
				if wrapped < 0 {
					wrapped += dur
				}
				e.seek(wrapped)
			}
			if e.pos < 0 || e.pos > dur {
				sounding = false
				d.OutOfRange++
			} else {
				c := sampleDocument(b.doc, e.pos, p, e.cfg.NoiseTimePolicy, b.sample)
				d.Clamped += uint64(c)
			}
		}

		e.renderVoices(seg, sounding, d)
		e.renderBands(seg, sounding, d)
	}
}

func (e *Engine) renderVoices(seg []float64, sounding bool, d *Diagnostics) {
	b := e.bank
	s := b.sample
	partialNoise := e.cfg.NoiseMode == NoiseModePartials && s.PartialNoise != nil
	overrides := e.cur.controls.Partials

	for i := range b.voices {
		v := &b.voices[i]
		var f, a, nz float64
		bw := e.cur.controls.NoiseBandwidth
		if sounding {
			f, a = s.Frequencies[i], s.Amplitudes[i]
			if partialNoise {
				nz = s.PartialNoise[i]
			}
			if i < len(overrides) {
				pc := &overrides[i]
				f = f*pc.FrequencyScale + pc.FrequencyOffset
				a *= pc.AmplitudeScale
				nz *= math.Sqrt(pc.NoiseScale)
				if pc.NoiseBandwidth > 0 {
					bw = pc.NoiseBandwidth
				}
				if f < 0 {
					f = 0
					d.Clamped++
				}
			}
			if !finite(f) || !finite(a) || !finite(nz) {
				d.NonFinite++
				f, a, nz = 0, 0, 0
			}
			if f >= e.nyquist && (a > 0 || nz > 0) {
				d.Clamped++
				f, a, nz = e.nyquist, 0, 0
			}
		}

		e.voice.NoiseBandwidth = bw
		before := v.State()
		if v.Render(seg, f, a, nz, &e.voice) {
			d.Activations++
		}
		if (before == synth.StateAttacking || before == synth.StateActive) &&
			(v.State() == synth.StateReleasing || v.State() == synth.StateSilent) {
			d.Releases++
		}
	}
}

func (e *Engine) renderBands(seg []float64, sounding bool, d *Diagnostics) {
	b := e.bank
	ws := float64(b.doc.WindowSize)
	for i, band := range b.bands {
		if band == nil {
			continue
		}
		target := 0.0
		if sounding {
			target = format.EnergyRMS(b.sample.Noise[i], ws)
			if !finite(target) {
				d.NonFinite++
				target = 0
			}
		}
		band.Render(seg, target)
	}
}
