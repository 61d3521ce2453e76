package ats

import (
	"math"
	"testing"
)

// twoFrameDoc returns a document with frames at 0 and 1 s.
func twoFrameDoc(a, b []Partial) *Document {
	d := NewDocument(TypeAmpFreqPhase, 2, len(a))
	d.SampleRate = 48000
	d.FrameSize = 480
	d.WindowSize = 1024
	d.Frames[0].Time = 0
	d.Frames[1].Time = 1
	copy(d.Frames[0].Partials, a)
	copy(d.Frames[1].Partials, b)
	return d
}

func TestSampleAt_Boundaries(t *testing.T) {
	doc := richDoc()
	tr := NewTrajectory(doc, Chain{})
	s := NewFrameSample(doc)

	check := func(t *testing.T, at float64, k int) {
		t.Helper()
		tr.SampleAt(at, s)
		f := &doc.Frames[k]
		for p := range f.Partials {
			if s.Frequencies[p] != f.Partials[p].Frequency ||
				s.Amplitudes[p] != f.Partials[p].Amplitude ||
				s.Phases[p] != f.Partials[p].Phase {
				t.Errorf("t=%v partial %d = (%v, %v, %v), want frame %d (%v, %v, %v)",
					at, p, s.Frequencies[p], s.Amplitudes[p], s.Phases[p], k,
					f.Partials[p].Frequency, f.Partials[p].Amplitude, f.Partials[p].Phase)
			}
			if s.PartialNoise[p] != f.Partials[p].NoiseEnergy {
				t.Errorf("t=%v partial %d noise = %v, want %v", at, p, s.PartialNoise[p], f.Partials[p].NoiseEnergy)
			}
		}
		for b := range f.Noise {
			if s.Noise[b] != f.Noise[b] {
				t.Errorf("t=%v band %d = %v, want %v", at, b, s.Noise[b], f.Noise[b])
			}
		}
	}

	last := len(doc.Frames) - 1
	t.Run("first frame", func(t *testing.T) { check(t, doc.Frames[0].Time, 0) })
	t.Run("before start", func(t *testing.T) { check(t, -3, 0) })
	t.Run("last frame", func(t *testing.T) { check(t, doc.Frames[last].Time, last) })
	t.Run("after end", func(t *testing.T) { check(t, 99, last) })
	t.Run("interior frame", func(t *testing.T) { check(t, doc.Frames[2].Time, 2) })
	t.Run("nan", func(t *testing.T) { check(t, math.NaN(), 0) })
}

func TestSampleAt_Interpolates(t *testing.T) {
	doc := twoFrameDoc(
		[]Partial{{Frequency: 100, Amplitude: 0.2}},
		[]Partial{{Frequency: 200, Amplitude: 0.4}},
	)
	tr := NewTrajectory(doc, Chain{})
	s := NewFrameSample(doc)

	tests := []struct {
		at, freq, amp float64
	}{
		{0.25, 125, 0.25},
		{0.5, 150, 0.3},
		{0.75, 175, 0.35},
	}
	for _, tt := range tests {
		tr.SampleAt(tt.at, s)
		if math.Abs(s.Frequencies[0]-tt.freq) > 1e-9 || math.Abs(s.Amplitudes[0]-tt.amp) > 1e-12 {
			t.Errorf("t=%v: (%v, %v), want (%v, %v)", tt.at, s.Frequencies[0], s.Amplitudes[0], tt.freq, tt.amp)
		}
	}
}

func TestSampleAt_SilentEndTakesSoundingFrequency(t *testing.T) {
	doc := twoFrameDoc(
		[]Partial{{Frequency: 0, Amplitude: 0}, {Frequency: 500, Amplitude: 0.8}, {Frequency: 0, Amplitude: 0}},
		[]Partial{{Frequency: 300, Amplitude: 1}, {Frequency: 0, Amplitude: 0}, {Frequency: 700, Amplitude: 0}},
	)
	tr := NewTrajectory(doc, Chain{})
	s := NewFrameSample(doc)
	tr.SampleAt(0.5, s)

	if s.Frequencies[0] != 300 || s.Amplitudes[0] != 0.5 {
		t.Errorf("fade-in partial = (%v, %v), want (300, 0.5)", s.Frequencies[0], s.Amplitudes[0])
	}
	if s.Frequencies[1] != 500 || s.Amplitudes[1] != 0.4 {
		t.Errorf("fade-out partial = (%v, %v), want (500, 0.4)", s.Frequencies[1], s.Amplitudes[1])
	}
	if s.Amplitudes[2] != 0 {
		t.Errorf("silent partial amplitude = %v, want 0", s.Amplitudes[2])
	}
}

func TestSampleAt_PhaseFromNearerFrame(t *testing.T) {
	doc := twoFrameDoc(
		[]Partial{{Frequency: 100, Amplitude: 1, Phase: 0.5}},
		[]Partial{{Frequency: 100, Amplitude: 1, Phase: -2}},
	)
	tr := NewTrajectory(doc, Chain{})
	s := NewFrameSample(doc)

	tr.SampleAt(0.4, s)
	if s.Phases[0] != 0.5 {
		t.Errorf("t=0.4 phase = %v, want 0.5", s.Phases[0])
	}
	tr.SampleAt(0.6, s)
	if s.Phases[0] != -2 {
		t.Errorf("t=0.6 phase = %v, want -2", s.Phases[0])
	}
}

func TestSampleAt_FrequencyScaleDoubles(t *testing.T) {
	doc := richDoc()
	fs, err := FrequencyScale(2)
	if err != nil {
		t.Fatal(err)
	}
	plain := NewTrajectory(doc, Chain{})
	scaled := NewTrajectory(doc, NewChain(fs))
	a, b := NewFrameSample(doc), NewFrameSample(doc)

	for _, at := range []float64{-1, 0, 0.001, 0.0058, 0.01, 0.02, 0.0232, 1} {
		plain.SampleAt(at, a)
		scaled.SampleAt(at, b)
		for p := range a.Frequencies {
			if b.Frequencies[p] != 2*a.Frequencies[p] {
				t.Errorf("t=%v partial %d: %v, want %v", at, p, b.Frequencies[p], 2*a.Frequencies[p])
			}
			if b.Amplitudes[p] != a.Amplitudes[p] {
				t.Errorf("t=%v partial %d amplitude changed", at, p)
			}
		}
	}
}

func TestSampleAt_EmptyMaskSilences(t *testing.T) {
	doc := richDoc()
	tr := NewTrajectory(doc, NewChain(PartialMask(NewPartialSet())))
	s := NewFrameSample(doc)
	for _, at := range []float64{0, 0.007, 0.02} {
		tr.SampleAt(at, s)
		for p := range s.Amplitudes {
			if s.Amplitudes[p] != 0 || s.PartialNoise[p] != 0 {
				t.Errorf("t=%v partial %d = (%v, %v), want silence", at, p, s.Amplitudes[p], s.PartialNoise[p])
			}
		}
	}
}

func TestSampleAt_MaskKeepsSelected(t *testing.T) {
	doc := richDoc()
	tr := NewTrajectory(doc, NewChain(PartialMask(NewPartialSet(1))))
	s := NewFrameSample(doc)
	tr.SampleAt(0, s)
	if s.Amplitudes[0] != 0 || s.Amplitudes[2] != 0 {
		t.Errorf("masked amplitudes = %v, %v; want 0", s.Amplitudes[0], s.Amplitudes[2])
	}
	if s.Amplitudes[1] != doc.Frames[0].Partials[1].Amplitude {
		t.Errorf("kept amplitude = %v, want %v", s.Amplitudes[1], doc.Frames[0].Partials[1].Amplitude)
	}
}

func TestSampleAt_TimeScale(t *testing.T) {
	doc := richDoc()
	ts, err := TimeScale(2)
	if err != nil {
		t.Fatal(err)
	}
	plain := NewTrajectory(doc, Chain{})
	fast := NewTrajectory(doc, NewChain(ts))
	a, b := NewFrameSample(doc), NewFrameSample(doc)

	if got, want := fast.Duration(), doc.Duration()/2; got != want {
		t.Errorf("Duration = %v, want %v", got, want)
	}
	for _, at := range []float64{0, 0.003, 0.0071, 0.0116} {
		plain.SampleAt(2*at, a)
		fast.SampleAt(at, b)
		for p := range a.Frequencies {
			if a.Frequencies[p] != b.Frequencies[p] || a.Amplitudes[p] != b.Amplitudes[p] {
				t.Errorf("t=%v partial %d differs from unscaled t=%v", at, p, 2*at)
			}
		}
		for i := range a.Noise {
			if a.Noise[i] != b.Noise[i] {
				t.Errorf("t=%v band %d: %v, want invariant %v", at, i, b.Noise[i], a.Noise[i])
			}
		}
	}
}

func TestSampleAt_NoiseTimeConserve(t *testing.T) {
	doc := richDoc()
	ts, _ := TimeScale(2)
	inv := NewTrajectoryWithPolicy(doc, NewChain(ts), NoiseTimeInvariant)
	con := NewTrajectoryWithPolicy(doc, NewChain(ts), NoiseTimeConserve)
	a, b := NewFrameSample(doc), NewFrameSample(doc)

	inv.SampleAt(0.004, a)
	con.SampleAt(0.004, b)
	for i := range a.Noise {
		if math.Abs(b.Noise[i]-2*a.Noise[i]) > 1e-15 {
			t.Errorf("band %d: %v, want %v", i, b.Noise[i], 2*a.Noise[i])
		}
	}
	for p := range a.PartialNoise {
		if math.Abs(b.PartialNoise[p]-math.Sqrt2*a.PartialNoise[p]) > 1e-12 {
			t.Errorf("partial %d noise: %v, want %v", p, b.PartialNoise[p], math.Sqrt2*a.PartialNoise[p])
		}
	}
}

func TestSampleAt_FrequencyOffsetClamps(t *testing.T) {
	doc := twoFrameDoc(
		[]Partial{{Frequency: 100, Amplitude: 1}},
		[]Partial{{Frequency: 100, Amplitude: 1}},
	)
	off, _ := FrequencyOffset(-250)
	p := NewChain(off).Params()
	s := NewFrameSample(doc)
	if n := sampleDocument(doc, 0.5, &p, NoiseTimeInvariant, s); n != 1 {
		t.Errorf("clamped = %d, want 1", n)
	}
	if s.Frequencies[0] != 0 {
		t.Errorf("frequency = %v, want 0", s.Frequencies[0])
	}
}

func TestNewFrameSample_Shape(t *testing.T) {
	s := NewFrameSample(sineDoc(440, 1, 0.05))
	if len(s.Frequencies) != 1 || len(s.Amplitudes) != 1 {
		t.Errorf("lengths = %d, %d; want 1", len(s.Frequencies), len(s.Amplitudes))
	}
	if s.Phases != nil || s.Noise != nil || s.PartialNoise != nil {
		t.Error("type-1 sample allocated phase or noise")
	}
}

func TestSampleAt_DoesNotAllocate(t *testing.T) {
	doc := richDoc()
	tr := NewTrajectory(doc, Chain{})
	s := NewFrameSample(doc)
	allocs := testing.AllocsPerRun(100, func() {
		tr.SampleAt(0.011, s)
	})
	if allocs != 0 {
		t.Errorf("SampleAt allocated %v times per call", allocs)
	}
}
