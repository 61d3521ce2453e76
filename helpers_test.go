package ats

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/llehouerou/go-ats/internal/format"
	"github.com/llehouerou/go-ats/internal/wire"
)

const testHop = 0.01

// sineDoc returns a single-partial document holding freq and amp from 0 to
// dur seconds.
func sineDoc(freq, amp, dur float64) *Document {
	n := int(math.Round(dur/testHop)) + 1
	d := NewDocument(TypeAmpFreq, n, 1)
	d.SampleRate = 48000
	d.FrameSize = 480
	d.WindowSize = 1024
	d.AmplitudeMax = amp
	d.FrequencyMax = freq
	d.DeclaredDuration = dur
	for k := range d.Frames {
		d.Frames[k].Time = float64(k) * testHop
		d.Frames[k].Partials[0] = Partial{Frequency: freq, Amplitude: amp}
	}
	return d
}

// richDoc returns a type-4 document with three partials, phases and noise.
func richDoc() *Document {
	d := NewDocument(TypeAmpFreqPhaseNoise, 5, 3)
	d.SampleRate = 44100
	d.FrameSize = 256
	d.WindowSize = 1024
	d.AmplitudeMax = 0.9
	d.FrequencyMax = 1330
	d.DeclaredDuration = 0.03
	for k := range d.Frames {
		f := &d.Frames[k]
		f.Time = float64(k) * 0.0058
		for p := range f.Partials {
			f.Partials[p] = Partial{
				Frequency: 220*float64(p+1) + float64(k),
				Amplitude: 0.1 * float64(p+1+k%2),
				Phase:     -1.5 + 0.37*float64(k+p),
			}
		}
		for b := range f.Noise {
			f.Noise[b] = 0.001 * float64(b+k)
		}
	}
	return d
}

func testHeader(typ format.Type, partials, frames int) format.Header {
	return format.Header{
		Magic:      format.Magic,
		SampleRate: 48000,
		FrameSize:  480,
		WindowSize: 1024,
		Partials:   float64(partials),
		Frames:     float64(frames),
		AmpMax:     1,
		FreqMax:    1000,
		Duration:   0.1,
		Type:       float64(typ),
	}
}

// rawATS builds a file from a header and raw frame records without any
// validation.
func rawATS(order binary.ByteOrder, h format.Header, frames ...[]float64) []byte {
	w := wire.NewWriter(order)
	format.WriteHeader(w, h)
	for _, f := range frames {
		format.WriteFrame(w, f)
	}
	return w.Bytes()
}

func mustEncode(t testing.TB, d *Document, order binary.ByteOrder) []byte {
	t.Helper()
	b, err := encodeDocument(d, order)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return b
}

func mustEngine(t testing.TB, cfg Config, doc *Document) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if doc != nil {
		if err := e.SetDocument(doc); err != nil {
			t.Fatalf("SetDocument: %v", err)
		}
	}
	return e
}

// render pulls total samples in blocks of size and concatenates them.
func render(e *Engine, total, size int) []float32 {
	out := make([]float32, 0, total)
	for len(out) < total {
		n := min(size, total-len(out))
		out = append(out, e.RenderBlock(n)...)
	}
	return out
}

func zeroCrossings(x []float32) int {
	n := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] < 0) != (x[i] < 0) {
			n++
		}
	}
	return n
}

func rms(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var s float64
	for _, v := range x {
		s += float64(v) * float64(v)
	}
	return math.Sqrt(s / float64(len(x)))
}

func maxStep(x []float32) float64 {
	m := 0.0
	for i := 1; i < len(x); i++ {
		m = max(m, math.Abs(float64(x[i])-float64(x[i-1])))
	}
	return m
}

func allZero(x []float32) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}
