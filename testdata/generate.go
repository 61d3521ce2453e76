//go:build ignore

// This script generates synthetic ATS files for manual testing.
// Run with: go run testdata/generate.go
//
// Generated files:
//
//	testdata/generated/
//	├── sine_440_le.ats        # type 1, one partial, little-endian
//	├── sine_440_be.ats        # same, big-endian
//	├── harmonics_phase.ats    # type 2, eight harmonics of 220 Hz with phases
//	├── glide_noise.ats        # type 3, gliding partial plus band noise
//	└── full_type4.ats         # type 4, partials, phases and noise
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/llehouerou/go-ats"
	"github.com/llehouerou/go-ats/internal/format"
	"github.com/llehouerou/go-ats/internal/wire"
)

const (
	outDir     = "testdata/generated"
	sampleRate = 44100
	frameSize  = 441
	windowSize = 1024
	hop        = float64(frameSize) / sampleRate
)

type fixture struct {
	name  string
	order binary.ByteOrder
	doc   *ats.Document
}

func main() {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fail(err)
	}

	fixtures := []fixture{
		{"sine_440_le.ats", binary.LittleEndian, sine(440, 0.5, 1)},
		{"sine_440_be.ats", binary.BigEndian, sine(440, 0.5, 1)},
		{"harmonics_phase.ats", binary.LittleEndian, harmonics(220, 8, 2)},
		{"glide_noise.ats", binary.LittleEndian, glide(300, 1200, 2)},
		{"full_type4.ats", binary.BigEndian, full(1.5)},
	}
	for _, f := range fixtures {
		data, err := encode(f.doc, f.order)
		if err != nil {
			fail(fmt.Errorf("%s: %w", f.name, err))
		}
		path := filepath.Join(outDir, f.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fail(err)
		}
		d := f.doc.Describe()
		fmt.Printf("%-22s %-22s %3d partials %4d frames %6d bytes\n",
			f.name, d.Type, d.PartialCount, d.FrameCount, len(data))
	}
}

func encode(doc *ats.Document, order binary.ByteOrder) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	w := wire.NewWriter(order)
	format.WriteHeader(w, format.Header{
		Magic:      format.Magic,
		SampleRate: doc.SampleRate,
		FrameSize:  float64(doc.FrameSize),
		WindowSize: float64(doc.WindowSize),
		Partials:   float64(doc.PartialCount()),
		Frames:     float64(doc.FrameCount()),
		AmpMax:     doc.AmplitudeMax,
		FreqMax:    doc.FrequencyMax,
		Duration:   doc.DeclaredDuration,
		Type:       float64(doc.Type),
	})
	for _, f := range doc.Frames {
		rec := []float64{f.Time}
		for _, p := range f.Partials {
			rec = append(rec, p.Amplitude, p.Frequency)
			if doc.HasPhase() {
				rec = append(rec, p.Phase)
			}
		}
		if doc.HasNoise() {
			rec = append(rec, f.Noise...)
		}
		format.WriteFrame(w, rec)
	}
	return w.Bytes(), nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func newDoc(typ ats.FileType, seconds float64, partials int) *ats.Document {
	n := int(seconds/hop) + 1
	doc := ats.NewDocument(typ, n, partials)
	doc.SampleRate = sampleRate
	doc.FrameSize = frameSize
	doc.WindowSize = windowSize
	doc.DeclaredDuration = seconds
	for k := range doc.Frames {
		doc.Frames[k].Time = float64(k) * hop
	}
	return doc
}

func finish(doc *ats.Document) *ats.Document {
	for _, f := range doc.Frames {
		for _, p := range f.Partials {
			doc.AmplitudeMax = max(doc.AmplitudeMax, p.Amplitude)
			doc.FrequencyMax = max(doc.FrequencyMax, p.Frequency)
		}
	}
	return doc
}

func sine(freq, amp, seconds float64) *ats.Document {
	doc := newDoc(ats.TypeAmpFreq, seconds, 1)
	for k := range doc.Frames {
		doc.Frames[k].Partials[0] = ats.Partial{Frequency: freq, Amplitude: amp}
	}
	return finish(doc)
}

// harmonics builds a 1/h spectrum with a short fade in and out.
func harmonics(f0 float64, count int, seconds float64) *ats.Document {
	doc := newDoc(ats.TypeAmpFreqPhase, seconds, count)
	last := len(doc.Frames) - 1
	for k := range doc.Frames {
		env := math.Min(1, math.Min(float64(k), float64(last-k))/10)
		for h := range doc.Frames[k].Partials {
			f := f0 * float64(h+1)
			doc.Frames[k].Partials[h] = ats.Partial{
				Frequency: f,
				Amplitude: env * 0.3 / float64(h+1),
				Phase:     math.Mod(2*math.Pi*f*doc.Frames[k].Time, 2*math.Pi) - math.Pi,
			}
		}
	}
	return finish(doc)
}

func glide(from, to, seconds float64) *ats.Document {
	doc := newDoc(ats.TypeAmpFreqNoise, seconds, 1)
	last := float64(len(doc.Frames) - 1)
	for k := range doc.Frames {
		x := float64(k) / last
		doc.Frames[k].Partials[0] = ats.Partial{
			Frequency: from * math.Pow(to/from, x),
			Amplitude: 0.4,
		}
		for b := range doc.Frames[k].Noise {
			doc.Frames[k].Noise[b] = 0.02 * (1 - x) / float64(b+1)
		}
	}
	return finish(doc)
}

func full(seconds float64) *ats.Document {
	doc := newDoc(ats.TypeAmpFreqPhaseNoise, seconds, 4)
	for k := range doc.Frames {
		t := doc.Frames[k].Time
		for p := range doc.Frames[k].Partials {
			f := 330 * float64(p+1) * (1 + 0.01*math.Sin(2*math.Pi*5*t))
			doc.Frames[k].Partials[p] = ats.Partial{
				Frequency: f,
				Amplitude: 0.2 / float64(p+1),
				Phase:     math.Mod(2*math.Pi*f*t, 2*math.Pi) - math.Pi,
			}
		}
		for b := range doc.Frames[k].Noise {
			doc.Frames[k].Noise[b] = 0.005
		}
	}
	return finish(doc)
}
