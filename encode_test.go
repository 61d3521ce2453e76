package ats

import (
	"encoding/binary"

	"github.com/llehouerou/go-ats/internal/format"
	"github.com/llehouerou/go-ats/internal/wire"
)

// encodeDocument serializes doc in the ATS file layout using the given byte
// order (little-endian when nil). Per-partial noise shares are not written.
func encodeDocument(doc *Document, order binary.ByteOrder) ([]byte, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	w := wire.NewWriter(order)
	format.WriteHeader(w, format.Header{
		Magic:      format.Magic,
		SampleRate: doc.SampleRate,
		FrameSize:  float64(doc.FrameSize),
		WindowSize: float64(doc.WindowSize),
		Partials:   float64(doc.partials),
		Frames:     float64(len(doc.Frames)),
		AmpMax:     doc.AmplitudeMax,
		FreqMax:    doc.FrequencyMax,
		Duration:   doc.DeclaredDuration,
		Type:       float64(doc.Type),
	})

	l := format.Layout{Partials: doc.partials, Phase: doc.HasPhase(), Noise: doc.HasNoise()}
	stride := l.PartialStride()
	rec := make([]float64, l.FrameLen())
	for k := range doc.Frames {
		f := &doc.Frames[k]
		rec[0] = f.Time
		for p := range f.Partials {
			base := 1 + p*stride
			rec[base+format.OffsetAmp] = f.Partials[p].Amplitude
			rec[base+format.OffsetFreq] = f.Partials[p].Frequency
			if l.Phase {
				rec[base+format.OffsetPhase] = f.Partials[p].Phase
			}
		}
		if l.Noise {
			copy(rec[1+l.Partials*stride:], f.Noise)
		}
		format.WriteFrame(w, rec)
	}
	return w.Bytes(), nil
}
