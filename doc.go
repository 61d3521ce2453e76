// Package ats decodes ATS (Analysis-Transformation-Synthesis) spectral
// analysis files and resynthesizes audio from them in real time.
//
// An ATS file describes a sound as a set of sinusoidal partial tracks
// sampled at regular analysis frames, plus optional residual noise energy
// in 25 critical bands. This package reads such files into an immutable
// Document, answers interpolated time queries through a Trajectory, and
// renders click-free audio with an Engine.
//
// # Basic Usage
//
//	doc, err := ats.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eng, err := ats.NewEngine(ats.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := eng.SetDocument(doc); err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    block := eng.RenderBlock(512)
//	    // Send block to the audio device...
//	}
//
// # Transformations
//
// Time, frequency, amplitude and noise transformations and partial masks
// are built as Transform values and composed with Chain. A Chain can be
// applied lazily through a Trajectory or the engine, or materialized into
// a new Document with Chain.Apply. The engine also exposes each transform
// as a live control (SetTimeScale, SetFrequencyScale, ...).
//
// # Noise
//
// Residual noise is rendered per critical band (NoiseModeBands), spread
// over the partials of each band (NoiseModePartials), or not at all
// (NoiseModeOff).
//
// # Thread Safety
//
// Documents are read-only and may be shared freely. An Engine is rendered
// from one goroutine; its control setters may be called from any goroutine
// and publish an immutable snapshot that the next block picks up, so the
// render path never takes a lock.
//
// # File Format
//
// The header is ten IEEE-754 doubles (magic 123, sample rate, frame size,
// window size, partials, frames, max amplitude, max frequency, duration,
// type) followed by one record per frame: the frame time, then amplitude,
// frequency and, for types 2 and 4, phase of every partial, then for types
// 3 and 4 the 25 noise band energies. Either byte order is accepted.
package ats
