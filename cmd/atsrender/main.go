// Command atsrender renders an ATS analysis file to a mono PCM WAV file.
//
// Usage:
//
//	atsrender [flags] -i input.ats -o output.wav
//
// Engine settings come from an optional config file (--config) and ATS_*
// environment variables; the flags below override both.
package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/pflag"

	"github.com/llehouerou/go-ats"
	"github.com/llehouerou/go-ats/internal/output"
)

type options struct {
	in, out    string
	duration   float64
	block      int
	bits       int
	timeScale  float64
	freqScale  float64
	freqOffset float64
	ampScale   float64
	noiseScale float64
	mask       []int
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("atsrender: ")

	fs := pflag.NewFlagSet("atsrender", pflag.ExitOnError)
	var opt options
	configPath := fs.String("config", "", "config file (yaml, toml or json)")
	fs.StringVarP(&opt.in, "in", "i", "", "input ATS file")
	fs.StringVarP(&opt.out, "out", "o", "out.wav", "output WAV file")
	fs.Float64VarP(&opt.duration, "duration", "d", 0, "seconds to render (0 renders the whole document)")
	fs.IntVar(&opt.block, "block", 512, "samples per render block")
	fs.IntVar(&opt.bits, "bits", 16, "output bit depth: 16, 24 or 32")
	fs.Float64Var(&opt.timeScale, "time-scale", 1, "playback speed factor")
	fs.Float64Var(&opt.freqScale, "freq-scale", 1, "frequency multiplier")
	fs.Float64Var(&opt.freqOffset, "freq-offset", 0, "frequency offset in Hz")
	fs.Float64Var(&opt.ampScale, "amp-scale", 1, "partial amplitude multiplier")
	fs.Float64Var(&opt.noiseScale, "noise-scale", 1, "noise energy multiplier")
	fs.IntSliceVar(&opt.mask, "mask", nil, "comma-separated partial indices to keep")
	fs.Float64("sample-rate", 0, "output sample rate in Hz")
	fs.String("noise-mode", "", "noise rendering: bands, partials or off")
	fs.Bool("loop", false, "wrap at the end of the document")
	_ = fs.Parse(os.Args[1:])

	if opt.in == "" {
		fmt.Fprintln(os.Stderr, "usage: atsrender [flags] -i input.ats -o output.wav")
		fs.PrintDefaults()
		os.Exit(2)
	}

	v := ats.NewViper()
	for key, flag := range map[string]string{
		"sample_rate": "sample-rate",
		"noise_mode":  "noise-mode",
		"loop":        "loop",
	} {
		if f := fs.Lookup(flag); f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				log.Fatal(err)
			}
		}
	}
	if *configPath != "" {
		v.SetConfigFile(*configPath)
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("read config: %v", err)
		}
	}
	cfg, err := ats.ConfigFromViper(v)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(cfg, opt); err != nil {
		log.Fatal(err)
	}
}

func run(cfg ats.Config, opt options) error {
	pcm, ok := output.FormatOf(opt.bits)
	if !ok {
		return fmt.Errorf("--bits: unsupported bit depth %d", opt.bits)
	}
	data, err := os.ReadFile(opt.in)
	if err != nil {
		return err
	}
	if !ats.Sniff(data) {
		return fmt.Errorf("%s: not an ATS file", opt.in)
	}
	doc, err := ats.DecodeWithOptions(data, cfg.Decode)
	if err != nil {
		return fmt.Errorf("%s: %w", opt.in, err)
	}
	d := doc.Describe()
	log.Printf("%s: %s, %d partials, %d frames, %.3f s", opt.in, d.Type, d.PartialCount, d.FrameCount, d.Duration)

	engine, err := ats.NewEngine(cfg)
	if err != nil {
		return err
	}
	if err := configure(engine, doc, opt); err != nil {
		return err
	}

	seconds := opt.duration
	if seconds <= 0 {
		seconds = (doc.Duration() - doc.StartTime()) / opt.timeScale
	}
	total := int(math.Ceil(seconds * cfg.SampleRate))
	block := max(1, min(opt.block, cfg.MaxBlockSize))

	f, err := os.Create(opt.out)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, int(cfg.SampleRate), pcm.BitDepth(), 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: int(cfg.SampleRate)},
		Data:           make([]int, block),
		SourceBitDepth: pcm.BitDepth(),
	}
	for done := 0; done < total; {
		n := min(block, total-done)
		samples := engine.RenderBlock(n)
		buf.Data = buf.Data[:output.ToInts(samples, pcm, 1, buf.Data[:cap(buf.Data)])]
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("write %s: %w", opt.out, err)
		}
		done += len(samples)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write %s: %w", opt.out, err)
	}

	diag := engine.Diagnostics()
	log.Printf("%s: %d samples in %d blocks (clamped %d, non-finite %d, out of range %d)",
		opt.out, total, diag.Blocks, diag.Clamped, diag.NonFinite, diag.OutOfRange)
	return nil
}

func configure(e *ats.Engine, doc *ats.Document, opt options) error {
	if err := e.SetDocument(doc); err != nil {
		return err
	}
	if err := e.SetPlaybackPosition(doc.StartTime()); err != nil {
		return err
	}
	steps := []struct {
		name string
		set  func(float64) error
		v    float64
	}{
		{"time-scale", e.SetTimeScale, opt.timeScale},
		{"freq-scale", e.SetFrequencyScale, opt.freqScale},
		{"freq-offset", e.SetFrequencyOffset, opt.freqOffset},
		{"amp-scale", e.SetAmplitudeScale, opt.ampScale},
		{"noise-scale", e.SetNoiseScale, opt.noiseScale},
	}
	for _, s := range steps {
		if err := s.set(s.v); err != nil {
			return fmt.Errorf("--%s: %w", s.name, err)
		}
	}
	if len(opt.mask) > 0 {
		if err := e.SetPartialMask(ats.NewPartialSet(opt.mask...)); err != nil {
			return err
		}
	}
	return nil
}
