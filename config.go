package ats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// MaxSampleRate bounds Config.SampleRate.
const MaxSampleRate = 768000

// Config holds engine settings.
type Config struct {
	// SampleRate is the output sample rate in Hz.
	SampleRate float64 `mapstructure:"sample_rate"`

	// MaxBlockSize is the largest block rendered in one call. Longer
	// requests are clamped.
	MaxBlockSize int `mapstructure:"max_block_size"`

	// ControlPeriod is the number of samples between trajectory queries.
	ControlPeriod int `mapstructure:"control_period"`

	// RampTime is the attack and release length of a partial.
	RampTime time.Duration `mapstructure:"ramp_time"`

	// VoiceResetBlocks is the number of silent blocks after which a
	// voice's oscillator state is reset.
	VoiceResetBlocks int `mapstructure:"voice_reset_blocks"`

	// Loop wraps playback at the end of the document.
	Loop bool `mapstructure:"loop"`

	NoiseMode       NoiseMode       `mapstructure:"noise_mode"`
	NoiseTimePolicy NoiseTimePolicy `mapstructure:"noise_time_policy"`

	// NoiseBandwidth is the per-partial noise bandwidth as a fraction of
	// the partial frequency (NoiseModePartials only).
	NoiseBandwidth float64 `mapstructure:"noise_bandwidth"`

	// NoiseSeed seeds the noise generators. Zero uses the built-in seed.
	NoiseSeed uint32 `mapstructure:"noise_seed"`

	Decode DecodeOptions `mapstructure:"decode"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:       48000,
		MaxBlockSize:     4096,
		ControlPeriod:    32,
		RampTime:         5 * time.Millisecond,
		VoiceResetBlocks: 16,
		NoiseMode:        NoiseModeBands,
		NoiseTimePolicy:  NoiseTimeInvariant,
		NoiseBandwidth:   0.1,
		Decode:           DefaultDecodeOptions(),
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var err error
	if !finite(c.SampleRate) || c.SampleRate <= 0 || c.SampleRate > MaxSampleRate {
		err = multierr.Append(err, fmt.Errorf("sample_rate = %g: %w", c.SampleRate, ErrInvalidParameter))
	}
	if c.MaxBlockSize < 1 {
		err = multierr.Append(err, fmt.Errorf("max_block_size = %d: %w", c.MaxBlockSize, ErrInvalidParameter))
	}
	if c.ControlPeriod < 1 {
		err = multierr.Append(err, fmt.Errorf("control_period = %d: %w", c.ControlPeriod, ErrInvalidParameter))
	}
	if c.RampTime < 0 {
		err = multierr.Append(err, fmt.Errorf("ramp_time = %v: %w", c.RampTime, ErrInvalidParameter))
	}
	if c.VoiceResetBlocks < 1 {
		err = multierr.Append(err, fmt.Errorf("voice_reset_blocks = %d: %w", c.VoiceResetBlocks, ErrInvalidParameter))
	}
	if !c.NoiseMode.Valid() {
		err = multierr.Append(err, fmt.Errorf("noise_mode = %q: %w", c.NoiseMode, ErrInvalidParameter))
	}
	if !c.NoiseTimePolicy.Valid() {
		err = multierr.Append(err, fmt.Errorf("noise_time_policy = %q: %w", c.NoiseTimePolicy, ErrInvalidParameter))
	}
	if !finite(c.NoiseBandwidth) || c.NoiseBandwidth < 0 {
		err = multierr.Append(err, fmt.Errorf("noise_bandwidth = %g: %w", c.NoiseBandwidth, ErrInvalidParameter))
	}
	if !c.Decode.FramePolicy.Valid() {
		err = multierr.Append(err, fmt.Errorf("decode.frame_policy = %q: %w", c.Decode.FramePolicy, ErrInvalidParameter))
	}
	if c.Decode.MaxPartials < 0 {
		err = multierr.Append(err, fmt.Errorf("decode.max_partials = %d: %w", c.Decode.MaxPartials, ErrInvalidParameter))
	}
	if c.Decode.MaxFrames < 0 {
		err = multierr.Append(err, fmt.Errorf("decode.max_frames = %d: %w", c.Decode.MaxFrames, ErrInvalidParameter))
	}
	return err
}

// rampSamples converts RampTime to samples.
func (c Config) rampSamples() int {
	return int(math.Round(c.RampTime.Seconds() * c.SampleRate))
}

// EnvPrefix is the prefix of environment overrides, e.g. ATS_SAMPLE_RATE
// or ATS_DECODE_FRAME_POLICY.
const EnvPrefix = "ATS"

// SetConfigDefaults registers DefaultConfig under its mapstructure keys.
func SetConfigDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("max_block_size", d.MaxBlockSize)
	v.SetDefault("control_period", d.ControlPeriod)
	v.SetDefault("ramp_time", d.RampTime)
	v.SetDefault("voice_reset_blocks", d.VoiceResetBlocks)
	v.SetDefault("loop", d.Loop)
	v.SetDefault("noise_mode", string(d.NoiseMode))
	v.SetDefault("noise_time_policy", string(d.NoiseTimePolicy))
	v.SetDefault("noise_bandwidth", d.NoiseBandwidth)
	v.SetDefault("noise_seed", d.NoiseSeed)
	v.SetDefault("decode.frame_policy", string(d.Decode.FramePolicy))
	v.SetDefault("decode.max_partials", d.Decode.MaxPartials)
	v.SetDefault("decode.max_frames", d.Decode.MaxFrames)
}

// NewViper returns a viper instance with the defaults registered and
// ATS_ environment overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetConfigDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads a YAML, TOML or JSON file at path, applies environment
// overrides and validates the result. An empty path uses defaults and
// environment only.
func LoadConfig(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("ats: read config: %w", err)
		}
	}
	return ConfigFromViper(v)
}

// ConfigFromViper decodes and validates a Config from v.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("ats: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
