// SPDX-License-Identifier: MIT
/*
Package config defines the runtime configuration for the tuner: audio
device settings, analysis parameters and the initial tuning reference.
Values come from built-in defaults, an optional YAML file, environment
overrides and finally command line flags, in that order.
*/
package config

import (
	"fmt"

	"tuner/internal/tuner"
	"tuner/pkg/bitint"
)

// Defaults and hard limits for the audio and analysis settings.
const (
	DefaultChannels        = 1     // Mono input
	DefaultDeviceID        = MinDeviceID
	DefaultFramesPerBuffer = 512   // Hardware chunk size; balanced latency
	DefaultLowLatency      = false // Standard latency mode
	DefaultSampleRate      = 44100 // CD-quality audio
	DefaultFFTSize         = 4096  // Analysis window length
	DefaultHopSize         = 2048  // 50% window overlap
	DefaultWindow          = "Hann"
	DefaultA4              = 440.0
	DefaultTargetNote      = "A"
	DefaultTargetOctave    = 4
	DefaultVerbosity       = false
	DefaultWSPort          = "8080"
	DefaultUDPTarget       = "127.0.0.1:9090"

	MinDeviceID   = -1     // -1 selects the system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxFFTSize    = 16384  // Largest supported analysis window
)

// Config holds all runtime options. Yaml tags form the config file schema.
type Config struct {
	// Audio device settings.
	Channels        int     `yaml:"channels"`
	DeviceID        int     `yaml:"device_id"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	LowLatency      bool    `yaml:"low_latency"`
	SampleRate      float64 `yaml:"sample_rate"`

	// Analysis settings.
	FFTSize int    `yaml:"fft_size"`
	HopSize int    `yaml:"hop_size"`
	Window  string `yaml:"window"`

	// Initial tuning reference.
	A4           float64 `yaml:"a4"`
	TargetNote   string  `yaml:"target_note"`
	TargetOctave int     `yaml:"target_octave"`

	// Optional result transports.
	WSEnabled  bool   `yaml:"ws_enabled"`
	WSPort     string `yaml:"ws_port"`
	UDPEnabled bool   `yaml:"udp_enabled"`
	UDPTarget  string `yaml:"udp_target"`

	// Debug options.
	Verbose bool   `yaml:"verbose"`
	Command string `yaml:"-"`
	TUIMode bool   `yaml:"-"`
}

// NewConfig returns a Config populated with defaults, the base onto which
// file, env and flag values are layered.
func NewConfig() *Config {
	return &Config{
		Channels:        DefaultChannels,
		DeviceID:        DefaultDeviceID,
		FramesPerBuffer: DefaultFramesPerBuffer,
		LowLatency:      DefaultLowLatency,
		SampleRate:      DefaultSampleRate,
		FFTSize:         DefaultFFTSize,
		HopSize:         DefaultHopSize,
		Window:          DefaultWindow,
		A4:              DefaultA4,
		TargetNote:      DefaultTargetNote,
		TargetOctave:    DefaultTargetOctave,
		WSPort:          DefaultWSPort,
		UDPTarget:       DefaultUDPTarget,
		Verbose:         DefaultVerbosity,
	}
}

// Validate checks structural settings and clamps the tuning reference into
// its allowed ranges. Everything downstream of this boundary assumes
// validated inputs.
func (c *Config) Validate() error {
	if c.Channels < 1 {
		return fmt.Errorf("channels must be at least 1, got %d", c.Channels)
	}
	if c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample rate must be in %d..%d Hz, got %g", MinSampleRate, MaxSampleRate, c.SampleRate)
	}
	if !bitint.IsPowerOfTwo(c.FFTSize) || c.FFTSize > MaxFFTSize {
		return fmt.Errorf("fft size must be a power of 2 up to %d, got %d", MaxFFTSize, c.FFTSize)
	}
	if c.HopSize <= 0 || c.HopSize > c.FFTSize {
		return fmt.Errorf("hop size must be in 1..%d, got %d", c.FFTSize, c.HopSize)
	}
	if c.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames per buffer must be positive, got %d", c.FramesPerBuffer)
	}
	if _, err := tuner.ParseNote(c.TargetNote); err != nil {
		return err
	}

	// Out-of-range reference values are clamped, not refused; they come
	// from user preference, not structural configuration.
	if c.A4 < tuner.MinA4 {
		c.A4 = tuner.MinA4
	}
	if c.A4 > tuner.MaxA4 {
		c.A4 = tuner.MaxA4
	}
	if c.TargetOctave < tuner.MinOctave {
		c.TargetOctave = tuner.MinOctave
	}
	if c.TargetOctave > tuner.MaxOctave {
		c.TargetOctave = tuner.MaxOctave
	}

	return nil
}

// Reference builds the initial tuning reference snapshot from the
// validated configuration.
func (c *Config) Reference() (tuner.Reference, error) {
	note, err := tuner.ParseNote(c.TargetNote)
	if err != nil {
		return tuner.Reference{}, err
	}
	return tuner.NewReference(c.A4, note, c.TargetOctave), nil
}
