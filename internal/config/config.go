// SPDX-License-Identifier: MIT

// Package config holds the runtime configuration for the analyzer. Every
// tunable that used to be a process-wide constant (queue capacities,
// window sizing, flush interval) is an explicit field here.
package config

import (
	"fmt"

	"spectro/internal/engine"
	"spectro/internal/stream"
	"spectro/pkg/bitint"
)

// Defaults and limits for the audio pipeline.
const (
	DefaultDeviceID        = -1    // system default device
	DefaultChannels        = 2     // stereo
	DefaultSampleRate      = 44100 // CD-quality audio
	DefaultFramesPerBuffer = 512   // balanced latency/performance
	DefaultLowLatency      = false

	// DefaultQueueCap bounds the frame and message channels. Short
	// queues only add latency; they must never buffer an unbounded
	// backlog.
	DefaultQueueCap = 16

	// Analysis window defaults, as fractions of the sample rate:
	// a tenth of a second per window, tiling without overlap, with two
	// seconds of retention in the ring.
	DefaultWindowFraction    = 10
	DefaultRetentionSeconds  = 2
	DefaultCaptureFile       = "session.wav"
	DefaultWebSocketAddr     = ":8080"
	DefaultTransportQueueCap = 256

	MinSampleRate = 8000   // minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // maximum supported sample rate (Hz)
	MaxWindowLen  = 1 << 16
)

// Config is the full runtime configuration, loaded from defaults, an
// optional YAML file, and environment overrides, then adjusted by CLI
// flags.
type Config struct {
	LogLevel string      `yaml:"log_level"`
	Audio    AudioConfig `yaml:"audio"`

	Analysis  AnalysisConfig  `yaml:"analysis"`
	Capture   CaptureConfig   `yaml:"capture"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds device and stream settings.
type AudioConfig struct {
	DeviceID        int  `yaml:"device_id"`         // PortAudio device index (-1 for default)
	Channels        int  `yaml:"channels"`          // 1=mono, 2=stereo
	SampleRate      int  `yaml:"sample_rate"`       // Hz
	FramesPerBuffer int  `yaml:"frames_per_buffer"` // device batch size (affects latency)
	LowLatency      bool `yaml:"low_latency"`
	QueueCap        int  `yaml:"queue_cap"` // bounded frame-queue capacity
}

// AnalysisConfig sizes the analysis windows. Zero values are derived
// from the sample rate.
type AnalysisConfig struct {
	WindowLen    int  `yaml:"window_len"`    // samples per window; 0 = rate/10
	WindowStride int  `yaml:"window_stride"` // samples between windows; 0 = WindowLen
	RetentionLen int  `yaml:"retention_len"` // ring capacity; 0 = 2s of samples
	Pow2Window   bool `yaml:"pow2_window"`   // round WindowLen up to a power of two
	QueueCap     int  `yaml:"queue_cap"`     // bounded message-channel capacity
}

// CaptureConfig controls the WAV debug sink.
type CaptureConfig struct {
	Enabled      bool   `yaml:"enabled"`
	File         string `yaml:"file"`
	FlushSeconds int    `yaml:"flush_seconds"` // sync interval; 0 = 1s
}

// TransportConfig controls result publishing.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketAddr    string `yaml:"websocket_addr"`
	QueueCap         int    `yaml:"queue_cap"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			DeviceID:        DefaultDeviceID,
			Channels:        DefaultChannels,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			QueueCap:        DefaultQueueCap,
		},
		Analysis: AnalysisConfig{
			QueueCap: DefaultQueueCap,
		},
		Capture: CaptureConfig{
			Enabled: false,
			File:    DefaultCaptureFile,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    DefaultWebSocketAddr,
			QueueCap:         DefaultTransportQueueCap,
		},
	}
}

// Validate checks the configuration's internal consistency.
func (c *Config) Validate() error {
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Audio.Channels)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample rate %d outside supported range [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames per buffer must be positive, got %d", c.Audio.FramesPerBuffer)
	}
	if c.Audio.QueueCap <= 0 || c.Analysis.QueueCap <= 0 || c.Transport.QueueCap <= 0 {
		return fmt.Errorf("queue capacities must be positive")
	}
	if c.Analysis.WindowLen < 0 || c.Analysis.WindowLen > MaxWindowLen {
		return fmt.Errorf("window length %d outside [0, %d]", c.Analysis.WindowLen, MaxWindowLen)
	}
	if c.Analysis.WindowStride < 0 {
		return fmt.Errorf("window stride must not be negative")
	}
	ec := c.Engine()
	if ec.WindowStride > ec.WindowLen {
		return fmt.Errorf("window stride %d larger than window length %d leaves gaps",
			ec.WindowStride, ec.WindowLen)
	}
	if ec.RetentionLen < ec.WindowLen+c.Audio.FramesPerBuffer*c.Audio.Channels {
		return fmt.Errorf("retention %d too small for window %d plus one device buffer",
			ec.RetentionLen, ec.WindowLen)
	}
	return nil
}

// Engine derives the executor sizing, filling zero analysis fields from
// the sample rate.
func (c *Config) Engine() engine.Config {
	windowLen := c.Analysis.WindowLen
	if windowLen == 0 {
		windowLen = c.Audio.SampleRate / DefaultWindowFraction
	}
	if c.Analysis.Pow2Window {
		windowLen = bitint.NextPowerOfTwo(windowLen)
	}
	stride := c.Analysis.WindowStride
	if stride == 0 {
		stride = windowLen
	}
	retention := c.Analysis.RetentionLen
	if retention == 0 {
		retention = c.Audio.SampleRate * DefaultRetentionSeconds
	}
	return engine.Config{
		Channels:     stream.NewChannelCount(c.Audio.Channels),
		SampleRate:   stream.NewSampleRate(c.Audio.SampleRate),
		WindowLen:    windowLen,
		WindowStride: stride,
		RetentionLen: retention,
	}
}

// FlushEvery is the capture sink's sync interval in interleaved samples.
func (c *Config) FlushEvery() int {
	secs := c.Capture.FlushSeconds
	if secs == 0 {
		secs = 1
	}
	return secs * c.Audio.SampleRate * c.Audio.Channels
}
