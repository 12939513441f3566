// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.Channels != DefaultChannels {
		t.Errorf("Channels = %d, want %d", cfg.Audio.Channels, DefaultChannels)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", cfg.Audio.SampleRate, DefaultSampleRate)
	}
	if cfg.Audio.DeviceID != DefaultDeviceID {
		t.Errorf("DeviceID = %d, want %d", cfg.Audio.DeviceID, DefaultDeviceID)
	}
	if cfg.Capture.Enabled || cfg.Transport.WebSocketEnabled {
		t.Errorf("capture/transport enabled by default")
	}
}

func TestLoadYaml(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
log_level: debug
audio:
  channels: 1
  sample_rate: 48000
analysis:
  window_len: 1024
  window_stride: 512
capture:
  enabled: true
  file: out.wav
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Audio.Channels != 1 || cfg.Audio.SampleRate != 48000 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Analysis.WindowLen != 1024 || cfg.Analysis.WindowStride != 512 {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if !cfg.Capture.Enabled || cfg.Capture.File != "out.wav" {
		t.Errorf("capture = %+v", cfg.Capture)
	}
	// Unset sections keep their defaults.
	if cfg.Audio.FramesPerBuffer != DefaultFramesPerBuffer {
		t.Errorf("FramesPerBuffer = %d", cfg.Audio.FramesPerBuffer)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("Load accepted a missing explicit config file")
	}
}

func TestLoadMalformedYaml(t *testing.T) {
	if _, err := Load(writeConfig(t, "audio: [not a mapping")); err == nil {
		t.Errorf("Load accepted malformed YAML")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct{ name, yaml string }{
		{"zero channels", "audio:\n  channels: 0\n"},
		{"negative rate", "audio:\n  sample_rate: -1\n"},
		{"rate too high", "audio:\n  sample_rate: 9999999\n"},
		{"stride above window", "analysis:\n  window_len: 256\n  window_stride: 512\n"},
		{"zero transport queue", "transport:\n  queue_cap: 0\n"},
		{"retention below window", "analysis:\n  window_len: 4096\n  retention_len: 4097\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, c.yaml)); err == nil {
				t.Errorf("Load accepted %s", c.name)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPECTRO_SAMPLE_RATE", "48000")
	t.Setenv("SPECTRO_LOG_LEVEL", "debug")
	t.Setenv("SPECTRO_WEBSOCKET_ADDR", ":9999")

	cfg, err := Load(writeConfig(t, "audio:\n  sample_rate: 22050\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Environment wins over the file.
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", cfg.Audio.SampleRate)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketAddr != ":9999" {
		t.Errorf("transport = %+v", cfg.Transport)
	}
}

func TestEngineDerivations(t *testing.T) {
	cfg := NewConfig()
	cfg.Audio.SampleRate = 44100

	ec := cfg.Engine()
	if ec.WindowLen != 4410 {
		t.Errorf("derived WindowLen = %d, want 4410 (rate/10)", ec.WindowLen)
	}
	if ec.WindowStride != ec.WindowLen {
		t.Errorf("derived WindowStride = %d, want %d", ec.WindowStride, ec.WindowLen)
	}
	if ec.RetentionLen != 88200 {
		t.Errorf("derived RetentionLen = %d, want 88200 (2s)", ec.RetentionLen)
	}
}

func TestEnginePow2Window(t *testing.T) {
	cfg := NewConfig()
	cfg.Audio.SampleRate = 44100
	cfg.Analysis.Pow2Window = true

	ec := cfg.Engine()
	if ec.WindowLen != 8192 {
		t.Errorf("pow2 WindowLen = %d, want 8192", ec.WindowLen)
	}
}

func TestFlushEvery(t *testing.T) {
	cfg := NewConfig()
	cfg.Audio.Channels = 2
	cfg.Audio.SampleRate = 44100

	if got := cfg.FlushEvery(); got != 88200 {
		t.Errorf("FlushEvery = %d, want 88200 (1s of interleaved samples)", got)
	}
}
