// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds a Config from defaults, an optional YAML file, and
// environment overrides. If path is empty, "config.yaml" in the working
// directory is used when present. A .env file, when present, is folded
// into the environment first.
func Load(path string) (*Config, error) {
	// Missing .env files are fine; explicit config files are not.
	_ = godotenv.Load()

	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment override the most commonly
// deployment-specific settings.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SPECTRO_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v, ok := envInt("SPECTRO_DEVICE_ID"); ok {
		c.Audio.DeviceID = v
	}
	if v, ok := envInt("SPECTRO_CHANNELS"); ok {
		c.Audio.Channels = v
	}
	if v, ok := envInt("SPECTRO_SAMPLE_RATE"); ok {
		c.Audio.SampleRate = v
	}
	if v := os.Getenv("SPECTRO_WEBSOCKET_ADDR"); v != "" {
		c.Transport.WebSocketAddr = v
		c.Transport.WebSocketEnabled = true
	}
	if v := os.Getenv("SPECTRO_CAPTURE_FILE"); v != "" {
		c.Capture.File = v
		c.Capture.Enabled = true
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
