// SPDX-License-Identifier: MIT
// Package config loads the runtime configuration from YAML, applies
// environment overrides and validates the result. All values end up in
// explicit structs handed to the component constructors; nothing in the core
// reads configuration state globally.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when the file or a field is absent.
const (
	DefaultSampleRate      = 8000
	DefaultBufferFrames    = 16000
	DefaultReadFrames      = 256
	DefaultFFTLength       = 1024
	DefaultWindow          = "none"
	DefaultDownsample      = 1
	DefaultWSAddress       = ":8080"
	DefaultUDPTarget       = "127.0.0.1:9090"
	DefaultPublishInterval = 33 * time.Millisecond // ~30Hz
)

// Config is the main application configuration, loaded from YAML.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
	Command  string `yaml:"command,omitempty"` // one-off command (e.g. "list") instead of running the pipeline

	Audio     AudioConfig     `yaml:"audio"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds capture and buffering settings.
type AudioConfig struct {
	Device       string  `yaml:"device"`        // input device name, "" for the host default
	SampleRate   float64 `yaml:"sample_rate"`   // capture rate in Hz
	BufferFrames int     `yaml:"buffer_frames"` // circular buffer capacity in frames
	ReadFrames   int     `yaml:"read_frames"`   // frames per backend delivery
	LowLatency   bool    `yaml:"low_latency"`   // request the device's low-latency profile
}

// AnalysisConfig holds spectral analyzer settings.
type AnalysisConfig struct {
	FFTLength  int    `yaml:"fft_length"` // transform length in frames
	Window     string `yaml:"window"`     // tapering window name
	Downsample int    `yaml:"downsample"` // decimation factor (keep every Nth frame)
}

// RecordingConfig holds the optional WAV tee settings.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"`
}

// TransportConfig holds the renderer-facing transport settings.
type TransportConfig struct {
	WSEnabled        bool          `yaml:"ws_enabled"`
	WSAddress        string        `yaml:"ws_address"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	PublishInterval  time.Duration `yaml:"publish_interval"`
}

// LoadConfig loads configuration from the YAML file at path. An empty path
// searches the default locations ("visualizer.yaml", "config/visualizer.yaml");
// when none exists the built-in defaults are used. Environment overrides are
// applied after loading, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{
		LogLevel: "info",
		Audio: AudioConfig{
			SampleRate:   DefaultSampleRate,
			BufferFrames: DefaultBufferFrames,
			ReadFrames:   DefaultReadFrames,
		},
		Analysis: AnalysisConfig{
			FFTLength:  DefaultFFTLength,
			Window:     DefaultWindow,
			Downsample: DefaultDownsample,
		},
		Transport: TransportConfig{
			WSEnabled:        true,
			WSAddress:        DefaultWSAddress,
			UDPTargetAddress: DefaultUDPTarget,
			PublishInterval:  DefaultPublishInterval,
		},
	}

	if path == "" {
		candidates := []string{
			"visualizer.yaml",
			"config/visualizer.yaml",
		}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rejects configurations the component constructors would refuse
// anyway, so mistakes surface before any thread starts.
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %v", c.Audio.SampleRate)
	}
	if c.Audio.BufferFrames <= 0 {
		return fmt.Errorf("audio.buffer_frames must be positive, got %d", c.Audio.BufferFrames)
	}
	if c.Audio.ReadFrames <= 0 {
		return fmt.Errorf("audio.read_frames must be positive, got %d", c.Audio.ReadFrames)
	}
	if c.Analysis.FFTLength <= 0 {
		return fmt.Errorf("analysis.fft_length must be positive, got %d", c.Analysis.FFTLength)
	}
	if c.Analysis.Downsample < 1 {
		return fmt.Errorf("analysis.downsample must be at least 1, got %d", c.Analysis.Downsample)
	}
	if c.Transport.PublishInterval <= 0 {
		return fmt.Errorf("transport.publish_interval must be positive, got %s", c.Transport.PublishInterval)
	}
	return nil
}

// applyEnvOverrides lets VIS_* environment variables win over file values.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("VIS_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("VIS_DEVICE"); ok {
		cfg.Audio.Device = val
	}
	if val, ok := os.LookupEnv("VIS_WS_ADDRESS"); ok {
		cfg.Transport.WSAddress = val
	}
	if val, ok := os.LookupEnv("VIS_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("VIS_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("VIS_PUBLISH_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.PublishInterval = dur
		}
	}
}
