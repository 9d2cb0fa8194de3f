// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Run from a temp dir so no default config file is picked up.
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %v, want %v", cfg.Audio.SampleRate, DefaultSampleRate)
	}
	if cfg.Audio.BufferFrames != DefaultBufferFrames {
		t.Errorf("BufferFrames = %d, want %d", cfg.Audio.BufferFrames, DefaultBufferFrames)
	}
	if cfg.Audio.ReadFrames != DefaultReadFrames {
		t.Errorf("ReadFrames = %d, want %d", cfg.Audio.ReadFrames, DefaultReadFrames)
	}
	if cfg.Analysis.FFTLength != DefaultFFTLength {
		t.Errorf("FFTLength = %d, want %d", cfg.Analysis.FFTLength, DefaultFFTLength)
	}
	if cfg.Analysis.Window != DefaultWindow {
		t.Errorf("Window = %q, want %q", cfg.Analysis.Window, DefaultWindow)
	}
	if cfg.Analysis.Downsample != DefaultDownsample {
		t.Errorf("Downsample = %d, want %d", cfg.Analysis.Downsample, DefaultDownsample)
	}
	if !cfg.Transport.WSEnabled || cfg.Transport.WSAddress != DefaultWSAddress {
		t.Errorf("transport defaults = %+v", cfg.Transport)
	}
	if cfg.Transport.PublishInterval != DefaultPublishInterval {
		t.Errorf("PublishInterval = %s, want %s", cfg.Transport.PublishInterval, DefaultPublishInterval)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/visualizer.yaml"); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("audio: [not: a map"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadConfigParsesFile(t *testing.T) {
	yamlContent := `
debug: true
audio:
  device: "Loopback"
  sample_rate: 44100
  buffer_frames: 88200
analysis:
  fft_length: 2048
  window: blackman
  downsample: 4
transport:
  ws_address: ":9000"
  udp_enabled: true
  publish_interval: 16ms
`
	path := filepath.Join(t.TempDir(), "visualizer.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.Debug {
		t.Error("Debug not set from file")
	}
	if cfg.Audio.Device != "Loopback" {
		t.Errorf("Device = %q, want Loopback", cfg.Audio.Device)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("SampleRate = %v, want 44100", cfg.Audio.SampleRate)
	}
	if cfg.Analysis.FFTLength != 2048 || cfg.Analysis.Window != "blackman" || cfg.Analysis.Downsample != 4 {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.WSAddress != ":9000" {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	if cfg.Transport.PublishInterval != 16*time.Millisecond {
		t.Errorf("PublishInterval = %s, want 16ms", cfg.Transport.PublishInterval)
	}
	// Fields the file omits keep their defaults.
	if cfg.Audio.ReadFrames != DefaultReadFrames {
		t.Errorf("ReadFrames = %d, want default %d", cfg.Audio.ReadFrames, DefaultReadFrames)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero sample rate", "audio:\n  sample_rate: 0\n"},
		{"negative buffer", "audio:\n  buffer_frames: -1\n"},
		{"zero fft length", "analysis:\n  fft_length: -512\n"},
		{"zero downsample", "analysis:\n  downsample: 0\n"},
		{"negative interval", "transport:\n  publish_interval: -5ms\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "visualizer.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VIS_DEBUG", "true")
	t.Setenv("VIS_DEVICE", "Monitor of Built-in")
	t.Setenv("VIS_UDP_ENABLED", "true")
	t.Setenv("VIS_UDP_TARGET_ADDRESS", "10.0.0.2:9999")
	t.Setenv("VIS_PUBLISH_INTERVAL", "20ms")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.Debug {
		t.Error("VIS_DEBUG override ignored")
	}
	if cfg.Audio.Device != "Monitor of Built-in" {
		t.Errorf("Device = %q", cfg.Audio.Device)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "10.0.0.2:9999" {
		t.Errorf("UDP transport = %+v", cfg.Transport)
	}
	if cfg.Transport.PublishInterval != 20*time.Millisecond {
		t.Errorf("PublishInterval = %s, want 20ms", cfg.Transport.PublishInterval)
	}
}
