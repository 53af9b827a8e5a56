package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		BackendBaseURL:  "http://localhost:8000",
		RequestTimeout:  60 * time.Second,
		OverlayPort:     "8090",
		SampleRate:      16000,
		FrameMs:         20,
		VADTick:         200 * time.Millisecond,
		SilenceDelay:    1500 * time.Millisecond,
		EnergyThreshold: 300,
		EnergyMetric:    "rms",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SilenceDelay != DefaultSilenceDelay {
		t.Errorf("Expected silence delay %s, got %s", DefaultSilenceDelay, cfg.SilenceDelay)
	}
	if cfg.VADTick != DefaultVADTick {
		t.Errorf("Expected vad tick %s, got %s", DefaultVADTick, cfg.VADTick)
	}
	if cfg.EnergyThreshold != DefaultEnergyThreshold {
		t.Errorf("Expected threshold %f, got %f", DefaultEnergyThreshold, cfg.EnergyThreshold)
	}
	if cfg.EnergyMetric != "rms" {
		t.Errorf("Expected rms metric, got %s", cfg.EnergyMetric)
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}

	cfg = validConfig()
	cfg.EnergyMetric = "peak"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unknown energy metric")
	}

	cfg = validConfig()
	cfg.SilenceDelay = 100 * time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for silence delay shorter than vad tick")
	}

	cfg = validConfig()
	cfg.EnergyThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero threshold")
	}

	cfg = validConfig()
	cfg.BackendBaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing backend base url")
	}
}

func TestFrameBytes(t *testing.T) {
	cfg := validConfig()
	// 16kHz mono PCM16, 20ms frames: 320 samples, 640 bytes.
	if got := cfg.FrameBytes(); got != 640 {
		t.Errorf("Expected 640 frame bytes, got %d", got)
	}
}
