package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Defaults for the voice-activity constants. The sibling page variants
// this client replaces disagreed on these values (silence delay 1000 vs
// 2000ms, threshold 2 vs 20 vs 30, mean vs RMS); they are one canonical
// design with configuration knobs, not separate behaviors.
const (
	// DefaultSilenceDelay is how long without detected voice before a
	// recording auto-stops.
	DefaultSilenceDelay = 1500 * time.Millisecond

	// DefaultVADTick is the sampling cadence of the voice activity
	// monitor. Short enough that the silence delay spans several ticks.
	DefaultVADTick = 200 * time.Millisecond

	// DefaultEnergyThreshold is the RMS level over PCM16 samples above
	// which a tick is classified as voice.
	DefaultEnergyThreshold = 300.0
)

// Config holds all runtime configuration, populated from the
// environment with an optional .env file.
type Config struct {
	// Backend
	BackendBaseURL string        `envconfig:"BACKEND_BASE_URL" default:"http://localhost:8000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`

	// Overlay bridge
	OverlayPort string `envconfig:"OVERLAY_PORT" default:"8090"`

	// Audio capture
	SampleRate     int    `envconfig:"SAMPLE_RATE" default:"16000"`
	FrameMs        int    `envconfig:"FRAME_MS" default:"20"`
	CaptureCommand string `envconfig:"CAPTURE_COMMAND" default:"arecord -q -f S16_LE -r 16000 -c 1 -t raw"`

	// Voice activity detection
	VADTick         time.Duration `envconfig:"VAD_TICK" default:"200ms"`
	SilenceDelay    time.Duration `envconfig:"SILENCE_DELAY" default:"1500ms"`
	EnergyThreshold float64       `envconfig:"ENERGY_THRESHOLD" default:"300"`
	EnergyMetric    string        `envconfig:"ENERGY_METRIC" default:"rms"`

	// Playback
	PlayerCommand string `envconfig:"PLAYER_COMMAND" default:"ffplay -nodisp -autoexit -hide_banner -loglevel error -i -"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("goatbot", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.FrameMs <= 0 {
		return fmt.Errorf("frame duration must be positive, got %dms", c.FrameMs)
	}
	if c.VADTick <= 0 {
		return fmt.Errorf("vad tick must be positive, got %s", c.VADTick)
	}
	if c.SilenceDelay < c.VADTick {
		return fmt.Errorf("silence delay %s must be at least one vad tick %s", c.SilenceDelay, c.VADTick)
	}
	if c.EnergyThreshold <= 0 {
		return fmt.Errorf("energy threshold must be positive, got %f", c.EnergyThreshold)
	}
	if c.EnergyMetric != "rms" && c.EnergyMetric != "mean" {
		return fmt.Errorf("energy metric must be rms or mean, got %q", c.EnergyMetric)
	}
	if c.BackendBaseURL == "" {
		return fmt.Errorf("backend base url is required")
	}
	return nil
}

// FrameBytes returns the size in bytes of one capture fragment of
// PCM16LE mono audio at the configured sample rate.
func (c *Config) FrameBytes() int {
	return c.SampleRate * c.FrameMs / 1000 * 2
}
