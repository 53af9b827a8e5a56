package repositories

import (
	"context"
	"errors"
)

var (
	// ErrCaptureUnavailable indicates the audio capture pipeline could
	// not be constructed at all.
	ErrCaptureUnavailable = errors.New("audio capture unavailable")

	// ErrMicrophoneDenied indicates the user or operating system refused
	// microphone access.
	ErrMicrophoneDenied = errors.New("microphone access denied")
)

// AudioSource abstracts a live microphone input stream so the recording
// state machine can be exercised without real hardware.
type AudioSource interface {
	// Start opens the underlying device and begins emitting raw audio
	// fragments in capture order. The returned channel is closed when
	// the source stops or the context is cancelled. Start failures map
	// to ErrMicrophoneDenied or ErrCaptureUnavailable.
	Start(ctx context.Context) (<-chan []byte, error)

	// Stop releases the underlying hardware resource. Idempotent.
	Stop() error
}

// SpectrumAnalyzer reduces one captured audio fragment to a single
// energy value comparable against the voice threshold.
type SpectrumAnalyzer interface {
	Energy(frame []byte) float64
}
