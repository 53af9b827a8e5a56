package repositories

import (
	"context"
	"errors"
)

// ErrPlaybackFailed indicates a clip could not begin playing: blocked by
// platform policy, decode failure, or a failed fetch of the clip.
var ErrPlaybackFailed = errors.New("playback failed to start")

// Playback is one in-flight clip.
type Playback interface {
	// Wait blocks until the clip ends naturally, fails, or is stopped.
	Wait() error

	// Stop pauses the clip and releases its resources. Idempotent.
	Stop()
}

// Player abstracts an audio output element. Play returns only once
// playback has genuinely begun, so no partial "started" state is ever
// observable on failure.
type Player interface {
	Play(ctx context.Context, url string) (Playback, error)
}
