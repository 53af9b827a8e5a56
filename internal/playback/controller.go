package playback

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/domain/entities"
	"github.com/goatbotdev/goatbot/domain/repositories"
)

// Events notifies listeners of speaking transitions; the avatar overlay
// animates on these.
type Events struct {
	// OnSpeakingStarted fires when a clip genuinely begins playing.
	OnSpeakingStarted func(messageID string)
	// OnSpeakingStopped fires on natural end, explicit stop, or failure
	// mid-clip. Exactly one per started clip.
	OnSpeakingStopped func(messageID string)
}

// Controller manages at most one active synthesized-voice playback.
// Starting playback for any message first stops any other active one,
// so no two speaking-started events are ever open simultaneously.
type Controller struct {
	player repositories.Player
	logger *zap.Logger

	// startMu serializes Play end to end. Concurrent replies can settle
	// together; without it both would pass the stop phase with no active
	// playback installed yet and start two clips.
	startMu sync.Mutex

	mu      sync.Mutex
	ev      Events
	state   entities.PlaybackState
	current repositories.Playback
	done    chan struct{}
	muted   bool
}

// NewController creates a stopped playback controller.
func NewController(player repositories.Player, logger *zap.Logger) *Controller {
	return &Controller{
		player: player,
		logger: logger,
	}
}

// OnEvent registers the speaking listeners.
func (c *Controller) OnEvent(ev Events) {
	c.mu.Lock()
	c.ev = ev
	c.mu.Unlock()
}

// Play starts the clip at url for the given message. Any active
// playback is stopped synchronously first. While muted, the call is
// dropped without starting anything. A start failure leaves the
// controller fully stopped; no partial started state is observable.
func (c *Controller) Play(ctx context.Context, url, messageID string) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.Stop()

	c.mu.Lock()
	if c.muted {
		c.mu.Unlock()
		c.logger.Debug("Playback dropped, muted", zap.String("messageID", messageID))
		return nil
	}
	ev := c.ev
	c.mu.Unlock()

	pb, err := c.player.Play(ctx, url)
	if err != nil {
		c.logger.Warn("Playback failed to start",
			zap.String("messageID", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to play message %s: %w", messageID, err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.state = entities.PlaybackState{ActiveMessageID: messageID, Playing: true}
	c.current = pb
	c.done = done
	c.mu.Unlock()

	c.logger.Info("Speaking started", zap.String("messageID", messageID))
	if ev.OnSpeakingStarted != nil {
		ev.OnSpeakingStarted(messageID)
	}

	go func() {
		if err := pb.Wait(); err != nil {
			c.logger.Warn("Playback ended with error",
				zap.String("messageID", messageID),
				zap.Error(err))
		}
		c.finish(messageID, done)
	}()
	return nil
}

// Stop pauses the active playback, if any, and waits for its
// speaking-stopped event to be delivered before returning.
func (c *Controller) Stop() {
	c.mu.Lock()
	pb := c.current
	done := c.done
	c.mu.Unlock()

	if pb == nil {
		return
	}
	pb.Stop()
	if done != nil {
		<-done
	}
}

// SetMuted toggles the global mute flag. Muting force-stops any active
// playback and suppresses subsequent Play calls until unmuted.
func (c *Controller) SetMuted(on bool) {
	c.mu.Lock()
	c.muted = on
	c.mu.Unlock()
	if on {
		c.Stop()
	}
	c.logger.Info("Mute toggled", zap.Bool("muted", on))
}

// Muted reports the global mute flag.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// State returns a snapshot of the playback state.
func (c *Controller) State() entities.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// finish clears state and emits speaking-stopped exactly once per clip.
func (c *Controller) finish(messageID string, done chan struct{}) {
	c.mu.Lock()
	if c.done != done {
		// A newer playback already superseded this one.
		c.mu.Unlock()
		close(done)
		return
	}
	c.state = entities.PlaybackState{}
	c.current = nil
	c.done = nil
	ev := c.ev
	c.mu.Unlock()

	c.logger.Info("Speaking stopped", zap.String("messageID", messageID))
	if ev.OnSpeakingStopped != nil {
		ev.OnSpeakingStopped(messageID)
	}
	close(done)
}
