package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/domain/entities"
	"github.com/goatbotdev/goatbot/domain/repositories"
	"github.com/goatbotdev/goatbot/internal/vad"
)

// Sink receives the outcome of a finalized recording. The network
// result of a submission is handled by the sink asynchronously; the
// controller is back at Idle before it settles.
type Sink interface {
	// SubmitVoice receives the concatenated audio payload of a
	// recording that contained speech.
	SubmitVoice(payload []byte)

	// NoSpeechDetected is invoked instead of SubmitVoice when the
	// session never detected voice or the payload came out empty.
	NoSpeechDetected()
}

// Controller owns the lifecycle of one recording attempt:
// Idle -> Recording -> Finalizing -> Idle. Only one session may exist
// at a time; starting while any session is not Idle is ignored.
type Controller struct {
	source  repositories.AudioSource
	monitor *vad.Monitor
	silence *vad.SilenceTimer
	sink    Sink
	logger  *zap.Logger

	mu      sync.Mutex
	session entities.RecordingSession
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewController wires the audio source, voice activity monitor and
// silence timer into one recording lifecycle. The monitor's voice event
// rearms the timer; the timer's fire stops the recording.
func NewController(
	source repositories.AudioSource,
	monitor *vad.Monitor,
	silence *vad.SilenceTimer,
	sink Sink,
	logger *zap.Logger,
) *Controller {
	c := &Controller{
		source:  source,
		monitor: monitor,
		silence: silence,
		sink:    sink,
		logger:  logger,
		session: entities.RecordingSession{Status: entities.RecordingIdle},
	}
	monitor.OnEvent(vad.Events{
		OnVoice:   c.onVoice,
		OnSilence: c.onSilence,
	})
	silence.OnFire(c.autoStop)
	return c
}

// StartRecording opens the capture source and begins a session. It is a
// no-op when a session is already in progress. A source failure leaves
// the controller Idle and is reported to the caller for a user-visible
// notice.
func (c *Controller) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.session.Status != entities.RecordingIdle {
		c.mu.Unlock()
		c.logger.Debug("Start ignored, session in progress",
			zap.String("status", string(c.session.Status)))
		return nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	frames, err := c.source.Start(ctx)
	if err != nil {
		cancel()
		if errors.Is(err, repositories.ErrMicrophoneDenied) {
			c.logger.Warn("Microphone access denied", zap.Error(err))
		} else {
			c.logger.Error("Audio capture unavailable", zap.Error(err))
		}
		return fmt.Errorf("failed to start capture: %w", err)
	}

	c.mu.Lock()
	if c.session.Status != entities.RecordingIdle {
		// Lost a start race; release the source we just opened.
		c.mu.Unlock()
		cancel()
		_ = c.source.Stop()
		return nil
	}
	c.session = Reduce(c.session, Action{Kind: ActionStart})
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.monitor.Start()
	go c.consume(frames, done)

	c.logger.Info("Recording started")
	return nil
}

// StopRecording ends the current session, whether invoked by user
// action or by the silence timeout. Teardown order: pending silence
// timeout, sampling loop, capture hardware, then finalization.
func (c *Controller) StopRecording() {
	c.mu.Lock()
	if c.session.Status != entities.RecordingActive {
		c.mu.Unlock()
		return
	}
	c.session = Reduce(c.session, Action{Kind: ActionStop})
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	c.silence.Cancel()
	c.monitor.Stop()
	// A sample racing the first cancel may have rearmed the timer; with
	// the monitor stopped this cancel is final.
	c.silence.Cancel()
	if cancel != nil {
		cancel()
	}
	if err := c.source.Stop(); err != nil {
		c.logger.Warn("Failed to release capture source", zap.Error(err))
	}
	if done != nil {
		<-done
	}

	c.finalize()
}

// Close is the unconditional teardown path for component disposal. Any
// in-flight recording is discarded without submission.
func (c *Controller) Close() {
	c.mu.Lock()
	active := c.session.Status == entities.RecordingActive
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.session = entities.RecordingSession{Status: entities.RecordingIdle}
	c.mu.Unlock()

	c.silence.Cancel()
	c.monitor.Stop()
	c.silence.Cancel()
	if cancel != nil {
		cancel()
	}
	_ = c.source.Stop()
	if done != nil {
		<-done
	}
	if active {
		c.logger.Info("Recording discarded on disposal")
	}
}

// Session returns a snapshot of the current session state.
func (c *Controller) Session() entities.RecordingSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	s.Chunks = append([][]byte(nil), c.session.Chunks...)
	return s
}

// consume appends captured fragments and feeds them to the monitor.
// Fragments arrive in capture order, so accumulation is purely additive.
func (c *Controller) consume(frames <-chan []byte, done chan struct{}) {
	defer close(done)
	for frame := range frames {
		c.mu.Lock()
		if c.session.Status != entities.RecordingActive {
			c.mu.Unlock()
			return
		}
		c.session = Reduce(c.session, Action{Kind: ActionChunk, Chunk: frame})
		c.mu.Unlock()
		c.monitor.Observe(frame)
	}
}

func (c *Controller) finalize() {
	c.mu.Lock()
	session := c.session
	c.session = Reduce(c.session, Action{Kind: ActionFinalized})
	c.mu.Unlock()

	payload := session.Payload()
	if !session.HasSpokenEver || len(payload) == 0 {
		c.logger.Info("Recording discarded, no speech detected",
			zap.Int("bytes", len(payload)))
		c.sink.NoSpeechDetected()
		return
	}

	c.logger.Info("Recording finalized",
		zap.Int("bytes", len(payload)),
		zap.Int("chunks", len(session.Chunks)))
	c.sink.SubmitVoice(payload)
}

func (c *Controller) onVoice() {
	c.mu.Lock()
	c.session = Reduce(c.session, Action{Kind: ActionVoice})
	c.mu.Unlock()
}

func (c *Controller) onSilence() {
	c.mu.Lock()
	c.session = Reduce(c.session, Action{Kind: ActionSilence})
	c.mu.Unlock()
}

func (c *Controller) autoStop() {
	c.logger.Info("Silence timeout reached, stopping recording")
	c.StopRecording()
}
