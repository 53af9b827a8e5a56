package vad

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// SilenceTimer is a restartable one-shot timer that ends a recording
// after a fixed stretch without detected voice. It is armed on every
// voice classification and fully cancelled when recording stops for any
// other reason, so a stray fire can never act on a dead session.
type SilenceTimer struct {
	clock  clock.Clock
	delay  time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	onFire func()
	timer  *clock.Timer
	gen    uint64
}

// NewSilenceTimer creates a disarmed timer with the given delay.
func NewSilenceTimer(clk clock.Clock, delay time.Duration, logger *zap.Logger) *SilenceTimer {
	return &SilenceTimer{
		clock:  clk,
		delay:  delay,
		logger: logger,
	}
}

// OnFire sets the callback invoked when the delay elapses without a
// rearm. Must be set before the first Arm.
func (t *SilenceTimer) OnFire(fn func()) {
	t.mu.Lock()
	t.onFire = fn
	t.mu.Unlock()
}

// Arm cancels any pending fire and schedules a new one at now + delay.
func (t *SilenceTimer) Arm() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	g := t.gen
	t.timer = t.clock.AfterFunc(t.delay, func() { t.fire(g) })
	t.mu.Unlock()
}

// Cancel discards any pending fire. No-op when disarmed.
func (t *SilenceTimer) Cancel() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	t.mu.Unlock()
}

// Delay returns the configured silence delay.
func (t *SilenceTimer) Delay() time.Duration {
	return t.delay
}

func (t *SilenceTimer) fire(g uint64) {
	t.mu.Lock()
	if g != t.gen {
		// A newer arm or a cancel superseded this fire.
		t.mu.Unlock()
		return
	}
	t.timer = nil
	fn := t.onFire
	t.mu.Unlock()

	t.logger.Debug("Silence timeout elapsed", zap.Duration("delay", t.delay))
	if fn != nil {
		fn()
	}
}
