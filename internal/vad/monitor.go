package vad

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/domain/repositories"
)

// Events allows the host to react to per-tick classifications.
type Events struct {
	// OnVoice fires on every tick whose energy exceeds the threshold.
	OnVoice func()
	// OnSilence fires on every tick at or below the threshold.
	OnSilence func()
}

// Monitor classifies short windows of captured audio as voice or
// silence at a fixed cadence. Classification per tick, rather than
// continuous monitoring, keeps the cost bounded and lets recording
// auto-stop without any server round-trip.
//
// The monitor never arms the silence timer on a silence tick: arming
// happens only on voice, so silence before any voice has ever been
// detected does not start a countdown.
type Monitor struct {
	analyzer  repositories.SpectrumAnalyzer
	threshold float64
	tick      time.Duration
	clock     clock.Clock
	silence   *SilenceTimer
	logger    *zap.Logger

	mu            sync.Mutex
	ev            Events
	running       bool
	stop          chan struct{}
	latest        []byte
	voiceDetected bool
}

// NewMonitor creates a stopped monitor. Energy strictly above threshold
// classifies a tick as voice.
func NewMonitor(
	analyzer repositories.SpectrumAnalyzer,
	silence *SilenceTimer,
	threshold float64,
	tick time.Duration,
	clk clock.Clock,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		analyzer:  analyzer,
		threshold: threshold,
		tick:      tick,
		clock:     clk,
		silence:   silence,
		logger:    logger,
	}
}

// OnEvent registers the classification callbacks.
func (m *Monitor) OnEvent(ev Events) {
	m.mu.Lock()
	m.ev = ev
	m.mu.Unlock()
}

// Start begins periodic sampling. No-op if already running.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.voiceDetected = false
	m.latest = nil
	m.stop = make(chan struct{})
	stop := m.stop
	m.mu.Unlock()

	go m.run(stop)
}

// Observe records the most recent captured fragment. The next tick
// classifies it.
func (m *Monitor) Observe(frame []byte) {
	m.mu.Lock()
	m.latest = frame
	m.mu.Unlock()
}

// Stop halts sampling and releases the analysis loop. Idempotent and
// synchronous: once Stop returns, a late in-flight tick is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.voiceDetected = false
	close(m.stop)
	m.mu.Unlock()
}

// VoiceDetected reports the most recent classification.
func (m *Monitor) VoiceDetected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voiceDetected
}

func (m *Monitor) run(stop <-chan struct{}) {
	ticker := m.clock.Ticker(m.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample classifies the current fragment. Guarded against ticks that
// were scheduled before a stop.
func (m *Monitor) sample() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	frame := m.latest
	ev := m.ev
	m.mu.Unlock()

	var energy float64
	if len(frame) > 0 {
		energy = m.analyzer.Energy(frame)
	}

	if energy > m.threshold {
		m.mu.Lock()
		if !m.running {
			m.mu.Unlock()
			return
		}
		m.voiceDetected = true
		m.mu.Unlock()

		m.logger.Debug("Voice detected", zap.Float64("energy", energy))
		if ev.OnVoice != nil {
			ev.OnVoice()
		}
		m.silence.Arm()
		return
	}

	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.voiceDetected = false
	m.mu.Unlock()

	if ev.OnSilence != nil {
		ev.OnSilence()
	}
}
