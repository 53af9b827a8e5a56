package vad

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// stubAnalyzer returns a scripted energy value regardless of frame
// content.
type stubAnalyzer struct {
	energy float64
}

func (s *stubAnalyzer) Energy(frame []byte) float64 { return s.energy }

// newTestMonitor drives classification through sample() directly, so
// the loop cadence is set far beyond the test horizon to keep the mock
// clock from producing extra ticks.
func newTestMonitor(t testing.TB, threshold float64) (*Monitor, *SilenceTimer, *stubAnalyzer, *clock.Mock) {
	mock := clock.NewMock()
	analyzer := &stubAnalyzer{}
	silence := NewSilenceTimer(mock, 1500*time.Millisecond, zap.NewNop())
	monitor := NewMonitor(analyzer, silence, threshold, time.Hour, mock, zap.NewNop())
	return monitor, silence, analyzer, mock
}

func TestMonitorClassifiesVoiceAndArmsTimer(t *testing.T) {
	monitor, silence, analyzer, mock := newTestMonitor(t, 300)

	var voices, silences int
	monitor.OnEvent(Events{
		OnVoice:   func() { voices++ },
		OnSilence: func() { silences++ },
	})

	fired := 0
	silence.OnFire(func() { fired++ })

	monitor.Start()
	defer monitor.Stop()

	monitor.Observe(make([]byte, 640))
	analyzer.energy = 500
	monitor.sample()

	if !monitor.VoiceDetected() {
		t.Error("Expected voiceDetected true after voice tick")
	}
	if voices != 1 {
		t.Errorf("Expected 1 voice event, got %d", voices)
	}

	// The timer was armed by the voice tick: its next fire time is the
	// tick instant plus the configured delay.
	mock.Add(1499 * time.Millisecond)
	if fired != 0 {
		t.Fatal("Timer fired before delay elapsed")
	}
	mock.Add(1 * time.Millisecond)
	if fired != 1 {
		t.Fatalf("Expected timer fire at tick time + delay, got %d fires", fired)
	}
}

func TestMonitorSilenceNeverArmsTimer(t *testing.T) {
	monitor, silence, analyzer, mock := newTestMonitor(t, 300)

	fired := 0
	silence.OnFire(func() { fired++ })

	var silences int
	monitor.OnEvent(Events{OnSilence: func() { silences++ }})

	monitor.Start()
	defer monitor.Stop()

	monitor.Observe(make([]byte, 640))
	analyzer.energy = 10
	for i := 0; i < 20; i++ {
		monitor.sample()
	}

	if monitor.VoiceDetected() {
		t.Error("Expected voiceDetected false for silent ticks")
	}
	if silences != 20 {
		t.Errorf("Expected 20 silence events, got %d", silences)
	}

	// Silence before any voice never starts a countdown.
	mock.Add(time.Minute)
	if fired != 0 {
		t.Errorf("Timer fired %d times during pure silence", fired)
	}
}

func TestMonitorVoiceThenSilenceLetsTimerElapse(t *testing.T) {
	monitor, silence, analyzer, mock := newTestMonitor(t, 300)

	fired := 0
	silence.OnFire(func() { fired++ })

	monitor.Start()
	defer monitor.Stop()

	monitor.Observe(make([]byte, 640))

	// Two seconds of voice at 200ms cadence: every tick rearms.
	analyzer.energy = 800
	for i := 0; i < 10; i++ {
		monitor.sample()
		mock.Add(200 * time.Millisecond)
	}
	if fired != 0 {
		t.Fatal("Timer fired while voice was continuously detected")
	}

	// Silent ticks do not rearm; the last voice arm elapses.
	analyzer.energy = 0
	for i := 0; i < 7; i++ {
		monitor.sample()
		mock.Add(200 * time.Millisecond)
	}
	if fired != 1 {
		t.Fatalf("Expected exactly one fire after silence delay, got %d", fired)
	}
}

func TestMonitorLateTickAfterStopIsNoop(t *testing.T) {
	monitor, silence, analyzer, mock := newTestMonitor(t, 300)

	fired := 0
	silence.OnFire(func() { fired++ })

	var voices int
	monitor.OnEvent(Events{OnVoice: func() { voices++ }})

	monitor.Start()
	monitor.Observe(make([]byte, 640))
	analyzer.energy = 900

	silence.Cancel()
	monitor.Stop()

	// A tick scheduled before the stop must not act on the dead session.
	monitor.sample()
	if voices != 0 {
		t.Errorf("Late tick emitted %d voice events after stop", voices)
	}
	if monitor.VoiceDetected() {
		t.Error("Late tick mutated voiceDetected after stop")
	}
	mock.Add(time.Minute)
	if fired != 0 {
		t.Errorf("Late tick rearmed the timer on a dead session, %d fires", fired)
	}
}

func TestMonitorStartAndStopAreIdempotent(t *testing.T) {
	monitor, _, analyzer, _ := newTestMonitor(t, 300)
	analyzer.energy = 0

	monitor.Start()
	monitor.Start()
	monitor.Stop()
	monitor.Stop()

	// A fresh start after a stop works.
	monitor.Start()
	monitor.Observe(make([]byte, 640))
	analyzer.energy = 400
	monitor.sample()
	if !monitor.VoiceDetected() {
		t.Error("Monitor did not classify after restart")
	}
	monitor.Stop()
}
