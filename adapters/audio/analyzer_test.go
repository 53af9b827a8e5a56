package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

// pcmFrame encodes int16 samples as little endian PCM.
func pcmFrame(samples ...int16) []byte {
	frame := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(frame[i*2:], uint16(s))
	}
	return frame
}

func TestRMSAnalyzerConstantSignal(t *testing.T) {
	frame := pcmFrame(1000, 1000, 1000, 1000)
	got := RMSAnalyzer{}.Energy(frame)
	if math.Abs(got-1000) > 0.001 {
		t.Errorf("Expected RMS 1000, got %f", got)
	}
}

func TestRMSAnalyzerAlternatingSignal(t *testing.T) {
	// RMS ignores sign.
	frame := pcmFrame(500, -500, 500, -500)
	got := RMSAnalyzer{}.Energy(frame)
	if math.Abs(got-500) > 0.001 {
		t.Errorf("Expected RMS 500, got %f", got)
	}
}

func TestRMSAnalyzerSilence(t *testing.T) {
	frame := pcmFrame(0, 0, 0, 0)
	if got := (RMSAnalyzer{}).Energy(frame); got != 0 {
		t.Errorf("Expected RMS 0 for silence, got %f", got)
	}
}

func TestRMSAnalyzerEmptyFrame(t *testing.T) {
	if got := (RMSAnalyzer{}).Energy(nil); got != 0 {
		t.Errorf("Expected 0 for empty frame, got %f", got)
	}
}

func TestMeanAnalyzer(t *testing.T) {
	frame := pcmFrame(100, -300, 200, -400)
	got := MeanAnalyzer{}.Energy(frame)
	if math.Abs(got-250) > 0.001 {
		t.Errorf("Expected mean 250, got %f", got)
	}
}

func TestRMSExceedsMeanOnSpikySignal(t *testing.T) {
	// A short spike in a quiet frame lifts RMS more than the mean.
	frame := pcmFrame(10, 10, 10, 8000)
	rms := RMSAnalyzer{}.Energy(frame)
	mean := MeanAnalyzer{}.Energy(frame)
	if rms <= mean {
		t.Errorf("Expected RMS %f to exceed mean %f", rms, mean)
	}
}

func TestNewAnalyzer(t *testing.T) {
	if _, err := NewAnalyzer(MetricRMS); err != nil {
		t.Errorf("rms metric should resolve: %v", err)
	}
	if _, err := NewAnalyzer(MetricMean); err != nil {
		t.Errorf("mean metric should resolve: %v", err)
	}
	if _, err := NewAnalyzer("peak"); err == nil {
		t.Error("Unknown metric must be rejected")
	}
}
