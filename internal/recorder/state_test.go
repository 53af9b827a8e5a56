package recorder

import (
	"bytes"
	"testing"

	"github.com/goatbotdev/goatbot/domain/entities"
)

func TestReduceLifecycle(t *testing.T) {
	s := entities.RecordingSession{Status: entities.RecordingIdle}

	s = Reduce(s, Action{Kind: ActionStart})
	if s.Status != entities.RecordingActive {
		t.Fatalf("Expected recording status, got %s", s.Status)
	}
	if s.HasSpokenEver {
		t.Error("Fresh session must reset hasSpokenEver")
	}

	s = Reduce(s, Action{Kind: ActionChunk, Chunk: []byte{1, 2}})
	s = Reduce(s, Action{Kind: ActionChunk, Chunk: []byte{3}})
	if len(s.Chunks) != 2 {
		t.Errorf("Expected 2 chunks, got %d", len(s.Chunks))
	}

	s = Reduce(s, Action{Kind: ActionVoice})
	if !s.VoiceDetected || !s.HasSpokenEver {
		t.Error("Voice action must set voiceDetected and hasSpokenEver")
	}

	s = Reduce(s, Action{Kind: ActionSilence})
	if s.VoiceDetected {
		t.Error("Silence action must clear voiceDetected")
	}
	if !s.HasSpokenEver {
		t.Error("Silence action must not clear hasSpokenEver")
	}

	s = Reduce(s, Action{Kind: ActionStop})
	if s.Status != entities.RecordingFinalizing {
		t.Fatalf("Expected finalizing status, got %s", s.Status)
	}

	if got := s.Payload(); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Payload mismatch: %v", got)
	}

	s = Reduce(s, Action{Kind: ActionFinalized})
	if s.Status != entities.RecordingIdle {
		t.Fatalf("Expected idle status, got %s", s.Status)
	}
	if len(s.Chunks) != 0 || s.HasSpokenEver {
		t.Error("Finalized session must clear transient state")
	}
}

func TestReduceRejectsInvalidTransitions(t *testing.T) {
	recording := entities.RecordingSession{Status: entities.RecordingActive}
	if got := Reduce(recording, Action{Kind: ActionStart}); got.Status != entities.RecordingActive {
		t.Error("Start while recording must be ignored")
	}

	idle := entities.RecordingSession{Status: entities.RecordingIdle}
	if got := Reduce(idle, Action{Kind: ActionStop}); got.Status != entities.RecordingIdle {
		t.Error("Stop while idle must be ignored")
	}
	if got := Reduce(idle, Action{Kind: ActionChunk, Chunk: []byte{9}}); len(got.Chunks) != 0 {
		t.Error("Chunk while idle must be ignored")
	}
	if got := Reduce(idle, Action{Kind: ActionVoice}); got.HasSpokenEver {
		t.Error("Voice while idle must be ignored")
	}

	finalizing := entities.RecordingSession{Status: entities.RecordingFinalizing}
	if got := Reduce(finalizing, Action{Kind: ActionStop}); got.Status != entities.RecordingFinalizing {
		t.Error("Stop while finalizing must be ignored")
	}
}
