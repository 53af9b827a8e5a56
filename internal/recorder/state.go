package recorder

import "github.com/goatbotdev/goatbot/domain/entities"

// ActionKind enumerates recording state transitions.
type ActionKind int

const (
	// ActionStart begins a new capture attempt from Idle.
	ActionStart ActionKind = iota
	// ActionChunk appends a captured fragment.
	ActionChunk
	// ActionVoice records a voice classification.
	ActionVoice
	// ActionSilence records a silence classification.
	ActionSilence
	// ActionStop moves a recording into finalization.
	ActionStop
	// ActionFinalized completes finalization and returns to Idle.
	ActionFinalized
)

// Action is one input to the recording reducer.
type Action struct {
	Kind  ActionKind
	Chunk []byte
}

// Reduce is the pure state transition function for a recording session.
// Every transition of the lifecycle runs through here, which makes each
// one testable without a live audio stack. Inputs that are invalid for
// the current status return the state unchanged.
func Reduce(s entities.RecordingSession, a Action) entities.RecordingSession {
	switch a.Kind {
	case ActionStart:
		if s.Status != entities.RecordingIdle && s.Status != "" {
			return s
		}
		return entities.RecordingSession{Status: entities.RecordingActive}

	case ActionChunk:
		if s.Status != entities.RecordingActive {
			return s
		}
		s.Chunks = append(s.Chunks, a.Chunk)
		return s

	case ActionVoice:
		if s.Status != entities.RecordingActive {
			return s
		}
		s.VoiceDetected = true
		s.HasSpokenEver = true
		return s

	case ActionSilence:
		if s.Status != entities.RecordingActive {
			return s
		}
		s.VoiceDetected = false
		return s

	case ActionStop:
		if s.Status != entities.RecordingActive {
			return s
		}
		s.Status = entities.RecordingFinalizing
		return s

	case ActionFinalized:
		if s.Status != entities.RecordingFinalizing {
			return s
		}
		return entities.RecordingSession{Status: entities.RecordingIdle}
	}
	return s
}
