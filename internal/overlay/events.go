package overlay

import (
	"time"

	"github.com/goatbotdev/goatbot/domain/entities"
)

// Event kinds pushed to overlay clients.
const (
	EventMessageAppended = "message_appended"
	EventMessagePatched  = "message_patched"
	EventComposing       = "composing"
	EventSpeakingStart   = "speaking_start"
	EventSpeakingEnd     = "speaking_end"
)

// Event is the JSON envelope broadcast to every connected overlay.
type Event struct {
	Type      string            `json:"type"`
	Timestamp int64             `json:"timestamp"`
	Message   *entities.Message `json:"message,omitempty"`
	MessageID string            `json:"message_id,omitempty"`
	Composing bool              `json:"composing,omitempty"`
}

func newEvent(kind string) Event {
	return Event{Type: kind, Timestamp: time.Now().Unix()}
}

// MessageAppended wraps a freshly appended conversation entry.
func MessageAppended(msg entities.Message) Event {
	ev := newEvent(EventMessageAppended)
	ev.Message = &msg
	return ev
}

// MessagePatched wraps a transcription fill of an existing entry.
func MessagePatched(msg entities.Message) Event {
	ev := newEvent(EventMessagePatched)
	ev.Message = &msg
	return ev
}

// ComposingChanged reflects the typing indicator.
func ComposingChanged(on bool) Event {
	ev := newEvent(EventComposing)
	ev.Composing = on
	return ev
}

// SpeakingStarted announces voice playback for a message.
func SpeakingStarted(messageID string) Event {
	ev := newEvent(EventSpeakingStart)
	ev.MessageID = messageID
	return ev
}

// SpeakingStopped announces the end of voice playback.
func SpeakingStopped(messageID string) Event {
	ev := newEvent(EventSpeakingEnd)
	ev.MessageID = messageID
	return ev
}
