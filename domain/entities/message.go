package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the role of a message sender
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// VoicePlaceholder is the content of a freshly submitted voice message
// before the transcription arrives from the backend.
const VoicePlaceholder = "voice message…"

// Message represents one conversational turn. After creation the only
// permitted mutation is filling in transcription text and language on a
// user voice message (see Conversation.Patch).
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Language  string      `json:"language,omitempty"`
	AudioURL  string      `json:"audio_url,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewUserMessage creates a user turn. The identifier is derived from the
// submission instant, which also serves as the display timestamp.
func NewUserMessage(content string) Message {
	now := time.Now()
	return Message{
		ID:        fmt.Sprintf("user-%d", now.UnixNano()),
		Role:      MessageRoleUser,
		Content:   content,
		Timestamp: now,
	}
}

// NewVoiceMessage creates a user turn carrying the transcription
// placeholder until the backend responds.
func NewVoiceMessage() Message {
	return NewUserMessage(VoicePlaceholder)
}

// NewAssistantMessage creates an assistant turn keyed by the backend
// session identifier. A random identifier is generated when the backend
// did not supply one.
func NewAssistantMessage(sessionID, content, language, audioURL string) Message {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return Message{
		ID:        sessionID,
		Role:      MessageRoleAssistant,
		Content:   content,
		Language:  language,
		AudioURL:  audioURL,
		Timestamp: time.Now(),
	}
}

// IsVoicePlaceholder reports whether the message still awaits its
// transcription fill.
func (m Message) IsVoicePlaceholder() bool {
	return m.Role == MessageRoleUser && m.Content == VoicePlaceholder
}
