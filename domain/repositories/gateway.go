package repositories

import "context"

// ChatReply is the backend's response to a voice or text chat request.
// AudioURL, when present, is already resolved to an absolute URL.
type ChatReply struct {
	SessionID        string
	Transcription    string
	UserMessage      string
	Response         string
	Language         string
	ResponseLanguage string
	AudioURL         string
}

// Gateway is the HTTP contract with the backend service that performs
// transcription, language understanding and speech synthesis. The client
// only captures audio, measures its energy and hands it off.
type Gateway interface {
	// VoiceChat submits a finalized recording payload.
	VoiceChat(ctx context.Context, audio []byte) (*ChatReply, error)

	// TextChat submits a typed message, optionally with a preferred
	// response language.
	TextChat(ctx context.Context, text, language string) (*ChatReply, error)

	// Health reports whether the backend pipeline is ready.
	Health(ctx context.Context) error

	// Languages returns the backend's supported language codes mapped to
	// display names.
	Languages(ctx context.Context) (map[string]string, error)
}
