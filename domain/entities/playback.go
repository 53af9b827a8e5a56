package entities

// PlaybackState tracks the single allowed synthesized-voice playback.
// At most one message may be active at any instant.
type PlaybackState struct {
	ActiveMessageID string
	Playing         bool
}
