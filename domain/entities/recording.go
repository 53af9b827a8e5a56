package entities

// RecordingStatus represents the lifecycle stage of a capture attempt.
type RecordingStatus string

const (
	RecordingIdle       RecordingStatus = "idle"
	RecordingActive     RecordingStatus = "recording"
	RecordingFinalizing RecordingStatus = "finalizing"
)

// RecordingSession is the state of one in-progress capture attempt.
// It is transient: created on start, cleared on every exit path.
type RecordingSession struct {
	Status RecordingStatus

	// Chunks are raw audio fragments in capture order.
	Chunks [][]byte

	// VoiceDetected is the most recent classification.
	VoiceDetected bool

	// HasSpokenEver is set once any voice has been detected during this
	// session. A finalized session without it is discarded with a
	// user-facing notice instead of being submitted.
	HasSpokenEver bool
}

// Payload concatenates the accumulated fragments into one submittable
// audio payload.
func (r RecordingSession) Payload() []byte {
	var total int
	for _, c := range r.Chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range r.Chunks {
		out = append(out, c...)
	}
	return out
}
