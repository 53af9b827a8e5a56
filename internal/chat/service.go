package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/domain/entities"
	"github.com/goatbotdev/goatbot/domain/repositories"
)

const (
	// noSpeechNotice stands in for an assistant turn when a recording
	// contained no detectable speech.
	noSpeechNotice = "I could not hear anything. Please try again and speak clearly."

	// apologyNotice stands in for an assistant turn when the backend
	// call failed.
	apologyNotice = "My apologies, I could not reach the divine wisdom right now. Please try again in a moment."

	submitTimeout = 90 * time.Second
)

// Speaker starts synthesized-voice playback for an assistant message.
type Speaker interface {
	Play(ctx context.Context, url, messageID string) error
}

// Service orchestrates the conversation flow: it appends user turns,
// submits them to the backend, fills transcriptions, appends assistant
// turns and triggers voice playback. Gateway failures never crash the
// flow; they surface as an apology message.
type Service struct {
	gateway repositories.Gateway
	conv    *entities.Conversation
	speaker Speaker
	logger  *zap.Logger

	mu          sync.Mutex
	composing   bool
	onComposing func(bool)
}

// NewService creates a conversation orchestrator.
func NewService(
	gateway repositories.Gateway,
	conv *entities.Conversation,
	speaker Speaker,
	logger *zap.Logger,
) *Service {
	return &Service{
		gateway: gateway,
		conv:    conv,
		speaker: speaker,
		logger:  logger,
	}
}

// OnComposing registers a listener for the transient typing indicator.
func (s *Service) OnComposing(fn func(bool)) {
	s.mu.Lock()
	s.onComposing = fn
	s.mu.Unlock()
}

// Composing reports whether a backend call is outstanding.
func (s *Service) Composing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composing
}

// SubmitText sends a typed message and blocks until the backend
// responds or fails.
func (s *Service) SubmitText(ctx context.Context, text, language string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	user := entities.NewUserMessage(text)
	user.Language = language
	if err := s.conv.Append(user); err != nil {
		s.logger.Error("Failed to append user message", zap.Error(err))
		return
	}

	s.setComposing(true)
	defer s.setComposing(false)

	reply, err := s.gateway.TextChat(ctx, text, language)
	if err != nil {
		s.logger.Error("Text chat failed", zap.Error(err))
		s.appendApology()
		return
	}
	s.appendAssistant(reply)
}

// SubmitVoice implements the recording sink: it dispatches the
// finalized payload asynchronously, so the recording controller is back
// at Idle long before the network result settles.
func (s *Service) SubmitVoice(payload []byte) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		s.submitVoice(ctx, payload)
	}()
}

// NoSpeechDetected implements the recording sink for discarded
// recordings.
func (s *Service) NoSpeechDetected() {
	s.appendNotice(noSpeechNotice)
}

func (s *Service) submitVoice(ctx context.Context, payload []byte) {
	user := entities.NewVoiceMessage()
	if err := s.conv.Append(user); err != nil {
		s.logger.Error("Failed to append voice message", zap.Error(err))
		return
	}

	s.setComposing(true)
	defer s.setComposing(false)

	reply, err := s.gateway.VoiceChat(ctx, payload)
	if err != nil {
		s.logger.Error("Voice chat failed", zap.Error(err))
		s.appendApology()
		return
	}

	// Fill the transcription into the placeholder user turn; the only
	// mutation any message undergoes after creation.
	transcription := reply.Transcription
	if transcription == "" {
		transcription = reply.UserMessage
	}
	if transcription != "" {
		if err := s.conv.Patch(user.ID, transcription, reply.Language); err != nil {
			s.logger.Warn("Failed to patch transcription", zap.Error(err))
		}
	}

	s.appendAssistant(reply)
}

func (s *Service) appendAssistant(reply *repositories.ChatReply) {
	msg := entities.NewAssistantMessage(reply.SessionID, reply.Response, reply.ResponseLanguage, reply.AudioURL)
	if err := s.conv.Append(msg); err != nil {
		s.logger.Error("Failed to append assistant message", zap.Error(err))
		return
	}

	if msg.AudioURL == "" {
		return
	}
	if err := s.speaker.Play(context.Background(), msg.AudioURL, msg.ID); err != nil {
		// A clip that cannot start is a stop; the text reply stands.
		s.logger.Warn("Voice playback unavailable for reply",
			zap.String("messageID", msg.ID),
			zap.Error(err))
	}
}

func (s *Service) appendApology() {
	s.appendNotice(apologyNotice)
}

func (s *Service) appendNotice(text string) {
	msg := entities.NewAssistantMessage("", text, "", "")
	if err := s.conv.Append(msg); err != nil {
		s.logger.Error("Failed to append notice", zap.Error(err))
	}
}

func (s *Service) setComposing(on bool) {
	s.mu.Lock()
	changed := s.composing != on
	s.composing = on
	fn := s.onComposing
	s.mu.Unlock()
	if changed && fn != nil {
		fn(on)
	}
}
