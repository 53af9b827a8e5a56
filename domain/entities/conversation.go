package entities

import (
	"errors"
	"fmt"
	"sync"
)

// ConversationEventKind distinguishes log changes delivered to subscribers.
type ConversationEventKind string

const (
	ConversationAppended ConversationEventKind = "appended"
	ConversationPatched  ConversationEventKind = "patched"
)

// ConversationEvent describes one change to the message log.
type ConversationEvent struct {
	Kind    ConversationEventKind
	Message Message
}

var (
	// ErrDuplicateMessageID is returned when an appended message reuses
	// an identifier already present in the log.
	ErrDuplicateMessageID = errors.New("duplicate message id")

	// ErrMessageNotFound is returned by Patch for an unknown identifier.
	ErrMessageNotFound = errors.New("message not found")

	// ErrMessageImmutable is returned by Patch when the target is not a
	// user voice message awaiting its transcription.
	ErrMessageImmutable = errors.New("message is immutable")
)

// Conversation is the ordered, append-only message log for one chat
// session. The single permitted mutation after creation is the
// transcription fill on a user voice message. Rendering order is
// insertion order, never timestamp order.
type Conversation struct {
	mu          sync.Mutex
	messages    []Message
	ids         map[string]int
	subscribers []func(ConversationEvent)
}

// NewConversation creates an empty conversation log.
func NewConversation() *Conversation {
	return &Conversation{
		ids: make(map[string]int),
	}
}

// Subscribe registers a callback invoked after every append or patch.
// Callbacks run synchronously on the mutating goroutine.
func (c *Conversation) Subscribe(fn func(ConversationEvent)) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Append adds a message to the end of the log.
func (c *Conversation) Append(msg Message) error {
	if msg.ID == "" {
		return errors.New("message id is required")
	}

	c.mu.Lock()
	if _, exists := c.ids[msg.ID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateMessageID, msg.ID)
	}
	c.ids[msg.ID] = len(c.messages)
	c.messages = append(c.messages, msg)
	subs := c.subscribers
	c.mu.Unlock()

	c.notify(subs, ConversationEvent{Kind: ConversationAppended, Message: msg})
	return nil
}

// Patch fills in the transcription text and language of a user voice
// message once the backend has responded. No other mutation is allowed.
func (c *Conversation) Patch(id, content, language string) error {
	c.mu.Lock()
	idx, ok := c.ids[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	msg := c.messages[idx]
	if !msg.IsVoicePlaceholder() {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMessageImmutable, id)
	}
	if content != "" {
		msg.Content = content
	}
	if language != "" {
		msg.Language = language
	}
	c.messages[idx] = msg
	subs := c.subscribers
	c.mu.Unlock()

	c.notify(subs, ConversationEvent{Kind: ConversationPatched, Message: msg})
	return nil
}

// Messages returns a snapshot of the log in insertion order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *Conversation) notify(subs []func(ConversationEvent), ev ConversationEvent) {
	for _, fn := range subs {
		fn(ev)
	}
}
