package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the chat-completion role of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Sender labels shown in the conversation and used for the per-sender chart.
const (
	SenderAssistant = "ChatGPT"
	SenderUser      = "user"
)

// DateLayout is the format of Message.SentAt (UTC calendar date).
const DateLayout = "2006-01-02"

// GreetingText is the content of the seed message every session starts with.
const GreetingText = "Hello, I'm ChatGPT! Ask me anything!"

// Message represents a single turn in the conversation.
// Messages are immutable once appended to the conversation log.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Sender    string    `json:"sender"`
	Content   string    `json:"message"`
	SentAt    string    `json:"sent_time"` // YYYY-MM-DD, UTC
	Timestamp time.Time `json:"timestamp"`
	Failed    bool      `json:"failed,omitempty"`     // true when Content is a placeholder for a failed completion
	ErrorKind string    `json:"error_kind,omitempty"` // e.g. "rate_limited", only set when Failed
}

// NewMessage creates a message stamped with the given time.
func NewMessage(role Role, sender, content string, now time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Sender:    sender,
		Content:   content,
		SentAt:    now.UTC().Format(DateLayout),
		Timestamp: now.UTC(),
	}
}

// NewUserMessage creates an outgoing user message.
func NewUserMessage(content string, now time.Time) Message {
	return NewMessage(RoleUser, SenderUser, content, now)
}

// NewAssistantMessage creates a reply from the assistant.
func NewAssistantMessage(content string, now time.Time) Message {
	return NewMessage(RoleAssistant, SenderAssistant, content, now)
}

// NewGreeting creates the seed message for a new session.
func NewGreeting(now time.Time) Message {
	return NewAssistantMessage(GreetingText, now)
}

// CompletionRole maps the message to the role sent to the completion endpoint:
// the assistant's own turns go back as "assistant", everything else as "user".
func (m Message) CompletionRole() Role {
	if m.Sender == SenderAssistant {
		return RoleAssistant
	}
	return RoleUser
}
