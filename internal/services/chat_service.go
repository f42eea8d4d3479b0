package services

import (
	"chatstats-backend/internal/events"
	"chatstats-backend/internal/llm"
	"chatstats-backend/internal/models"
	"chatstats-backend/internal/stats"
	"chatstats-backend/internal/store"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultSystemPrompt is prepended to every completion request.
const DefaultSystemPrompt = "Explain things like you're talking to a software professional with 2 years of experience."

// DefaultReplyTimeout bounds one SendMessage round trip, pacing and retries included.
const DefaultReplyTimeout = 2 * time.Minute

var (
	// ErrEmptyMessage is returned for blank user input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned when a reply is still pending. Sends are rejected,
	// not queued.
	ErrBusy = errors.New("a reply is already pending")
)

// ChatSessionConfig holds the optional settings of a ChatSession.
type ChatSessionConfig struct {
	SystemPrompt string
	Model        string
	ReplyTimeout time.Duration
	Now          func() time.Time // clock, for tests
}

// ChatSession is the single in-memory conversation of this process.
// It moves between Idle and AwaitingReply; IsTyping reports the latter.
type ChatSession struct {
	id           string
	store        store.ConversationStore
	client       llm.Completer
	events       *events.Broadcaster
	systemPrompt string
	model        string
	replyTimeout time.Duration
	now          func() time.Time
	typing       atomic.Bool
}

// SendResult is what a completed SendMessage call produced.
type SendResult struct {
	UserMessage models.Message   `json:"user_message"`
	Reply       models.Message   `json:"reply"`
	Messages    []models.Message `json:"messages"`
	ByDate      stats.Counts     `json:"by_date"`
	BySender    stats.Counts     `json:"by_sender"`
}

// State is a read-only view of the session for the UI.
type State struct {
	ID       string           `json:"id"`
	IsTyping bool             `json:"is_typing"`
	Messages []models.Message `json:"messages"`
	ByDate   stats.Counts     `json:"by_date"`
	BySender stats.Counts     `json:"by_sender"`
}

// NewChatSession creates a session on top of st. An empty store is seeded
// with the greeting message.
func NewChatSession(ctx context.Context, st store.ConversationStore, client llm.Completer, broadcaster *events.Broadcaster, cfg ChatSessionConfig) (*ChatSession, error) {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = DefaultReplyTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if broadcaster == nil {
		broadcaster = events.NewBroadcaster(events.DefaultBuffer)
	}

	s := &ChatSession{
		id:           uuid.Must(uuid.NewV7()).String(),
		store:        st,
		client:       client,
		events:       broadcaster,
		systemPrompt: cfg.SystemPrompt,
		model:        cfg.Model,
		replyTimeout: cfg.ReplyTimeout,
		now:          cfg.Now,
	}

	n, err := st.Len(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation length: %w", err)
	}
	if n == 0 {
		if _, err := st.Append(ctx, models.NewGreeting(s.now())); err != nil {
			return nil, fmt.Errorf("failed to seed conversation: %w", err)
		}
	}

	log.Printf("[ChatSession] Session %s started", s.id)
	return s, nil
}

// ID returns the session identifier.
func (s *ChatSession) ID() string {
	return s.id
}

// IsTyping reports whether a reply is pending.
func (s *ChatSession) IsTyping() bool {
	return s.typing.Load()
}

// Subscribe registers an observer for session events.
func (s *ChatSession) Subscribe() (<-chan events.Event, func()) {
	return s.events.Subscribe()
}

// Snapshot returns the conversation so far.
func (s *ChatSession) Snapshot(ctx context.Context) ([]models.Message, error) {
	return s.store.Snapshot(ctx)
}

// ByDate returns the per-date message counts of the current conversation.
func (s *ChatSession) ByDate(ctx context.Context) (stats.Counts, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ByDate(snapshot), nil
}

// BySender returns the per-sender message counts of the current conversation.
func (s *ChatSession) BySender(ctx context.Context) (stats.Counts, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return stats.BySender(snapshot), nil
}

// State returns messages, typing flag and both chart series from one snapshot.
func (s *ChatSession) State(ctx context.Context) (*State, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot conversation: %w", err)
	}
	return &State{
		ID:       s.id,
		IsTyping: s.IsTyping(),
		Messages: snapshot,
		ByDate:   stats.ByDate(snapshot),
		BySender: stats.BySender(snapshot),
	}, nil
}

// SendMessage appends the user's text, asks the model for a reply and
// appends it. A failed completion still completes the turn: the reply carries
// the placeholder text with Failed set. Only input and store errors are
// returned.
//
// The caller cannot abort a pending reply; its context only contributes
// values. The round trip is bounded by the configured reply timeout.
func (s *ChatSession) SendMessage(ctx context.Context, text string) (*SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if !s.typing.CompareAndSwap(false, true) {
		log.Printf("WARN [ChatSession] Rejected send while awaiting reply")
		return nil, ErrBusy
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.replyTimeout)
	defer cancel()

	userMsg := models.NewUserMessage(text, s.now())
	snapshot, err := s.store.Append(ctx, userMsg)
	if err != nil {
		s.setTyping(false)
		return nil, fmt.Errorf("failed to append user message: %w", err)
	}
	s.events.Publish(events.Event{Type: events.TypeMessageAppended, IsTyping: true, Message: &userMsg})
	s.events.Publish(events.Event{Type: events.TypeTypingChanged, IsTyping: true})

	reply := s.complete(ctx, snapshot)

	snapshot, err = s.store.Append(ctx, reply)
	if err != nil {
		s.setTyping(false)
		return nil, fmt.Errorf("failed to append reply: %w", err)
	}

	result := &SendResult{
		UserMessage: userMsg,
		Reply:       reply,
		Messages:    snapshot,
		ByDate:      stats.ByDate(snapshot),
		BySender:    stats.BySender(snapshot),
	}

	s.typing.Store(false)
	s.events.Publish(events.Event{Type: events.TypeMessageAppended, Message: &reply})
	s.events.Publish(events.Event{Type: events.TypeStatsUpdated, ByDate: result.ByDate, BySender: result.BySender})
	s.events.Publish(events.Event{Type: events.TypeTypingChanged})

	return result, nil
}

// complete asks the model for the next turn and converts failures into a
// tagged placeholder reply.
func (s *ChatSession) complete(ctx context.Context, snapshot []models.Message) models.Message {
	content, err := s.client.Complete(ctx, s.buildRequest(snapshot))
	if err != nil {
		log.Printf("ERROR [ChatSession] Completion failed (%s): %v", llm.ErrorKind(err), err)
		reply := models.NewAssistantMessage(llm.FallbackText(err), s.now())
		reply.Failed = true
		reply.ErrorKind = llm.ErrorKind(err)
		return reply
	}
	return models.NewAssistantMessage(content, s.now())
}

// buildRequest prepends the system prompt to every prior message, placeholder
// replies of failed completions included.
func (s *ChatSession) buildRequest(snapshot []models.Message) llm.CompletionRequest {
	messages := make([]llm.ChatMessage, 0, len(snapshot)+1)
	messages = append(messages, llm.ChatMessage{Role: models.RoleSystem, Content: s.systemPrompt})
	for _, msg := range snapshot {
		messages = append(messages, llm.ChatMessage{Role: msg.CompletionRole(), Content: msg.Content})
	}
	return llm.CompletionRequest{Model: s.model, Messages: messages}
}

func (s *ChatSession) setTyping(typing bool) {
	s.typing.Store(typing)
	s.events.Publish(events.Event{Type: events.TypeTypingChanged, IsTyping: typing})
}
