package memory

import (
	"chatstats-backend/internal/models"
	"chatstats-backend/internal/store"
	"context"
	"log"
	"sync"
)

// Compile-time check to ensure MemoryStore implements store.ConversationStore
var _ store.ConversationStore = (*MemoryStore)(nil)

// MemoryStore keeps the conversation log in a slice for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []models.Message
}

// NewMemoryStore creates a store holding the given seed messages, in order.
func NewMemoryStore(seed ...models.Message) *MemoryStore {
	messages := make([]models.Message, len(seed))
	copy(messages, seed)
	return &MemoryStore{messages: messages}
}

// Append adds msg to the end of the log and returns a snapshot including it.
func (s *MemoryStore) Append(ctx context.Context, msg models.Message) ([]models.Message, error) {
	if err := store.Validate(msg); err != nil {
		log.Printf("WARN [MemoryStore] Append rejected message: %v", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	log.Printf("[MemoryStore] Appended %s message %s (log length %d)", msg.Sender, msg.ID, len(s.messages))
	return s.copyLocked(), nil
}

// Snapshot returns a copy of the log in insertion order.
func (s *MemoryStore) Snapshot(ctx context.Context) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked(), nil
}

// Len returns the number of messages in the log.
func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages), nil
}

func (s *MemoryStore) copyLocked() []models.Message {
	copied := make([]models.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}
