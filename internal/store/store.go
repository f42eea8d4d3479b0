package store

import (
	"chatstats-backend/internal/models"
	"context"
	"errors"
	"fmt"
)

// ErrInvalidMessage is returned when a message is missing its role or sender.
var ErrInvalidMessage = errors.New("invalid message")

// ConversationStore defines the operations on the conversation log.
// The log is append-only: there is no edit or delete.
// This allows for fakes in tests and a different backend later on.
type ConversationStore interface {
	// Append adds msg at the end of the log and returns a fresh snapshot
	// including it. Previously returned snapshots are never modified.
	Append(ctx context.Context, msg models.Message) ([]models.Message, error)

	// Snapshot returns a copy of the log in insertion order.
	Snapshot(ctx context.Context) ([]models.Message, error)

	// Len returns the number of messages in the log.
	Len(ctx context.Context) (int, error)
}

// Validate checks the fields every stored message must carry.
func Validate(msg models.Message) error {
	if msg.Role == "" {
		return fmt.Errorf("%w: role is required", ErrInvalidMessage)
	}
	if msg.Sender == "" {
		return fmt.Errorf("%w: sender is required", ErrInvalidMessage)
	}
	return nil
}
