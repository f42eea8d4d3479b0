package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"chatstats-backend/internal/models"
	"chatstats-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func TestNewMemoryStore_Seed(t *testing.T) {
	s := NewMemoryStore(models.NewGreeting(testNow))

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, models.GreetingText, snap[0].Content)
	assert.Equal(t, models.SenderAssistant, snap[0].Sender)
}

func TestMemoryStore_AppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(models.NewGreeting(testNow))

	const n = 10
	for i := 0; i < n; i++ {
		var msg models.Message
		if i%2 == 0 {
			msg = models.NewUserMessage(fmt.Sprintf("q%d", i), testNow)
		} else {
			msg = models.NewAssistantMessage(fmt.Sprintf("a%d", i), testNow)
		}
		snap, err := s.Append(ctx, msg)
		require.NoError(t, err)
		assert.Len(t, snap, i+2, "snapshot length is appends plus the seed")
		assert.Equal(t, msg.ID, snap[len(snap)-1].ID)
	}

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, n+1)
	assert.Equal(t, models.GreetingText, snap[0].Content)
	for i := 0; i < n; i++ {
		assert.Contains(t, snap[i+1].Content, fmt.Sprintf("%d", i))
	}

	length, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, n+1, length)
}

func TestMemoryStore_SnapshotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(models.NewGreeting(testNow))

	first, err := s.Append(ctx, models.NewUserMessage("one", testNow))
	require.NoError(t, err)

	first[0].Content = "tampered"
	_, err = s.Append(ctx, models.NewUserMessage("two", testNow))
	require.NoError(t, err)

	assert.Len(t, first, 2, "earlier snapshot must not grow")

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.GreetingText, snap[0].Content, "store must not see caller mutations")
	assert.Len(t, snap, 3)
}

func TestMemoryStore_AppendRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Append(ctx, models.Message{Content: "no role"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrInvalidMessage))

	_, err = s.Append(ctx, models.Message{Role: models.RoleUser, Content: "no sender"})
	assert.True(t, errors.Is(err, store.ErrInvalidMessage))

	length, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, length)
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const workers = 8
	const perWorker = 25
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < perWorker; i++ {
				_, err := s.Append(ctx, models.NewUserMessage("hi", testNow))
				assert.NoError(t, err)
				_, err = s.Snapshot(ctx)
				assert.NoError(t, err)
			}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	length, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, length)
}
