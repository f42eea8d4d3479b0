package events

import (
	"chatstats-backend/internal/models"
	"chatstats-backend/internal/stats"
	"log"
	"sync"
)

// Type identifies what changed in the session.
type Type string

const (
	TypeMessageAppended Type = "message_appended"
	TypeTypingChanged   Type = "typing_changed"
	TypeStatsUpdated    Type = "stats_updated"
)

// Event is a single session change pushed to observers.
type Event struct {
	Type     Type            `json:"type"`
	IsTyping bool            `json:"is_typing"`
	Message  *models.Message `json:"message,omitempty"`
	ByDate   stats.Counts    `json:"by_date,omitempty"`
	BySender stats.Counts    `json:"by_sender,omitempty"`
}

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 32

// Broadcaster fans events out to any number of subscribers.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
	buffer int
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broadcaster{
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

// Subscribe registers a new observer. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber that has room for it.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("WARN [Broadcaster] Subscriber %d is not keeping up, dropped %s event", id, ev.Type)
		}
	}
}

// Len returns the number of active subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
