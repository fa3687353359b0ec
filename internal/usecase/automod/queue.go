package automod

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"twitchDeck/internal/domain"
)

// DefaultCapacity bounds the queue; the oldest entry is dropped when full.
const DefaultCapacity = 100

// Queue es una cola FIFO de mensajes retenidos por AutoMod.
type Queue struct {
	mu       sync.Mutex
	items    []domain.HeldMessage
	capacity int
	clock    clockwork.Clock
}

func NewQueue(capacity int, clock clockwork.Clock) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Queue{capacity: capacity, clock: clock}
}

// Push enqueues msg. Duplicate message IDs are ignored.
func (q *Queue) Push(msg domain.HeldMessage) bool {
	if msg.MsgID == "" {
		return false
	}
	if msg.QueuedAt.IsZero() {
		msg.QueuedAt = q.clock.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range q.items {
		if it.MsgID == msg.MsgID {
			return false
		}
	}
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, msg)
	return true
}

// Pop removes the oldest message.
func (q *Queue) Pop() (domain.HeldMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return domain.HeldMessage{}, domain.ErrQueueEmpty
	}
	msg := q.items[0]
	q.items = q.items[1:]
	return msg, nil
}

// PushFront devuelve un mensaje a la cabeza tras un fallo de aprobación.
func (q *Queue) PushFront(msg domain.HeldMessage) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]domain.HeldMessage{msg}, q.items...)
	if len(q.items) > q.capacity {
		q.items = q.items[:q.capacity]
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Expire drops messages older than maxAge. Twitch discards held messages after a few minutes.
func (q *Queue) Expire(maxAge time.Duration) int {
	cutoff := q.clock.Now().Add(-maxAge)
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	dropped := 0
	for _, it := range q.items {
		if it.QueuedAt.Before(cutoff) {
			dropped++
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
	return dropped
}
