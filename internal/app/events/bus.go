package events

import (
	"log/slog"
	"sync"
)

const (
	TopicRaidReceived   = "raid:received"
	TopicActionExecuted = "action:executed"
	TopicTokenInvalid   = "token:invalid"
	TopicShieldAutoOff  = "shield:auto_off"

	defaultBufferSize = 128
)

// DropObserver se invoca cada vez que un suscriptor lento pierde un evento.
type DropObserver func(topic string)

type Bus struct {
	mu        sync.RWMutex
	subs      map[string]map[int]chan any
	nextSubID int
	closed    bool

	dropMu     sync.Mutex
	dropCounts map[string]uint64
	onDrop     DropObserver
}

func NewBus() *Bus {
	return &Bus{
		subs:       make(map[string]map[int]chan any),
		dropCounts: make(map[string]uint64),
	}
}

// OnDrop registers fn to be called for every dropped event.
func (b *Bus) OnDrop(fn DropObserver) {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	b.onDrop = fn
}

func (b *Bus) Publish(topic string, payload any) {
	if topic == "" {
		return
	}
	// Sends are non-blocking, so holding the read lock keeps unsubscribe from
	// closing a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- payload:
		default:
			b.recordDrop(topic)
		}
	}
}

func (b *Bus) Subscribe(topic string) (<-chan any, func()) {
	ch := make(chan any, defaultBufferSize)

	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[string]map[int]chan any)
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan any)
	}
	id := b.nextSubID
	b.nextSubID++
	b.subs[topic][id] = ch
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subs, ok := b.subs[topic]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.subs, topic)
			}
		}
		close(ch)
	}

	return ch, unsubscribe
}

func (b *Bus) recordDrop(topic string) {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	if b.dropCounts == nil {
		b.dropCounts = make(map[string]uint64)
	}
	b.dropCounts[topic]++
	if b.dropCounts[topic]%100 == 1 {
		slog.Warn("events: dropping messages", "topic", topic, "total_drops", b.dropCounts[topic])
	}
	if b.onDrop != nil {
		b.onDrop(topic)
	}
}

// Drops returns how many events were dropped for topic.
func (b *Bus) Drops(topic string) uint64 {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	return b.dropCounts[topic]
}

// Close stops delivery; later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
