package automod

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitchDeck/internal/domain"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(0, clockwork.NewFakeClock())
	_, err := q.Pop()
	assert.ErrorIs(t, err, domain.ErrQueueEmpty)

	assert.True(t, q.Push(domain.HeldMessage{MsgID: "1"}))
	assert.True(t, q.Push(domain.HeldMessage{MsgID: "2"}))
	assert.False(t, q.Push(domain.HeldMessage{MsgID: "1"}))
	assert.False(t, q.Push(domain.HeldMessage{}))

	m, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, "1", m.MsgID)

	q.PushFront(m)
	assert.Equal(t, 2, q.Len())
	m, _ = q.Pop()
	assert.Equal(t, "1", m.MsgID)
}

func TestQueue_CapacityDropsOldest(t *testing.T) {
	q := NewQueue(2, clockwork.NewFakeClock())
	q.Push(domain.HeldMessage{MsgID: "a"})
	q.Push(domain.HeldMessage{MsgID: "b"})
	q.Push(domain.HeldMessage{MsgID: "c"})

	m, _ := q.Pop()
	assert.Equal(t, "b", m.MsgID)
}

func TestQueue_Expire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue(10, clock)
	q.Push(domain.HeldMessage{MsgID: "old"})
	clock.Advance(10 * time.Minute)
	q.Push(domain.HeldMessage{MsgID: "new"})

	assert.Equal(t, 1, q.Expire(5*time.Minute))
	m, _ := q.Pop()
	assert.Equal(t, "new", m.MsgID)
}
