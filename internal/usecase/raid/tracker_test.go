package raid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"twitchDeck/internal/domain"
)

func TestTracker_TakeClears(t *testing.T) {
	tr := NewTracker()
	_, ok := tr.Take()
	assert.False(t, ok)

	tr.Set(domain.Raider{Login: "a"})
	tr.Set(domain.Raider{Login: "b"})

	cur, ok := tr.Current()
	assert.True(t, ok)
	assert.Equal(t, "b", cur.Login)

	got, ok := tr.Take()
	assert.True(t, ok)
	assert.Equal(t, "b", got.Login)

	_, ok = tr.Take()
	assert.False(t, ok)
}

func TestTracker_RestoreOnlyWhenEmpty(t *testing.T) {
	tr := NewTracker()
	tr.Set(domain.Raider{Login: "old"})
	old, _ := tr.Take()

	assert.True(t, tr.Restore(old))
	cur, _ := tr.Current()
	assert.Equal(t, "old", cur.Login)

	old, _ = tr.Take()
	tr.Set(domain.Raider{Login: "new"})
	assert.False(t, tr.Restore(old))
	cur, _ = tr.Current()
	assert.Equal(t, "new", cur.Login)
}
