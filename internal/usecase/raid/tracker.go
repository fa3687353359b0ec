package raid

import (
	"sync"

	"twitchDeck/internal/domain"
)

// Tracker holds the current raider for the shoutout button. A new raid
// replaces the previous one and nothing expires on its own.
type Tracker struct {
	mu      sync.Mutex
	current *domain.Raider
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Set registra el último raider recibido.
func (t *Tracker) Set(r domain.Raider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = &r
}

// Current returns the raider without clearing it.
func (t *Tracker) Current() (domain.Raider, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return domain.Raider{}, false
	}
	return *t.current, true
}

// Take returns and clears the current raider.
func (t *Tracker) Take() (domain.Raider, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return domain.Raider{}, false
	}
	r := *t.current
	t.current = nil
	return r, true
}

// Restore puts r back after a failed shoutout unless a newer raid arrived meanwhile.
func (t *Tracker) Restore(r domain.Raider) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil {
		return false
	}
	t.current = &r
	return true
}
