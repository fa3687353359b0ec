package actions

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"twitchDeck/internal/domain"
)

const autoOffTimeout = 10 * time.Second

// maxAutoOffSeconds is the longest delay time.Duration can hold.
const maxAutoOffSeconds = int64(math.MaxInt64 / int64(time.Second))

// ShieldAction toggles Shield Mode. Turning it on with a positive
// shieldDuration schedules an automatic deactivation; zero or a duration
// too long to represent never expires.
type ShieldAction struct {
	clock clockwork.Clock

	mu     sync.Mutex
	timers map[string]clockwork.Timer
	onAuto func(broadcasterID string, err error)
}

func NewShieldAction(clock clockwork.Clock) *ShieldAction {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ShieldAction{
		clock:  clock,
		timers: make(map[string]clockwork.Timer),
	}
}

func (a *ShieldAction) Kind() domain.ActionKind { return domain.ActionShield }

// OnAutoOff registers a callback for when a scheduled deactivation runs.
func (a *ShieldAction) OnAutoOff(fn func(broadcasterID string, err error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onAuto = fn
}

func (a *ShieldAction) CurrentState(ctx context.Context, c *Context) (bool, error) {
	return c.Service.ShieldMode(ctx, c.broadcaster(), c.moderator())
}

func (a *ShieldAction) Execute(ctx context.Context, c *Context) (Result, error) {
	if err := c.ready(); err != nil {
		return Result{}, err
	}
	on, err := a.CurrentState(ctx, c)
	if err != nil {
		return Result{}, err
	}
	next := !on
	if err := c.Service.SetShieldMode(ctx, c.broadcaster(), c.moderator(), next); err != nil {
		return Result{}, err
	}

	a.cancel(c.broadcaster())
	if !next {
		return toggled(false, "shield mode off"), nil
	}

	if secs := c.Settings.ShieldDuration; secs > 0 && int64(secs) <= maxAutoOffSeconds {
		a.schedule(c, time.Duration(c.Settings.ShieldDuration)*time.Second)
		return toggled(true, fmt.Sprintf("shield mode on (%ds)", c.Settings.ShieldDuration)), nil
	}
	return toggled(true, "shield mode on"), nil
}

// Pending reports whether an automatic deactivation is armed for broadcasterID.
func (a *ShieldAction) Pending(broadcasterID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.timers[broadcasterID]
	return ok
}

// Stop cancela todos los apagados programados.
func (a *ShieldAction) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, t := range a.timers {
		t.Stop()
		delete(a.timers, id)
	}
}

func (a *ShieldAction) cancel(broadcasterID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.timers[broadcasterID]; ok {
		t.Stop()
		delete(a.timers, broadcasterID)
	}
}

func (a *ShieldAction) schedule(c *Context, d time.Duration) {
	svc := c.Service
	broadcaster := c.broadcaster()
	moderator := c.moderator()

	a.mu.Lock()
	defer a.mu.Unlock()

	var timer clockwork.Timer
	timer = a.clock.AfterFunc(d, func() {
		a.mu.Lock()
		if a.timers[broadcaster] != timer {
			a.mu.Unlock()
			return
		}
		delete(a.timers, broadcaster)
		cb := a.onAuto
		a.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), autoOffTimeout)
		defer cancel()
		err := svc.SetShieldMode(ctx, broadcaster, moderator, false)
		if err != nil {
			slog.Warn("actions: shield auto-off failed", "broadcaster_id", broadcaster, "error", err)
		} else {
			slog.Info("actions: shield mode auto-off", "broadcaster_id", broadcaster)
		}
		if cb != nil {
			cb(broadcaster, err)
		}
	})
	a.timers[broadcaster] = timer
}
