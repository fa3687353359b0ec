package actions

import (
	"context"
	"errors"
	"sync"

	"twitchDeck/internal/domain"
)

var errTwitch = errors.New("twitch unavailable")

// --- Mock implementations ---

type fakeModeration struct {
	mu     sync.Mutex
	mode   domain.ChatMode
	shield bool
	calls  []string

	failSet   error
	failRead  error
	userIDs   map[string]string
	approved  []string
	shoutouts []string
	cleared   int
}

func (f *fakeModeration) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeModeration) ChatMode(_ context.Context, _, _ string) (domain.ChatMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ChatMode")
	return f.mode, f.failRead
}

func (f *fakeModeration) SetSlowMode(_ context.Context, _, _ string, enabled bool, wait int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetSlowMode")
	if f.failSet != nil {
		return f.failSet
	}
	f.mode.SlowMode = enabled
	f.mode.SlowModeWaitTime = wait
	return nil
}

func (f *fakeModeration) SetFollowerMode(_ context.Context, _, _ string, enabled bool, minutes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetFollowerMode")
	if f.failSet != nil {
		return f.failSet
	}
	f.mode.FollowerMode = enabled
	f.mode.FollowerModeDuration = minutes
	return nil
}

func (f *fakeModeration) SetSubscriberMode(_ context.Context, _, _ string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetSubscriberMode")
	if f.failSet != nil {
		return f.failSet
	}
	f.mode.SubscriberMode = enabled
	return nil
}

func (f *fakeModeration) ShieldMode(_ context.Context, _, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ShieldMode")
	return f.shield, f.failRead
}

func (f *fakeModeration) SetShieldMode(_ context.Context, _, _ string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetShieldMode")
	if f.failSet != nil {
		return f.failSet
	}
	f.shield = active
	return nil
}

func (f *fakeModeration) ApproveHeldMessage(_ context.Context, _, msgID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ApproveHeldMessage")
	if f.failSet != nil {
		return f.failSet
	}
	f.approved = append(f.approved, msgID)
	return nil
}

func (f *fakeModeration) SendShoutout(_ context.Context, _, to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendShoutout")
	if f.failSet != nil {
		return f.failSet
	}
	f.shoutouts = append(f.shoutouts, to)
	return nil
}

func (f *fakeModeration) ClearRedemptionQueue(_ context.Context, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearRedemptionQueue")
	if f.failSet != nil {
		return 0, f.failSet
	}
	return f.cleared, nil
}

func (f *fakeModeration) UserID(_ context.Context, login string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UserID")
	id, ok := f.userIDs[login]
	if !ok {
		return "", errors.New("user not found")
	}
	return id, nil
}

func (f *fakeModeration) isShielded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shield
}

func (f *fakeModeration) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

type fakeAnnouncer struct {
	channel string
	text    string
	err     error
}

func (f *fakeAnnouncer) Announce(_ context.Context, channel, text string) error {
	f.channel = channel
	f.text = text
	return f.err
}

type fakeActionLog struct {
	records []domain.ActionRecord
}

func (f *fakeActionLog) SaveAction(_ context.Context, rec *domain.ActionRecord) error {
	rec.ID = int64(len(f.records) + 1)
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeActionLog) ListActions(_ context.Context, _ int) ([]*domain.ActionRecord, error) {
	return nil, nil
}

type fakeRaids struct {
	shouted []string
}

func (f *fakeRaids) SaveRaid(_ context.Context, _ domain.Raider) (int64, error) { return 1, nil }

func (f *fakeRaids) MarkShoutedOut(_ context.Context, login string) error {
	f.shouted = append(f.shouted, login)
	return nil
}

func (f *fakeRaids) ListRaids(_ context.Context, _ int) ([]*domain.RaidRecord, error) {
	return nil, nil
}

func newContext(svc domain.ModerationService) *Context {
	return &Context{
		Instance: "ctx-1",
		Settings: domain.DefaultActionSettings(),
		Global: domain.GlobalSettings{
			TwitchChannel:       "ninja",
			TwitchToken:         "token",
			TwitchBroadcasterID: "100",
			TwitchClientID:      "cid",
		},
		Service: svc,
	}
}
