package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"twitchDeck/internal/domain"
	"twitchDeck/internal/infrastructure/config"
	sqlitestorage "twitchDeck/internal/infrastructure/persistence/sqlite"
	sd "twitchDeck/internal/interface/streamdeck"
	"twitchDeck/internal/usecase/actions"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type hostCall struct {
	Event   string
	Context string
	State   int
	Payload any
}

type fakeHost struct {
	mu    sync.Mutex
	calls []hostCall
}

func (h *fakeHost) add(c hostCall) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, c)
}

func (h *fakeHost) SetState(ctx string, state int) {
	h.add(hostCall{Event: sd.EventSetState, Context: ctx, State: state})
}
func (h *fakeHost) ShowAlert(ctx string) { h.add(hostCall{Event: sd.EventShowAlert, Context: ctx}) }
func (h *fakeHost) ShowOk(ctx string)    { h.add(hostCall{Event: sd.EventShowOk, Context: ctx}) }
func (h *fakeHost) SendToPropertyInspector(_, ctx string, payload any) {
	h.add(hostCall{Event: sd.EventSendToPropertyInspector, Context: ctx, Payload: payload})
}
func (h *fakeHost) GetGlobalSettings() { h.add(hostCall{Event: sd.EventGetGlobalSettings}) }

func (h *fakeHost) has(event, ctx string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.calls {
		if c.Event == event && c.Context == ctx {
			return true
		}
	}
	return false
}

func (h *fakeHost) state(ctx string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.calls) - 1; i >= 0; i-- {
		if c := h.calls[i]; c.Event == sd.EventSetState && c.Context == ctx {
			return c.State, true
		}
	}
	return 0, false
}

// inspectorMessages returns the relay messages sent to ctx, oldest first.
func (h *fakeHost) inspectorMessages(ctx string) []domain.InspectorMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []domain.InspectorMessage
	for _, c := range h.calls {
		if c.Event != sd.EventSendToPropertyInspector || c.Context != ctx {
			continue
		}
		if msg, ok := c.Payload.(domain.InspectorMessage); ok {
			out = append(out, msg)
		}
	}
	return out
}

type fakeService struct {
	mu        sync.Mutex
	mode      domain.ChatMode
	shield    bool
	token     domain.TokenInfo
	tokenErr  error
	users     map[string]string
	approved  []string
	shoutouts []string
	shieldSet []bool
	tokens    []string
	shieldErr error
	checks    int
}

func newFakeService() *fakeService {
	return &fakeService{
		token: domain.TokenInfo{
			Valid:    true,
			Login:    "streamer",
			UserID:   "100",
			ClientID: "cid",
			Scopes:   append([]string(nil), domain.RequiredScopes...),
		},
		users: map[string]string{"streamer": "100", "coolraider": "555"},
	}
}

func (f *fakeService) ChatMode(context.Context, string, string) (domain.ChatMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode, nil
}

func (f *fakeService) SetSlowMode(_ context.Context, _, _ string, enabled bool, wait int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode.SlowMode = enabled
	f.mode.SlowModeWaitTime = wait
	return nil
}

func (f *fakeService) SetFollowerMode(_ context.Context, _, _ string, enabled bool, minutes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode.FollowerMode = enabled
	f.mode.FollowerModeDuration = minutes
	return nil
}

func (f *fakeService) SetSubscriberMode(_ context.Context, _, _ string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode.SubscriberMode = enabled
	return nil
}

func (f *fakeService) ShieldMode(context.Context, string, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shield, nil
}

func (f *fakeService) SetShieldMode(_ context.Context, _, _ string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.shieldErr != nil {
		return f.shieldErr
	}
	f.shield = active
	f.shieldSet = append(f.shieldSet, active)
	return nil
}

func (f *fakeService) ApproveHeldMessage(_ context.Context, _, msgID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, msgID)
	return nil
}

func (f *fakeService) SendShoutout(_ context.Context, _, to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shoutouts = append(f.shoutouts, to)
	return nil
}

func (f *fakeService) ClearRedemptionQueue(context.Context, string) (int, error) {
	return 0, nil
}

func (f *fakeService) UserID(_ context.Context, login string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.users[login]
	if !ok {
		return "", fmt.Errorf("user %q not found", login)
	}
	return id, nil
}

func (f *fakeService) UpdateAccessToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeService) ValidateToken(context.Context, string) (domain.TokenInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return f.token, f.tokenErr
}

func (f *fakeService) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func (f *fakeService) snapshot() (domain.ChatMode, []bool, []string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode, append([]bool(nil), f.shieldSet...), append([]string(nil), f.approved...), append([]string(nil), f.shoutouts...)
}

type fakeWatcher struct {
	channel string
	login   string
	onRaid  func(domain.Raider)
}

func (w *fakeWatcher) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

type fakeAnnouncer struct {
	mu     sync.Mutex
	login  string
	said   []string
	closed bool
}

func (a *fakeAnnouncer) Announce(_ context.Context, channel, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.said = append(a.said, channel+": "+text)
	return nil
}

func (a *fakeAnnouncer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

func (a *fakeAnnouncer) messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.said...)
}

type harness struct {
	rt       *Runtime
	host     *fakeHost
	svc      *fakeService
	clock    *clockwork.FakeClock
	store    *sqlitestorage.Store
	mu       sync.Mutex
	builds   int
	watchers []*fakeWatcher
	speakers []*fakeAnnouncer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := sqlitestorage.NewStore(t.TempDir() + "/plugin.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{
		host:  &fakeHost{},
		svc:   newFakeService(),
		clock: clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		store: store,
	}

	h.rt = New(context.Background(), Deps{
		Config: &config.Config{
			HelixBaseURL:       "http://helix.test",
			ShoutoutAnnounce:   true,
			ShoutoutMessage:    actions.DefaultShoutoutMessage,
			TokenCheckInterval: time.Hour,
		},
		Clock: h.clock,
		Store: store,
		NewService: func(clientID, token, baseURL string) (Service, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.builds++
			return h.svc, nil
		},
		NewWatcher: func(channel, login, token string, onRaid func(domain.Raider)) Watcher {
			h.mu.Lock()
			defer h.mu.Unlock()
			w := &fakeWatcher{channel: channel, login: login, onRaid: onRaid}
			h.watchers = append(h.watchers, w)
			return w
		},
		NewAnnouncer: func(login, token string) Announcer {
			h.mu.Lock()
			defer h.mu.Unlock()
			a := &fakeAnnouncer{login: login}
			h.speakers = append(h.speakers, a)
			return a
		},
	})
	h.rt.Attach(h.host)
	h.rt.Start()
	t.Cleanup(h.rt.Stop)
	return h
}

func (h *harness) buildCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.builds
}

func (h *harness) watcher() *fakeWatcher {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.watchers) == 0 {
		return nil
	}
	return h.watchers[len(h.watchers)-1]
}

func (h *harness) speaker() *fakeAnnouncer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.speakers) == 0 {
		return nil
	}
	return h.speakers[len(h.speakers)-1]
}

func configured() domain.GlobalSettings {
	return domain.GlobalSettings{
		TwitchChannel:       "@Streamer",
		TwitchToken:         "oauth:abcdefghijklmnopqrstuvwxyz",
		TwitchBroadcasterID: "100",
		TwitchClientID:      "cid",
	}
}

func (h *harness) dispatch(t *testing.T, event, action, ctx string, payload any) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = data
	}
	handler, ok := h.rt.Handlers()[event]
	require.True(t, ok, "no handler for %s", event)
	handler(context.Background(), sd.Envelope{Event: event, Action: action, Context: ctx, Payload: raw})
}

func settingsPayload(settings map[string]any) map[string]any {
	return map[string]any{"settings": settings, "coordinates": map[string]int{"column": 0, "row": 0}}
}
