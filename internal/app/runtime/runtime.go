// Package runtime conecta el socket del host con las acciones de moderación.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"twitchDeck/internal/app/events"
	"twitchDeck/internal/domain"
	"twitchDeck/internal/infrastructure/config"
	"twitchDeck/internal/infrastructure/metrics"
	twitchinfra "twitchDeck/internal/infrastructure/platform/twitch"
	twitchadapter "twitchDeck/internal/interface/adapters/twitch"
	"twitchDeck/internal/usecase/actions"
	"twitchDeck/internal/usecase/automod"
	"twitchDeck/internal/usecase/credentials"
	"twitchDeck/internal/usecase/raid"
)

const (
	actionTimeout = 15 * time.Second

	heldMaxAge        = time.Hour
	heldSweepInterval = 5 * time.Minute
)

// Host is the outbound half of the plugin's host connection.
type Host interface {
	SetState(context string, state int)
	ShowAlert(context string)
	ShowOk(context string)
	SendToPropertyInspector(action, context string, payload any)
	GetGlobalSettings()
}

// Service is everything the runtime needs from Twitch's REST API.
type Service interface {
	domain.ModerationService
	domain.TokenValidator
	UpdateAccessToken(token string)
}

type Store interface {
	domain.ActionLogRepository
	domain.RaidRepository
}

// Watcher reports raids until its context is cancelled.
type Watcher interface {
	Run(ctx context.Context) error
}

type Announcer interface {
	domain.ChatAnnouncer
	Close()
}

type Deps struct {
	Config  *config.Config
	Clock   clockwork.Clock
	Store   Store
	Metrics *metrics.Metrics
	Bus     *events.Bus

	NewService   func(clientID, token, baseURL string) (Service, error)
	NewWatcher   func(channel, login, token string, onRaid func(domain.Raider)) Watcher
	NewAnnouncer func(login, token string) Announcer
}

type instance struct {
	action   string
	settings domain.ActionSettings
}

type Runtime struct {
	ctx    context.Context
	cancel context.CancelFunc
	deps   Deps
	clock  clockwork.Clock

	bus      *events.Bus
	metrics  *metrics.Metrics
	router   *actions.Router
	shield   *actions.ShieldAction
	raids    *raid.Tracker
	held     *automod.Queue
	checker  *credentials.Checker
	announce *swapAnnouncer

	wg      sync.WaitGroup
	started atomic.Bool

	hostMu sync.RWMutex
	host   Host

	mu         sync.RWMutex
	instances  map[string]instance
	inspectors map[string]string
	global     domain.GlobalSettings
	service    Service

	chatMu     sync.Mutex
	chatGen    int
	chatCancel context.CancelFunc
}

func New(ctx context.Context, deps Deps) *Runtime {
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.Config == nil {
		deps.Config = &config.Config{HelixBaseURL: twitchinfra.DefaultHelixBaseURL}
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Bus == nil {
		deps.Bus = events.NewBus()
	}
	if deps.NewService == nil {
		deps.NewService = defaultService
	}
	if deps.NewWatcher == nil {
		clock := deps.Clock
		deps.NewWatcher = func(channel, login, token string, onRaid func(domain.Raider)) Watcher {
			return twitchinfra.NewRaidWatcher(channel, login, token, clock, onRaid)
		}
	}
	if deps.NewAnnouncer == nil {
		deps.NewAnnouncer = func(login, token string) Announcer {
			return twitchadapter.NewAdapter(twitchadapter.Config{Username: login, OAuthToken: token})
		}
	}

	runtimeCtx, cancel := context.WithCancel(ctx)
	r := &Runtime{
		ctx:        runtimeCtx,
		cancel:     cancel,
		deps:       deps,
		clock:      deps.Clock,
		bus:        deps.Bus,
		metrics:    deps.Metrics,
		raids:      raid.NewTracker(),
		held:       automod.NewQueue(automod.DefaultCapacity, deps.Clock),
		checker:    credentials.NewChecker(deps.Clock),
		announce:   &swapAnnouncer{},
		instances:  make(map[string]instance),
		inspectors: make(map[string]string),
	}

	var actionLog domain.ActionLogRepository
	var raidLog domain.RaidRepository
	if deps.Store != nil {
		actionLog, raidLog = deps.Store, deps.Store
	}

	r.shield = actions.NewShieldAction(deps.Clock)
	r.shield.OnAutoOff(func(broadcasterID string, err error) {
		dto := events.ShieldAutoOffDTO{BroadcasterID: broadcasterID}
		if err != nil {
			dto.Error = err.Error()
		}
		r.bus.Publish(events.TopicShieldAutoOff, dto)
	})

	r.router = actions.NewRouter(actionLog, deps.Clock)
	r.router.Register(r.shield)
	r.router.Register(actions.NewSlowAction())
	r.router.Register(actions.NewFollowersAction())
	r.router.Register(actions.NewSubscribersAction())
	r.router.Register(actions.NewAutomodAction(r.held))
	r.router.Register(actions.NewRewardsAction())
	r.router.Register(actions.NewShoutoutAction(r.raids, actions.ShoutoutOptions{
		Announcer: r.announce,
		Raids:     raidLog,
		Message:   deps.Config.AnnounceTemplate(),
	}))
	r.router.Observe(func(rec domain.ActionRecord) {
		r.bus.Publish(events.TopicActionExecuted, events.NewActionExecutedDTO(rec))
	})

	r.checker.RegisterHook(func(ctx context.Context, result credentials.CheckResult, err error) {
		reason := "token is invalid or expired"
		if err != nil {
			reason = err.Error()
		}
		r.bus.Publish(events.TopicTokenInvalid, events.TokenInvalidDTO{Reason: reason})
	})

	r.bus.OnDrop(r.metrics.ObserveDrop)

	return r
}

func defaultService(clientID, token, baseURL string) (Service, error) {
	return twitchinfra.NewModerationService(twitchinfra.Options{
		ClientID:    clientID,
		AccessToken: token,
		BaseURL:     baseURL,
	})
}

// Attach sets the host connection used for outbound frames.
func (r *Runtime) Attach(host Host) {
	r.hostMu.Lock()
	defer r.hostMu.Unlock()
	r.host = host
}

func (r *Runtime) hostConn() Host {
	r.hostMu.RLock()
	defer r.hostMu.RUnlock()
	if r.host == nil {
		return noopHost{}
	}
	return r.host
}

// Start launches the bus consumers, the token checker and the AutoMod sweep.
func (r *Runtime) Start() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}

	r.consume(events.TopicRaidReceived, r.onRaidEvent)
	r.consume(events.TopicActionExecuted, r.onActionEvent)
	r.consume(events.TopicTokenInvalid, r.onTokenInvalidEvent)
	r.consume(events.TopicShieldAutoOff, r.onShieldAutoOffEvent)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.checker.Run(r.ctx, r.deps.Config.TokenCheckInterval)
	}()

	ticker := r.clock.NewTicker(heldSweepInterval)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.Chan():
				if n := r.held.Expire(heldMaxAge); n > 0 {
					slog.Info("automod: expired held messages", "count", n)
				}
				r.metrics.HeldMessages.Set(float64(r.held.Len()))
			}
		}
	}()

	slog.Info("runtime: started")
}

func (r *Runtime) consume(topic string, fn func(any)) {
	ch, unsubscribe := r.bus.Subscribe(topic)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-r.ctx.Done():
				return
			case payload, ok := <-ch:
				if !ok {
					return
				}
				fn(payload)
			}
		}
	}()
}

// Stop cancels background work and waits for in-flight key presses.
func (r *Runtime) Stop() {
	r.cancel()
	r.shield.Stop()
	r.stopChat()
	r.announce.swap(nil)
	r.wg.Wait()
	r.bus.Close()
	r.started.Store(false)
	slog.Info("runtime: stopped")
}

// Raiders exposes the current-raider tracker.
func (r *Runtime) Raiders() *raid.Tracker { return r.raids }

// Held exposes the AutoMod held-message queue.
func (r *Runtime) Held() *automod.Queue { return r.held }

func (r *Runtime) Bus() *events.Bus { return r.bus }

// Global returns the global settings currently applied.
func (r *Runtime) Global() domain.GlobalSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.global
}

func (r *Runtime) spawn(fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(r.ctx, actionTimeout)
		defer cancel()
		fn(ctx)
	}()
}

type noopHost struct{}

func (noopHost) SetState(string, int)                        {}
func (noopHost) ShowAlert(string)                            {}
func (noopHost) ShowOk(string)                               {}
func (noopHost) SendToPropertyInspector(string, string, any) {}
func (noopHost) GetGlobalSettings()                          {}
