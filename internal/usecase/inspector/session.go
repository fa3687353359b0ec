package inspector

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"twitchDeck/internal/domain"
)

const (
	ConnectionTestTimeout = 10 * time.Second

	StatusTimedOut = "Test timed out"
	StatusTesting  = "Testing connection..."
	StatusSaved    = "Settings saved"
	StatusInvalid  = "Fix the highlighted fields"
	StatusResolve  = "Resolving IDs..."
)

// Outbound es lo que la sesión necesita del cliente del host.
type Outbound interface {
	SetSettings(context string, settings any)
	SetGlobalSettings(settings any)
	SendToPlugin(action, context string, payload any)
}

// State is a snapshot of what the inspector UI shows.
type State struct {
	Form          Form
	Report        Report
	Status        string
	ButtonEnabled bool
	Configured    bool
	Raider        *domain.Raider
}

type Options struct {
	Clock     clockwork.Clock
	NewID     func() string
	OnUpdate  func(State)
	ActionID  string
	ContextID string
}

// Session owns the form of one inspector instance.
type Session struct {
	out      Outbound
	clock    clockwork.Clock
	newID    func() string
	onUpdate func(State)
	action   string
	context  string

	mu        sync.Mutex
	form      Form
	report    Report
	status    string
	testing   bool
	requestID string
	timer     clockwork.Timer
	info      domain.InspectorMessage
}

func NewSession(out Outbound, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	s := &Session{
		out:      out,
		clock:    opts.Clock,
		newID:    opts.NewID,
		onUpdate: opts.OnUpdate,
		action:   opts.ActionID,
		context:  opts.ContextID,
	}
	s.form.Populate(domain.DefaultActionSettings())
	return s
}

// State devuelve una copia del estado actual.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	st := State{
		Form:          s.form,
		Report:        s.report,
		Status:        s.status,
		ButtonEnabled: !s.testing,
		Configured:    s.info.Configured,
	}
	if s.info.Raider != nil {
		r := *s.info.Raider
		st.Raider = &r
	}
	return st
}

// notify must be called without s.mu held.
func (s *Session) notify() {
	if s.onUpdate == nil {
		return
	}
	s.onUpdate(s.State())
}

// OnSettings handles didReceiveSettings.
func (s *Session) OnSettings(raw json.RawMessage) {
	settings := domain.DefaultActionSettings()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &settings); err != nil {
			slog.Warn("inspector: bad settings payload", "error", err)
			settings = domain.DefaultActionSettings()
		}
	}
	s.mu.Lock()
	s.form.Populate(settings)
	s.mu.Unlock()
	s.notify()
}

// OnGlobalSettings handles didReceiveGlobalSettings.
func (s *Session) OnGlobalSettings(raw json.RawMessage) {
	var global domain.GlobalSettings
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &global); err != nil {
			slog.Warn("inspector: bad global settings payload", "error", err)
			return
		}
	}
	s.mu.Lock()
	s.form.PopulateGlobal(global)
	s.mu.Unlock()
	s.notify()
}

// Change applies one edited field and saves, like the "change" event of an input.
func (s *Session) Change(field, value string) error {
	s.mu.Lock()
	err := s.form.Set(field, value)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Save()
	return nil
}

// Save pushes the collected form to the host and relays the credentials to the plugin.
func (s *Session) Save() {
	s.mu.Lock()
	settings, global := s.form.Collect()
	s.form.Channel = global.TwitchChannel
	s.report = Validate(s.form)
	s.status = StatusSaved
	s.mu.Unlock()

	s.out.SetSettings(s.context, settings)
	s.out.SetGlobalSettings(global)
	s.out.SendToPlugin(s.action, s.context, domain.PluginRequest{
		Action:   domain.RelaySaveGlobalSettings,
		Settings: &global,
	})
	s.notify()
}

// TestConnection validates the form and asks the plugin to check the token.
// The button stays disabled until the reply arrives or the timeout fires.
func (s *Session) TestConnection() {
	s.mu.Lock()
	if s.testing {
		s.mu.Unlock()
		return
	}
	s.report = Validate(s.form)
	if !s.report.OK() {
		s.status = StatusInvalid
		s.mu.Unlock()
		s.notify()
		return
	}

	id := s.newID()
	s.requestID = id
	s.testing = true
	s.status = StatusTesting
	s.timer = s.clock.AfterFunc(ConnectionTestTimeout, func() { s.timeout(id) })
	s.mu.Unlock()

	s.out.SendToPlugin(s.action, s.context, domain.PluginRequest{
		Action:    domain.RelayConnectionTest,
		RequestID: id,
	})
	s.notify()
}

func (s *Session) timeout(id string) {
	s.mu.Lock()
	if !s.testing || s.requestID != id {
		s.mu.Unlock()
		return
	}
	s.testing = false
	s.requestID = ""
	s.timer = nil
	s.status = StatusTimedOut
	s.mu.Unlock()

	slog.Info("inspector: connection test timed out", "request_id", id)
	s.notify()
}

// ResolveIDs asks the plugin to look up the broadcaster and moderator IDs.
func (s *Session) ResolveIDs() {
	s.mu.Lock()
	s.status = StatusResolve
	s.mu.Unlock()

	s.out.SendToPlugin(s.action, s.context, domain.PluginRequest{Action: domain.RelayResolveIDs})
	s.notify()
}

// OnPluginMessage handles sendToPropertyInspector payloads coming from the plugin.
func (s *Session) OnPluginMessage(raw json.RawMessage) {
	var msg domain.InspectorMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.Debug("inspector: dropping plugin message", "error", err)
		return
	}

	switch msg.Event {
	case domain.RelayConnectionTest:
		s.onConnectionTest(msg)
	case domain.RelayResolvedIDs:
		s.onResolvedIDs(msg)
	case domain.RelayStatus:
		s.mu.Lock()
		s.info = msg
		s.mu.Unlock()
		s.notify()
	default:
		slog.Debug("inspector: unknown plugin message", "event", msg.Event)
	}
}

func (s *Session) onConnectionTest(msg domain.InspectorMessage) {
	s.mu.Lock()
	if !s.testing || msg.RequestID != s.requestID {
		s.mu.Unlock()
		slog.Debug("inspector: stale connection test reply", "request_id", msg.RequestID)
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.testing = false
	s.requestID = ""
	s.status = connectionStatus(msg)
	s.mu.Unlock()

	s.notify()
}

func connectionStatus(msg domain.InspectorMessage) string {
	text := msg.Message
	if text == "" {
		if msg.Success {
			text = "Connected"
		} else {
			text = "Connection failed"
		}
	}
	if msg.Success && msg.Login != "" {
		text += " as " + msg.Login
	}
	if len(msg.MissingScopes) > 0 {
		text += " (missing scopes: " + strings.Join(msg.MissingScopes, ", ") + ")"
	}
	return text
}

func (s *Session) onResolvedIDs(msg domain.InspectorMessage) {
	if !msg.Success {
		s.mu.Lock()
		s.status = msg.Message
		if s.status == "" {
			s.status = "Could not resolve IDs"
		}
		s.mu.Unlock()
		s.notify()
		return
	}

	s.mu.Lock()
	if msg.BroadcasterID != "" {
		s.form.BroadcasterID = msg.BroadcasterID
	}
	if msg.ModeratorID != "" {
		s.form.ModeratorID = msg.ModeratorID
	}
	s.mu.Unlock()

	s.Save()
}
