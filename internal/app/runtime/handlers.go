package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"twitchDeck/internal/app/events"
	"twitchDeck/internal/domain"
	twitchinfra "twitchDeck/internal/infrastructure/platform/twitch"
	sd "twitchDeck/internal/interface/streamdeck"
	"twitchDeck/internal/usecase/actions"
)

// Handlers returns the plugin's dispatch table.
func (r *Runtime) Handlers() sd.Handlers {
	return sd.Handlers{
		sd.EventKeyDown:                       r.counted(r.onKeyDown),
		sd.EventWillAppear:                    r.counted(r.onWillAppear),
		sd.EventWillDisappear:                 r.counted(r.onWillDisappear),
		sd.EventDidReceiveSettings:            r.counted(r.onDidReceiveSettings),
		sd.EventDidReceiveGlobalSettings:      r.counted(r.onDidReceiveGlobalSettings),
		sd.EventSendToPlugin:                  r.counted(r.onSendToPlugin),
		sd.EventPropertyInspectorDidAppear:    r.counted(r.onInspectorDidAppear),
		sd.EventPropertyInspectorDidDisappear: r.counted(r.onInspectorDidDisappear),
		sd.EventSystemDidWakeUp:               r.counted(r.onSystemDidWakeUp),
	}
}

func (r *Runtime) counted(h sd.Handler) sd.Handler {
	return func(ctx context.Context, ev sd.Envelope) {
		r.metrics.ObserveHostEvent(ev.Event)
		h(ctx, ev)
	}
}

func decodeActionPayload(ev sd.Envelope) (sd.ActionPayload, domain.ActionSettings) {
	var p sd.ActionPayload
	settings := domain.DefaultActionSettings()
	if err := ev.DecodePayload(&p); err != nil {
		slog.Debug("runtime: bad action payload", "event", ev.Event, "error", err)
		return p, settings
	}
	if len(p.Settings) > 0 {
		if err := json.Unmarshal(p.Settings, &settings); err != nil {
			settings = domain.DefaultActionSettings()
		}
	}
	return p, settings
}

func (r *Runtime) remember(ev sd.Envelope, settings domain.ActionSettings) {
	if ev.Context == "" {
		return
	}
	r.mu.Lock()
	r.instances[ev.Context] = instance{action: ev.Action, settings: settings}
	r.mu.Unlock()
}

// snapshot builds the action context for one instance.
func (r *Runtime) snapshot(instanceID string, settings domain.ActionSettings) *actions.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &actions.Context{
		Instance: instanceID,
		Settings: settings,
		Global:   r.global,
	}
	if r.service != nil {
		c.Service = r.service
	}
	return c
}

func (r *Runtime) onKeyDown(_ context.Context, ev sd.Envelope) {
	_, settings := decodeActionPayload(ev)
	r.remember(ev, settings)

	if _, ok := r.router.Lookup(ev.Action); !ok {
		slog.Debug("runtime: key press for unknown action", "action", ev.Action)
		return
	}

	c := r.snapshot(ev.Context, settings)
	r.spawn(func(ctx context.Context) {
		start := r.clock.Now()
		res, err := r.router.Handle(ctx, ev.Action, c)

		kind, _ := domain.ParseActionUUID(ev.Action)
		result := string(domain.ResultOK)
		if err != nil {
			result = string(domain.ResultError)
		}
		r.metrics.ObserveAction(string(kind), result, r.clock.Since(start))

		host := r.hostConn()
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotConfigured):
				slog.Warn("runtime: twitch credentials missing", "action", kind)
			case twitchinfra.IsUnauthorized(err):
				r.bus.Publish(events.TopicTokenInvalid, events.TokenInvalidDTO{Reason: err.Error()})
			}
			host.ShowAlert(ev.Context)
			return
		}
		if res.Toggled {
			r.setStateFor(ev.Action, actions.StateOf(res.On))
		}
		host.ShowOk(ev.Context)
	})
}

// setStateFor updates every visible instance of action.
func (r *Runtime) setStateFor(action string, state int) {
	r.mu.RLock()
	var targets []string
	for id, inst := range r.instances {
		if inst.action == action {
			targets = append(targets, id)
		}
	}
	r.mu.RUnlock()

	host := r.hostConn()
	for _, id := range targets {
		host.SetState(id, state)
	}
}

func (r *Runtime) onWillAppear(_ context.Context, ev sd.Envelope) {
	_, settings := decodeActionPayload(ev)
	r.remember(ev, settings)
	r.refreshState(ev.Context)
}

// refreshState lee el estado real del toggle y lo refleja en el botón.
func (r *Runtime) refreshState(instanceID string) {
	r.mu.RLock()
	inst, ok := r.instances[instanceID]
	configured := r.service != nil
	r.mu.RUnlock()
	if !ok || !configured {
		return
	}
	kind, ok := domain.ParseActionUUID(inst.action)
	if !ok || !kind.Toggle() {
		return
	}

	c := r.snapshot(instanceID, inst.settings)
	r.spawn(func(ctx context.Context) {
		on, isToggle, err := r.router.State(ctx, inst.action, c)
		if err != nil {
			slog.Warn("runtime: read toggle state", "action", kind, "error", err)
			return
		}
		if isToggle {
			r.hostConn().SetState(instanceID, actions.StateOf(on))
		}
	})
}

func (r *Runtime) onWillDisappear(_ context.Context, ev sd.Envelope) {
	r.mu.Lock()
	delete(r.instances, ev.Context)
	delete(r.inspectors, ev.Context)
	r.mu.Unlock()
}

func (r *Runtime) onDidReceiveSettings(_ context.Context, ev sd.Envelope) {
	_, settings := decodeActionPayload(ev)
	r.remember(ev, settings)
}

func (r *Runtime) onDidReceiveGlobalSettings(_ context.Context, ev sd.Envelope) {
	var p sd.GlobalSettingsPayload
	if err := ev.DecodePayload(&p); err != nil {
		slog.Warn("runtime: bad global settings payload", "error", err)
		return
	}
	var g domain.GlobalSettings
	if len(p.Settings) > 0 {
		if err := json.Unmarshal(p.Settings, &g); err != nil {
			slog.Warn("runtime: bad global settings", "error", err)
			return
		}
	}
	r.ApplyGlobalSettings(g)
}

func (r *Runtime) onInspectorDidAppear(_ context.Context, ev sd.Envelope) {
	r.mu.Lock()
	r.inspectors[ev.Context] = ev.Action
	r.mu.Unlock()
	r.sendStatus(ev.Action, ev.Context)
}

func (r *Runtime) onInspectorDidDisappear(_ context.Context, ev sd.Envelope) {
	r.mu.Lock()
	delete(r.inspectors, ev.Context)
	r.mu.Unlock()
}

func (r *Runtime) onSystemDidWakeUp(context.Context, sd.Envelope) {
	slog.Info("runtime: system woke up, reloading global settings")
	r.hostConn().GetGlobalSettings()
}

func (r *Runtime) status() domain.InspectorMessage {
	r.mu.RLock()
	configured := r.service != nil && r.global.TwitchBroadcasterID != ""
	r.mu.RUnlock()

	msg := domain.InspectorMessage{
		Event:      domain.RelayStatus,
		Success:    true,
		Configured: configured,
	}
	if raider, ok := r.raids.Current(); ok {
		msg.Raider = &raider
	}
	return msg
}

func (r *Runtime) sendStatus(action, contextID string) {
	r.hostConn().SendToPropertyInspector(action, contextID, r.status())
}

// broadcastStatus refreshes every open inspector.
func (r *Runtime) broadcastStatus() {
	r.mu.RLock()
	open := make(map[string]string, len(r.inspectors))
	for id, action := range r.inspectors {
		open[id] = action
	}
	r.mu.RUnlock()

	for id, action := range open {
		r.sendStatus(action, id)
	}
}
