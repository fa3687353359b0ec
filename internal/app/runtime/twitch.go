package runtime

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"twitchDeck/internal/app/events"
	"twitchDeck/internal/domain"
)

// effective fills the client id from the process config when the inspector left it empty.
func (r *Runtime) effective(g domain.GlobalSettings) domain.GlobalSettings {
	g.TwitchChannel = domain.NormalizeChannel(g.TwitchChannel)
	g.TwitchToken = strings.TrimSpace(g.TwitchToken)
	g.TwitchClientID = strings.TrimSpace(g.TwitchClientID)
	g.TwitchBroadcasterID = strings.TrimSpace(g.TwitchBroadcasterID)
	g.TwitchModeratorID = strings.TrimSpace(g.TwitchModeratorID)
	if g.TwitchClientID == "" {
		g.TwitchClientID = strings.TrimSpace(r.deps.Config.TwitchClientID)
	}
	return g
}

func (r *Runtime) buildService(g domain.GlobalSettings) (Service, error) {
	if g.AccessToken() == "" || g.TwitchClientID == "" {
		return nil, domain.ErrNotConfigured
	}
	return r.deps.NewService(g.TwitchClientID, g.AccessToken(), r.deps.Config.HelixBaseURL)
}

// ApplyGlobalSettings rebuilds the Twitch client and restarts chat when the
// credentials or channel change.
func (r *Runtime) ApplyGlobalSettings(g domain.GlobalSettings) {
	g = r.effective(g)

	r.mu.Lock()
	if g == r.global && (r.service != nil || !g.Configured()) {
		r.mu.Unlock()
		return
	}
	prev := r.global
	r.global = g

	if r.service != nil && g.AccessToken() != "" && tokenOnly(prev, g) {
		svc := r.service
		r.mu.Unlock()
		svc.UpdateAccessToken(g.AccessToken())
		slog.Info("runtime: access token rotated", "channel", g.TwitchChannel)
		r.checker.Update(svc, g.AccessToken())
		r.restartChat(g, svc)
		r.broadcastStatus()
		return
	}

	svc, err := r.buildService(g)
	if err != nil {
		r.service = nil
		r.mu.Unlock()
		if !errors.Is(err, domain.ErrNotConfigured) {
			slog.Error("runtime: twitch client", "error", err)
		} else {
			slog.Info("runtime: twitch credentials incomplete")
		}
		r.checker.Update(nil, "")
		r.stopChat()
		r.broadcastStatus()
		return
	}
	r.service = svc
	r.mu.Unlock()

	slog.Info("runtime: global settings applied", "channel", g.TwitchChannel, "broadcaster_id", g.TwitchBroadcasterID)
	r.checker.Update(svc, g.AccessToken())
	r.restartChat(g, svc)

	r.mu.RLock()
	ids := make(map[string]struct{}, len(r.instances))
	for id := range r.instances {
		ids[id] = struct{}{}
	}
	r.mu.RUnlock()
	for id := range ids {
		r.refreshState(id)
	}
	r.broadcastStatus()
}

// tokenOnly reports whether a and b differ in the token alone.
func tokenOnly(a, b domain.GlobalSettings) bool {
	a.TwitchToken = b.TwitchToken
	return a == b
}

// restartChat valida el token para conocer el login y reabre el watcher de
// raids y el anunciador sobre el canal configurado.
func (r *Runtime) restartChat(g domain.GlobalSettings, svc Service) {
	r.chatMu.Lock()
	r.chatGen++
	gen := r.chatGen
	if r.chatCancel != nil {
		r.chatCancel()
		r.chatCancel = nil
	}
	r.chatMu.Unlock()

	if g.TwitchChannel == "" {
		r.announce.swap(nil)
		return
	}

	r.spawn(func(ctx context.Context) {
		login := ""
		result, err := r.checker.CheckNow(ctx)
		if err == nil && result.Info.Valid {
			login = result.Info.Login
		}
		if login == "" {
			slog.Warn("runtime: token owner unknown, chat announcements disabled", "error", err)
		}

		r.chatMu.Lock()
		defer r.chatMu.Unlock()
		if gen != r.chatGen || r.ctx.Err() != nil {
			return
		}

		if login != "" {
			r.announce.swap(r.deps.NewAnnouncer(login, g.AccessToken()))
		} else {
			r.announce.swap(nil)
		}

		watchCtx, cancel := context.WithCancel(r.ctx)
		r.chatCancel = cancel
		watcher := r.deps.NewWatcher(g.TwitchChannel, login, g.AccessToken(), r.onRaid)

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := watcher.Run(watchCtx); err != nil && watchCtx.Err() == nil {
				slog.Error("runtime: raid watcher stopped", "channel", g.TwitchChannel, "error", err)
			}
		}()
	})
}

func (r *Runtime) stopChat() {
	r.chatMu.Lock()
	defer r.chatMu.Unlock()
	r.chatGen++
	if r.chatCancel != nil {
		r.chatCancel()
		r.chatCancel = nil
	}
}

// onRaid runs on the watcher goroutine.
func (r *Runtime) onRaid(raider domain.Raider) {
	r.raids.Set(raider)
	if r.deps.Store != nil {
		if _, err := r.deps.Store.SaveRaid(r.ctx, raider); err != nil {
			slog.Warn("runtime: save raid", "login", raider.Login, "error", err)
		}
	}
	r.bus.Publish(events.TopicRaidReceived, events.NewRaidReceivedDTO(raider))
}

func (r *Runtime) onRaidEvent(payload any) {
	dto, ok := payload.(events.RaidReceivedDTO)
	if !ok {
		return
	}
	r.metrics.RaidsTotal.Inc()
	slog.Info("runtime: raider ready for shoutout", "login", dto.Login, "viewers", dto.Viewers)
	r.broadcastStatus()
}

func (r *Runtime) onActionEvent(payload any) {
	dto, ok := payload.(events.ActionExecutedDTO)
	if !ok {
		return
	}
	if dto.Action == string(domain.ActionShoutout) || dto.Action == string(domain.ActionAutomod) {
		r.metrics.HeldMessages.Set(float64(r.held.Len()))
		r.broadcastStatus()
	}
}

func (r *Runtime) onTokenInvalidEvent(payload any) {
	dto, _ := payload.(events.TokenInvalidDTO)
	r.metrics.TokenInvalid.Inc()
	slog.Error("runtime: twitch token rejected", "reason", dto.Reason)

	r.mu.RLock()
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	host := r.hostConn()
	for _, id := range ids {
		host.ShowAlert(id)
	}
}

func (r *Runtime) onShieldAutoOffEvent(payload any) {
	dto, ok := payload.(events.ShieldAutoOffDTO)
	if !ok {
		return
	}
	if dto.Error != "" {
		slog.Warn("runtime: shield auto-off failed", "broadcaster_id", dto.BroadcasterID, "error", dto.Error)
		r.mu.RLock()
		var ids []string
		for id, inst := range r.instances {
			if inst.action == domain.ActionShield.UUID() {
				ids = append(ids, id)
			}
		}
		r.mu.RUnlock()
		host := r.hostConn()
		for _, id := range ids {
			host.ShowAlert(id)
		}
		return
	}
	r.setStateFor(domain.ActionShield.UUID(), 0)
}

// swapAnnouncer forwards to whichever announcer the current settings built.
type swapAnnouncer struct {
	mu      sync.RWMutex
	current Announcer
}

func (s *swapAnnouncer) swap(next Announcer) {
	s.mu.Lock()
	prev := s.current
	s.current = next
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

func (s *swapAnnouncer) Announce(ctx context.Context, channel, text string) error {
	s.mu.RLock()
	a := s.current
	s.mu.RUnlock()
	if a == nil {
		return errors.New("runtime: chat announcer not connected")
	}
	return a.Announce(ctx, channel, text)
}
