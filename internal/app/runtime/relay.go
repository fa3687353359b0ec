package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"twitchDeck/internal/domain"
	sd "twitchDeck/internal/interface/streamdeck"
	"twitchDeck/internal/usecase/credentials"
)

func (r *Runtime) onSendToPlugin(_ context.Context, ev sd.Envelope) {
	var req domain.PluginRequest
	if err := json.Unmarshal(ev.Payload, &req); err != nil {
		slog.Debug("runtime: dropping inspector message", "error", err)
		return
	}

	switch req.Action {
	case domain.RelaySaveGlobalSettings:
		if req.Settings != nil {
			r.ApplyGlobalSettings(*req.Settings)
		}
	case domain.RelayConnectionTest:
		g := r.requestSettings(req)
		r.spawn(func(ctx context.Context) {
			reply := r.connectionTest(ctx, g)
			reply.RequestID = req.RequestID
			r.hostConn().SendToPropertyInspector(ev.Action, ev.Context, reply)
		})
	case domain.RelayResolveIDs:
		g := r.requestSettings(req)
		r.spawn(func(ctx context.Context) {
			reply := r.resolveIDs(ctx, g)
			reply.RequestID = req.RequestID
			r.hostConn().SendToPropertyInspector(ev.Action, ev.Context, reply)
		})
	case domain.RelayAutomodHeld:
		if req.Held == nil {
			return
		}
		if r.held.Push(*req.Held) {
			slog.Info("automod: message held", "msg_id", req.Held.MsgID, "user", req.Held.UserLogin)
		}
		r.metrics.HeldMessages.Set(float64(r.held.Len()))
	default:
		slog.Debug("runtime: unknown inspector request", "action", req.Action)
	}
}

// requestSettings prefers the settings carried by the request over the applied ones.
func (r *Runtime) requestSettings(req domain.PluginRequest) domain.GlobalSettings {
	if req.Settings != nil {
		return r.effective(*req.Settings)
	}
	return r.Global()
}

func (r *Runtime) connectionTest(ctx context.Context, g domain.GlobalSettings) domain.InspectorMessage {
	reply := domain.InspectorMessage{Event: domain.RelayConnectionTest}

	svc, err := r.buildService(g)
	if err != nil {
		reply.Message = failureMessage(err)
		return reply
	}
	result, err := credentials.Check(ctx, svc, g.AccessToken())
	if err != nil {
		reply.Message = failureMessage(err)
		return reply
	}
	if !result.Info.Valid {
		reply.Message = "Token is invalid or expired"
		return reply
	}
	if result.Info.ClientID != "" && result.Info.ClientID != g.TwitchClientID {
		reply.Message = fmt.Sprintf("Token belongs to client id %s", result.Info.ClientID)
		return reply
	}

	reply.Success = true
	reply.Login = result.Info.Login
	reply.MissingScopes = result.MissingScopes
	return reply
}

// resolveIDs looks up the channel's broadcaster id and the token owner's id.
func (r *Runtime) resolveIDs(ctx context.Context, g domain.GlobalSettings) domain.InspectorMessage {
	reply := domain.InspectorMessage{Event: domain.RelayResolvedIDs}

	svc, err := r.buildService(g)
	if err != nil {
		reply.Message = failureMessage(err)
		return reply
	}
	if g.TwitchChannel == "" {
		reply.Message = "Channel is required"
		return reply
	}

	broadcasterID, err := svc.UserID(ctx, g.TwitchChannel)
	if err != nil {
		reply.Message = failureMessage(err)
		return reply
	}

	result, err := credentials.Check(ctx, svc, g.AccessToken())
	if err != nil {
		reply.Message = failureMessage(err)
		return reply
	}
	if !result.Info.Valid {
		reply.Message = "Token is invalid or expired"
		return reply
	}

	reply.Success = true
	reply.Login = result.Info.Login
	reply.BroadcasterID = broadcasterID
	reply.ModeratorID = result.Info.UserID
	return reply
}

func failureMessage(err error) string {
	if errors.Is(err, domain.ErrNotConfigured) {
		return "Token and client id are required"
	}
	return err.Error()
}
