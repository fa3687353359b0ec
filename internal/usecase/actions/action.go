package actions

import (
	"context"

	"twitchDeck/internal/domain"
)

// Action is one Stream Deck button backed by a Twitch call.
type Action interface {
	Kind() domain.ActionKind
	Execute(ctx context.Context, c *Context) (Result, error)
}

// StateReader is implemented by toggle actions that can read their live state.
type StateReader interface {
	CurrentState(ctx context.Context, c *Context) (bool, error)
}

// Context lleva todo lo que una acción necesita para una pulsación.
type Context struct {
	Instance string
	Settings domain.ActionSettings
	Global   domain.GlobalSettings
	Service  domain.ModerationService
}

func (c *Context) broadcaster() string {
	return c.Global.TwitchBroadcasterID
}

func (c *Context) moderator() string {
	return c.Global.ModeratorOrBroadcaster()
}

func (c *Context) ready() error {
	if c.Service == nil || c.Global.TwitchBroadcasterID == "" {
		return domain.ErrNotConfigured
	}
	return nil
}

// Result describes the outcome of a successful press.
type Result struct {
	// Toggle actions report the new on/off state.
	Toggled bool
	On      bool
	Detail  string
}

func toggled(on bool, detail string) Result {
	return Result{Toggled: true, On: on, Detail: detail}
}

// StateOf maps an on/off flag to the host's multi-state index.
func StateOf(on bool) int {
	if on {
		return 1
	}
	return 0
}
