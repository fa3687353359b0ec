package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"twitchDeck/internal/domain"
)

// Placeholders replaced in the shoutout chat template.
const (
	PlaceholderName    = "{name}"
	PlaceholderViewers = "{viewers}"
)

const DefaultShoutoutMessage = "Go check out @{name}, they just raided with {viewers} viewers!"

// RaiderSource is the process-scoped current raider.
type RaiderSource interface {
	Take() (domain.Raider, bool)
	Restore(r domain.Raider) bool
}

type ShoutoutOptions struct {
	Announcer domain.ChatAnnouncer
	Raids     domain.RaidRepository
	// Message is the chat template; {name} and {viewers} are replaced.
	// Empty disables the chat announcement.
	Message string
}

// ShoutoutAction hace shoutout al raider actual y lo anuncia en el chat.
type ShoutoutAction struct {
	raiders RaiderSource
	opts    ShoutoutOptions
}

func NewShoutoutAction(raiders RaiderSource, opts ShoutoutOptions) *ShoutoutAction {
	return &ShoutoutAction{raiders: raiders, opts: opts}
}

func (a *ShoutoutAction) Kind() domain.ActionKind { return domain.ActionShoutout }

func (a *ShoutoutAction) Execute(ctx context.Context, c *Context) (Result, error) {
	if err := c.ready(); err != nil {
		return Result{}, err
	}
	raider, ok := a.raiders.Take()
	if !ok {
		return Result{}, domain.ErrNoRaider
	}

	if err := a.shoutout(ctx, c, raider); err != nil {
		if !a.raiders.Restore(raider) {
			slog.Info("actions: newer raider arrived, dropping failed one", "login", raider.Login)
		}
		return Result{}, err
	}

	if a.opts.Raids != nil {
		if err := a.opts.Raids.MarkShoutedOut(ctx, raider.Login); err != nil {
			slog.Warn("actions: mark shoutout", "login", raider.Login, "error", err)
		}
	}
	a.announce(ctx, c, raider)

	return Result{Detail: "shoutout to " + raider.Name()}, nil
}

func (a *ShoutoutAction) shoutout(ctx context.Context, c *Context, raider domain.Raider) error {
	to := raider.UserID
	if to == "" {
		id, err := c.Service.UserID(ctx, raider.Login)
		if err != nil {
			return fmt.Errorf("actions: resolve raider %s: %w", raider.Login, err)
		}
		to = id
	}
	return c.Service.SendShoutout(ctx, c.broadcaster(), to, c.moderator())
}

func (a *ShoutoutAction) announce(ctx context.Context, c *Context, raider domain.Raider) {
	if a.opts.Announcer == nil || strings.TrimSpace(a.opts.Message) == "" {
		return
	}
	channel := c.Global.TwitchChannel
	if channel == "" {
		return
	}
	text := RenderShoutout(a.opts.Message, raider)
	if err := a.opts.Announcer.Announce(ctx, channel, text); err != nil {
		slog.Warn("actions: announce shoutout", "channel", channel, "error", err)
	}
}

// RenderShoutout fills template with the raider's name and viewer count.
// Text outside the placeholders is kept as is.
func RenderShoutout(template string, raider domain.Raider) string {
	return strings.NewReplacer(
		PlaceholderName, raider.Name(),
		PlaceholderViewers, strconv.Itoa(raider.Viewers),
	).Replace(template)
}
