package twitchinfra

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"github.com/jonboulle/clockwork"

	"twitchDeck/internal/domain"
)

// disconnectRetry paces Disconnect while the client has no welcome yet;
// gempir ignores Disconnect until then.
const disconnectRetry = 250 * time.Millisecond

// RaidWatcher escucha los USERNOTICE de raid en el canal configurado.
type RaidWatcher struct {
	channel string
	clock   clockwork.Clock
	onRaid  func(domain.Raider)
	client  *twitch.Client
	stopped atomic.Bool
}

// NewRaidWatcher builds a watcher for channel. An empty login or token joins anonymously.
func NewRaidWatcher(channel, login, token string, clock clockwork.Clock, onRaid func(domain.Raider)) *RaidWatcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	channel = strings.ToLower(domain.NormalizeChannel(channel))
	token = strings.TrimPrefix(strings.TrimSpace(token), "oauth:")

	var client *twitch.Client
	if login == "" || token == "" {
		client = twitch.NewAnonymousClient()
	} else {
		client = twitch.NewClient(strings.ToLower(login), "oauth:"+token)
	}

	w := &RaidWatcher{
		channel: channel,
		clock:   clock,
		onRaid:  onRaid,
		client:  client,
	}
	client.OnUserNoticeMessage(w.handleNotice)
	return w
}

func (w *RaidWatcher) handleNotice(m twitch.UserNoticeMessage) {
	if w.stopped.Load() {
		return
	}
	raider, ok := raiderFromNotice(m)
	if !ok {
		return
	}
	raider.ReceivedAt = w.clock.Now()
	slog.Info("twitch: raid received", "channel", w.channel, "from", raider.Login, "viewers", raider.Viewers)
	if w.onRaid != nil {
		w.onRaid(raider)
	}
}

func raiderFromNotice(m twitch.UserNoticeMessage) (domain.Raider, bool) {
	if m.MsgID != "raid" {
		return domain.Raider{}, false
	}
	login := strings.ToLower(m.MsgParams["msg-param-login"])
	if login == "" {
		login = strings.ToLower(m.User.Name)
	}
	if login == "" {
		return domain.Raider{}, false
	}
	viewers, _ := strconv.Atoi(m.MsgParams["msg-param-viewerCount"])
	return domain.Raider{
		Login:       login,
		DisplayName: m.MsgParams["msg-param-displayName"],
		UserID:      m.User.ID,
		Viewers:     viewers,
	}, true
}

// Run joins the channel and blocks until ctx is cancelled or the connection
// drops. After cancellation no raid is reported, even if the client is still
// dialing; the connection is torn down in the background.
func (w *RaidWatcher) Run(ctx context.Context) error {
	if w.channel == "" {
		return errors.New("twitch: raid watcher: empty channel")
	}

	w.client.Join(w.channel)
	slog.Info("twitch: raid watcher connecting", "channel", w.channel)

	errc := make(chan error, 1)
	go func() { errc <- w.client.Connect() }()

	select {
	case err := <-errc:
		if w.stopped.Load() || errors.Is(err, twitch.ErrClientDisconnected) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	w.stopped.Store(true)
	if !w.disconnect() {
		go w.drain(errc)
	}
	return nil
}

// drain retries Disconnect until Connect returns.
func (w *RaidWatcher) drain(errc <-chan error) {
	ticker := w.clock.NewTicker(disconnectRetry)
	defer ticker.Stop()
	for {
		select {
		case err := <-errc:
			slog.Debug("twitch: raid watcher closed", "channel", w.channel, "error", err)
			return
		case <-ticker.Chan():
			if w.disconnect() {
				<-errc
				return
			}
		}
	}
}

func (w *RaidWatcher) disconnect() bool {
	err := w.client.Disconnect()
	if err != nil && !errors.Is(err, twitch.ErrConnectionIsNotOpen) {
		slog.Debug("twitch: raid watcher disconnect", "error", err)
	}
	return err == nil
}
