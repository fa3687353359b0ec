// Package twitchadapter publica anuncios en el chat de Twitch por IRC.
package twitchadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/adeithe/go-twitch/irc"

	"twitchDeck/internal/domain"
	"twitchDeck/internal/infrastructure/retry"
)

type Config struct {
	Username   string
	OAuthToken string
	// Retry defaults to three attempts starting at one second.
	Retry retry.Policy
}

// chatConn is the part of irc.Conn the announcer uses.
type chatConn interface {
	Connect() error
	Join(channels ...string) error
	Say(channel, msg string) error
	IsConnected() bool
}

type dialFunc func(username, token string) (chatConn, func(), error)

// Adapter keeps one IRC connection, opened on the first announcement.
type Adapter struct {
	cfg  Config
	dial dialFunc

	mu     sync.Mutex
	conn   chatConn
	close  func()
	joined map[string]struct{}
}

func NewAdapter(cfg Config) *Adapter {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Policy{MaxAttempts: 3, InitialBackoff: time.Second, MaxBackoff: 5 * time.Second}
	}
	cfg.Username = strings.ToLower(strings.TrimSpace(cfg.Username))
	cfg.OAuthToken = strings.TrimSpace(cfg.OAuthToken)
	if cfg.OAuthToken != "" && !strings.HasPrefix(cfg.OAuthToken, "oauth:") {
		cfg.OAuthToken = "oauth:" + cfg.OAuthToken
	}
	return &Adapter{cfg: cfg, dial: dialIRC, joined: make(map[string]struct{})}
}

func dialIRC(username, token string) (chatConn, func(), error) {
	conn := &irc.Conn{}
	if err := conn.SetLogin(username, token); err != nil {
		return nil, nil, fmt.Errorf("twitch: SetLogin: %w", err)
	}
	return conn, func() { conn.Close() }, nil
}

// Announce dice text en channel, conectando y uniéndose al canal si hace falta.
func (a *Adapter) Announce(ctx context.Context, channel, text string) error {
	channel = strings.ToLower(domain.NormalizeChannel(channel))
	if channel == "" {
		return errors.New("twitch: announce: empty channel")
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if a.cfg.Username == "" || a.cfg.OAuthToken == "" {
		return errors.New("twitch: username u oauth token vacíos")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureConnected(ctx); err != nil {
		return err
	}
	if _, ok := a.joined[channel]; !ok {
		if err := a.conn.Join(channel); err != nil {
			return fmt.Errorf("twitch: Join: %w", err)
		}
		a.joined[channel] = struct{}{}
	}

	slog.Info("twitch: announce", "channel", channel, "text", text)
	if err := a.conn.Say(channel, text); err != nil {
		return fmt.Errorf("twitch: Say: %w", err)
	}
	return nil
}

// ensureConnected must be called with a.mu held.
func (a *Adapter) ensureConnected(ctx context.Context) error {
	if a.conn != nil && a.conn.IsConnected() {
		return nil
	}
	a.dropLocked()

	policy := a.cfg.Retry
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("twitch: connect failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
	}

	return retry.DoVoid(ctx, policy, nil, func() error {
		conn, closeFn, err := a.dial(a.cfg.Username, a.cfg.OAuthToken)
		if err != nil {
			return err
		}
		if err := conn.Connect(); err != nil {
			closeFn()
			return fmt.Errorf("twitch: Connect: %w", err)
		}
		a.conn = conn
		a.close = closeFn
		slog.Info("twitch: conectado", "username", a.cfg.Username)
		return nil
	})
}

func (a *Adapter) dropLocked() {
	if a.close != nil {
		a.close()
	}
	a.conn = nil
	a.close = nil
	a.joined = make(map[string]struct{})
}

// Close cierra la conexión IRC si existe.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropLocked()
}

var _ domain.ChatAnnouncer = (*Adapter)(nil)
