package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"twitchDeck/internal/domain"
)

const defaultInterval = time.Hour

// CheckResult summarises one token validation.
type CheckResult struct {
	Info          domain.TokenInfo
	MissingScopes []string
}

func (r CheckResult) OK() bool {
	return r.Info.Valid && len(r.MissingScopes) == 0
}

type InvalidHook func(ctx context.Context, result CheckResult, err error)

// Checker valida periódicamente el token configurado contra Twitch.
type Checker struct {
	clock clockwork.Clock

	mu        sync.RWMutex
	validator domain.TokenValidator
	token     string

	hooksMu sync.RWMutex
	hooks   []InvalidHook
}

func NewChecker(clock clockwork.Clock) *Checker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Checker{clock: clock}
}

// Update swaps the validator and token used by the periodic check.
func (c *Checker) Update(validator domain.TokenValidator, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.validator = validator
	c.token = token
}

func (c *Checker) RegisterHook(h InvalidHook) {
	if h == nil {
		return
	}
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = append(c.hooks, h)
}

func (c *Checker) notifyHooks(ctx context.Context, result CheckResult, err error) {
	c.hooksMu.RLock()
	hooks := append([]InvalidHook(nil), c.hooks...)
	c.hooksMu.RUnlock()
	for _, h := range hooks {
		h(ctx, result, err)
	}
}

// Check validates token once and reports the scopes it lacks.
func Check(ctx context.Context, validator domain.TokenValidator, token string) (CheckResult, error) {
	if validator == nil || token == "" {
		return CheckResult{}, domain.ErrNotConfigured
	}
	info, err := validator.ValidateToken(ctx, token)
	if err != nil {
		return CheckResult{}, fmt.Errorf("credentials: validate token: %w", err)
	}
	result := CheckResult{Info: info}
	if info.Valid {
		result.MissingScopes = domain.MissingScopes(info.Scopes)
	}
	return result, nil
}

// CheckNow validates the current token and fires the hooks when Twitch rejects
// it. Transport failures are only logged.
func (c *Checker) CheckNow(ctx context.Context) (CheckResult, error) {
	c.mu.RLock()
	validator, token := c.validator, c.token
	c.mu.RUnlock()

	if validator == nil || token == "" {
		return CheckResult{}, nil
	}

	result, err := Check(ctx, validator, token)
	if err != nil {
		slog.Warn("credentials: token check failed", "error", err)
		if errors.Is(err, domain.ErrUnauthorized) {
			c.notifyHooks(ctx, result, err)
		}
		return result, err
	}
	if !result.Info.Valid {
		slog.Warn("credentials: token is invalid or expired")
		c.notifyHooks(ctx, result, nil)
	} else if len(result.MissingScopes) > 0 {
		slog.Warn("credentials: token lacks scopes", "missing", result.MissingScopes)
	}
	return result, nil
}

// Run calls CheckNow every interval and blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}

	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			_, _ = c.CheckNow(ctx)
		}
	}
}
