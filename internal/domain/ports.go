package domain

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("twitch credentials not configured")
	ErrNoRaider      = errors.New("no raider to shout out")
	ErrQueueEmpty    = errors.New("no held messages")
	// ErrUnauthorized matches Twitch answers rejecting the access token.
	ErrUnauthorized = errors.New("twitch rejected the access token")
)

// ChatMode es el subconjunto de chat settings que controlan los botones.
type ChatMode struct {
	SlowMode             bool
	SlowModeWaitTime     int
	FollowerMode         bool
	FollowerModeDuration int
	SubscriberMode       bool
}

// ModerationService es el puerto hacia la API de Twitch.
type ModerationService interface {
	ChatMode(ctx context.Context, broadcasterID, moderatorID string) (ChatMode, error)
	SetSlowMode(ctx context.Context, broadcasterID, moderatorID string, enabled bool, waitSeconds int) error
	SetFollowerMode(ctx context.Context, broadcasterID, moderatorID string, enabled bool, minutes int) error
	SetSubscriberMode(ctx context.Context, broadcasterID, moderatorID string, enabled bool) error

	ShieldMode(ctx context.Context, broadcasterID, moderatorID string) (bool, error)
	SetShieldMode(ctx context.Context, broadcasterID, moderatorID string, active bool) error

	ApproveHeldMessage(ctx context.Context, moderatorID, msgID string) error
	SendShoutout(ctx context.Context, fromBroadcasterID, toBroadcasterID, moderatorID string) error
	ClearRedemptionQueue(ctx context.Context, broadcasterID string) (int, error)

	UserID(ctx context.Context, login string) (string, error)
}

// ChatAnnouncer publica un mensaje en el chat del canal.
type ChatAnnouncer interface {
	Announce(ctx context.Context, channel, text string) error
}

type ActionLogRepository interface {
	SaveAction(ctx context.Context, rec *ActionRecord) error
	ListActions(ctx context.Context, limit int) ([]*ActionRecord, error)
}

type RaidRepository interface {
	SaveRaid(ctx context.Context, raider Raider) (int64, error)
	MarkShoutedOut(ctx context.Context, login string) error
	ListRaids(ctx context.Context, limit int) ([]*RaidRecord, error)
}

// TokenInfo es la respuesta de la validación de un token de usuario.
type TokenInfo struct {
	Valid     bool
	Login     string
	UserID    string
	ClientID  string
	Scopes    []string
	ExpiresIn int
}

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (TokenInfo, error)
}
