package twitchinfra

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nicklaw5/helix/v2"

	"twitchDeck/internal/domain"
)

const DefaultHelixBaseURL = "https://api.twitch.tv/helix"

type Options struct {
	ClientID    string
	AccessToken string
	// BaseURL defaults to DefaultHelixBaseURL.
	BaseURL    string
	HTTPClient *http.Client
}

// ModerationService implementa domain.ModerationService sobre Helix.
type ModerationService struct {
	opts Options

	mu     sync.RWMutex
	client *helix.Client
	raw    *rawClient
}

func NewModerationService(opts Options) (*ModerationService, error) {
	opts.ClientID = strings.TrimSpace(opts.ClientID)
	opts.AccessToken = strings.TrimPrefix(strings.TrimSpace(opts.AccessToken), "oauth:")
	if opts.ClientID == "" {
		return nil, fmt.Errorf("twitch: empty client id")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultHelixBaseURL
	}

	helixOpts := &helix.Options{
		ClientID:        opts.ClientID,
		UserAccessToken: opts.AccessToken,
		APIBaseURL:      opts.BaseURL,
	}
	if opts.HTTPClient != nil {
		helixOpts.HTTPClient = opts.HTTPClient
	}

	client, err := helix.NewClient(helixOpts)
	if err != nil {
		return nil, fmt.Errorf("helix: NewClient: %w", err)
	}

	return &ModerationService{
		opts:   opts,
		client: client,
		raw:    newRawClient(opts.BaseURL, opts.ClientID, opts.AccessToken, opts.HTTPClient),
	}, nil
}

// UpdateAccessToken swaps the user token without rebuilding the service.
func (s *ModerationService) UpdateAccessToken(token string) {
	if s == nil || s.client == nil {
		return
	}
	token = strings.TrimPrefix(strings.TrimSpace(token), "oauth:")
	if token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client.SetUserAccessToken(token)
	s.opts.AccessToken = token
	s.raw = newRawClient(s.opts.BaseURL, s.opts.ClientID, token, s.opts.HTTPClient)
}

func (s *ModerationService) getClient() (*helix.Client, *rawClient) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client, s.raw
}

// ----- Chat settings -----

func (s *ModerationService) ChatMode(ctx context.Context, broadcasterID, moderatorID string) (domain.ChatMode, error) {
	client, _ := s.getClient()
	resp, err := client.GetChatSettings(&helix.GetChatSettingsParams{
		BroadcasterID: broadcasterID,
		ModeratorID:   moderatorID,
	})
	if err != nil {
		return domain.ChatMode{}, fmt.Errorf("twitch: GetChatSettings: %w", err)
	}
	if !ok(resp.StatusCode) {
		return domain.ChatMode{}, &APIError{Op: "GetChatSettings", StatusCode: resp.StatusCode, Message: resp.ErrorMessage}
	}
	if len(resp.Data.Settings) == 0 {
		return domain.ChatMode{}, fmt.Errorf("twitch: GetChatSettings: empty response")
	}

	cs := resp.Data.Settings[0]
	return domain.ChatMode{
		SlowMode:             cs.SlowMode,
		SlowModeWaitTime:     cs.SlowModeWaitTime,
		FollowerMode:         cs.FollowerMode,
		FollowerModeDuration: cs.FollowerModeDuration,
		SubscriberMode:       cs.SubscriberMode,
	}, nil
}

func (s *ModerationService) updateChatSettings(params *helix.UpdateChatSettingsParams) error {
	client, _ := s.getClient()
	resp, err := client.UpdateChatSettings(params)
	if err != nil {
		return fmt.Errorf("twitch: UpdateChatSettings: %w", err)
	}
	if !ok(resp.StatusCode) {
		return &APIError{Op: "UpdateChatSettings", StatusCode: resp.StatusCode, Message: resp.ErrorMessage}
	}
	return nil
}

func (s *ModerationService) SetSlowMode(ctx context.Context, broadcasterID, moderatorID string, enabled bool, waitSeconds int) error {
	params := &helix.UpdateChatSettingsParams{
		BroadcasterID: broadcasterID,
		ModeratorID:   moderatorID,
		SlowMode:      &enabled,
	}
	if enabled {
		params.SlowModeWaitTime = &waitSeconds
	}
	return s.updateChatSettings(params)
}

func (s *ModerationService) SetFollowerMode(ctx context.Context, broadcasterID, moderatorID string, enabled bool, minutes int) error {
	params := &helix.UpdateChatSettingsParams{
		BroadcasterID: broadcasterID,
		ModeratorID:   moderatorID,
		FollowerMode:  &enabled,
	}
	if enabled {
		params.FollowerModeDuration = &minutes
	}
	return s.updateChatSettings(params)
}

func (s *ModerationService) SetSubscriberMode(ctx context.Context, broadcasterID, moderatorID string, enabled bool) error {
	return s.updateChatSettings(&helix.UpdateChatSettingsParams{
		BroadcasterID:  broadcasterID,
		ModeratorID:    moderatorID,
		SubscriberMode: &enabled,
	})
}

// ----- Shield / AutoMod / Rewards -----

func (s *ModerationService) ShieldMode(ctx context.Context, broadcasterID, moderatorID string) (bool, error) {
	_, raw := s.getClient()
	return raw.shieldMode(ctx, broadcasterID, moderatorID)
}

func (s *ModerationService) SetShieldMode(ctx context.Context, broadcasterID, moderatorID string, active bool) error {
	_, raw := s.getClient()
	return raw.setShieldMode(ctx, broadcasterID, moderatorID, active)
}

func (s *ModerationService) ApproveHeldMessage(ctx context.Context, moderatorID, msgID string) error {
	_, raw := s.getClient()
	return raw.approveHeldMessage(ctx, moderatorID, msgID)
}

func (s *ModerationService) ClearRedemptionQueue(ctx context.Context, broadcasterID string) (int, error) {
	_, raw := s.getClient()
	return raw.clearRedemptions(ctx, broadcasterID)
}

// ----- Users / shoutouts -----

func (s *ModerationService) SendShoutout(ctx context.Context, fromBroadcasterID, toBroadcasterID, moderatorID string) error {
	client, _ := s.getClient()
	resp, err := client.SendShoutout(&helix.SendShoutoutParams{
		FromBroadcasterID: fromBroadcasterID,
		ToBroadcasterID:   toBroadcasterID,
		ModeratorID:       moderatorID,
	})
	if err != nil {
		return fmt.Errorf("twitch: SendShoutout: %w", err)
	}
	if !ok(resp.StatusCode) {
		return &APIError{Op: "SendShoutout", StatusCode: resp.StatusCode, Message: resp.ErrorMessage}
	}
	return nil
}

func (s *ModerationService) UserID(ctx context.Context, login string) (string, error) {
	login = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(login), "@"))
	if login == "" {
		return "", fmt.Errorf("twitch: GetUsers: empty login")
	}
	client, _ := s.getClient()
	resp, err := client.GetUsers(&helix.UsersParams{Logins: []string{login}})
	if err != nil {
		return "", fmt.Errorf("twitch: GetUsers: %w", err)
	}
	if !ok(resp.StatusCode) {
		return "", &APIError{Op: "GetUsers", StatusCode: resp.StatusCode, Message: resp.ErrorMessage}
	}
	if len(resp.Data.Users) == 0 {
		return "", fmt.Errorf("twitch: user %q not found", login)
	}
	return resp.Data.Users[0].ID, nil
}

// ValidateToken checks token against the OAuth validate endpoint.
func (s *ModerationService) ValidateToken(ctx context.Context, token string) (domain.TokenInfo, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "oauth:")
	client, _ := s.getClient()
	valid, resp, err := client.ValidateToken(token)
	if err != nil {
		return domain.TokenInfo{}, fmt.Errorf("twitch: ValidateToken: %w", err)
	}
	if !valid || resp == nil {
		return domain.TokenInfo{Valid: false}, nil
	}
	return domain.TokenInfo{
		Valid:     true,
		Login:     resp.Data.Login,
		UserID:    resp.Data.UserID,
		ClientID:  resp.Data.ClientID,
		Scopes:    resp.Data.Scopes,
		ExpiresIn: resp.Data.ExpiresIn,
	}, nil
}

var _ domain.ModerationService = (*ModerationService)(nil)
var _ domain.TokenValidator = (*ModerationService)(nil)
