package twitchinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// rawClient calls the Helix endpoints that the helix library does not cover.
type rawClient struct {
	baseURL  string
	clientID string
	http     *http.Client
}

func newRawClient(baseURL, clientID, token string, base *http.Client) *rawClient {
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &rawClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     oauth2.NewClient(ctx, src),
	}
}

type helixError struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (c *rawClient) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("twitch: %s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("twitch: %s: request: %w", op, err)
	}
	req.Header.Set("Client-Id", c.clientID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("twitch: %s: %w", op, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("twitch: failed to close response body", "error", err)
		}
	}()

	if !ok(resp.StatusCode) {
		var he helixError
		_ = json.NewDecoder(resp.Body).Decode(&he)
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: he.Message}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("twitch: %s: decode: %w", op, err)
	}
	return nil
}

// ----- Shield mode -----

type shieldStatus struct {
	Data []struct {
		IsActive bool `json:"is_active"`
	} `json:"data"`
}

func (c *rawClient) shieldMode(ctx context.Context, broadcasterID, moderatorID string) (bool, error) {
	q := url.Values{}
	q.Set("broadcaster_id", broadcasterID)
	q.Set("moderator_id", moderatorID)

	var out shieldStatus
	if err := c.do(ctx, "GetShieldModeStatus", http.MethodGet, "/moderation/shield_mode", q, nil, &out); err != nil {
		return false, err
	}
	if len(out.Data) == 0 {
		return false, nil
	}
	return out.Data[0].IsActive, nil
}

func (c *rawClient) setShieldMode(ctx context.Context, broadcasterID, moderatorID string, active bool) error {
	q := url.Values{}
	q.Set("broadcaster_id", broadcasterID)
	q.Set("moderator_id", moderatorID)

	body := map[string]bool{"is_active": active}
	return c.do(ctx, "UpdateShieldModeStatus", http.MethodPut, "/moderation/shield_mode", q, body, nil)
}

// ----- AutoMod -----

func (c *rawClient) approveHeldMessage(ctx context.Context, moderatorID, msgID string) error {
	body := map[string]string{
		"user_id": moderatorID,
		"msg_id":  msgID,
		"action":  "ALLOW",
	}
	return c.do(ctx, "ManageHeldAutoModMessages", http.MethodPost, "/moderation/automod/message", nil, body, nil)
}

// ----- Channel points -----

const (
	redemptionPageSize = 50
	maxRedemptionPages = 20
)

type idList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (l idList) ids() []string {
	out := make([]string, 0, len(l.Data))
	for _, d := range l.Data {
		out = append(out, d.ID)
	}
	return out
}

func (c *rawClient) manageableRewards(ctx context.Context, broadcasterID string) ([]string, error) {
	q := url.Values{}
	q.Set("broadcaster_id", broadcasterID)
	q.Set("only_manageable_rewards", "true")

	var out idList
	if err := c.do(ctx, "GetCustomReward", http.MethodGet, "/channel_points/custom_rewards", q, nil, &out); err != nil {
		return nil, err
	}
	return out.ids(), nil
}

func (c *rawClient) unfulfilledRedemptions(ctx context.Context, broadcasterID, rewardID string) ([]string, error) {
	q := url.Values{}
	q.Set("broadcaster_id", broadcasterID)
	q.Set("reward_id", rewardID)
	q.Set("status", "UNFULFILLED")
	q.Set("first", fmt.Sprint(redemptionPageSize))

	var out idList
	if err := c.do(ctx, "GetCustomRewardRedemption", http.MethodGet, "/channel_points/custom_rewards/redemptions", q, nil, &out); err != nil {
		return nil, err
	}
	return out.ids(), nil
}

func (c *rawClient) fulfillRedemptions(ctx context.Context, broadcasterID, rewardID string, ids []string) error {
	q := url.Values{}
	q.Set("broadcaster_id", broadcasterID)
	q.Set("reward_id", rewardID)
	for _, id := range ids {
		q.Add("id", id)
	}

	body := map[string]string{"status": "FULFILLED"}
	return c.do(ctx, "UpdateRedemptionStatus", http.MethodPatch, "/channel_points/custom_rewards/redemptions", q, body, nil)
}

// clearRedemptions marks every unfulfilled redemption of every manageable
// reward as fulfilled and returns how many were updated.
func (c *rawClient) clearRedemptions(ctx context.Context, broadcasterID string) (int, error) {
	rewards, err := c.manageableRewards(ctx, broadcasterID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, rewardID := range rewards {
		for page := 0; page < maxRedemptionPages; page++ {
			ids, err := c.unfulfilledRedemptions(ctx, broadcasterID, rewardID)
			if err != nil {
				return total, err
			}
			if len(ids) == 0 {
				break
			}
			if err := c.fulfillRedemptions(ctx, broadcasterID, rewardID, ids); err != nil {
				return total, err
			}
			total += len(ids)
			if len(ids) < redemptionPageSize {
				break
			}
		}
	}
	return total, nil
}
