package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultShieldDuration = 300
	DefaultFollowDuration = 10
	DefaultSlowDelay      = 3
)

// Per-action settings keys, as stored by the host.
const (
	KeyShieldDuration = "shieldDuration"
	KeyFollowDuration = "followDuration"
	KeySlowDelay      = "slowDelay"
)

// Global settings keys, shared by every action instance.
const (
	KeyTwitchChannel       = "twitchChannel"
	KeyTwitchToken         = "twitchToken"
	KeyTwitchBroadcasterID = "twitchBroadcasterId"
	KeyTwitchModeratorID   = "twitchModeratorId"
	KeyTwitchClientID      = "twitchClientId"
)

// ActionSettings son los ajustes numéricos de una instancia de botón.
type ActionSettings struct {
	ShieldDuration int `json:"shieldDuration"`
	FollowDuration int `json:"followDuration"`
	SlowDelay      int `json:"slowDelay"`
}

func DefaultActionSettings() ActionSettings {
	return ActionSettings{
		ShieldDuration: DefaultShieldDuration,
		FollowDuration: DefaultFollowDuration,
		SlowDelay:      DefaultSlowDelay,
	}
}

// UnmarshalJSON accepts numbers or numeric strings. Missing or unparsable
// values keep their defaults and unknown keys are dropped.
func (s *ActionSettings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = ActionSettings{
		ShieldDuration: CoerceInt(rawString(raw[KeyShieldDuration]), DefaultShieldDuration),
		FollowDuration: CoerceInt(rawString(raw[KeyFollowDuration]), DefaultFollowDuration),
		SlowDelay:      CoerceInt(rawString(raw[KeySlowDelay]), DefaultSlowDelay),
	}
	return nil
}

// GlobalSettings guarda las credenciales de Twitch compartidas por el plugin.
type GlobalSettings struct {
	TwitchChannel       string `json:"twitchChannel"`
	TwitchToken         string `json:"twitchToken"`
	TwitchBroadcasterID string `json:"twitchBroadcasterId"`
	TwitchModeratorID   string `json:"twitchModeratorId"`
	TwitchClientID      string `json:"twitchClientId"`
}

// Configured reports whether enough credentials are present to call Helix.
func (g GlobalSettings) Configured() bool {
	return g.TwitchToken != "" && g.TwitchClientID != "" && g.TwitchBroadcasterID != ""
}

// ModeratorOrBroadcaster devuelve el moderator id, o el broadcaster si está vacío.
func (g GlobalSettings) ModeratorOrBroadcaster() string {
	if g.TwitchModeratorID != "" {
		return g.TwitchModeratorID
	}
	return g.TwitchBroadcasterID
}

// AccessToken strips the IRC-style "oauth:" prefix that users often paste.
func (g GlobalSettings) AccessToken() string {
	return strings.TrimPrefix(strings.TrimSpace(g.TwitchToken), "oauth:")
}

// CoerceInt parses value as an integer, returning def when it is empty,
// invalid, not finite or outside the int32 range.
func CoerceInt(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	n, err := strconv.ParseInt(value, 10, 32)
	if err == nil {
		return int(n)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	f = math.Trunc(f)
	if f < math.MinInt32 || f > math.MaxInt32 {
		return def
	}
	return int(f)
}

// NormalizeChannel trims the input and removes one leading "@".
func NormalizeChannel(value string) string {
	return strings.TrimPrefix(strings.TrimSpace(value), "@")
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
