package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionSettings_Defaults(t *testing.T) {
	var s ActionSettings
	require.NoError(t, json.Unmarshal([]byte(`{}`), &s))
	assert.Equal(t, DefaultActionSettings(), s)
	assert.Equal(t, 300, s.ShieldDuration)
	assert.Equal(t, 10, s.FollowDuration)
	assert.Equal(t, 3, s.SlowDelay)
}

func TestActionSettings_CoercesStringsAndNumbers(t *testing.T) {
	var s ActionSettings
	require.NoError(t, json.Unmarshal([]byte(`{"shieldDuration":"120","followDuration":30,"slowDelay":"abc","extra":true}`), &s))
	assert.Equal(t, 120, s.ShieldDuration)
	assert.Equal(t, 30, s.FollowDuration)
	assert.Equal(t, DefaultSlowDelay, s.SlowDelay)
}

func TestActionSettings_NonFiniteFallsBack(t *testing.T) {
	var s ActionSettings
	require.NoError(t, json.Unmarshal([]byte(`{"shieldDuration":"NaN","followDuration":1e30,"slowDelay":"-Infinity"}`), &s))
	assert.Equal(t, DefaultActionSettings(), s)
}

func TestActionSettings_MarshalUsesHostKeys(t *testing.T) {
	data, err := json.Marshal(DefaultActionSettings())
	require.NoError(t, err)
	assert.JSONEq(t, `{"shieldDuration":300,"followDuration":10,"slowDelay":3}`, string(data))
}

func TestCoerceInt(t *testing.T) {
	cases := map[string]int{
		"":            7,
		"  ":          7,
		"15":          15,
		" 42 ":        42,
		"2.9":         2,
		"x1":          7,
		"NaN":         7,
		"Inf":         7,
		"-Infinity":   7,
		"1e30":        7,
		"99999999999": 7,
		"-2.5":        -2,
	}
	for in, want := range cases {
		assert.Equal(t, want, CoerceInt(in, 7), "input %q", in)
	}
}

func TestNormalizeChannel(t *testing.T) {
	assert.Equal(t, "ninja", NormalizeChannel("@ninja"))
	assert.Equal(t, "ninja", NormalizeChannel("  @ninja "))
	assert.Equal(t, "@ninja", NormalizeChannel("@@ninja"))
	assert.Equal(t, "ninja", NormalizeChannel("ninja"))
}

func TestGlobalSettings(t *testing.T) {
	g := GlobalSettings{TwitchToken: "oauth:abc", TwitchClientID: "cid", TwitchBroadcasterID: "1"}
	assert.True(t, g.Configured())
	assert.Equal(t, "abc", g.AccessToken())
	assert.Equal(t, "1", g.ModeratorOrBroadcaster())

	g.TwitchModeratorID = "2"
	assert.Equal(t, "2", g.ModeratorOrBroadcaster())

	g.TwitchClientID = ""
	assert.False(t, g.Configured())
}
