package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseActionUUID(t *testing.T) {
	for _, k := range AllActions() {
		got, ok := ParseActionUUID(k.UUID())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}

	_, ok := ParseActionUUID("com.twitchdeck.moderation.unknown")
	assert.False(t, ok)
	_, ok = ParseActionUUID("com.other.shield")
	assert.False(t, ok)
}

func TestActionKind_Toggle(t *testing.T) {
	assert.True(t, ActionShield.Toggle())
	assert.True(t, ActionSlow.Toggle())
	assert.False(t, ActionShoutout.Toggle())
	assert.False(t, ActionRewards.Toggle())
}

func TestMissingScopes(t *testing.T) {
	assert.Empty(t, MissingScopes(RequiredScopes))
	missing := MissingScopes([]string{"chat:read", "chat:edit"})
	assert.Equal(t, []string{
		"moderator:manage:shield_mode",
		"moderator:manage:automod",
		"channel:manage:redemptions",
		"moderator:manage:chat_settings",
	}, missing)
}
