package domain

import "strings"

const ActionPrefix = "com.twitchdeck.moderation."

// ActionKind identifica cada botón que expone el plugin.
type ActionKind string

const (
	ActionShield      ActionKind = "shield"
	ActionFollowers   ActionKind = "followers"
	ActionSlow        ActionKind = "slow"
	ActionSubscribers ActionKind = "subscribers"
	ActionAutomod     ActionKind = "automod"
	ActionShoutout    ActionKind = "shoutout"
	ActionRewards     ActionKind = "rewards"
)

// UUID devuelve el identificador completo que usa el manifest.
func (k ActionKind) UUID() string {
	return ActionPrefix + string(k)
}

// Toggle reports whether the button has an on/off state.
func (k ActionKind) Toggle() bool {
	switch k {
	case ActionShield, ActionFollowers, ActionSlow, ActionSubscribers:
		return true
	default:
		return false
	}
}

// ParseActionUUID resolves an action UUID sent by the host.
func ParseActionUUID(uuid string) (ActionKind, bool) {
	if !strings.HasPrefix(uuid, ActionPrefix) {
		return "", false
	}
	kind := ActionKind(strings.TrimPrefix(uuid, ActionPrefix))
	for _, k := range AllActions() {
		if k == kind {
			return k, true
		}
	}
	return "", false
}

func AllActions() []ActionKind {
	return []ActionKind{
		ActionShield,
		ActionFollowers,
		ActionSlow,
		ActionSubscribers,
		ActionAutomod,
		ActionShoutout,
		ActionRewards,
	}
}

// RequiredScopes son los scopes OAuth que necesita el token del usuario.
var RequiredScopes = []string{
	"moderator:manage:shield_mode",
	"moderator:manage:automod",
	"channel:manage:redemptions",
	"moderator:manage:chat_settings",
	"chat:edit",
	"chat:read",
}

// MissingScopes devuelve los scopes requeridos que no están en granted.
func MissingScopes(granted []string) []string {
	have := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		have[strings.TrimSpace(s)] = struct{}{}
	}
	var missing []string
	for _, s := range RequiredScopes {
		if _, ok := have[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}
