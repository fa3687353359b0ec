package inspector

import (
	"fmt"
	"strconv"

	"twitchDeck/internal/domain"
)

// Form mirrors the inspector inputs as raw strings, the way the user typed them.
type Form struct {
	ShieldDuration string
	FollowDuration string
	SlowDelay      string

	Channel       string
	Token         string
	BroadcasterID string
	ModeratorID   string
	ClientID      string
}

// Populate copies per-action settings into the numeric inputs.
func (f *Form) Populate(s domain.ActionSettings) {
	f.ShieldDuration = strconv.Itoa(s.ShieldDuration)
	f.FollowDuration = strconv.Itoa(s.FollowDuration)
	f.SlowDelay = strconv.Itoa(s.SlowDelay)
}

// PopulateGlobal copies the shared credentials into the form.
func (f *Form) PopulateGlobal(g domain.GlobalSettings) {
	f.Channel = g.TwitchChannel
	f.Token = g.TwitchToken
	f.BroadcasterID = g.TwitchBroadcasterID
	f.ModeratorID = g.TwitchModeratorID
	f.ClientID = g.TwitchClientID
}

// Set actualiza un campo por su clave de settings.
func (f *Form) Set(field, value string) error {
	switch field {
	case domain.KeyShieldDuration:
		f.ShieldDuration = value
	case domain.KeyFollowDuration:
		f.FollowDuration = value
	case domain.KeySlowDelay:
		f.SlowDelay = value
	case domain.KeyTwitchChannel:
		f.Channel = value
	case domain.KeyTwitchToken:
		f.Token = value
	case domain.KeyTwitchBroadcasterID:
		f.BroadcasterID = value
	case domain.KeyTwitchModeratorID:
		f.ModeratorID = value
	case domain.KeyTwitchClientID:
		f.ClientID = value
	default:
		return fmt.Errorf("inspector: unknown field %q", field)
	}
	return nil
}

// Collect coerces the inputs into the values pushed to the host.
func (f Form) Collect() (domain.ActionSettings, domain.GlobalSettings) {
	settings := domain.ActionSettings{
		ShieldDuration: domain.CoerceInt(f.ShieldDuration, domain.DefaultShieldDuration),
		FollowDuration: domain.CoerceInt(f.FollowDuration, domain.DefaultFollowDuration),
		SlowDelay:      domain.CoerceInt(f.SlowDelay, domain.DefaultSlowDelay),
	}
	global := domain.GlobalSettings{
		TwitchChannel:       domain.NormalizeChannel(f.Channel),
		TwitchToken:         trim(f.Token),
		TwitchBroadcasterID: trim(f.BroadcasterID),
		TwitchModeratorID:   trim(f.ModeratorID),
		TwitchClientID:      trim(f.ClientID),
	}
	return settings, global
}
