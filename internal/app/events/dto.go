package events

import (
	"time"

	"twitchDeck/internal/domain"
)

// RaidReceivedDTO se publica en TopicRaidReceived.
type RaidReceivedDTO struct {
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	Viewers     int       `json:"viewers"`
	ReceivedAt  time.Time `json:"received_at"`
}

func NewRaidReceivedDTO(r domain.Raider) RaidReceivedDTO {
	return RaidReceivedDTO{
		Login:       r.Login,
		DisplayName: r.DisplayName,
		Viewers:     r.Viewers,
		ReceivedAt:  r.ReceivedAt,
	}
}

// ActionExecutedDTO describe una pulsación ya ejecutada contra Twitch.
type ActionExecutedDTO struct {
	Action    string    `json:"action"`
	Context   string    `json:"context"`
	Result    string    `json:"result"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

func NewActionExecutedDTO(rec domain.ActionRecord) ActionExecutedDTO {
	return ActionExecutedDTO{
		Action:    string(rec.Action),
		Context:   rec.Context,
		Result:    string(rec.Result),
		Detail:    rec.Detail,
		Timestamp: rec.CreatedAt,
	}
}

type TokenInvalidDTO struct {
	Reason string `json:"reason"`
}

type ShieldAutoOffDTO struct {
	BroadcasterID string `json:"broadcaster_id"`
	Error         string `json:"error,omitempty"`
}
