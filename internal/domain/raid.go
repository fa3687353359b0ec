package domain

import "time"

type Raider struct {
	Login       string    `json:"login"`
	DisplayName string    `json:"displayName"`
	UserID      string    `json:"userId"`
	Viewers     int       `json:"viewers"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

// Name prefers the display name for chat announcements.
func (r Raider) Name() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Login
}

// HeldMessage es un mensaje retenido por AutoMod pendiente de aprobación.
type HeldMessage struct {
	MsgID     string    `json:"msgId"`
	UserLogin string    `json:"userLogin"`
	Text      string    `json:"text"`
	QueuedAt  time.Time `json:"queuedAt"`
}
