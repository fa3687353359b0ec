package domain

import "time"

type ActionResult string

const (
	ResultOK    ActionResult = "ok"
	ResultError ActionResult = "error"
)

// ActionRecord registra cada pulsación ejecutada contra Twitch.
type ActionRecord struct {
	ID        int64
	Action    ActionKind
	Context   string
	Result    ActionResult
	Detail    string
	CreatedAt time.Time
}

type RaidRecord struct {
	ID           int64
	Raider       Raider
	ShoutedOutAt time.Time
}
