package streamdeck

import "encoding/json"

// Envelope es la única estructura que viaja por el socket.
type Envelope struct {
	Event      string          `json:"event"`
	Action     string          `json:"action,omitempty"`
	Context    string          `json:"context,omitempty"`
	Device     string          `json:"device,omitempty"`
	DeviceInfo json.RawMessage `json:"deviceInfo,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type outgoing struct {
	Event   string `json:"event"`
	Action  string `json:"action,omitempty"`
	Context string `json:"context,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

type registration struct {
	Event string `json:"event"`
	UUID  string `json:"uuid"`
}

type Coordinates struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// ActionPayload cubre keyDown, keyUp, willAppear, willDisappear y didReceiveSettings.
type ActionPayload struct {
	Settings         json.RawMessage `json:"settings,omitempty"`
	Coordinates      Coordinates     `json:"coordinates"`
	State            int             `json:"state"`
	UserDesiredState int             `json:"userDesiredState,omitempty"`
	IsInMultiAction  bool            `json:"isInMultiAction"`
}

type GlobalSettingsPayload struct {
	Settings json.RawMessage `json:"settings"`
}

type ApplicationPayload struct {
	Application string `json:"application"`
}

// Target selects where setTitle/setImage apply.
type Target int

const (
	TargetBoth Target = iota
	TargetHardware
	TargetSoftware
)

type titlePayload struct {
	Title  string `json:"title"`
	Target Target `json:"target"`
}

type imagePayload struct {
	Image  string `json:"image"`
	Target Target `json:"target"`
	State  *int   `json:"state,omitempty"`
}

type statePayload struct {
	State int `json:"state"`
}

type urlPayload struct {
	URL string `json:"url"`
}

type messagePayload struct {
	Message string `json:"message"`
}

// DecodePayload unmarshals the envelope payload into v. An empty payload is not an error.
func (e Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}
