package domain

// Mensajes que intercambian el inspector y el plugin a través del host
// (sendToPlugin / sendToPropertyInspector). El discriminador va en "action"
// hacia el plugin y en "event" hacia el inspector.
const (
	RelaySaveGlobalSettings = "saveGlobalSettings"
	RelayConnectionTest     = "connectionTest"
	RelayResolveIDs         = "resolveIds"
	RelayResolvedIDs        = "resolvedIds"
	RelayAutomodHeld        = "automodHeld"
	RelayStatus             = "status"
)

// PluginRequest is what the inspector sends to the plugin.
type PluginRequest struct {
	Action    string          `json:"action"`
	RequestID string          `json:"requestId,omitempty"`
	Settings  *GlobalSettings `json:"settings,omitempty"`
	Held      *HeldMessage    `json:"held,omitempty"`
}

// InspectorMessage is what the plugin sends back to an inspector.
type InspectorMessage struct {
	Event         string   `json:"event"`
	RequestID     string   `json:"requestId,omitempty"`
	Success       bool     `json:"success"`
	Message       string   `json:"message,omitempty"`
	Login         string   `json:"login,omitempty"`
	MissingScopes []string `json:"missingScopes,omitempty"`
	BroadcasterID string   `json:"broadcasterId,omitempty"`
	ModeratorID   string   `json:"moderatorId,omitempty"`
	Configured    bool     `json:"configured,omitempty"`
	Raider        *Raider  `json:"raider,omitempty"`
}
