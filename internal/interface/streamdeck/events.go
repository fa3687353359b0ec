package streamdeck

// Eventos que envía el host. Los strings deben coincidir exactamente.
const (
	EventKeyDown                       = "keyDown"
	EventKeyUp                         = "keyUp"
	EventWillAppear                    = "willAppear"
	EventWillDisappear                 = "willDisappear"
	EventTitleParametersDidChange      = "titleParametersDidChange"
	EventDeviceDidConnect              = "deviceDidConnect"
	EventDeviceDidDisconnect           = "deviceDidDisconnect"
	EventApplicationDidLaunch          = "applicationDidLaunch"
	EventApplicationDidTerminate       = "applicationDidTerminate"
	EventSystemDidWakeUp               = "systemDidWakeUp"
	EventPropertyInspectorDidAppear    = "propertyInspectorDidAppear"
	EventPropertyInspectorDidDisappear = "propertyInspectorDidDisappear"
	EventSendToPlugin                  = "sendToPlugin"
	EventSendToPropertyInspector       = "sendToPropertyInspector"
	EventDidReceiveSettings            = "didReceiveSettings"
	EventDidReceiveGlobalSettings      = "didReceiveGlobalSettings"
	EventDialRotate                    = "dialRotate"
	EventDialDown                      = "dialDown"
	EventDialUp                        = "dialUp"
	EventTouchTap                      = "touchTap"
)

// Eventos que se envían al host.
const (
	EventSetSettings       = "setSettings"
	EventGetSettings       = "getSettings"
	EventSetGlobalSettings = "setGlobalSettings"
	EventGetGlobalSettings = "getGlobalSettings"
	EventOpenURL           = "openUrl"
	EventLogMessage        = "logMessage"
	EventSetTitle          = "setTitle"
	EventSetImage          = "setImage"
	EventSetState          = "setState"
	EventShowAlert         = "showAlert"
	EventShowOk            = "showOk"
)

const (
	RegisterPlugin            = "registerPlugin"
	RegisterPropertyInspector = "registerPropertyInspector"
)

// Role selects which inbound events a client may handle.
type Role int

const (
	RolePlugin Role = iota
	RoleInspector
)

func (r Role) String() string {
	switch r {
	case RolePlugin:
		return "plugin"
	case RoleInspector:
		return "inspector"
	default:
		return "unknown"
	}
}

var pluginEvents = map[string]struct{}{
	EventKeyDown:                       {},
	EventKeyUp:                         {},
	EventWillAppear:                    {},
	EventWillDisappear:                 {},
	EventTitleParametersDidChange:      {},
	EventDeviceDidConnect:              {},
	EventDeviceDidDisconnect:           {},
	EventApplicationDidLaunch:          {},
	EventApplicationDidTerminate:       {},
	EventSystemDidWakeUp:               {},
	EventPropertyInspectorDidAppear:    {},
	EventPropertyInspectorDidDisappear: {},
	EventSendToPlugin:                  {},
	EventDidReceiveSettings:            {},
	EventDidReceiveGlobalSettings:      {},
	EventDialRotate:                    {},
	EventDialDown:                      {},
	EventDialUp:                        {},
	EventTouchTap:                      {},
}

var inspectorEvents = map[string]struct{}{
	EventSendToPropertyInspector:  {},
	EventDidReceiveSettings:       {},
	EventDidReceiveGlobalSettings: {},
}

// Accepts reports whether event belongs to the role's capability set.
func (r Role) Accepts(event string) bool {
	var set map[string]struct{}
	switch r {
	case RolePlugin:
		set = pluginEvents
	case RoleInspector:
		set = inspectorEvents
	default:
		return false
	}
	_, ok := set[event]
	return ok
}
