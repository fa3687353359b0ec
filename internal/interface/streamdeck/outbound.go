package streamdeck

// Todos los helpers son best-effort: si el socket no está abierto no hacen nada.

func (c *Client) SetSettings(context string, settings any) {
	c.send(outgoing{Event: EventSetSettings, Context: context, Payload: settings})
}

func (c *Client) GetSettings(context string) {
	c.send(outgoing{Event: EventGetSettings, Context: context})
}

// SetGlobalSettings stores settings shared by every instance, scoped to the registration uuid.
func (c *Client) SetGlobalSettings(settings any) {
	c.send(outgoing{Event: EventSetGlobalSettings, Context: c.params.UUID, Payload: settings})
}

func (c *Client) GetGlobalSettings() {
	c.send(outgoing{Event: EventGetGlobalSettings, Context: c.params.UUID})
}

func (c *Client) OpenURL(u string) {
	c.send(outgoing{Event: EventOpenURL, Payload: urlPayload{URL: u}})
}

// LogMessage escribe en el log del propio host.
func (c *Client) LogMessage(message string) {
	c.send(outgoing{Event: EventLogMessage, Payload: messagePayload{Message: message}})
}

func (c *Client) SetTitle(context, title string, target Target) {
	c.send(outgoing{Event: EventSetTitle, Context: context, Payload: titlePayload{Title: title, Target: target}})
}

// SetImage expects a base64 data URI or an SVG string.
func (c *Client) SetImage(context, image string, target Target) {
	c.send(outgoing{Event: EventSetImage, Context: context, Payload: imagePayload{Image: image, Target: target}})
}

func (c *Client) SetState(context string, state int) {
	c.send(outgoing{Event: EventSetState, Context: context, Payload: statePayload{State: state}})
}

func (c *Client) ShowAlert(context string) {
	c.send(outgoing{Event: EventShowAlert, Context: context})
}

func (c *Client) ShowOk(context string) {
	c.send(outgoing{Event: EventShowOk, Context: context})
}

// SendToPropertyInspector relays payload to the inspector of one action instance.
func (c *Client) SendToPropertyInspector(action, context string, payload any) {
	c.send(outgoing{Event: EventSendToPropertyInspector, Action: action, Context: context, Payload: payload})
}

// SendToPlugin relays payload from the inspector to the plugin process.
func (c *Client) SendToPlugin(action, context string, payload any) {
	c.send(outgoing{Event: EventSendToPlugin, Action: action, Context: context, Payload: payload})
}
