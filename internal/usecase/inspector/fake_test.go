package inspector

import (
	"encoding/json"
	"sync"
)

type sent struct {
	Event   string
	Action  string
	Context string
	Payload string
}

// recorder is an in-memory Outbound that records every send as JSON.
type recorder struct {
	mu    sync.Mutex
	sends []sent
}

func (r *recorder) add(event, action, context string, payload any) {
	data, _ := json.Marshal(payload)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, sent{Event: event, Action: action, Context: context, Payload: string(data)})
}

func (r *recorder) SetSettings(context string, settings any) {
	r.add("setSettings", "", context, settings)
}

func (r *recorder) SetGlobalSettings(settings any) {
	r.add("setGlobalSettings", "", "", settings)
}

func (r *recorder) SendToPlugin(action, context string, payload any) {
	r.add("sendToPlugin", action, context, payload)
}

func (r *recorder) all() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sent, len(r.sends))
	copy(out, r.sends)
	return out
}
