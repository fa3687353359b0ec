package streamdeck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Handler procesa un evento entrante ya decodificado.
type Handler func(ctx context.Context, ev Envelope)

// Handlers maps exact event names to their handler.
type Handlers map[string]Handler

// Dispatcher is a fixed lookup table from event name to handler.
type Dispatcher struct {
	role     Role
	handlers map[string]Handler
}

// NewDispatcher copia handlers y rechaza eventos fuera del rol.
func NewDispatcher(role Role, handlers Handlers) (*Dispatcher, error) {
	table := make(map[string]Handler, len(handlers))
	for event, h := range handlers {
		if !role.Accepts(event) {
			return nil, fmt.Errorf("streamdeck: %s cannot handle event %q", role, event)
		}
		if h == nil {
			continue
		}
		table[event] = h
	}
	return &Dispatcher{role: role, handlers: table}, nil
}

// Dispatch decodes one frame and invokes its handler. It returns false when the
// frame is undecodable or no handler is registered for the event.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) bool {
	var ev Envelope
	if err := json.Unmarshal(data, &ev); err != nil {
		slog.Debug("streamdeck: dropping undecodable frame", "role", d.role.String(), "error", err)
		return false
	}
	h, ok := d.handlers[ev.Event]
	if !ok {
		return false
	}
	h(ctx, ev)
	return true
}

// Handles reports whether a handler is registered for event.
func (d *Dispatcher) Handles(event string) bool {
	_, ok := d.handlers[event]
	return ok
}
