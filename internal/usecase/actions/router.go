package actions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"twitchDeck/internal/domain"
)

type Router struct {
	index    map[domain.ActionKind]Action
	log      domain.ActionLogRepository
	clock    clockwork.Clock
	observer func(domain.ActionRecord)
}

func NewRouter(log domain.ActionLogRepository, clock clockwork.Clock) *Router {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Router{
		index: make(map[domain.ActionKind]Action),
		log:   log,
		clock: clock,
	}
}

func (r *Router) Register(a Action) {
	r.index[a.Kind()] = a
}

// Observe registers a callback invoked after every executed action.
func (r *Router) Observe(fn func(domain.ActionRecord)) {
	r.observer = fn
}

func (r *Router) Lookup(uuid string) (Action, bool) {
	kind, ok := domain.ParseActionUUID(uuid)
	if !ok {
		return nil, false
	}
	a, ok := r.index[kind]
	return a, ok
}

// Handle runs the action registered for uuid and records the outcome.
func (r *Router) Handle(ctx context.Context, uuid string, c *Context) (Result, error) {
	a, ok := r.Lookup(uuid)
	if !ok {
		return Result{}, fmt.Errorf("actions: unknown action %q", uuid)
	}

	res, err := a.Execute(ctx, c)

	rec := domain.ActionRecord{
		Action:    a.Kind(),
		Context:   c.Instance,
		Result:    domain.ResultOK,
		Detail:    res.Detail,
		CreatedAt: r.clock.Now(),
	}
	if err != nil {
		rec.Result = domain.ResultError
		rec.Detail = err.Error()
		slog.Warn("actions: execution failed", "action", a.Kind(), "context", c.Instance, "error", err)
	} else {
		slog.Info("actions: executed", "action", a.Kind(), "context", c.Instance, "detail", res.Detail)
	}

	if r.log != nil {
		if saveErr := r.log.SaveAction(ctx, &rec); saveErr != nil {
			slog.Warn("actions: no se pudo guardar el registro", "error", saveErr)
		}
	}
	if r.observer != nil {
		r.observer(rec)
	}

	return res, err
}

// State reads the live on/off state of a toggle action.
func (r *Router) State(ctx context.Context, uuid string, c *Context) (bool, bool, error) {
	a, ok := r.Lookup(uuid)
	if !ok {
		return false, false, nil
	}
	reader, ok := a.(StateReader)
	if !ok {
		return false, false, nil
	}
	if err := c.ready(); err != nil {
		return false, true, err
	}
	on, err := reader.CurrentState(ctx, c)
	return on, true, err
}
