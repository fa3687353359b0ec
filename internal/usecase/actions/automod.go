package actions

import (
	"context"
	"fmt"

	"twitchDeck/internal/domain"
)

// HeldQueue is the source of AutoMod-held messages.
type HeldQueue interface {
	Pop() (domain.HeldMessage, error)
	PushFront(msg domain.HeldMessage)
}

// AutomodAction aprueba el mensaje retenido más antiguo.
type AutomodAction struct {
	queue HeldQueue
}

func NewAutomodAction(queue HeldQueue) *AutomodAction {
	return &AutomodAction{queue: queue}
}

func (a *AutomodAction) Kind() domain.ActionKind { return domain.ActionAutomod }

func (a *AutomodAction) Execute(ctx context.Context, c *Context) (Result, error) {
	if err := c.ready(); err != nil {
		return Result{}, err
	}
	msg, err := a.queue.Pop()
	if err != nil {
		return Result{}, err
	}
	if err := c.Service.ApproveHeldMessage(ctx, c.moderator(), msg.MsgID); err != nil {
		a.queue.PushFront(msg)
		return Result{}, err
	}
	return Result{Detail: fmt.Sprintf("approved message from %s", msg.UserLogin)}, nil
}
