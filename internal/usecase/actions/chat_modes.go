package actions

import (
	"context"
	"fmt"

	"twitchDeck/internal/domain"
)

// SlowAction alterna el modo lento con slowDelay segundos.
type SlowAction struct{}

func NewSlowAction() *SlowAction { return &SlowAction{} }

func (a *SlowAction) Kind() domain.ActionKind { return domain.ActionSlow }

func (a *SlowAction) CurrentState(ctx context.Context, c *Context) (bool, error) {
	mode, err := c.Service.ChatMode(ctx, c.broadcaster(), c.moderator())
	if err != nil {
		return false, err
	}
	return mode.SlowMode, nil
}

func (a *SlowAction) Execute(ctx context.Context, c *Context) (Result, error) {
	if err := c.ready(); err != nil {
		return Result{}, err
	}
	on, err := a.CurrentState(ctx, c)
	if err != nil {
		return Result{}, err
	}
	next := !on
	if err := c.Service.SetSlowMode(ctx, c.broadcaster(), c.moderator(), next, c.Settings.SlowDelay); err != nil {
		return Result{}, err
	}
	if next {
		return toggled(true, fmt.Sprintf("slow mode on (%ds)", c.Settings.SlowDelay)), nil
	}
	return toggled(false, "slow mode off"), nil
}

type FollowersAction struct{}

func NewFollowersAction() *FollowersAction { return &FollowersAction{} }

func (a *FollowersAction) Kind() domain.ActionKind { return domain.ActionFollowers }

func (a *FollowersAction) CurrentState(ctx context.Context, c *Context) (bool, error) {
	mode, err := c.Service.ChatMode(ctx, c.broadcaster(), c.moderator())
	if err != nil {
		return false, err
	}
	return mode.FollowerMode, nil
}

func (a *FollowersAction) Execute(ctx context.Context, c *Context) (Result, error) {
	if err := c.ready(); err != nil {
		return Result{}, err
	}
	on, err := a.CurrentState(ctx, c)
	if err != nil {
		return Result{}, err
	}
	next := !on
	if err := c.Service.SetFollowerMode(ctx, c.broadcaster(), c.moderator(), next, c.Settings.FollowDuration); err != nil {
		return Result{}, err
	}
	if next {
		return toggled(true, fmt.Sprintf("followers-only on (%dm)", c.Settings.FollowDuration)), nil
	}
	return toggled(false, "followers-only off"), nil
}

type SubscribersAction struct{}

func NewSubscribersAction() *SubscribersAction { return &SubscribersAction{} }

func (a *SubscribersAction) Kind() domain.ActionKind { return domain.ActionSubscribers }

func (a *SubscribersAction) CurrentState(ctx context.Context, c *Context) (bool, error) {
	mode, err := c.Service.ChatMode(ctx, c.broadcaster(), c.moderator())
	if err != nil {
		return false, err
	}
	return mode.SubscriberMode, nil
}

func (a *SubscribersAction) Execute(ctx context.Context, c *Context) (Result, error) {
	if err := c.ready(); err != nil {
		return Result{}, err
	}
	on, err := a.CurrentState(ctx, c)
	if err != nil {
		return Result{}, err
	}
	next := !on
	if err := c.Service.SetSubscriberMode(ctx, c.broadcaster(), c.moderator(), next); err != nil {
		return Result{}, err
	}
	if next {
		return toggled(true, "subscribers-only on"), nil
	}
	return toggled(false, "subscribers-only off"), nil
}
