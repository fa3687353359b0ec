package actions

import (
	"context"
	"fmt"

	"twitchDeck/internal/domain"
)

// RewardsAction marks every pending channel-points redemption as fulfilled.
type RewardsAction struct{}

func NewRewardsAction() *RewardsAction { return &RewardsAction{} }

func (a *RewardsAction) Kind() domain.ActionKind { return domain.ActionRewards }

func (a *RewardsAction) Execute(ctx context.Context, c *Context) (Result, error) {
	if err := c.ready(); err != nil {
		return Result{}, err
	}
	n, err := c.Service.ClearRedemptionQueue(ctx, c.broadcaster())
	if err != nil {
		return Result{}, err
	}
	return Result{Detail: fmt.Sprintf("cleared %d redemptions", n)}, nil
}
