package usecases

import (
	"context"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	SubscriptionSID string
	Reason          string
}

type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*subscription.Subscription, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, subscription.ErrSubscriptionNotFound
	}

	if err := sub.Cancel(cmd.Reason); err != nil {
		uc.logger.Warnw("cancellation rejected", "error", err, "subscription_sid", cmd.SubscriptionSID, "status", sub.Status())
		return nil, err
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("subscription cancelled",
		"subscription_sid", sub.SID(),
		"reason", cmd.Reason,
		"meals_remaining", sub.Ledger().Remaining,
	)
	return sub, nil
}
