package usecases

import (
	"context"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type ActivateSubscriptionCommand struct {
	SubscriptionSID string
}

// ActivateSubscriptionUseCase activates a pending-payment subscription once
// the payment gateway confirms the checkout.
type ActivateSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewActivateSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *ActivateSubscriptionUseCase {
	return &ActivateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *ActivateSubscriptionUseCase) Execute(ctx context.Context, cmd ActivateSubscriptionCommand) (*subscription.Subscription, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, subscription.ErrSubscriptionNotFound
	}

	if err := sub.Activate(); err != nil {
		uc.logger.Warnw("activation rejected", "error", err, "subscription_sid", cmd.SubscriptionSID, "status", sub.Status())
		return nil, err
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("subscription activated", "subscription_sid", sub.SID())
	return sub, nil
}
