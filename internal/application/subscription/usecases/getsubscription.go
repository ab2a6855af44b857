package usecases

import (
	"context"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type GetSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewGetSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, sid string) (*subscription.Subscription, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, sid)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", sid)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return sub, nil
}
