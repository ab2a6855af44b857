package usecases

import (
	"context"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type ListUserSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewListUserSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *ListUserSubscriptionsUseCase {
	return &ListUserSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *ListUserSubscriptionsUseCase) Execute(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	subs, err := uc.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to list user subscriptions", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}
