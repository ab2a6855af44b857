package usecases

import (
	"context"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type ExpireSubscriptionsResult struct {
	Expired int
	Failed  int
}

// ExpireSubscriptionsUseCase sweeps active subscriptions whose meal count is
// exhausted and terminates them. Expiry is count-driven, never calendar
// driven; the sweep runs periodically and is safe to repeat.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	notifier         ExpiryNotifier
	logger           logger.Interface
}

func NewExpireSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// SetNotifier sets the expiry notifier (optional).
func (uc *ExpireSubscriptionsUseCase) SetNotifier(notifier ExpiryNotifier) {
	uc.notifier = notifier
}

func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context) (*ExpireSubscriptionsResult, error) {
	subs, err := uc.subscriptionRepo.FindExhausted(ctx)
	if err != nil {
		uc.logger.Errorw("failed to find exhausted subscriptions", "error", err)
		return nil, fmt.Errorf("failed to find exhausted subscriptions: %w", err)
	}

	result := &ExpireSubscriptionsResult{}
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := sub.MarkExpired(); err != nil {
			uc.logger.Warnw("failed to mark subscription expired", "error", err, "subscription_sid", sub.SID())
			result.Failed++
			continue
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			uc.logger.Errorw("failed to persist expired subscription", "error", err, "subscription_sid", sub.SID())
			result.Failed++
			continue
		}
		result.Expired++

		if uc.notifier != nil {
			event := subscription.SubscriptionExpiredEvent{
				SubscriptionSID: sub.SID(),
				UserID:          sub.UserID(),
				OccurredAt:      biztime.NowUTC(),
			}
			if err := uc.notifier.NotifySubscriptionExpired(ctx, event); err != nil {
				uc.logger.Warnw("failed to notify subscription expiry", "error", err, "subscription_sid", sub.SID())
			}
		}
	}

	if result.Expired > 0 || result.Failed > 0 {
		uc.logger.Infow("expiry sweep finished", "expired", result.Expired, "failed", result.Failed)
	}
	return result, nil
}
