package usecases

import (
	"context"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type SkipMealCommand struct {
	SubscriptionSID string
	Date            string
	Shift           string
	Reason          string
	SkippedBy       string
}

// SkipMealUseCase records a skip request against one occurrence. The meal
// ledger is deliberately untouched here: the decrement happens only when the
// tracking record actually transitions to skipped.
type SkipMealUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewSkipMealUseCase(
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *SkipMealUseCase {
	return &SkipMealUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *SkipMealUseCase) Execute(ctx context.Context, cmd SkipMealCommand) (*subscription.Subscription, error) {
	date, err := biztime.ParseCivilDate(cmd.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	shift, err := vo.ParseShift(cmd.Shift)
	if err != nil {
		return nil, fmt.Errorf("invalid shift: %w", err)
	}

	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, subscription.ErrSubscriptionNotFound
	}

	entry := subscription.SkipEntry{
		Date:      date,
		Shift:     shift,
		Reason:    cmd.Reason,
		SkippedBy: cmd.SkippedBy,
		SkippedAt: biztime.NowUTC(),
	}
	if err := sub.RecordSkip(entry); err != nil {
		uc.logger.Warnw("skip rejected", "error", err, "subscription_sid", cmd.SubscriptionSID, "date", cmd.Date, "shift", cmd.Shift)
		return nil, err
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("meal skip recorded",
		"subscription_sid", sub.SID(),
		"date", date.String(),
		"shift", shift,
		"skipped_by", cmd.SkippedBy,
	)
	return sub, nil
}

type UnskipMealCommand struct {
	SubscriptionSID string
	Date            string
	Shift           string
}

// UnskipMealUseCase withdraws a skip request before it is fulfilled. If the
// tracking record already reached skipped, reversing the ledger is the
// delivery status flow's job, not this one's.
type UnskipMealUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewUnskipMealUseCase(
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *UnskipMealUseCase {
	return &UnskipMealUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *UnskipMealUseCase) Execute(ctx context.Context, cmd UnskipMealCommand) (*subscription.Subscription, error) {
	date, err := biztime.ParseCivilDate(cmd.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	shift, err := vo.ParseShift(cmd.Shift)
	if err != nil {
		return nil, fmt.Errorf("invalid shift: %w", err)
	}

	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, subscription.ErrSubscriptionNotFound
	}

	if !sub.RemoveSkip(date, shift) {
		return nil, fmt.Errorf("no skip recorded for %s %s", cmd.Date, cmd.Shift)
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("meal skip withdrawn", "subscription_sid", sub.SID(), "date", date.String(), "shift", shift)
	return sub, nil
}
