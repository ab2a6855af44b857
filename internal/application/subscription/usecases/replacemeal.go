package usecases

import (
	"context"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type ReplaceMealCommand struct {
	SubscriptionSID    string
	Date               string
	Shift              string
	ReplacementPlanSID string
}

type ReplaceMealResult struct {
	Subscription *subscription.Subscription
	Entry        subscription.ReplacementEntry
	// PaymentRequired reports whether the price difference still needs to be
	// settled before the replacement takes effect.
	PaymentRequired bool
}

// ReplaceMealUseCase swaps one occurrence's meal for another plan's meal. It
// prices the difference against the catalog; a costlier replacement stays
// payment-pending and only takes effect once the gateway settles it.
type ReplaceMealUseCase struct {
	subscriptionRepo subscription.Repository
	planCatalog      subscription.PlanCatalog
	logger           logger.Interface
}

func NewReplaceMealUseCase(
	subscriptionRepo subscription.Repository,
	planCatalog subscription.PlanCatalog,
	logger logger.Interface,
) *ReplaceMealUseCase {
	return &ReplaceMealUseCase{
		subscriptionRepo: subscriptionRepo,
		planCatalog:      planCatalog,
		logger:           logger,
	}
}

func (uc *ReplaceMealUseCase) Execute(ctx context.Context, cmd ReplaceMealCommand) (*ReplaceMealResult, error) {
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

	original, err := uc.planCatalog.GetBySID(ctx, sub.PlanSID())
	if err != nil {
		uc.logger.Errorw("failed to get original plan", "error", err, "plan_sid", sub.PlanSID())
		return nil, fmt.Errorf("failed to get original plan: %w", err)
	}
	if original == nil {
		return nil, subscription.ErrPlanNotFound
	}

	replacement, err := uc.planCatalog.GetBySID(ctx, cmd.ReplacementPlanSID)
	if err != nil {
		uc.logger.Errorw("failed to get replacement plan", "error", err, "plan_sid", cmd.ReplacementPlanSID)
		return nil, fmt.Errorf("failed to get replacement plan: %w", err)
	}
	if replacement == nil {
		return nil, subscription.ErrPlanNotFound
	}
	if !replacement.Available() {
		return nil, fmt.Errorf("replacement plan %s is not available", cmd.ReplacementPlanSID)
	}

	diff := replacement.Price().Sub(original.Price())
	paymentStatus := vo.PaymentNotRequired
	if diff.Sign() > 0 {
		paymentStatus = vo.PaymentPending
	}

	entry := subscription.ReplacementEntry{
		Date:               date,
		Shift:              shift,
		OriginalPlanSID:    original.SID(),
		ReplacementPlanSID: replacement.SID(),
		PriceDifference:    diff,
		PaymentStatus:      paymentStatus,
		RequestedAt:        biztime.NowUTC(),
	}
	if err := sub.RecordReplacement(entry); err != nil {
		uc.logger.Warnw("replacement rejected", "error", err, "subscription_sid", cmd.SubscriptionSID, "date", cmd.Date, "shift", cmd.Shift)
		return nil, err
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("meal replacement recorded",
		"subscription_sid", sub.SID(),
		"date", date.String(),
		"shift", shift,
		"replacement_plan_sid", replacement.SID(),
		"price_difference", diff.StringFixed(2),
		"payment_status", paymentStatus,
	)

	return &ReplaceMealResult{
		Subscription:    sub,
		Entry:           entry,
		PaymentRequired: paymentStatus == vo.PaymentPending,
	}, nil
}
