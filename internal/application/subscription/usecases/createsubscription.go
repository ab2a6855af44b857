package usecases

import (
	"context"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/id"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

// DefaultTotalMeals is the standard fixed-quantity plan size.
const DefaultTotalMeals = 56

type CreateSubscriptionCommand struct {
	UserID     uint
	PlanSID    string
	TotalMeals int    // defaults to DefaultTotalMeals when zero
	StartDate  string // civil date, "2006-01-02"
	StartShift string
	Shift      string // optional pinned shift
	Timing     subscription.DeliveryTiming
	// ActivateImmediately skips the payment gate, for admin-created
	// subscriptions.
	ActivateImmediately bool
}

type CreateSubscriptionResult struct {
	Subscription *subscription.Subscription
}

type CreateSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	planCatalog      subscription.PlanCatalog
	logger           logger.Interface
}

func NewCreateSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	planCatalog subscription.PlanCatalog,
	logger logger.Interface,
) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planCatalog:      planCatalog,
		logger:           logger,
	}
}

func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (*CreateSubscriptionResult, error) {
	plan, err := uc.planCatalog.GetBySID(ctx, cmd.PlanSID)
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err, "plan_sid", cmd.PlanSID)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		uc.logger.Warnw("plan not found", "plan_sid", cmd.PlanSID)
		return nil, subscription.ErrPlanNotFound
	}
	if !plan.Available() {
		return nil, fmt.Errorf("plan %s is not available", cmd.PlanSID)
	}

	startDate, err := biztime.ParseCivilDate(cmd.StartDate)
	if err != nil {
		uc.logger.Warnw("invalid start date", "error", err, "start_date", cmd.StartDate)
		return nil, fmt.Errorf("invalid start date: %w", err)
	}

	startShift := plan.DefaultShift()
	if cmd.StartShift != "" {
		startShift, err = vo.ParseShift(cmd.StartShift)
		if err != nil {
			return nil, fmt.Errorf("invalid start shift: %w", err)
		}
	}

	var pinned *vo.Shift
	if cmd.Shift != "" {
		shift, err := vo.ParseShift(cmd.Shift)
		if err != nil {
			return nil, fmt.Errorf("invalid shift: %w", err)
		}
		pinned = &shift
	}

	totalMeals := cmd.TotalMeals
	if totalMeals == 0 {
		totalMeals = DefaultTotalMeals
	}

	sub, err := subscription.NewSubscription(subscription.NewSubscriptionParams{
		SID:            id.MustGenerateWithPrefix(id.PrefixSubscription, id.DefaultLength),
		UserID:         cmd.UserID,
		SellerSID:      plan.SellerSID(),
		PlanSID:        plan.SID(),
		TotalMeals:     totalMeals,
		StartDate:      startDate,
		StartShift:     startShift,
		Shift:          pinned,
		DeliveryTiming: cmd.Timing,
	})
	if err != nil {
		uc.logger.Errorw("failed to create subscription aggregate", "error", err)
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if cmd.ActivateImmediately {
		if err := sub.Activate(); err != nil {
			return nil, fmt.Errorf("failed to activate subscription: %w", err)
		}
	}

	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		uc.logger.Errorw("failed to create subscription in database", "error", err)
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	uc.logger.Infow("subscription created",
		"subscription_sid", sub.SID(),
		"user_id", cmd.UserID,
		"plan_sid", plan.SID(),
		"total_meals", totalMeals,
		"start_date", startDate.String(),
		"status", sub.Status(),
	)

	return &CreateSubscriptionResult{Subscription: sub}, nil
}
