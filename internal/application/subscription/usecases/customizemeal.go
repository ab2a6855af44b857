package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type CustomizationAddonInput struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

type CustomizeMealCommand struct {
	SubscriptionSID    string
	Date               string
	Shift              string
	Type               string // one_time or permanent
	ReplacementMealSID string
	DietaryPreference  string
	SpiceLevel         string
	Preferences        []string
	Addons             []CustomizationAddonInput
	ExtraItems         []CustomizationAddonInput
	// Unavailable records a customization the customer decided not to
	// receive; it outranks every other overlay for the slot. The zero value
	// keeps the meal wanted.
	Unavailable bool
}

type CustomizeMealResult struct {
	Subscription *subscription.Subscription
	Entry        subscription.CustomizationEntry
	// PaymentRequired reports whether the priced extras still need settling.
	PaymentRequired bool
}

// CustomizeMealUseCase records a one-time or permanent meal customization.
// Priced addons and extras accumulate into a payable total; a non-zero total
// keeps the entry payment-pending until the gateway settles it.
type CustomizeMealUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewCustomizeMealUseCase(
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *CustomizeMealUseCase {
	return &CustomizeMealUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *CustomizeMealUseCase) Execute(ctx context.Context, cmd CustomizeMealCommand) (*CustomizeMealResult, error) {
	date, err := biztime.ParseCivilDate(cmd.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	shift, err := vo.ParseShift(cmd.Shift)
	if err != nil {
		return nil, fmt.Errorf("invalid shift: %w", err)
	}
	ctype := vo.CustomizationType(cmd.Type)
	if !ctype.Valid() {
		return nil, fmt.Errorf("invalid customization type: %q", cmd.Type)
	}

	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, subscription.ErrSubscriptionNotFound
	}

	addons := toAddons(cmd.Addons)
	extras := toAddons(cmd.ExtraItems)
	payable := sumAddons(addons).Add(sumAddons(extras))

	paymentStatus := vo.PaymentNotRequired
	if payable.Sign() > 0 {
		paymentStatus = vo.PaymentPending
	}

	entry := subscription.CustomizationEntry{
		Date:               date,
		Shift:              shift,
		Type:               ctype,
		ReplacementMealSID: cmd.ReplacementMealSID,
		DietaryPreference:  cmd.DietaryPreference,
		SpiceLevel:         cmd.SpiceLevel,
		Preferences:        cmd.Preferences,
		Addons:             addons,
		ExtraItems:         extras,
		TotalPayablePrice:  payable,
		PaymentStatus:      paymentStatus,
		IsAvailable:        !cmd.Unavailable,
		RecordedAt:         biztime.NowUTC(),
	}
	if err := sub.RecordCustomization(entry); err != nil {
		uc.logger.Warnw("customization rejected", "error", err, "subscription_sid", cmd.SubscriptionSID, "date", cmd.Date, "shift", cmd.Shift)
		return nil, err
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("meal customization recorded",
		"subscription_sid", sub.SID(),
		"date", date.String(),
		"shift", shift,
		"type", ctype,
		"payable", payable.StringFixed(2),
		"is_available", !cmd.Unavailable,
	)

	return &CustomizeMealResult{
		Subscription:    sub,
		Entry:           entry,
		PaymentRequired: paymentStatus == vo.PaymentPending,
	}, nil
}

func toAddons(inputs []CustomizationAddonInput) []subscription.CustomizationAddon {
	if len(inputs) == 0 {
		return nil
	}
	addons := make([]subscription.CustomizationAddon, 0, len(inputs))
	for _, in := range inputs {
		qty := in.Quantity
		if qty <= 0 {
			qty = 1
		}
		addons = append(addons, subscription.CustomizationAddon{
			Name:     in.Name,
			Price:    in.Price,
			Quantity: qty,
		})
	}
	return addons
}

func sumAddons(addons []subscription.CustomizationAddon) decimal.Decimal {
	total := decimal.Zero
	for _, a := range addons {
		total = total.Add(a.Price.Mul(decimal.NewFromInt(int64(a.Quantity))))
	}
	return total
}
