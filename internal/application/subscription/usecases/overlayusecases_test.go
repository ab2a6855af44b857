package usecases

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
)

func TestSkipMeal_RecordsRequestWithoutLedgerWrite(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	uc := NewSkipMealUseCase(repo, testLogger())

	result, err := uc.Execute(context.Background(), SkipMealCommand{
		SubscriptionSID: sub.SID(),
		Date:            "2025-01-15",
		Shift:           "morning",
		Reason:          "travelling",
		SkippedBy:       "customer",
	})
	require.NoError(t, err)
	assert.Len(t, result.Skips(), 1)
	assert.Equal(t, 56, result.Ledger().Remaining)
	assert.Equal(t, 0, result.Ledger().Skipped)
}

func TestSkipMeal_Rejections(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	uc := NewSkipMealUseCase(repo, testLogger())

	_, err := uc.Execute(context.Background(), SkipMealCommand{
		SubscriptionSID: "sub_unknown", Date: "2025-01-15", Shift: "morning",
	})
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)

	_, err = uc.Execute(context.Background(), SkipMealCommand{
		SubscriptionSID: sub.SID(), Date: "2024-06-01", Shift: "morning",
	})
	assert.ErrorIs(t, err, subscription.ErrOccurrenceNotFound)
}

func TestUnskipMeal(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	skipUC := NewSkipMealUseCase(repo, testLogger())
	unskipUC := NewUnskipMealUseCase(repo, testLogger())

	_, err := skipUC.Execute(context.Background(), SkipMealCommand{
		SubscriptionSID: sub.SID(), Date: "2025-01-15", Shift: "morning", Reason: "travel",
	})
	require.NoError(t, err)

	result, err := unskipUC.Execute(context.Background(), UnskipMealCommand{
		SubscriptionSID: sub.SID(), Date: "2025-01-15", Shift: "morning",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Skips())

	_, err = unskipUC.Execute(context.Background(), UnskipMealCommand{
		SubscriptionSID: sub.SID(), Date: "2025-01-15", Shift: "morning",
	})
	assert.Error(t, err, "nothing left to withdraw")
}

func TestReplaceMeal_PricesTheDifference(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	uc := NewReplaceMealUseCase(repo, newFakePlanCatalog(t), testLogger())

	result, err := uc.Execute(context.Background(), ReplaceMealCommand{
		SubscriptionSID:    sub.SID(),
		Date:               "2025-01-16",
		Shift:              "evening",
		ReplacementPlanSID: "plan_deluxe",
	})
	require.NoError(t, err)
	assert.True(t, result.PaymentRequired)
	assert.True(t, result.Entry.PriceDifference.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, vo.PaymentPending, result.Entry.PaymentStatus)
	assert.False(t, result.Entry.PaymentValid(), "unsettled upgrade must not take effect")
}

func TestReplaceMeal_CheaperNeedsNoPayment(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	catalog := newFakePlanCatalog(t)
	uc := NewReplaceMealUseCase(repo, catalog, testLogger())

	// Same-priced replacement: zero difference, nothing to settle.
	result, err := uc.Execute(context.Background(), ReplaceMealCommand{
		SubscriptionSID:    sub.SID(),
		Date:               "2025-01-16",
		Shift:              "evening",
		ReplacementPlanSID: "plan_standard",
	})
	require.NoError(t, err)
	assert.False(t, result.PaymentRequired)
	assert.Equal(t, vo.PaymentNotRequired, result.Entry.PaymentStatus)
	assert.True(t, result.Entry.PaymentValid())
}

func TestReplaceMeal_UnavailableReplacement(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	uc := NewReplaceMealUseCase(repo, newFakePlanCatalog(t), testLogger())

	_, err := uc.Execute(context.Background(), ReplaceMealCommand{
		SubscriptionSID:    sub.SID(),
		Date:               "2025-01-16",
		Shift:              "evening",
		ReplacementPlanSID: "plan_paused",
	})
	assert.Error(t, err)
}

func TestCustomizeMeal_SumsAddonsIntoPayable(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	uc := NewCustomizeMealUseCase(repo, testLogger())

	result, err := uc.Execute(context.Background(), CustomizeMealCommand{
		SubscriptionSID:   sub.SID(),
		Date:              "2025-01-16",
		Shift:             "evening",
		Type:              "one_time",
		DietaryPreference: "jain",
		SpiceLevel:        "mild",
		Addons: []CustomizationAddonInput{
			{Name: "extra roti", Price: decimal.NewFromInt(10), Quantity: 2},
		},
		ExtraItems: []CustomizationAddonInput{
			{Name: "gulab jamun", Price: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.PaymentRequired)
	assert.True(t, result.Entry.TotalPayablePrice.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, vo.PaymentPending, result.Entry.PaymentStatus)
}

func TestCustomizeMeal_FreeCustomization(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	uc := NewCustomizeMealUseCase(repo, testLogger())

	result, err := uc.Execute(context.Background(), CustomizeMealCommand{
		SubscriptionSID: sub.SID(),
		Date:            "2025-01-16",
		Shift:           "evening",
		Type:            "permanent",
		SpiceLevel:      "extra hot",
	})
	require.NoError(t, err)
	assert.False(t, result.PaymentRequired)
	assert.Equal(t, vo.PaymentNotRequired, result.Entry.PaymentStatus)
	assert.True(t, result.Entry.PaymentValid())
}

func TestCustomizeMeal_AvailabilityDefaults(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	uc := NewCustomizeMealUseCase(repo, testLogger())

	// A command that says nothing about availability keeps the meal wanted.
	result, err := uc.Execute(context.Background(), CustomizeMealCommand{
		SubscriptionSID: sub.SID(),
		Date:            "2025-01-16",
		Shift:           "evening",
		Type:            "one_time",
		SpiceLevel:      "mild",
	})
	require.NoError(t, err)
	assert.True(t, result.Entry.IsAvailable)

	result, err = uc.Execute(context.Background(), CustomizeMealCommand{
		SubscriptionSID: sub.SID(),
		Date:            "2025-01-17",
		Shift:           "evening",
		Type:            "one_time",
		Unavailable:     true,
	})
	require.NoError(t, err)
	assert.False(t, result.Entry.IsAvailable, "opting out must be an explicit request")
}

func TestCustomizeMeal_InvalidType(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	uc := NewCustomizeMealUseCase(repo, testLogger())

	_, err := uc.Execute(context.Background(), CustomizeMealCommand{
		SubscriptionSID: sub.SID(), Date: "2025-01-16", Shift: "evening", Type: "weekly",
	})
	assert.Error(t, err)
}

func TestExpireSubscriptions_SweepsExhausted(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	sub := seedActiveSubscription(t, repo)
	uc := NewExpireSubscriptionsUseCase(repo, testLogger())

	// Nothing exhausted yet.
	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Expired)

	// Drain the ledger.
	ledger := sub.Ledger()
	for i := 0; i < sub.TotalMeals(); i++ {
		next, _, err := ledger.MarkDelivered(false)
		require.NoError(t, err)
		ledger = next
	}
	require.NoError(t, sub.ApplyLedger(ledger))

	result, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, vo.StatusExpired, sub.Status())

	// The sweep is idempotent.
	result, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Expired)
}

func TestActivateAndCancel(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	createUC := NewCreateSubscriptionUseCase(repo, newFakePlanCatalog(t), testLogger())
	activateUC := NewActivateSubscriptionUseCase(repo, testLogger())
	cancelUC := NewCancelSubscriptionUseCase(repo, testLogger())

	created, err := createUC.Execute(context.Background(), CreateSubscriptionCommand{
		UserID: 7, PlanSID: "plan_standard", StartDate: "2025-01-15", StartShift: "morning",
	})
	require.NoError(t, err)

	sub, err := activateUC.Execute(context.Background(), ActivateSubscriptionCommand{SubscriptionSID: created.Subscription.SID()})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, sub.Status())

	sub, err = cancelUC.Execute(context.Background(), CancelSubscriptionCommand{SubscriptionSID: sub.SID(), Reason: "relocating"})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusCancelled, sub.Status())

	_, err = activateUC.Execute(context.Background(), ActivateSubscriptionCommand{SubscriptionSID: sub.SID()})
	assert.ErrorIs(t, err, subscription.ErrInvalidStatusTransition)
}
