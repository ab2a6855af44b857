package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeSubscriptionRepo struct {
	subs    []*subscription.Subscription
	nextID  uint
	updates int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{nextID: 1}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *subscription.Subscription) error {
	if err := sub.SetID(r.nextID); err != nil {
		return err
	}
	r.nextID++
	r.subs = append(r.subs, sub)
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id uint) (*subscription.Subscription, error) {
	for _, s := range r.subs {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) GetBySID(_ context.Context, sid string) (*subscription.Subscription, error) {
	for _, s := range r.subs {
		if s.SID() == sid {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) GetByUserID(_ context.Context, userID uint) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range r.subs {
		if s.UserID() == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Update(context.Context, *subscription.Subscription) error {
	r.updates++
	return nil
}

func (r *fakeSubscriptionRepo) FindActive(_ context.Context, _ subscription.Filter) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range r.subs {
		if s.Status() == vo.StatusActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) FindActiveForDate(_ context.Context, date biztime.CivilDate) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range r.subs {
		if s.Status() != vo.StatusActive {
			continue
		}
		if date.Before(s.StartDate()) || s.LastOccurrenceDate().Before(date) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) FindExhausted(_ context.Context) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range r.subs {
		if s.Status() == vo.StatusActive && s.Ledger().Exhausted() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) UpdateLedger(_ context.Context, id uint, delta subscription.LedgerDelta) error {
	for _, s := range r.subs {
		if s.ID() == id {
			return nil
		}
	}
	return subscription.ErrSubscriptionNotFound
}

type fakePlanCatalog struct {
	plans map[string]*subscription.MealPlan
}

func newFakePlanCatalog(t *testing.T) *fakePlanCatalog {
	t.Helper()
	standard, err := subscription.ReconstructMealPlan(1, "plan_standard", "sel_main", "Standard Thali", []string{"dal", "rice", "roti", "sabzi"}, decimal.NewFromInt(120), vo.ShiftEvening, true)
	require.NoError(t, err)
	deluxe, err := subscription.ReconstructMealPlan(2, "plan_deluxe", "sel_main", "Deluxe Thali", []string{"dal", "rice", "roti", "paneer", "sweet"}, decimal.NewFromInt(180), vo.ShiftEvening, true)
	require.NoError(t, err)
	paused, err := subscription.ReconstructMealPlan(3, "plan_paused", "sel_main", "Paused Thali", nil, decimal.NewFromInt(90), vo.ShiftEvening, false)
	require.NoError(t, err)
	return &fakePlanCatalog{plans: map[string]*subscription.MealPlan{
		standard.SID(): standard,
		deluxe.SID():   deluxe,
		paused.SID():   paused,
	}}
}

func (c *fakePlanCatalog) GetBySID(_ context.Context, sid string) (*subscription.MealPlan, error) {
	return c.plans[sid], nil
}

func seedActiveSubscription(t *testing.T, repo *fakeSubscriptionRepo) *subscription.Subscription {
	t.Helper()
	start, err := biztime.ParseCivilDate("2025-01-15")
	require.NoError(t, err)
	sub, err := subscription.NewSubscription(subscription.NewSubscriptionParams{
		SID:        fmt.Sprintf("sub_test%08d", repo.nextID),
		UserID:     7,
		SellerSID:  "sel_main",
		PlanSID:    "plan_standard",
		TotalMeals: 56,
		StartDate:  start,
		StartShift: vo.ShiftMorning,
	})
	require.NoError(t, err)
	require.NoError(t, sub.Activate())
	require.NoError(t, repo.Create(context.Background(), sub))
	return sub
}
