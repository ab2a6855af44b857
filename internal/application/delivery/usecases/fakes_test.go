package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tastyaana/tiffin/internal/domain/delivery"
	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeSubscriptionRepo struct {
	mu     sync.Mutex
	subs   []*subscription.Subscription
	nextID uint
	deltas []subscription.LedgerDelta
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{nextID: 1}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := sub.SetID(r.nextID); err != nil {
		return err
	}
	r.nextID++
	r.subs = append(r.subs, sub)
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) GetBySID(_ context.Context, sid string) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.SID() == sid {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) GetByUserID(_ context.Context, userID uint) ([]*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*subscription.Subscription
	for _, s := range r.subs {
		if s.UserID() == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Update(context.Context, *subscription.Subscription) error {
	return nil
}

func (r *fakeSubscriptionRepo) FindActive(_ context.Context, filter subscription.Filter) ([]*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*subscription.Subscription
	for _, s := range r.subs {
		if s.Status() != vo.StatusActive {
			continue
		}
		if filter.UserID != nil && s.UserID() != *filter.UserID {
			continue
		}
		if filter.SellerSID != nil && s.SellerSID() != *filter.SellerSID {
			continue
		}
		if filter.PlanSID != nil && s.PlanSID() != *filter.PlanSID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) FindActiveForDate(_ context.Context, date biztime.CivilDate) ([]*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*subscription.Subscription
	for _, s := range r.subs {
		if s.Status() == vo.StatusActive && s.Ledger().Exhausted() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) UpdateLedger(_ context.Context, id uint, delta subscription.LedgerDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ID() == id {
			r.deltas = append(r.deltas, delta)
			return nil
		}
	}
	return subscription.ErrSubscriptionNotFound
}

type fakeTrackingRepo struct {
	mu      sync.Mutex
	records map[string]*delivery.TrackingRecord
	nextID  uint
	upserts int
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{records: make(map[string]*delivery.TrackingRecord), nextID: 1}
}

func trackingKey(subscriptionID uint, date biztime.CivilDate, shift vo.Shift) string {
	return fmt.Sprintf("%d|%s|%s", subscriptionID, date, shift)
}

func (r *fakeTrackingRepo) UpsertByScheduleKey(_ context.Context, record *delivery.TrackingRecord) (*delivery.TrackingRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	key := trackingKey(record.SubscriptionID(), record.Date(), record.Shift())
	if existing, ok := r.records[key]; ok {
		return existing, false, nil
	}
	if err := record.SetID(r.nextID); err != nil {
		return nil, false, err
	}
	r.nextID++
	r.records[key] = record
	return record, true, nil
}

func (r *fakeTrackingRepo) GetByScheduleKey(_ context.Context, subscriptionID uint, date biztime.CivilDate, shift vo.Shift) (*delivery.TrackingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[trackingKey(subscriptionID, date, shift)], nil
}

func (r *fakeTrackingRepo) GetByDeliveryNumber(_ context.Context, deliveryNumber string) (*delivery.TrackingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.DeliveryNumber() == deliveryNumber {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeTrackingRepo) Update(context.Context, *delivery.TrackingRecord) error {
	return nil
}

func (r *fakeTrackingRepo) ListByDate(_ context.Context, date biztime.CivilDate, shift *vo.Shift) ([]*delivery.TrackingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*delivery.TrackingRecord
	for _, rec := range r.records {
		if !rec.Date().Equal(date) {
			continue
		}
		if shift != nil && rec.Shift() != *shift {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
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
	return &fakePlanCatalog{plans: map[string]*subscription.MealPlan{
		standard.SID(): standard,
		deluxe.SID():   deluxe,
	}}
}

func (c *fakePlanCatalog) GetBySID(_ context.Context, sid string) (*subscription.MealPlan, error) {
	return c.plans[sid], nil
}

type fakeSink struct {
	completed chan subscription.DeliveryCompletedEvent
	issues    chan subscription.DeliveryIssueEvent
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		completed: make(chan subscription.DeliveryCompletedEvent, 8),
		issues:    make(chan subscription.DeliveryIssueEvent, 8),
	}
}

func (s *fakeSink) NotifyDeliveryCompleted(_ context.Context, event subscription.DeliveryCompletedEvent) error {
	s.completed <- event
	return nil
}

func (s *fakeSink) NotifyDeliveryIssue(_ context.Context, event subscription.DeliveryIssueEvent) error {
	s.issues <- event
	return nil
}

// seedSubscription creates and activates a subscription starting Wednesday
// 2025-01-15 on the standard plan.
func seedSubscription(t *testing.T, repo *fakeSubscriptionRepo, totalMeals int, timing subscription.DeliveryTiming) *subscription.Subscription {
	t.Helper()
	start, err := biztime.ParseCivilDate("2025-01-15")
	require.NoError(t, err)

	sub, err := subscription.NewSubscription(subscription.NewSubscriptionParams{
		SID:            fmt.Sprintf("sub_test%08d", repo.nextID),
		UserID:         uint(100 + repo.nextID),
		SellerSID:      "sel_main",
		PlanSID:        "plan_standard",
		TotalMeals:     totalMeals,
		StartDate:      start,
		StartShift:     vo.ShiftMorning,
		DeliveryTiming: timing,
	})
	require.NoError(t, err)
	require.NoError(t, sub.Activate())
	require.NoError(t, repo.Create(context.Background(), sub))
	return sub
}
