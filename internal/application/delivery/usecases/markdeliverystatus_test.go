package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastyaana/tiffin/internal/domain/delivery"
	dvo "github.com/tastyaana/tiffin/internal/domain/delivery/valueobjects"
	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
)

func newMarkStatusFixture(t *testing.T, totalMeals int) (*MarkDeliveryStatusUseCase, *fakeSubscriptionRepo, *subscription.Subscription, *delivery.TrackingRecord) {
	t.Helper()
	subRepo := newFakeSubscriptionRepo()
	trackingRepo := newFakeTrackingRepo()
	sub := seedSubscription(t, subRepo, totalMeals, subscription.DeliveryTiming{Morning: true})

	// Materialize the Wednesday morning record the way the read path would.
	reader := NewGetDeliveriesUseCase(subRepo, trackingRepo, newFakePlanCatalog(t), subscription.NewOverlayResolver(nil, nil), 0, 0, testLogger())
	result, err := reader.Execute(context.Background(), GetDeliveriesQuery{Date: "2025-01-15"})
	require.NoError(t, err)
	require.Len(t, result.Deliveries, 1)

	record, err := trackingRepo.GetByDeliveryNumber(context.Background(), result.Deliveries[0].DeliveryNumber)
	require.NoError(t, err)
	require.NotNil(t, record)

	return NewMarkDeliveryStatusUseCase(subRepo, trackingRepo, testLogger()), subRepo, sub, record
}

func TestMarkDeliveryStatus_DeliveredDecrementsOnce(t *testing.T) {
	uc, subRepo, sub, record := newMarkStatusFixture(t, 56)

	result, err := uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "delivered",
		Actor:          "driver",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ledger.Delivered)
	assert.Equal(t, 55, result.Ledger.Remaining)
	require.Len(t, subRepo.deltas, 1)
	assert.Equal(t, subscription.LedgerDelta{Delivered: 1, Remaining: -1}, subRepo.deltas[0])

	// Re-observing delivered must not decrement again.
	result, err = uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "delivered",
		Actor:          "driver",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ledger.Delivered)
	assert.Equal(t, 55, result.Ledger.Remaining)
	assert.Len(t, subRepo.deltas, 1)
	assert.Equal(t, vo.StatusActive, sub.Status())
}

func TestMarkDeliveryStatus_SkipThenDeliverNoDoubleDecrement(t *testing.T) {
	uc, subRepo, _, record := newMarkStatusFixture(t, 56)

	result, err := uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "skipped",
		Actor:          "customer",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ledger.Skipped)
	assert.Equal(t, 55, result.Ledger.Remaining)

	// Delivering a skipped occurrence reverses the skip first; net effect is
	// a single decrement attributed to delivered.
	result, err = uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "delivered",
		Actor:          "driver",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ledger.Delivered)
	assert.Equal(t, 0, result.Ledger.Skipped)
	assert.Equal(t, 55, result.Ledger.Remaining)

	require.Len(t, subRepo.deltas, 2)
	assert.Equal(t, subscription.LedgerDelta{Delivered: 1, Skipped: -1}, subRepo.deltas[1])
}

func TestMarkDeliveryStatus_UnskipThroughPendingSingleDecrement(t *testing.T) {
	uc, subRepo, _, record := newMarkStatusFixture(t, 56)

	_, err := uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "skipped",
		Actor:          "customer",
	})
	require.NoError(t, err)

	// Moving back to pending already reverses the skip decrement; the
	// occurrence is in the flow again with nothing counted against it.
	result, err := uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "pending",
		Actor:          "customer",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Ledger.Skipped, "reversing a skip must restore the skipped count")
	assert.Equal(t, 56, result.Ledger.Remaining)
	require.Len(t, subRepo.deltas, 2)
	assert.Equal(t, subscription.LedgerDelta{Skipped: -1, Remaining: 1}, subRepo.deltas[1])

	// Delivering afterwards costs exactly one meal in total.
	result, err = uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "delivered",
		Actor:          "driver",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ledger.Delivered)
	assert.Equal(t, 0, result.Ledger.Skipped)
	assert.Equal(t, 55, result.Ledger.Remaining)
	require.NoError(t, result.Ledger.Validate())
}

func TestMarkDeliveryStatus_ExhaustionExpiresSubscription(t *testing.T) {
	uc, _, sub, record := newMarkStatusFixture(t, 1)

	result, err := uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "delivered",
		Actor:          "driver",
	})
	require.NoError(t, err)
	assert.True(t, result.Expired)
	assert.True(t, result.Ledger.Exhausted())
	assert.Equal(t, vo.StatusExpired, sub.Status())
}

func TestMarkDeliveryStatus_AssignsDriver(t *testing.T) {
	uc, _, _, record := newMarkStatusFixture(t, 56)

	result, err := uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "assigned",
		Actor:          "ops",
		DriverSID:      "drv_abc",
	})
	require.NoError(t, err)
	assert.Equal(t, dvo.StatusAssigned, result.Record.Status())
	require.NotNil(t, result.Record.DriverSID())
	assert.Equal(t, "drv_abc", *result.Record.DriverSID())
	assert.Equal(t, 56, result.Ledger.Remaining, "assignment never touches the ledger")
}

func TestMarkDeliveryStatus_InvalidTransition(t *testing.T) {
	uc, subRepo, _, record := newMarkStatusFixture(t, 56)

	_, err := uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "delivered",
		Actor:          "driver",
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "skipped",
		Actor:          "ops",
	})
	assert.ErrorIs(t, err, delivery.ErrInvalidStatusTransition)
	assert.Len(t, subRepo.deltas, 1, "rejected transition leaves the ledger alone")
}

func TestMarkDeliveryStatus_UnknownRecord(t *testing.T) {
	uc, _, _, _ := newMarkStatusFixture(t, 56)

	_, err := uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: "del_doesnotexist",
		Status:         "delivered",
		Actor:          "driver",
	})
	assert.ErrorIs(t, err, delivery.ErrTrackingRecordNotFound)

	_, err = uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: "del_doesnotexist",
		Status:         "teleported",
		Actor:          "driver",
	})
	assert.Error(t, err, "unknown status rejected before any lookup")
}

func TestMarkDeliveryStatus_NotifiesSink(t *testing.T) {
	uc, _, sub, record := newMarkStatusFixture(t, 56)
	sink := newFakeSink()
	uc.SetNotificationSink(sink)

	_, err := uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "failed",
		Actor:          "driver",
		Note:           "address unreachable",
	})
	require.NoError(t, err)

	select {
	case event := <-sink.issues:
		assert.Equal(t, sub.SID(), event.SubscriptionSID)
		assert.Equal(t, "address unreachable", event.Note)
	case <-time.After(time.Second):
		t.Fatal("expected delivery issue notification")
	}

	_, err = uc.Execute(context.Background(), MarkDeliveryStatusCommand{
		DeliveryNumber: record.DeliveryNumber(),
		Status:         "delivered",
		Actor:          "driver",
	})
	require.NoError(t, err)

	select {
	case event := <-sink.completed:
		assert.Equal(t, record.DeliveryNumber(), event.DeliveryNumber)
		assert.Equal(t, 55, event.MealsRemaining)
	case <-time.After(time.Second):
		t.Fatal("expected delivery completed notification")
	}
}
