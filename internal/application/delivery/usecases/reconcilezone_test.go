package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
)

func newReconcileFixture(t *testing.T) (*ReconcileZoneUseCase, *fakeSubscriptionRepo, *fakeTrackingRepo) {
	t.Helper()
	subRepo := newFakeSubscriptionRepo()
	trackingRepo := newFakeTrackingRepo()
	uc := NewReconcileZoneUseCase(subRepo, trackingRepo, newFakePlanCatalog(t), 0, 0, testLogger())
	return uc, subRepo, trackingRepo
}

func TestReconcileZone_MaterializesAllOccurrences(t *testing.T) {
	uc, subRepo, trackingRepo := newReconcileFixture(t)
	seedSubscription(t, subRepo, 56, subscription.DeliveryTiming{Morning: true, Evening: true})
	seedSubscription(t, subRepo, 56, subscription.DeliveryTiming{Evening: true})

	result, err := uc.Execute(context.Background(), ReconcileZoneCommand{Date: "2025-01-15"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Subscriptions)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Existing)
	assert.Len(t, trackingRepo.records, 3)
}

func TestReconcileZone_Idempotent(t *testing.T) {
	uc, subRepo, trackingRepo := newReconcileFixture(t)
	seedSubscription(t, subRepo, 56, subscription.DeliveryTiming{Morning: true, Evening: true})

	_, err := uc.Execute(context.Background(), ReconcileZoneCommand{Date: "2025-01-15"})
	require.NoError(t, err)

	result, err := uc.Execute(context.Background(), ReconcileZoneCommand{Date: "2025-01-15"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 2, result.Existing)
	assert.Len(t, trackingRepo.records, 2)
}

func TestReconcileZone_SellerScope(t *testing.T) {
	uc, subRepo, trackingRepo := newReconcileFixture(t)
	seedSubscription(t, subRepo, 56, subscription.DeliveryTiming{Evening: true})

	result, err := uc.Execute(context.Background(), ReconcileZoneCommand{Date: "2025-01-15", SellerSID: "sel_other"})
	require.NoError(t, err)
	assert.Zero(t, result.Subscriptions)
	assert.Empty(t, trackingRepo.records)
}

func TestReconcileZone_OutOfScheduleDate(t *testing.T) {
	uc, subRepo, trackingRepo := newReconcileFixture(t)
	seedSubscription(t, subRepo, 56, subscription.DeliveryTiming{Evening: true})

	result, err := uc.Execute(context.Background(), ReconcileZoneCommand{Date: "2024-12-01"})
	require.NoError(t, err)
	assert.Zero(t, result.Subscriptions)
	assert.Empty(t, trackingRepo.records)
}

func TestReconcileZone_Cancellation(t *testing.T) {
	uc, subRepo, _ := newReconcileFixture(t)
	seedSubscription(t, subRepo, 56, subscription.DeliveryTiming{Evening: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := uc.Execute(ctx, ReconcileZoneCommand{Date: "2025-01-15"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Subscriptions)
}
