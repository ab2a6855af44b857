package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/tastyaana/tiffin/internal/domain/delivery/valueobjects"
	subvo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

func newRecord(t *testing.T) *TrackingRecord {
	t.Helper()
	date, err := biztime.ParseCivilDate("2025-01-15")
	require.NoError(t, err)
	rec, err := NewTrackingRecord(42, date, subvo.ShiftMorning, "a2f0c9d1", "del_x1y2z3a4b5c6", date.UTCMidnight().Add(4*time.Hour))
	require.NoError(t, err)
	return rec
}

func TestNewTrackingRecord(t *testing.T) {
	rec := newRecord(t)

	assert.Equal(t, vo.StatusPending, rec.Status())
	assert.Equal(t, uint(42), rec.SubscriptionID())
	assert.Nil(t, rec.DeliveredAt())
	require.Len(t, rec.Checkpoints(), 1)
	assert.Equal(t, vo.StatusPending, rec.Checkpoints()[0].Status)
}

func TestNewTrackingRecord_Invalid(t *testing.T) {
	date, err := biztime.ParseCivilDate("2025-01-15")
	require.NoError(t, err)
	eta := date.UTCMidnight().Add(4 * time.Hour)

	_, err = NewTrackingRecord(0, date, subvo.ShiftMorning, "u", "del_a", eta)
	assert.Error(t, err, "missing subscription")

	_, err = NewTrackingRecord(42, biztime.CivilDate{}, subvo.ShiftMorning, "u", "del_a", eta)
	assert.Error(t, err, "missing date")

	_, err = NewTrackingRecord(42, date, subvo.Shift("midnight"), "u", "del_a", eta)
	assert.Error(t, err, "bad shift")

	_, err = NewTrackingRecord(42, date, subvo.ShiftEvening, "u", "", eta)
	assert.Error(t, err, "missing delivery number")
}

func TestMarkStatus_HappyPath(t *testing.T) {
	rec := newRecord(t)

	require.NoError(t, rec.MarkStatus(vo.StatusAssigned, "ops", ""))
	require.NoError(t, rec.MarkStatus(vo.StatusPicked, "driver", ""))
	require.NoError(t, rec.MarkStatus(vo.StatusDelivered, "driver", "left at door"))

	assert.Equal(t, vo.StatusDelivered, rec.Status())
	require.NotNil(t, rec.DeliveredAt())
	require.Len(t, rec.Checkpoints(), 4)
	assert.Equal(t, "left at door", rec.Checkpoints()[3].Note)
}

func TestMarkStatus_SameStatusIsNoOp(t *testing.T) {
	rec := newRecord(t)
	before := rec.Version()

	require.NoError(t, rec.MarkStatus(vo.StatusPending, "ops", ""))

	assert.Equal(t, before, rec.Version())
	assert.Len(t, rec.Checkpoints(), 1)
}

func TestMarkStatus_DeliveredIsTerminal(t *testing.T) {
	rec := newRecord(t)
	require.NoError(t, rec.MarkStatus(vo.StatusDelivered, "driver", ""))

	err := rec.MarkStatus(vo.StatusSkipped, "ops", "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, vo.StatusDelivered, rec.Status())
}

func TestMarkStatus_SkippedCanBeReversed(t *testing.T) {
	rec := newRecord(t)
	require.NoError(t, rec.MarkStatus(vo.StatusSkipped, "customer", "travelling"))
	require.NoError(t, rec.MarkStatus(vo.StatusDelivered, "driver", "customer back early"))

	assert.Equal(t, vo.StatusDelivered, rec.Status())
	assert.NotNil(t, rec.DeliveredAt())
}

func TestMarkStatus_PickedCannotSkip(t *testing.T) {
	rec := newRecord(t)
	require.NoError(t, rec.MarkStatus(vo.StatusAssigned, "ops", ""))
	require.NoError(t, rec.MarkStatus(vo.StatusPicked, "driver", ""))

	assert.ErrorIs(t, rec.MarkStatus(vo.StatusSkipped, "ops", ""), ErrInvalidStatusTransition)
}

func TestAssignDriver(t *testing.T) {
	rec := newRecord(t)

	assert.ErrorIs(t, rec.AssignDriver("", "ops"), ErrDriverRequired)

	require.NoError(t, rec.AssignDriver("drv_abc", "ops"))
	assert.Equal(t, vo.StatusAssigned, rec.Status())
	require.NotNil(t, rec.DriverSID())
	assert.Equal(t, "drv_abc", *rec.DriverSID())
}

func TestReconstructTrackingRecord(t *testing.T) {
	_, err := ReconstructTrackingRecord(ReconstructTrackingRecordParams{ID: 0})
	assert.Error(t, err, "zero ID")

	date, err := biztime.ParseCivilDate("2025-01-15")
	require.NoError(t, err)
	rec, err := ReconstructTrackingRecord(ReconstructTrackingRecordParams{
		ID: 7, UUID: "a2f0c9d1", DeliveryNumber: "del_x1y2z3a4b5c6",
		SubscriptionID: 42, Date: date, Shift: subvo.ShiftEvening,
		Status: vo.StatusPicked, Version: 3,
		CreatedAt: biztime.NowUTC(), UpdatedAt: biztime.NowUTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusPicked, rec.Status())
	assert.Equal(t, subvo.ShiftEvening, rec.Shift())
}
