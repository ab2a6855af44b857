package delivery

import (
	"context"

	subvo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

// TrackingRecordRepository persists tracking records. UpsertByScheduleKey is
// the only creation path: it must be atomic on the unique
// (subscription_id, date, shift) key so concurrent readers materializing the
// same occurrence can never produce duplicates. A duplicate-key outcome is
// the success path — the implementation re-reads and returns the winner.
type TrackingRecordRepository interface {
	// UpsertByScheduleKey inserts the record if no row exists for its
	// (subscription, date, shift) key, otherwise returns the existing row.
	// created reports whether this call performed the insert.
	UpsertByScheduleKey(ctx context.Context, record *TrackingRecord) (existing *TrackingRecord, created bool, err error)

	GetByScheduleKey(ctx context.Context, subscriptionID uint, date biztime.CivilDate, shift subvo.Shift) (*TrackingRecord, error)
	GetByDeliveryNumber(ctx context.Context, deliveryNumber string) (*TrackingRecord, error)
	Update(ctx context.Context, record *TrackingRecord) error

	// ListByDate returns all records for a civil date, optionally narrowed
	// to one shift.
	ListByDate(ctx context.Context, date biztime.CivilDate, shift *subvo.Shift) ([]*TrackingRecord, error)
}
