package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tastyaana/tiffin/internal/domain/delivery"
	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/id"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

// materializer lazily creates tracking records for observed occurrences. The
// insert goes through UpsertByScheduleKey so concurrent callers observing the
// same occurrence converge on a single row; losing the race is a success and
// returns the winner.
type materializer struct {
	trackingRepo     delivery.TrackingRecordRepository
	morningETAOffset time.Duration
	eveningETAOffset time.Duration
	logger           logger.Interface
}

func newMaterializer(trackingRepo delivery.TrackingRecordRepository, morningETAOffset, eveningETAOffset time.Duration, logger logger.Interface) materializer {
	if morningETAOffset == 0 {
		morningETAOffset = 4 * time.Hour
	}
	if eveningETAOffset == 0 {
		eveningETAOffset = 8 * time.Hour
	}
	return materializer{
		trackingRepo:     trackingRepo,
		morningETAOffset: morningETAOffset,
		eveningETAOffset: eveningETAOffset,
		logger:           logger,
	}
}

// eta computes the delivery estimate as civil start of day plus the
// configured per-shift offset.
func (m materializer) eta(date biztime.CivilDate, shift vo.Shift) time.Time {
	offset := m.eveningETAOffset
	if shift == vo.ShiftMorning {
		offset = m.morningETAOffset
	}
	return date.UTCMidnight().Add(offset)
}

// ensureRecord returns the tracking record for (subscription, date, shift),
// creating it exactly once if absent. created reports whether this call
// minted the record.
func (m materializer) ensureRecord(ctx context.Context, sub *subscription.Subscription, date biztime.CivilDate, shift vo.Shift) (*delivery.TrackingRecord, bool, error) {
	existing, err := m.trackingRepo.GetByScheduleKey(ctx, sub.ID(), date, shift)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up tracking record: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	record, err := delivery.NewTrackingRecord(
		sub.ID(),
		date,
		shift,
		uuid.NewString(),
		id.MustGenerateWithPrefix(id.PrefixDelivery, id.DefaultLength),
		m.eta(date, shift),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build tracking record: %w", err)
	}

	winner, created, err := m.trackingRepo.UpsertByScheduleKey(ctx, record)
	if err != nil {
		return nil, false, fmt.Errorf("failed to materialize tracking record: %w", err)
	}
	if created {
		m.logger.Debugw("tracking record materialized",
			"subscription_sid", sub.SID(),
			"date", date.String(),
			"shift", shift,
			"delivery_number", winner.DeliveryNumber(),
		)
	}
	return winner, created, nil
}
