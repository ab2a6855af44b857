package usecases

import (
	"context"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/delivery"
	dvo "github.com/tastyaana/tiffin/internal/domain/delivery/valueobjects"
	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type MarkDeliveryStatusCommand struct {
	DeliveryNumber string
	Status         string
	Actor          string
	Note           string
	// DriverSID is consulted only for the assigned status.
	DriverSID string
}

type MarkDeliveryStatusResult struct {
	Record *delivery.TrackingRecord
	Ledger subscription.MealCountLedger
	// Expired reports whether this transition exhausted the subscription.
	Expired bool
}

// MarkDeliveryStatusUseCase transitions a tracking record and applies the
// ledger consequences. The ledger moves only on true transition edges:
// reaching delivered or skipped for the first time, or leaving skipped
// (which reverses the earlier skip decrement first). The ledger write is a
// single atomic increment, never read-modify-write.
type MarkDeliveryStatusUseCase struct {
	subscriptionRepo subscription.Repository
	trackingRepo     delivery.TrackingRecordRepository
	sink             NotificationSink
	logger           logger.Interface
}

func NewMarkDeliveryStatusUseCase(
	subscriptionRepo subscription.Repository,
	trackingRepo delivery.TrackingRecordRepository,
	logger logger.Interface,
) *MarkDeliveryStatusUseCase {
	return &MarkDeliveryStatusUseCase{
		subscriptionRepo: subscriptionRepo,
		trackingRepo:     trackingRepo,
		logger:           logger,
	}
}

// SetNotificationSink sets the delivery outcome sink (optional).
func (uc *MarkDeliveryStatusUseCase) SetNotificationSink(sink NotificationSink) {
	uc.sink = sink
}

func (uc *MarkDeliveryStatusUseCase) Execute(ctx context.Context, cmd MarkDeliveryStatusCommand) (*MarkDeliveryStatusResult, error) {
	target := dvo.DeliveryStatus(cmd.Status)
	if !dvo.ValidStatuses[target] {
		return nil, fmt.Errorf("invalid delivery status: %q", cmd.Status)
	}

	record, err := uc.trackingRepo.GetByDeliveryNumber(ctx, cmd.DeliveryNumber)
	if err != nil {
		uc.logger.Errorw("failed to get tracking record", "error", err, "delivery_number", cmd.DeliveryNumber)
		return nil, fmt.Errorf("failed to get tracking record: %w", err)
	}
	if record == nil {
		return nil, delivery.ErrTrackingRecordNotFound
	}

	sub, err := uc.subscriptionRepo.GetByID(ctx, record.SubscriptionID())
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_id", record.SubscriptionID())
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, subscription.ErrSubscriptionNotFound
	}

	prev := record.Status()
	if target == dvo.StatusAssigned && cmd.DriverSID != "" {
		err = record.AssignDriver(cmd.DriverSID, cmd.Actor)
	} else {
		err = record.MarkStatus(target, cmd.Actor, cmd.Note)
	}
	if err != nil {
		uc.logger.Warnw("status transition rejected", "error", err, "delivery_number", cmd.DeliveryNumber, "from", prev, "to", target)
		return nil, err
	}

	next, delta, err := uc.ledgerEdge(sub.Ledger(), prev, target)
	if err != nil {
		uc.logger.Errorw("ledger mutation rejected", "error", err, "subscription_sid", sub.SID(), "from", prev, "to", target)
		return nil, err
	}

	if err := uc.trackingRepo.Update(ctx, record); err != nil {
		uc.logger.Errorw("failed to update tracking record", "error", err, "delivery_number", cmd.DeliveryNumber)
		return nil, fmt.Errorf("failed to update tracking record: %w", err)
	}

	if !delta.IsZero() {
		if err := uc.subscriptionRepo.UpdateLedger(ctx, sub.ID(), delta); err != nil {
			uc.logger.Errorw("failed to apply ledger delta", "error", err, "subscription_sid", sub.SID())
			return nil, fmt.Errorf("failed to apply ledger delta: %w", err)
		}
		if err := sub.ApplyLedger(next); err != nil {
			return nil, err
		}
	}

	result := &MarkDeliveryStatusResult{Record: record, Ledger: sub.Ledger()}

	if sub.Ledger().Exhausted() && sub.Status().CanDeliver() {
		if err := sub.MarkExpired(); err != nil {
			uc.logger.Warnw("failed to expire exhausted subscription", "error", err, "subscription_sid", sub.SID())
		} else if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			uc.logger.Errorw("failed to persist expired subscription", "error", err, "subscription_sid", sub.SID())
		} else {
			result.Expired = true
			uc.logger.Infow("subscription exhausted and expired", "subscription_sid", sub.SID())
		}
	}

	uc.notify(sub, record, target, cmd.Note)

	uc.logger.Infow("delivery status updated",
		"delivery_number", record.DeliveryNumber(),
		"from", prev,
		"to", target,
		"actor", cmd.Actor,
		"meals_remaining", sub.Ledger().Remaining,
	)
	return result, nil
}

// ledgerEdge computes the ledger mutation for a status transition. Repeat
// observations of a state the ledger already counted are no-ops.
func (uc *MarkDeliveryStatusUseCase) ledgerEdge(ledger subscription.MealCountLedger, prev, target dvo.DeliveryStatus) (subscription.MealCountLedger, subscription.LedgerDelta, error) {
	var total subscription.LedgerDelta

	// Any exit from skipped reverses the earlier decrement, including the
	// staged path back through pending. The transition itself was already
	// validated, so target here is always a legal exit.
	if prev == dvo.StatusSkipped {
		next, delta, err := ledger.ReverseSkip()
		if err != nil {
			return ledger, subscription.LedgerDelta{}, err
		}
		ledger = next
		total = delta
	}

	switch target {
	case dvo.StatusDelivered:
		next, delta, err := ledger.MarkDelivered(prev == dvo.StatusDelivered)
		if err != nil {
			return ledger, subscription.LedgerDelta{}, err
		}
		ledger = next
		total.Delivered += delta.Delivered
		total.Remaining += delta.Remaining
	case dvo.StatusSkipped:
		next, delta, err := ledger.MarkSkipped(prev == dvo.StatusSkipped)
		if err != nil {
			return ledger, subscription.LedgerDelta{}, err
		}
		ledger = next
		total.Skipped += delta.Skipped
		total.Remaining += delta.Remaining
	}

	return ledger, total, nil
}

// notify fires the sink without blocking the request. Failures are logged
// and dropped.
func (uc *MarkDeliveryStatusUseCase) notify(sub *subscription.Subscription, record *delivery.TrackingRecord, target dvo.DeliveryStatus, note string) {
	if uc.sink == nil {
		return
	}

	switch target {
	case dvo.StatusDelivered:
		event := subscription.DeliveryCompletedEvent{
			SubscriptionSID: sub.SID(),
			DeliveryNumber:  record.DeliveryNumber(),
			Date:            record.Date(),
			Shift:           record.Shift(),
			MealsRemaining:  sub.Ledger().Remaining,
			OccurredAt:      biztime.NowUTC(),
		}
		go func() {
			if err := uc.sink.NotifyDeliveryCompleted(context.Background(), event); err != nil {
				uc.logger.Warnw("failed to notify delivery completion", "error", err, "delivery_number", event.DeliveryNumber)
			}
		}()
	case dvo.StatusFailed:
		event := subscription.DeliveryIssueEvent{
			SubscriptionSID: sub.SID(),
			DeliveryNumber:  record.DeliveryNumber(),
			Date:            record.Date(),
			Shift:           record.Shift(),
			Status:          target.String(),
			Note:            note,
			OccurredAt:      biztime.NowUTC(),
		}
		go func() {
			if err := uc.sink.NotifyDeliveryIssue(context.Background(), event); err != nil {
				uc.logger.Warnw("failed to notify delivery issue", "error", err, "delivery_number", event.DeliveryNumber)
			}
		}()
	}
}
