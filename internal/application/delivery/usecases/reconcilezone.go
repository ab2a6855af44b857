package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/tastyaana/tiffin/internal/domain/delivery"
	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type ReconcileZoneCommand struct {
	Date string
	// SellerSID optionally narrows the pass to one seller's subscriptions.
	SellerSID string
}

type ReconcileZoneResult struct {
	Subscriptions int
	Created       int
	Existing      int
}

// ReconcileZoneUseCase materializes tracking records for every in-scope
// occurrence of a date ahead of the dashboards reading them. Each upsert is
// atomic, so a cancelled pass leaves only fully-written records and rerunning
// it simply observes them.
type ReconcileZoneUseCase struct {
	subscriptionRepo subscription.Repository
	planCatalog      subscription.PlanCatalog
	materializer     materializer
	logger           logger.Interface
}

func NewReconcileZoneUseCase(
	subscriptionRepo subscription.Repository,
	trackingRepo delivery.TrackingRecordRepository,
	planCatalog subscription.PlanCatalog,
	morningETAOffset, eveningETAOffset time.Duration,
	logger logger.Interface,
) *ReconcileZoneUseCase {
	return &ReconcileZoneUseCase{
		subscriptionRepo: subscriptionRepo,
		planCatalog:      planCatalog,
		materializer:     newMaterializer(trackingRepo, morningETAOffset, eveningETAOffset, logger),
		logger:           logger,
	}
}

func (uc *ReconcileZoneUseCase) Execute(ctx context.Context, cmd ReconcileZoneCommand) (*ReconcileZoneResult, error) {
	date, err := biztime.ParseCivilDate(cmd.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	subs, err := uc.subscriptionRepo.FindActiveForDate(ctx, date)
	if err != nil {
		uc.logger.Errorw("failed to find subscriptions for date", "error", err, "date", cmd.Date)
		return nil, fmt.Errorf("failed to find subscriptions: %w", err)
	}

	result := &ReconcileZoneResult{}
	for _, sub := range subs {
		// Cooperative cancellation between subscriptions; records already
		// upserted stay.
		if err := ctx.Err(); err != nil {
			uc.logger.Warnw("reconciliation pass cancelled", "date", cmd.Date, "done", result.Subscriptions, "total", len(subs))
			return result, err
		}
		if cmd.SellerSID != "" && sub.SellerSID() != cmd.SellerSID {
			continue
		}

		planDefault := vo.ShiftEvening
		if plan, err := uc.planCatalog.GetBySID(ctx, sub.PlanSID()); err == nil && plan != nil {
			planDefault = plan.DefaultShift()
		}

		for _, shift := range sub.ApplicableShifts(planDefault) {
			if sub.OccurrenceAt(date, shift) == nil {
				continue
			}
			_, created, err := uc.materializer.ensureRecord(ctx, sub, date, shift)
			if err != nil {
				uc.logger.Errorw("failed to materialize during reconciliation", "error", err, "subscription_sid", sub.SID(), "date", cmd.Date, "shift", shift)
				return result, err
			}
			if created {
				result.Created++
			} else {
				result.Existing++
			}
		}
		result.Subscriptions++
	}

	uc.logger.Infow("reconciliation pass finished",
		"date", cmd.Date,
		"subscriptions", result.Subscriptions,
		"created", result.Created,
		"existing", result.Existing,
	)
	return result, nil
}
