package scheduler

import (
	"context"
	"sync"
	"time"

	deliveryUsecases "github.com/tastyaana/tiffin/internal/application/delivery/usecases"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

// DeliveryScheduler periodically materializes tracking records for the
// current civil date so the kitchen and driver tooling see today's rows even
// before anyone opens the delivery list.
type DeliveryScheduler struct {
	reconcileUC *deliveryUsecases.ReconcileZoneUseCase
	logger      logger.Interface
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	interval    time.Duration
}

// NewDeliveryScheduler creates a new DeliveryScheduler
func NewDeliveryScheduler(
	reconcileUC *deliveryUsecases.ReconcileZoneUseCase,
	interval time.Duration,
	logger logger.Interface,
) *DeliveryScheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &DeliveryScheduler{
		reconcileUC: reconcileUC,
		logger:      logger,
		stopChan:    make(chan struct{}),
		interval:    interval,
	}
}

// Start starts the scheduler
func (s *DeliveryScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting delivery reconciliation scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully
func (s *DeliveryScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping delivery reconciliation scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("delivery reconciliation scheduler stopped")
	})
}

func (s *DeliveryScheduler) runLoop(ctx context.Context) {
	// Run immediately on startup so a restart mid-day backfills today.
	s.reconcileToday(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("delivery reconciliation scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.reconcileToday(ctx)
		}
	}
}

func (s *DeliveryScheduler) reconcileToday(ctx context.Context) {
	today := biztime.Today()
	startTime := time.Now()

	result, err := s.reconcileUC.Execute(ctx, deliveryUsecases.ReconcileZoneCommand{
		Date: today.String(),
	})
	if err != nil {
		s.logger.Errorw("failed to reconcile today's deliveries",
			"date", today.String(),
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.Created > 0 {
		s.logger.Infow("delivery reconciliation completed",
			"date", today.String(),
			"subscriptions", result.Subscriptions,
			"created", result.Created,
			"existing", result.Existing,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("delivery reconciliation found nothing new",
			"date", today.String(),
			"subscriptions", result.Subscriptions,
			"duration", time.Since(startTime),
		)
	}
}
