package scheduler

import (
	"context"
	"sync"
	"time"

	subscriptionUsecases "github.com/tastyaana/tiffin/internal/application/subscription/usecases"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

// SubscriptionScheduler sweeps exhausted subscriptions into the expired
// state. Status transitions on delivery already expire the common case; the
// sweep catches ledgers drained through out-of-band corrections.
type SubscriptionScheduler struct {
	expireUC *subscriptionUsecases.ExpireSubscriptionsUseCase
	logger   logger.Interface
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	interval time.Duration
}

// NewSubscriptionScheduler creates a new SubscriptionScheduler
func NewSubscriptionScheduler(
	expireUC *subscriptionUsecases.ExpireSubscriptionsUseCase,
	logger logger.Interface,
) *SubscriptionScheduler {
	return &SubscriptionScheduler{
		expireUC: expireUC,
		logger:   logger,
		stopChan: make(chan struct{}),
		interval: 24 * time.Hour,
	}
}

// Start starts the scheduler
func (s *SubscriptionScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting subscription expiry scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully
func (s *SubscriptionScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping subscription expiry scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("subscription expiry scheduler stopped")
	})
}

func (s *SubscriptionScheduler) runLoop(ctx context.Context) {
	// Run immediately on startup to clear any backlog.
	s.sweepExhausted(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("subscription expiry scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweepExhausted(ctx)
		}
	}
}

func (s *SubscriptionScheduler) sweepExhausted(ctx context.Context) {
	startTime := time.Now()

	result, err := s.expireUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("failed to sweep exhausted subscriptions",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.Expired > 0 || result.Failed > 0 {
		s.logger.Infow("exhausted subscriptions swept",
			"expired", result.Expired,
			"failed", result.Failed,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("no exhausted subscriptions to sweep",
			"duration", time.Since(startTime),
		)
	}
}
