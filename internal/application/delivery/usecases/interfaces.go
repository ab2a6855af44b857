package usecases

import (
	"context"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
)

// NotificationSink receives delivery outcome events. Implementations are
// fire-and-forget: the status flow never waits on them and never fails
// because of them.
type NotificationSink interface {
	NotifyDeliveryCompleted(ctx context.Context, event subscription.DeliveryCompletedEvent) error
	NotifyDeliveryIssue(ctx context.Context, event subscription.DeliveryIssueEvent) error
}
