package usecases

import (
	"context"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
)

// ExpiryNotifier tells the customer their fixed-quantity plan ran out.
// Implementations must not block the expiry sweep; failures are logged and
// swallowed.
type ExpiryNotifier interface {
	NotifySubscriptionExpired(ctx context.Context, event subscription.SubscriptionExpiredEvent) error
}
