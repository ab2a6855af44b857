package subscription

import (
	"context"

	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

// Repository persists subscription aggregates. UpdateLedger is an atomic
// single-row increment, never read-modify-write; everything else follows the
// usual load/mutate/save cycle with optimistic versioning.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	GetBySID(ctx context.Context, sid string) (*Subscription, error)
	GetByUserID(ctx context.Context, userID uint) ([]*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error

	// FindActive lists active subscriptions matching the filter, in stable
	// insertion (creation) order.
	FindActive(ctx context.Context, filter Filter) ([]*Subscription, error)

	// FindActiveForDate lists active subscriptions whose nominal schedule
	// covers the given civil date.
	FindActiveForDate(ctx context.Context, date biztime.CivilDate) ([]*Subscription, error)

	// FindExhausted lists active subscriptions whose remaining count
	// reached zero so they can be expired.
	FindExhausted(ctx context.Context) ([]*Subscription, error)

	// UpdateLedger applies the delta as an atomic increment on the ledger
	// columns. The write must fail, leaving the row untouched, if any count
	// would go negative.
	UpdateLedger(ctx context.Context, id uint, delta LedgerDelta) error
}

// Filter narrows FindActive. Zero values mean "no constraint".
type Filter struct {
	UserID    *uint
	SellerSID *string
	PlanSID   *string
	Status    *vo.SubscriptionStatus
}
