package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrSubscriptionNotActive   = errors.New("subscription not active")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrInvalidStartState is returned by schedule generation when the meal
	// count or start shift cannot produce a schedule.
	ErrInvalidStartState  = errors.New("invalid schedule start state")
	ErrOccurrenceNotFound = errors.New("no delivery occurrence at that date and shift")
	ErrPlanNotFound       = errors.New("meal plan not found")
	// ErrLedgerInvariant is the domain-level signal for a meal-count ledger
	// that no longer satisfies delivered + skipped + remaining == total.
	ErrLedgerInvariant = errors.New("meal count ledger invariant violated")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
