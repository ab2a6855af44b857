package subscription

import "fmt"

// MealCountLedger tracks the meal counts of a fixed-quantity plan. The
// invariant Delivered + Skipped + Remaining == Total must hold after every
// mutation; mutations that would break it are rejected before they are
// applied.
//
// Skip requests do not touch the ledger. The decrement happens only when a
// tracking record actually transitions to skipped; a skip entry that is never
// reconciled into a tracking record never decrements the ledger. This
// decoupling is deliberate and keeps un-skips from double counting.
type MealCountLedger struct {
	Total     int `json:"total"`
	Delivered int `json:"delivered"`
	Skipped   int `json:"skipped"`
	Remaining int `json:"remaining"`
}

// LedgerDelta is the increment applied to a persisted ledger as a single
// atomic write. Total never changes after creation.
type LedgerDelta struct {
	Delivered int
	Skipped   int
	Remaining int
}

// IsZero reports whether the delta would change nothing.
func (d LedgerDelta) IsZero() bool {
	return d.Delivered == 0 && d.Skipped == 0 && d.Remaining == 0
}

// NewMealCountLedger creates a ledger for a plan of total meals.
func NewMealCountLedger(total int) (MealCountLedger, error) {
	if total <= 0 {
		return MealCountLedger{}, fmt.Errorf("%w: total meal count must be positive, got %d", ErrInvalidStartState, total)
	}
	return MealCountLedger{Total: total, Remaining: total}, nil
}

// Validate checks the ledger invariant and the non-negativity of every count.
func (l MealCountLedger) Validate() error {
	if l.Delivered < 0 || l.Skipped < 0 || l.Remaining < 0 || l.Total <= 0 {
		return fmt.Errorf("%w: negative count in {total=%d delivered=%d skipped=%d remaining=%d}",
			ErrLedgerInvariant, l.Total, l.Delivered, l.Skipped, l.Remaining)
	}
	if l.Delivered+l.Skipped+l.Remaining != l.Total {
		return fmt.Errorf("%w: delivered=%d + skipped=%d + remaining=%d != total=%d",
			ErrLedgerInvariant, l.Delivered, l.Skipped, l.Remaining, l.Total)
	}
	return nil
}

// Exhausted reports whether no meals remain; the subscription auto-expires
// at this point regardless of calendar date.
func (l MealCountLedger) Exhausted() bool {
	return l.Remaining == 0
}

// MarkDelivered records a delivery. alreadyDelivered is the prior state of
// the occurrence's tracking record; repeating the call for an occurrence that
// was already delivered is a no-op, not an error.
func (l MealCountLedger) MarkDelivered(alreadyDelivered bool) (MealCountLedger, LedgerDelta, error) {
	if alreadyDelivered {
		return l, LedgerDelta{}, nil
	}
	return l.apply(LedgerDelta{Delivered: 1, Remaining: -1})
}

// MarkSkipped records a skip at the moment the tracking record transitions
// to skipped, not when the skip entry is requested.
func (l MealCountLedger) MarkSkipped(alreadySkipped bool) (MealCountLedger, LedgerDelta, error) {
	if alreadySkipped {
		return l, LedgerDelta{}, nil
	}
	return l.apply(LedgerDelta{Skipped: 1, Remaining: -1})
}

// ReverseSkip undoes a prior skip decrement when a skipped occurrence is
// later fulfilled, e.g. an admin reversing a skip before applying the new
// terminal state.
func (l MealCountLedger) ReverseSkip() (MealCountLedger, LedgerDelta, error) {
	return l.apply(LedgerDelta{Skipped: -1, Remaining: 1})
}

// apply validates the candidate state before committing it, so a violating
// mutation never escapes.
func (l MealCountLedger) apply(delta LedgerDelta) (MealCountLedger, LedgerDelta, error) {
	next := MealCountLedger{
		Total:     l.Total,
		Delivered: l.Delivered + delta.Delivered,
		Skipped:   l.Skipped + delta.Skipped,
		Remaining: l.Remaining + delta.Remaining,
	}
	if err := next.Validate(); err != nil {
		return l, LedgerDelta{}, err
	}
	return next, delta, nil
}
