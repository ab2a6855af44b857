package valueobjects

type SubscriptionStatus string

const (
	// StatusPendingPayment is the state a subscription is created in at
	// checkout, before the payment gateway confirms.
	StatusPendingPayment SubscriptionStatus = "pending_payment"
	StatusActive         SubscriptionStatus = "active"
	StatusCancelled      SubscriptionStatus = "cancelled"
	// StatusExpired is reached when the meal count is exhausted, regardless
	// of calendar date.
	StatusExpired SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// CanDeliver reports whether deliveries may still be reconciled for this status.
func (s SubscriptionStatus) CanDeliver() bool {
	return s == StatusActive
}

func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	transitions := map[SubscriptionStatus][]SubscriptionStatus{
		StatusPendingPayment: {StatusActive, StatusCancelled, StatusExpired},
		StatusActive:         {StatusCancelled, StatusExpired},
		StatusCancelled:      {},
		StatusExpired:        {},
	}

	allowed, exists := transitions[s]
	if !exists {
		return false
	}

	for _, allowedStatus := range allowed {
		if allowedStatus == target {
			return true
		}
	}
	return false
}

var ValidStatuses = map[SubscriptionStatus]bool{
	StatusPendingPayment: true,
	StatusActive:         true,
	StatusCancelled:      true,
	StatusExpired:        true,
}
