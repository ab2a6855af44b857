package valueobjects

// DeliveryStatus is the persisted state of one tracking record. delivered is
// terminal; an overlay hint never overrides it.
type DeliveryStatus string

const (
	StatusPending    DeliveryStatus = "pending"
	StatusAssigned   DeliveryStatus = "assigned"
	StatusPicked     DeliveryStatus = "picked"
	StatusDelivered  DeliveryStatus = "delivered"
	StatusSkipped    DeliveryStatus = "skipped"
	StatusFailed     DeliveryStatus = "failed"
	StatusCustomized DeliveryStatus = "customized"
	StatusReplaced   DeliveryStatus = "replaced"
)

func (s DeliveryStatus) String() string {
	return string(s)
}

// Terminal reports whether no further transition is allowed.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusDelivered
}

func (s DeliveryStatus) CanTransitionTo(target DeliveryStatus) bool {
	if s == target {
		return false
	}
	transitions := map[DeliveryStatus][]DeliveryStatus{
		StatusPending:    {StatusAssigned, StatusPicked, StatusDelivered, StatusSkipped, StatusFailed, StatusCustomized, StatusReplaced},
		StatusAssigned:   {StatusPicked, StatusDelivered, StatusSkipped, StatusFailed},
		StatusPicked:     {StatusDelivered, StatusFailed},
		StatusDelivered:  {},
		// A skipped occurrence may be reversed back into the flow.
		StatusSkipped:    {StatusPending, StatusAssigned, StatusPicked, StatusDelivered},
		StatusFailed:     {StatusAssigned, StatusPicked, StatusDelivered, StatusSkipped},
		StatusCustomized: {StatusAssigned, StatusPicked, StatusDelivered, StatusSkipped, StatusFailed},
		StatusReplaced:   {StatusAssigned, StatusPicked, StatusDelivered, StatusSkipped, StatusFailed},
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

var ValidStatuses = map[DeliveryStatus]bool{
	StatusPending:    true,
	StatusAssigned:   true,
	StatusPicked:     true,
	StatusDelivered:  true,
	StatusSkipped:    true,
	StatusFailed:     true,
	StatusCustomized: true,
	StatusReplaced:   true,
}
