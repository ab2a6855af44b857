package subscription

import (
	"time"

	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

// DeliveryCompletedEvent is emitted when a tracking record reaches delivered.
type DeliveryCompletedEvent struct {
	SubscriptionSID string
	DeliveryNumber  string
	Date            biztime.CivilDate
	Shift           vo.Shift
	MealsRemaining  int
	OccurredAt      time.Time
}

// DeliveryIssueEvent is emitted when a delivery fails or is reported.
type DeliveryIssueEvent struct {
	SubscriptionSID string
	DeliveryNumber  string
	Date            biztime.CivilDate
	Shift           vo.Shift
	Status          string
	Note            string
	OccurredAt      time.Time
}

// SubscriptionExpiredEvent is emitted when the meal count is exhausted and
// the subscription auto-terminates.
type SubscriptionExpiredEvent struct {
	SubscriptionSID string
	UserID          uint
	OccurredAt      time.Time
}
