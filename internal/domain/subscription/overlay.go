package subscription

import (
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

// Overlays adjust individual occurrences of the nominal schedule without
// touching it. They are owned by the subscription and stored alongside it;
// resolution order lives in OverlayResolver.

// SkipEntry records a request to skip the delivery at (date, shift).
// Recording a skip does NOT decrement the meal ledger; that happens only if
// a tracking record later reaches the skipped status.
type SkipEntry struct {
	Date      biztime.CivilDate `json:"date"`
	Shift     vo.Shift          `json:"shift"`
	Reason    string            `json:"reason"`
	SkippedBy string            `json:"skipped_by"`
	SkippedAt time.Time         `json:"skipped_at"`
}

// AppliesTo reports whether the entry targets the given occurrence slot.
func (e SkipEntry) AppliesTo(date biztime.CivilDate, shift vo.Shift) bool {
	return e.Date.Equal(date) && e.Shift == shift
}

// ReplacementEntry swaps the plan's meal for another plan's meal on one
// occurrence. It takes effect only when there is nothing left to pay:
// the replacement is cheaper or equal, or the difference is settled.
type ReplacementEntry struct {
	Date               biztime.CivilDate `json:"date"`
	Shift              vo.Shift          `json:"shift"`
	OriginalPlanSID    string            `json:"original_plan_sid"`
	ReplacementPlanSID string            `json:"replacement_plan_sid"`
	PriceDifference    decimal.Decimal   `json:"price_difference"`
	PaymentStatus      vo.PaymentStatus  `json:"payment_status"`
	RequestedAt        time.Time         `json:"requested_at"`
}

func (e ReplacementEntry) AppliesTo(date biztime.CivilDate, shift vo.Shift) bool {
	return e.Date.Equal(date) && e.Shift == shift
}

// PaymentValid reports whether the replacement may take effect based on the
// recorded state alone. The PaymentStatusOracle may override this with
// fresher gateway knowledge.
func (e ReplacementEntry) PaymentValid() bool {
	return e.PriceDifference.Sign() <= 0 || e.PaymentStatus.Settled()
}

// CustomizationAddon is a priced extra attached to a customization.
type CustomizationAddon struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CustomizationEntry reshapes the meal at (date, shift): dietary changes,
// spice level, addons and extra items. A permanent customization applies to
// every matching occurrence from its recorded date on; an exact-date entry
// always wins over a permanent one.
type CustomizationEntry struct {
	Date               biztime.CivilDate    `json:"date"`
	Shift              vo.Shift             `json:"shift"`
	Type               vo.CustomizationType `json:"type"`
	ReplacementMealSID string               `json:"replacement_meal_sid,omitempty"`
	DietaryPreference  string               `json:"dietary_preference,omitempty"`
	SpiceLevel         string               `json:"spice_level,omitempty"`
	Preferences        []string             `json:"preferences,omitempty"`
	Addons             []CustomizationAddon `json:"addons,omitempty"`
	ExtraItems         []CustomizationAddon `json:"extra_items,omitempty"`
	TotalPayablePrice  decimal.Decimal      `json:"total_payable_price"`
	PaymentStatus      vo.PaymentStatus     `json:"payment_status"`
	// IsAvailable=false means the customer customized the meal and later
	// decided not to receive it; it outranks every other overlay.
	IsAvailable bool      `json:"is_available"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// AppliesTo matches exact-date entries on their date and permanent entries on
// every same-shift occurrence on or after their date.
func (e CustomizationEntry) AppliesTo(date biztime.CivilDate, shift vo.Shift) bool {
	if e.Shift != shift {
		return false
	}
	if e.Type == vo.CustomizationPermanent {
		return !date.Before(e.Date)
	}
	return e.Date.Equal(date)
}

// PaymentValid reports whether the customization may take effect based on
// recorded state alone.
func (e CustomizationEntry) PaymentValid() bool {
	return e.TotalPayablePrice.Sign() <= 0 || e.PaymentStatus.Settled()
}
