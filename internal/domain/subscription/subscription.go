package subscription

import (
	"fmt"
	"time"

	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

// DeliveryTiming is the per-shift delivery-day mask for subscriptions that do
// not pin a single shift.
type DeliveryTiming struct {
	Morning bool `json:"morning"`
	Evening bool `json:"evening"`
}

// Subscription is the aggregate root of a fixed-quantity meal plan. It owns
// the nominal schedule, the meal-count ledger and all overlay collections.
type Subscription struct {
	id        uint
	sid       string
	userID    uint
	sellerSID string
	planSID   string

	status     vo.SubscriptionStatus
	totalMeals int
	startDate  biztime.CivilDate
	startShift vo.Shift

	// shift pins the subscription to a single shift; when nil the
	// deliveryTiming mask decides, and when that is empty too the plan
	// default applies.
	shift          *vo.Shift
	deliveryTiming DeliveryTiming

	schedule       []Occurrence
	ledger         MealCountLedger
	skips          []SkipEntry
	replacements   []ReplacementEntry
	customizations []CustomizationEntry

	cancelledAt  *time.Time
	cancelReason *string
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

// NewSubscriptionParams carries everything needed at checkout.
type NewSubscriptionParams struct {
	SID            string
	UserID         uint
	SellerSID      string
	PlanSID        string
	TotalMeals     int
	StartDate      biztime.CivilDate
	StartShift     vo.Shift
	Shift          *vo.Shift
	DeliveryTiming DeliveryTiming
}

// NewSubscription creates a pending-payment subscription and generates its
// nominal schedule once. The schedule is immutable afterwards.
func NewSubscription(p NewSubscriptionParams) (*Subscription, error) {
	if p.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if p.PlanSID == "" {
		return nil, fmt.Errorf("plan SID is required")
	}
	if p.SID == "" {
		return nil, fmt.Errorf("subscription SID is required")
	}

	schedule, err := GenerateSchedule(p.StartDate, p.StartShift, p.TotalMeals)
	if err != nil {
		return nil, err
	}
	ledger, err := NewMealCountLedger(p.TotalMeals)
	if err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	return &Subscription{
		sid:            p.SID,
		userID:         p.UserID,
		sellerSID:      p.SellerSID,
		planSID:        p.PlanSID,
		status:         vo.StatusPendingPayment,
		totalMeals:     p.TotalMeals,
		startDate:      p.StartDate,
		startShift:     p.StartShift,
		shift:          p.Shift,
		deliveryTiming: p.DeliveryTiming,
		schedule:       schedule,
		ledger:         ledger,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructParams rebuilds a subscription from persistence.
type ReconstructParams struct {
	ID             uint
	SID            string
	UserID         uint
	SellerSID      string
	PlanSID        string
	Status         vo.SubscriptionStatus
	TotalMeals     int
	StartDate      biztime.CivilDate
	StartShift     vo.Shift
	Shift          *vo.Shift
	DeliveryTiming DeliveryTiming
	Schedule       []Occurrence
	Ledger         MealCountLedger
	Skips          []SkipEntry
	Replacements   []ReplacementEntry
	Customizations []CustomizationEntry
	CancelledAt    *time.Time
	CancelReason   *string
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReconstructSubscription reconstructs a subscription from persistence.
func ReconstructSubscription(p ReconstructParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if p.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !vo.ValidStatuses[p.Status] {
		return nil, fmt.Errorf("invalid subscription status: %s", p.Status)
	}
	if err := p.Ledger.Validate(); err != nil {
		return nil, err
	}

	return &Subscription{
		id:             p.ID,
		sid:            p.SID,
		userID:         p.UserID,
		sellerSID:      p.SellerSID,
		planSID:        p.PlanSID,
		status:         p.Status,
		totalMeals:     p.TotalMeals,
		startDate:      p.StartDate,
		startShift:     p.StartShift,
		shift:          p.Shift,
		deliveryTiming: p.DeliveryTiming,
		schedule:       p.Schedule,
		ledger:         p.Ledger,
		skips:          p.Skips,
		replacements:   p.Replacements,
		customizations: p.Customizations,
		cancelledAt:    p.CancelledAt,
		cancelReason:   p.CancelReason,
		version:        p.Version,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}, nil
}

func (s *Subscription) ID() uint                         { return s.id }
func (s *Subscription) SID() string                      { return s.sid }
func (s *Subscription) UserID() uint                     { return s.userID }
func (s *Subscription) SellerSID() string                { return s.sellerSID }
func (s *Subscription) PlanSID() string                  { return s.planSID }
func (s *Subscription) Status() vo.SubscriptionStatus    { return s.status }
func (s *Subscription) TotalMeals() int                  { return s.totalMeals }
func (s *Subscription) StartDate() biztime.CivilDate     { return s.startDate }
func (s *Subscription) StartShift() vo.Shift             { return s.startShift }
func (s *Subscription) Shift() *vo.Shift                 { return s.shift }
func (s *Subscription) Timing() DeliveryTiming           { return s.deliveryTiming }
func (s *Subscription) Schedule() []Occurrence           { return s.schedule }
func (s *Subscription) Ledger() MealCountLedger          { return s.ledger }
func (s *Subscription) Skips() []SkipEntry               { return s.skips }
func (s *Subscription) Replacements() []ReplacementEntry { return s.replacements }
func (s *Subscription) Customizations() []CustomizationEntry {
	return s.customizations
}
func (s *Subscription) CancelledAt() *time.Time { return s.cancelledAt }
func (s *Subscription) CancelReason() *string   { return s.cancelReason }
func (s *Subscription) Version() int            { return s.version }
func (s *Subscription) CreatedAt() time.Time    { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time    { return s.updatedAt }

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

func (s *Subscription) touch() {
	s.updatedAt = biztime.NowUTC()
	s.version++
}

// Activate moves a pending-payment subscription to active once the payment
// gateway confirms.
func (s *Subscription) Activate() error {
	if s.status == vo.StatusActive {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusActive) {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}
	s.status = vo.StatusActive
	s.touch()
	return nil
}

// Cancel cancels a subscription with a reason.
func (s *Subscription) Cancel(reason string) error {
	if s.status == vo.StatusCancelled {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusCancelled) {
		return ErrInvalidTransition(s.status.String(), vo.StatusCancelled.String())
	}
	if reason == "" {
		return fmt.Errorf("cancel reason is required")
	}
	now := biztime.NowUTC()
	s.status = vo.StatusCancelled
	s.cancelledAt = &now
	s.cancelReason = &reason
	s.touch()
	return nil
}

// MarkExpired terminates the subscription once its meal count is exhausted.
func (s *Subscription) MarkExpired() error {
	if s.status == vo.StatusExpired {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusExpired) {
		return ErrInvalidTransition(s.status.String(), vo.StatusExpired.String())
	}
	s.status = vo.StatusExpired
	s.touch()
	return nil
}

// ApplyLedger commits a mutated ledger back onto the aggregate, re-checking
// the invariant so violations are rejected before persistence.
func (s *Subscription) ApplyLedger(next MealCountLedger) error {
	if next.Total != s.ledger.Total {
		return fmt.Errorf("%w: total changed from %d to %d", ErrLedgerInvariant, s.ledger.Total, next.Total)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	s.ledger = next
	s.touch()
	return nil
}

// ApplicableShifts resolves which shifts this subscription delivers on:
// the pinned shift if set, else the delivery-timing mask, else the plan
// default (evening). The result preserves morning-then-evening order.
func (s *Subscription) ApplicableShifts(planDefault vo.Shift) []vo.Shift {
	if s.shift != nil && s.shift.Valid() {
		return []vo.Shift{*s.shift}
	}
	var shifts []vo.Shift
	if s.deliveryTiming.Morning {
		shifts = append(shifts, vo.ShiftMorning)
	}
	if s.deliveryTiming.Evening {
		shifts = append(shifts, vo.ShiftEvening)
	}
	if len(shifts) > 0 {
		return shifts
	}
	if !planDefault.Valid() {
		planDefault = vo.ShiftEvening
	}
	return []vo.Shift{planDefault}
}

// OccurrenceAt returns the nominal occurrence at (date, shift), or nil.
func (s *Subscription) OccurrenceAt(date biztime.CivilDate, shift vo.Shift) *Occurrence {
	return FindOccurrence(s.schedule, date, shift)
}

// SkipAt returns the skip entry for (date, shift), or nil.
func (s *Subscription) SkipAt(date biztime.CivilDate, shift vo.Shift) *SkipEntry {
	for i := range s.skips {
		if s.skips[i].AppliesTo(date, shift) {
			return &s.skips[i]
		}
	}
	return nil
}

// ReplacementAt returns the replacement entry for (date, shift), or nil.
func (s *Subscription) ReplacementAt(date biztime.CivilDate, shift vo.Shift) *ReplacementEntry {
	for i := range s.replacements {
		if s.replacements[i].AppliesTo(date, shift) {
			return &s.replacements[i]
		}
	}
	return nil
}

// CustomizationAt returns the customization applying to (date, shift).
// Exact-date entries win over permanent ones; among entries of the same kind
// the most recently recorded wins.
func (s *Subscription) CustomizationAt(date biztime.CivilDate, shift vo.Shift) *CustomizationEntry {
	var exact, permanent *CustomizationEntry
	for i := range s.customizations {
		e := &s.customizations[i]
		if !e.AppliesTo(date, shift) {
			continue
		}
		if e.Type == vo.CustomizationPermanent {
			if permanent == nil || e.RecordedAt.After(permanent.RecordedAt) {
				permanent = e
			}
		} else {
			if exact == nil || e.RecordedAt.After(exact.RecordedAt) {
				exact = e
			}
		}
	}
	if exact != nil {
		return exact
	}
	return permanent
}

// RecordSkip validates that an occurrence exists at (date, shift) and records
// the skip. Re-skipping the same slot replaces the earlier entry. The meal
// ledger is untouched here.
func (s *Subscription) RecordSkip(entry SkipEntry) error {
	if !s.status.CanDeliver() {
		return ErrSubscriptionNotActive
	}
	if s.OccurrenceAt(entry.Date, entry.Shift) == nil {
		return ErrOccurrenceNotFound
	}
	for i := range s.skips {
		if s.skips[i].AppliesTo(entry.Date, entry.Shift) {
			s.skips[i] = entry
			s.touch()
			return nil
		}
	}
	s.skips = append(s.skips, entry)
	s.touch()
	return nil
}

// RemoveSkip reverses a skip request for (date, shift). Returns whether an
// entry was removed. The ledger correction, if any, is the caller's job.
func (s *Subscription) RemoveSkip(date biztime.CivilDate, shift vo.Shift) bool {
	for i := range s.skips {
		if s.skips[i].AppliesTo(date, shift) {
			s.skips = append(s.skips[:i], s.skips[i+1:]...)
			s.touch()
			return true
		}
	}
	return false
}

// RecordReplacement validates the slot and records a replacement entry,
// replacing any earlier one for the same slot.
func (s *Subscription) RecordReplacement(entry ReplacementEntry) error {
	if !s.status.CanDeliver() {
		return ErrSubscriptionNotActive
	}
	if s.OccurrenceAt(entry.Date, entry.Shift) == nil {
		return ErrOccurrenceNotFound
	}
	for i := range s.replacements {
		if s.replacements[i].AppliesTo(entry.Date, entry.Shift) {
			s.replacements[i] = entry
			s.touch()
			return nil
		}
	}
	s.replacements = append(s.replacements, entry)
	s.touch()
	return nil
}

// RecordCustomization validates the slot and appends a customization entry.
// Entries accumulate; CustomizationAt picks the effective one.
func (s *Subscription) RecordCustomization(entry CustomizationEntry) error {
	if !s.status.CanDeliver() {
		return ErrSubscriptionNotActive
	}
	if !entry.Type.Valid() {
		return fmt.Errorf("invalid customization type: %s", entry.Type)
	}
	if entry.Type == vo.CustomizationOneTime && s.OccurrenceAt(entry.Date, entry.Shift) == nil {
		return ErrOccurrenceNotFound
	}
	s.customizations = append(s.customizations, entry)
	s.touch()
	return nil
}

// LastOccurrenceDate returns the final scheduled delivery date, or the zero
// date for an empty schedule.
func (s *Subscription) LastOccurrenceDate() biztime.CivilDate {
	if len(s.schedule) == 0 {
		return biztime.CivilDate{}
	}
	return s.schedule[len(s.schedule)-1].Date
}

// Validate performs domain-level validation.
func (s *Subscription) Validate() error {
	if s.userID == 0 {
		return fmt.Errorf("user ID is required")
	}
	if s.planSID == "" {
		return fmt.Errorf("plan SID is required")
	}
	if !vo.ValidStatuses[s.status] {
		return fmt.Errorf("invalid status: %s", s.status)
	}
	if len(s.schedule) != s.totalMeals {
		return fmt.Errorf("schedule has %d occurrences for %d meals", len(s.schedule), s.totalMeals)
	}
	return s.ledger.Validate()
}
