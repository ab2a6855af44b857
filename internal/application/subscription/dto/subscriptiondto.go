package dto

import (
	"time"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
)

// SubscriptionDTO is the transport shape of a subscription aggregate.
type SubscriptionDTO struct {
	SID        string  `json:"sid"`
	UserID     uint    `json:"user_id"`
	SellerSID  string  `json:"seller_sid"`
	PlanSID    string  `json:"plan_sid"`
	Status     string  `json:"status"`
	TotalMeals int     `json:"total_meals"`
	StartDate  string  `json:"start_date"`
	StartShift string  `json:"start_shift"`
	Shift      *string `json:"shift,omitempty"`

	Timing   subscription.DeliveryTiming `json:"timing"`
	Schedule []subscription.Occurrence   `json:"schedule,omitempty"`
	Ledger   LedgerDTO                   `json:"ledger"`

	Skips          []subscription.SkipEntry          `json:"skips,omitempty"`
	Replacements   []subscription.ReplacementEntry   `json:"replacements,omitempty"`
	Customizations []subscription.CustomizationEntry `json:"customizations,omitempty"`

	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LedgerDTO exposes the meal count ledger.
type LedgerDTO struct {
	Total     int `json:"total"`
	Delivered int `json:"delivered"`
	Skipped   int `json:"skipped"`
	Remaining int `json:"remaining"`
}

// FromSubscription maps the aggregate to its transport shape. includeSchedule
// controls whether the full occurrence list rides along; list endpoints leave
// it out to keep payloads small.
func FromSubscription(sub *subscription.Subscription, includeSchedule bool) *SubscriptionDTO {
	if sub == nil {
		return nil
	}

	var shift *string
	if s := sub.Shift(); s != nil {
		v := s.String()
		shift = &v
	}

	dto := &SubscriptionDTO{
		SID:        sub.SID(),
		UserID:     sub.UserID(),
		SellerSID:  sub.SellerSID(),
		PlanSID:    sub.PlanSID(),
		Status:     sub.Status().String(),
		TotalMeals: sub.TotalMeals(),
		StartDate:  sub.StartDate().String(),
		StartShift: sub.StartShift().String(),
		Shift:      shift,
		Timing:     sub.Timing(),
		Ledger: LedgerDTO{
			Total:     sub.Ledger().Total,
			Delivered: sub.Ledger().Delivered,
			Skipped:   sub.Ledger().Skipped,
			Remaining: sub.Ledger().Remaining,
		},
		Skips:          sub.Skips(),
		Replacements:   sub.Replacements(),
		Customizations: sub.Customizations(),
		CancelledAt:    sub.CancelledAt(),
		CancelReason:   sub.CancelReason(),
		CreatedAt:      sub.CreatedAt(),
		UpdatedAt:      sub.UpdatedAt(),
	}

	if includeSchedule {
		dto.Schedule = sub.Schedule()
	}

	return dto
}

// FromSubscriptions maps a list without schedules.
func FromSubscriptions(subs []*subscription.Subscription) []*SubscriptionDTO {
	dtos := make([]*SubscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		dtos = append(dtos, FromSubscription(sub, false))
	}
	return dtos
}
