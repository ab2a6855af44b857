package subscription

import (
	"context"
	"fmt"
	"strings"

	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

// StatusHint is the overlay resolution outcome for one occurrence. It is a
// hint, not persisted state: the reconciler merges it with the tracking
// record's status, and a persisted delivered always wins.
type StatusHint string

const (
	HintStandard   StatusHint = "standard"
	HintSkipped    StatusHint = "skipped"
	HintReplaced   StatusHint = "replaced"
	HintCustomized StatusHint = "customized"
)

// EffectiveMeal is what downstream consumers should show for an occurrence
// once overlays are resolved.
type EffectiveMeal struct {
	SourceMealSID        string
	DisplayName          string
	StatusHint           StatusHint
	SkipReason           string
	CustomizationSummary string
}

// PaymentStatusOracle answers whether a paid overlay is payment-valid. It
// abstracts the payment gateway; a payment-invalid overlay is a resolution
// signal (fall through to the next tier), never an error.
type PaymentStatusOracle interface {
	ReplacementPaymentValid(ctx context.Context, entry ReplacementEntry) bool
	CustomizationPaymentValid(ctx context.Context, entry CustomizationEntry) bool
}

// RecordedPaymentOracle validates overlays from their recorded payment state
// alone. It is the default oracle when no gateway-backed one is wired.
type RecordedPaymentOracle struct{}

func (RecordedPaymentOracle) ReplacementPaymentValid(_ context.Context, entry ReplacementEntry) bool {
	return entry.PaymentValid()
}

func (RecordedPaymentOracle) CustomizationPaymentValid(_ context.Context, entry CustomizationEntry) bool {
	return entry.PaymentValid()
}

// AvailabilityChecker consults the per-seller availability toggles that gate
// meal visibility. It is read-only from the core's point of view.
type AvailabilityChecker interface {
	PlanAvailable(ctx context.Context, planSID string) bool
}

// AlwaysAvailable is the default checker when seller toggles are not wired.
type AlwaysAvailable struct{}

func (AlwaysAvailable) PlanAvailable(context.Context, string) bool { return true }

// OverlayResolver computes the effective meal at (date, shift) by walking the
// overlay precedence chain. The ordering is load-bearing: a customization
// explicitly marked unavailable must beat a plain replacement, because a
// customer can customize and later decide to skip that customization.
type OverlayResolver struct {
	oracle       PaymentStatusOracle
	availability AvailabilityChecker
}

func NewOverlayResolver(oracle PaymentStatusOracle, availability AvailabilityChecker) *OverlayResolver {
	if oracle == nil {
		oracle = RecordedPaymentOracle{}
	}
	if availability == nil {
		availability = AlwaysAvailable{}
	}
	return &OverlayResolver{oracle: oracle, availability: availability}
}

// Resolve walks the precedence chain, first match wins:
//  1. payment-valid customization with IsAvailable=false -> skipped
//  2. skip entry -> skipped, reason carried through
//  3. payment-valid replacement -> replaced
//  4. payment-valid customization -> customized
//  5. otherwise -> standard (subject to the seller availability toggle)
func (r *OverlayResolver) Resolve(ctx context.Context, sub *Subscription, date biztime.CivilDate, shift vo.Shift) EffectiveMeal {
	custom := sub.CustomizationAt(date, shift)
	customValid := custom != nil && r.oracle.CustomizationPaymentValid(ctx, *custom)

	if customValid && !custom.IsAvailable {
		return EffectiveMeal{
			SourceMealSID: sub.PlanSID(),
			StatusHint:    HintSkipped,
			SkipReason:    "customized meal marked unavailable",
		}
	}

	if skip := sub.SkipAt(date, shift); skip != nil {
		return EffectiveMeal{
			SourceMealSID: sub.PlanSID(),
			StatusHint:    HintSkipped,
			SkipReason:    skip.Reason,
		}
	}

	if repl := sub.ReplacementAt(date, shift); repl != nil && r.oracle.ReplacementPaymentValid(ctx, *repl) {
		return EffectiveMeal{
			SourceMealSID: repl.ReplacementPlanSID,
			StatusHint:    HintReplaced,
		}
	}

	if customValid {
		source := sub.PlanSID()
		if custom.ReplacementMealSID != "" {
			source = custom.ReplacementMealSID
		}
		return EffectiveMeal{
			SourceMealSID:        source,
			StatusHint:           HintCustomized,
			CustomizationSummary: SummarizeCustomization(*custom),
		}
	}

	if !r.availability.PlanAvailable(ctx, sub.PlanSID()) {
		return EffectiveMeal{
			SourceMealSID: sub.PlanSID(),
			StatusHint:    HintSkipped,
			SkipReason:    "meal unavailable from seller",
		}
	}

	return EffectiveMeal{
		SourceMealSID: sub.PlanSID(),
		StatusHint:    HintStandard,
	}
}

// SummarizeCustomization renders a human-readable one-liner of the
// customization. Only non-default parts appear.
func SummarizeCustomization(e CustomizationEntry) string {
	var parts []string

	if e.DietaryPreference != "" {
		parts = append(parts, "diet: "+e.DietaryPreference)
	}
	if e.SpiceLevel != "" {
		parts = append(parts, "spice: "+e.SpiceLevel)
	}
	if len(e.Preferences) > 0 {
		parts = append(parts, "preferences: "+strings.Join(e.Preferences, ", "))
	}
	if len(e.Addons) > 0 {
		names := make([]string, 0, len(e.Addons))
		for _, a := range e.Addons {
			if a.Quantity > 1 {
				names = append(names, fmt.Sprintf("%s x%d", a.Name, a.Quantity))
			} else {
				names = append(names, a.Name)
			}
		}
		parts = append(parts, "addons: "+strings.Join(names, ", "))
	}
	if len(e.ExtraItems) > 0 {
		names := make([]string, 0, len(e.ExtraItems))
		for _, x := range e.ExtraItems {
			if x.Quantity > 1 {
				names = append(names, fmt.Sprintf("%s x%d", x.Name, x.Quantity))
			} else {
				names = append(names, x.Name)
			}
		}
		parts = append(parts, "extras: "+strings.Join(names, ", "))
	}
	if e.TotalPayablePrice.Sign() > 0 {
		parts = append(parts, "extra payable: ₹"+e.TotalPayablePrice.StringFixed(2))
	}

	return strings.Join(parts, "; ")
}
