package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tastyaana/tiffin/internal/domain/delivery"
	dvo "github.com/tastyaana/tiffin/internal/domain/delivery/valueobjects"
	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type GetDeliveriesQuery struct {
	Date  string
	Shift string // optional, narrows to one shift

	// Scoping filters. Zero values mean "no constraint".
	UserID    *uint
	SellerSID string
	PlanSID   string

	// Row filters, all evaluated per entry.
	Status    string
	DriverSID string
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	Search    string

	Page     int
	PageSize int
}

// DeliveryView is one reconciled delivery row as the admin, seller and driver
// dashboards consume it.
type DeliveryView struct {
	DeliveryNumber       string            `json:"delivery_number"`
	SubscriptionSID      string            `json:"subscription_sid"`
	UserID               uint              `json:"user_id"`
	SellerSID            string            `json:"seller_sid"`
	Date                 string            `json:"date"`
	Shift                vo.Shift          `json:"shift"`
	Status               dvo.DeliveryStatus `json:"status"`
	SourceMealSID        string            `json:"source_meal_sid"`
	MealName             string            `json:"meal_name"`
	Price                decimal.Decimal   `json:"price"`
	DriverSID            *string           `json:"driver_sid,omitempty"`
	ETA                  time.Time         `json:"eta"`
	SkipReason           string            `json:"skip_reason,omitempty"`
	CustomizationSummary string            `json:"customization_summary,omitempty"`
	IsSundaySpecial      bool              `json:"is_sunday_special"`
	DeliveredAt          *time.Time        `json:"delivered_at,omitempty"`
}

type GetDeliveriesResult struct {
	Deliveries []DeliveryView
	Total      int
	Page       int
	PageSize   int
}

// GetDeliveriesUseCase is the reconciling read path behind every delivery
// listing. It is deliberately non-pure: reading a date materializes tracking
// records for every in-scope occurrence that has none yet, exactly once per
// (subscription, date, shift) even under concurrent callers.
type GetDeliveriesUseCase struct {
	subscriptionRepo subscription.Repository
	planCatalog      subscription.PlanCatalog
	resolver         *subscription.OverlayResolver
	materializer     materializer
	logger           logger.Interface
}

func NewGetDeliveriesUseCase(
	subscriptionRepo subscription.Repository,
	trackingRepo delivery.TrackingRecordRepository,
	planCatalog subscription.PlanCatalog,
	resolver *subscription.OverlayResolver,
	morningETAOffset, eveningETAOffset time.Duration,
	logger logger.Interface,
) *GetDeliveriesUseCase {
	return &GetDeliveriesUseCase{
		subscriptionRepo: subscriptionRepo,
		planCatalog:      planCatalog,
		resolver:         resolver,
		materializer:     newMaterializer(trackingRepo, morningETAOffset, eveningETAOffset, logger),
		logger:           logger,
	}
}

func (uc *GetDeliveriesUseCase) Execute(ctx context.Context, q GetDeliveriesQuery) (*GetDeliveriesResult, error) {
	date, err := biztime.ParseCivilDate(q.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	var shiftFilter *vo.Shift
	if q.Shift != "" {
		shift, err := vo.ParseShift(q.Shift)
		if err != nil {
			return nil, fmt.Errorf("invalid shift: %w", err)
		}
		shiftFilter = &shift
	}

	filter := subscription.Filter{UserID: q.UserID}
	if q.SellerSID != "" {
		filter.SellerSID = &q.SellerSID
	}
	if q.PlanSID != "" {
		filter.PlanSID = &q.PlanSID
	}

	subs, err := uc.subscriptionRepo.FindActive(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to find active subscriptions", "error", err, "date", q.Date)
		return nil, fmt.Errorf("failed to find active subscriptions: %w", err)
	}

	// Subscriptions arrive in stable creation order; shifts iterate
	// morning-then-evening. Pagination below slices this ordering as is.
	views := make([]DeliveryView, 0, len(subs))
	for _, sub := range subs {
		plan, err := uc.planCatalog.GetBySID(ctx, sub.PlanSID())
		if err != nil {
			uc.logger.Warnw("failed to resolve plan, skipping subscription", "error", err, "subscription_sid", sub.SID(), "plan_sid", sub.PlanSID())
			continue
		}
		planDefault := vo.ShiftEvening
		if plan != nil {
			planDefault = plan.DefaultShift()
		}

		for _, shift := range sub.ApplicableShifts(planDefault) {
			if shiftFilter != nil && shift != *shiftFilter {
				continue
			}
			occ := sub.OccurrenceAt(date, shift)
			if occ == nil {
				continue
			}

			record, _, err := uc.materializer.ensureRecord(ctx, sub, date, shift)
			if err != nil {
				uc.logger.Errorw("failed to materialize tracking record", "error", err, "subscription_sid", sub.SID(), "date", q.Date, "shift", shift)
				return nil, err
			}

			effective := uc.resolver.Resolve(ctx, sub, date, shift)
			view := uc.buildView(ctx, sub, record, occ, effective)

			if uc.matches(q, view) {
				views = append(views, view)
			}
		}
	}

	total := len(views)
	page, pageSize := normalizePage(q.Page, q.PageSize)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &GetDeliveriesResult{
		Deliveries: views[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// buildView merges the resolver's hint with the persisted record status. A
// persisted delivered is a terminal fact and always wins; otherwise a
// non-standard hint wins over a still-pending record.
func (uc *GetDeliveriesUseCase) buildView(ctx context.Context, sub *subscription.Subscription, record *delivery.TrackingRecord, occ *subscription.Occurrence, effective subscription.EffectiveMeal) DeliveryView {
	status := record.Status()
	if status == dvo.StatusPending {
		switch effective.StatusHint {
		case subscription.HintSkipped:
			status = dvo.StatusSkipped
		case subscription.HintReplaced:
			status = dvo.StatusReplaced
		case subscription.HintCustomized:
			status = dvo.StatusCustomized
		}
	}

	mealName := effective.DisplayName
	price := decimal.Zero
	if mealPlan, err := uc.planCatalog.GetBySID(ctx, effective.SourceMealSID); err == nil && mealPlan != nil {
		mealName = mealPlan.Name()
		price = mealPlan.Price()
	}
	if effective.CustomizationSummary != "" {
		mealName = mealName + " (" + effective.CustomizationSummary + ")"
	}

	return DeliveryView{
		DeliveryNumber:       record.DeliveryNumber(),
		SubscriptionSID:      sub.SID(),
		UserID:               sub.UserID(),
		SellerSID:            sub.SellerSID(),
		Date:                 record.Date().String(),
		Shift:                record.Shift(),
		Status:               status,
		SourceMealSID:        effective.SourceMealSID,
		MealName:             mealName,
		Price:                price,
		DriverSID:            record.DriverSID(),
		ETA:                  record.ETA(),
		SkipReason:           effective.SkipReason,
		CustomizationSummary: effective.CustomizationSummary,
		IsSundaySpecial:      occ.IsSundaySpecial,
		DeliveredAt:          record.DeliveredAt(),
	}
}

// matches evaluates every filter; an entry failing any one is excluded. No
// filter short-circuits the others.
func (uc *GetDeliveriesUseCase) matches(q GetDeliveriesQuery, view DeliveryView) bool {
	statusOK := q.Status == "" || view.Status.String() == q.Status
	driverOK := q.DriverSID == "" || (view.DriverSID != nil && *view.DriverSID == q.DriverSID)
	sellerOK := q.SellerSID == "" || view.SellerSID == q.SellerSID
	priceMinOK := q.PriceMin == nil || view.Price.GreaterThanOrEqual(*q.PriceMin)
	priceMaxOK := q.PriceMax == nil || view.Price.LessThanOrEqual(*q.PriceMax)
	searchOK := q.Search == "" || matchesSearch(q.Search, view)

	return statusOK && driverOK && sellerOK && priceMinOK && priceMaxOK && searchOK
}

func matchesSearch(term string, view DeliveryView) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(view.DeliveryNumber), term) ||
		strings.Contains(strings.ToLower(view.SubscriptionSID), term) ||
		strings.Contains(strings.ToLower(view.MealName), term)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
