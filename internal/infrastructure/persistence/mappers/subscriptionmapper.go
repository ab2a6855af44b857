package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/infrastructure/persistence/models"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.SubscriptionStatus(model.Status)
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", model.Status)
	}

	startDate, err := biztime.ParseCivilDate(model.StartDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start date: %w", err)
	}

	var pinned *vo.Shift
	if model.Shift != nil && *model.Shift != "" {
		shift, err := vo.ParseShift(*model.Shift)
		if err != nil {
			return nil, fmt.Errorf("failed to parse shift: %w", err)
		}
		pinned = &shift
	}

	var schedule []subscription.Occurrence
	if err := unmarshalJSON(model.Schedule, &schedule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}
	var skips []subscription.SkipEntry
	if err := unmarshalJSON(model.Skips, &skips); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skips: %w", err)
	}
	var replacements []subscription.ReplacementEntry
	if err := unmarshalJSON(model.Replacements, &replacements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal replacements: %w", err)
	}
	var customizations []subscription.CustomizationEntry
	if err := unmarshalJSON(model.Customizations, &customizations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customizations: %w", err)
	}

	entity, err := subscription.ReconstructSubscription(subscription.ReconstructParams{
		ID:         model.ID,
		SID:        model.SID,
		UserID:     model.UserID,
		SellerSID:  model.SellerSID,
		PlanSID:    model.PlanSID,
		Status:     status,
		TotalMeals: model.TotalMeals,
		StartDate:  startDate,
		StartShift: vo.Shift(model.StartShift),
		Shift:      pinned,
		DeliveryTiming: subscription.DeliveryTiming{
			Morning: model.TimingMorning,
			Evening: model.TimingEvening,
		},
		Schedule: schedule,
		Ledger: subscription.MealCountLedger{
			Total:     model.LedgerTotal,
			Delivered: model.LedgerDelivered,
			Skipped:   model.LedgerSkipped,
			Remaining: model.LedgerRemaining,
		},
		Skips:          skips,
		Replacements:   replacements,
		Customizations: customizations,
		CancelledAt:    model.CancelledAt,
		CancelReason:   model.CancelReason,
		Version:        model.Version,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}
	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	scheduleRaw, err := json.Marshal(entity.Schedule())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schedule: %w", err)
	}
	skips, err := marshalOrNil(entity.Skips())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skips: %w", err)
	}
	replacements, err := marshalOrNil(entity.Replacements())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal replacements: %w", err)
	}
	customizations, err := marshalOrNil(entity.Customizations())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customizations: %w", err)
	}

	var pinned *string
	if entity.Shift() != nil {
		s := entity.Shift().String()
		pinned = &s
	}

	ledger := entity.Ledger()
	return &models.SubscriptionModel{
		ID:              entity.ID(),
		SID:             entity.SID(),
		UserID:          entity.UserID(),
		SellerSID:       entity.SellerSID(),
		PlanSID:         entity.PlanSID(),
		Status:          entity.Status().String(),
		TotalMeals:      entity.TotalMeals(),
		StartDate:       entity.StartDate().String(),
		LastDate:        entity.LastOccurrenceDate().String(),
		StartShift:      entity.StartShift().String(),
		Shift:           pinned,
		TimingMorning:   entity.Timing().Morning,
		TimingEvening:   entity.Timing().Evening,
		Schedule:        datatypes.JSON(scheduleRaw),
		LedgerTotal:     ledger.Total,
		LedgerDelivered: ledger.Delivered,
		LedgerSkipped:   ledger.Skipped,
		LedgerRemaining: ledger.Remaining,
		Skips:           skips,
		Replacements:    replacements,
		Customizations:  customizations,
		CancelledAt:     entity.CancelledAt(),
		CancelReason:    entity.CancelReason(),
		Version:         entity.Version(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}, nil
}

func (m *SubscriptionMapperImpl) ToEntities(subModels []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	entities := make([]*subscription.Subscription, 0, len(subModels))
	for _, model := range subModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func unmarshalJSON(data datatypes.JSON, out any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func marshalOrNil[T any](items []T) (datatypes.JSON, error) {
	if len(items) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
