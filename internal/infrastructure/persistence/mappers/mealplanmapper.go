package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/infrastructure/persistence/models"
)

type MealPlanMapper interface {
	ToEntity(model *models.MealPlanModel) (*subscription.MealPlan, error)
}

type MealPlanMapperImpl struct{}

func NewMealPlanMapper() MealPlanMapper {
	return &MealPlanMapperImpl{}
}

func (m *MealPlanMapperImpl) ToEntity(model *models.MealPlanModel) (*subscription.MealPlan, error) {
	if model == nil {
		return nil, nil
	}

	var items []string
	if len(model.Items) > 0 {
		if err := json.Unmarshal(model.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan items: %w", err)
		}
	}

	entity, err := subscription.ReconstructMealPlan(
		model.ID,
		model.SID,
		model.SellerSID,
		model.Name,
		items,
		model.Price,
		vo.Shift(model.DefaultShift),
		model.Available,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct meal plan entity: %w", err)
	}
	return entity, nil
}
