package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/infrastructure/persistence/mappers"
	"github.com/tastyaana/tiffin/internal/infrastructure/persistence/models"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

// MealPlanRepositoryImpl reads the seller-owned meal plan catalog. Plan
// lifecycle is managed elsewhere, so this repository only resolves lookups.
type MealPlanRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.MealPlanMapper
	logger logger.Interface
}

func NewMealPlanRepository(
	db *gorm.DB,
	logger logger.Interface,
) subscription.PlanCatalog {
	return &MealPlanRepositoryImpl{
		db:     db,
		mapper: mappers.NewMealPlanMapper(),
		logger: logger,
	}
}

func (r *MealPlanRepositoryImpl) GetBySID(ctx context.Context, sid string) (*subscription.MealPlan, error) {
	var model models.MealPlanModel
	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get meal plan by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}
	return r.mapper.ToEntity(&model)
}
