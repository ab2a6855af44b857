package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/infrastructure/persistence/mappers"
	"github.com/tastyaana/tiffin/internal/infrastructure/persistence/models"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(
	db *gorm.DB,
	logger logger.Interface,
) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, entity *subscription.Subscription) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Infow("subscription created successfully", "id", model.ID, "sid", model.SID, "user_id", model.UserID)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetByUserID(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	var subModels []*models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&subModels).Error; err != nil {
		r.logger.Errorw("failed to get subscriptions by user ID", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	return r.mapper.ToEntities(subModels)
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, entity *subscription.Subscription) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	// Optimistic lock on the version the entity was loaded with.
	result := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Select("*").
		Omit("id", "created_at", "ledger_total", "ledger_delivered", "ledger_skipped", "ledger_remaining").
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription %d was modified concurrently", model.ID)
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) FindActive(ctx context.Context, filter subscription.Filter) ([]*subscription.Subscription, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", vo.StatusActive.String())

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.SellerSID != nil {
		query = query.Where("seller_sid = ?", *filter.SellerSID)
	}
	if filter.PlanSID != nil {
		query = query.Where("plan_sid = ?", *filter.PlanSID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}

	var subModels []*models.SubscriptionModel
	// Creation order: reconciled delivery views depend on it being stable.
	if err := query.Order("id ASC").Find(&subModels).Error; err != nil {
		r.logger.Errorw("failed to find active subscriptions", "error", err)
		return nil, fmt.Errorf("failed to find active subscriptions: %w", err)
	}
	return r.mapper.ToEntities(subModels)
}

func (r *SubscriptionRepositoryImpl) FindActiveForDate(ctx context.Context, date biztime.CivilDate) ([]*subscription.Subscription, error) {
	var subModels []*models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND start_date <= ? AND last_date >= ?",
			vo.StatusActive.String(), date.String(), date.String()).
		Order("id ASC").
		Find(&subModels).Error; err != nil {
		r.logger.Errorw("failed to find subscriptions for date", "date", date.String(), "error", err)
		return nil, fmt.Errorf("failed to find subscriptions for date: %w", err)
	}
	return r.mapper.ToEntities(subModels)
}

func (r *SubscriptionRepositoryImpl) FindExhausted(ctx context.Context) ([]*subscription.Subscription, error) {
	var subModels []*models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND ledger_remaining = 0", vo.StatusActive.String()).
		Order("id ASC").
		Find(&subModels).Error; err != nil {
		r.logger.Errorw("failed to find exhausted subscriptions", "error", err)
		return nil, fmt.Errorf("failed to find exhausted subscriptions: %w", err)
	}
	return r.mapper.ToEntities(subModels)
}

// UpdateLedger applies the delta as one conditional UPDATE. The guard clauses
// keep every count non-negative; an update matching zero rows means the delta
// would have violated the ledger invariant under a concurrent writer.
func (r *SubscriptionRepositoryImpl) UpdateLedger(ctx context.Context, id uint, delta subscription.LedgerDelta) error {
	if delta.IsZero() {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("id = ?", id).
		Where("ledger_delivered + ? >= 0", delta.Delivered).
		Where("ledger_skipped + ? >= 0", delta.Skipped).
		Where("ledger_remaining + ? >= 0", delta.Remaining).
		UpdateColumns(map[string]interface{}{
			"ledger_delivered": gorm.Expr("ledger_delivered + ?", delta.Delivered),
			"ledger_skipped":   gorm.Expr("ledger_skipped + ?", delta.Skipped),
			"ledger_remaining": gorm.Expr("ledger_remaining + ?", delta.Remaining),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update meal ledger", "id", id, "error", result.Error)
		return fmt.Errorf("failed to update meal ledger: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: ledger delta {delivered=%+d skipped=%+d remaining=%+d} rejected for subscription %d",
			subscription.ErrLedgerInvariant, delta.Delivered, delta.Skipped, delta.Remaining, id)
	}
	return nil
}
