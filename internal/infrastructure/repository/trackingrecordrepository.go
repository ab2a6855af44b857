package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tastyaana/tiffin/internal/domain/delivery"
	subvo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/infrastructure/persistence/mappers"
	"github.com/tastyaana/tiffin/internal/infrastructure/persistence/models"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
	apperrors "github.com/tastyaana/tiffin/internal/shared/errors"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

type TrackingRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TrackingRecordMapper
	logger logger.Interface
}

func NewTrackingRecordRepository(
	db *gorm.DB,
	logger logger.Interface,
) delivery.TrackingRecordRepository {
	return &TrackingRecordRepositoryImpl{
		db:     db,
		mapper: mappers.NewTrackingRecordMapper(),
		logger: logger,
	}
}

// UpsertByScheduleKey inserts the record, treating a duplicate-key error on
// idx_schedule_key as the concurrent-winner case: the existing row is re-read
// and returned instead.
func (r *TrackingRecordRepositoryImpl) UpsertByScheduleKey(ctx context.Context, record *delivery.TrackingRecord) (*delivery.TrackingRecord, bool, error) {
	model, err := r.mapper.ToModel(record)
	if err != nil {
		r.logger.Errorw("failed to map tracking record entity to model", "error", err)
		return nil, false, fmt.Errorf("failed to map tracking record entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			winner, getErr := r.GetByScheduleKey(ctx, record.SubscriptionID(), record.Date(), record.Shift())
			if getErr != nil {
				return nil, false, getErr
			}
			if winner == nil {
				return nil, false, fmt.Errorf("tracking record vanished after duplicate key for subscription %d", record.SubscriptionID())
			}
			return winner, false, nil
		}
		r.logger.Errorw("failed to create tracking record", "subscription_id", record.SubscriptionID(), "error", err)
		return nil, false, fmt.Errorf("failed to create tracking record: %w", err)
	}

	if err := record.SetID(model.ID); err != nil {
		return nil, false, fmt.Errorf("failed to set tracking record ID: %w", err)
	}

	r.logger.Infow("tracking record created",
		"id", model.ID,
		"delivery_number", model.DeliveryNumber,
		"subscription_id", model.SubscriptionID,
		"date", model.DeliveryDate,
		"shift", model.Shift)
	return record, true, nil
}

func (r *TrackingRecordRepositoryImpl) GetByScheduleKey(ctx context.Context, subscriptionID uint, date biztime.CivilDate, shift subvo.Shift) (*delivery.TrackingRecord, error) {
	var model models.TrackingRecordModel
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND delivery_date = ? AND shift = ?",
			subscriptionID, date.String(), shift.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get tracking record by schedule key",
			"subscription_id", subscriptionID, "date", date.String(), "shift", shift.String(), "error", err)
		return nil, fmt.Errorf("failed to get tracking record: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *TrackingRecordRepositoryImpl) GetByDeliveryNumber(ctx context.Context, deliveryNumber string) (*delivery.TrackingRecord, error) {
	var model models.TrackingRecordModel
	if err := r.db.WithContext(ctx).
		Where("delivery_number = ?", deliveryNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get tracking record by delivery number", "delivery_number", deliveryNumber, "error", err)
		return nil, fmt.Errorf("failed to get tracking record: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *TrackingRecordRepositoryImpl) Update(ctx context.Context, record *delivery.TrackingRecord) error {
	model, err := r.mapper.ToModel(record)
	if err != nil {
		r.logger.Errorw("failed to map tracking record entity to model", "error", err)
		return fmt.Errorf("failed to map tracking record entity: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&models.TrackingRecordModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update tracking record", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update tracking record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("tracking record %d was modified concurrently", model.ID)
	}
	return nil
}

func (r *TrackingRecordRepositoryImpl) ListByDate(ctx context.Context, date biztime.CivilDate, shift *subvo.Shift) ([]*delivery.TrackingRecord, error) {
	query := r.db.WithContext(ctx).Where("delivery_date = ?", date.String())
	if shift != nil {
		query = query.Where("shift = ?", shift.String())
	}

	var recordModels []*models.TrackingRecordModel
	if err := query.Order("id ASC").Find(&recordModels).Error; err != nil {
		r.logger.Errorw("failed to list tracking records by date", "date", date.String(), "error", err)
		return nil, fmt.Errorf("failed to list tracking records: %w", err)
	}
	return r.mapper.ToEntities(recordModels)
}
