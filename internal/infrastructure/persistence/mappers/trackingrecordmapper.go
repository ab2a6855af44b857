package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/tastyaana/tiffin/internal/domain/delivery"
	dvo "github.com/tastyaana/tiffin/internal/domain/delivery/valueobjects"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/infrastructure/persistence/models"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

type TrackingRecordMapper interface {
	ToEntity(model *models.TrackingRecordModel) (*delivery.TrackingRecord, error)
	ToModel(entity *delivery.TrackingRecord) (*models.TrackingRecordModel, error)
	ToEntities(models []*models.TrackingRecordModel) ([]*delivery.TrackingRecord, error)
}

type TrackingRecordMapperImpl struct{}

func NewTrackingRecordMapper() TrackingRecordMapper {
	return &TrackingRecordMapperImpl{}
}

func (m *TrackingRecordMapperImpl) ToEntity(model *models.TrackingRecordModel) (*delivery.TrackingRecord, error) {
	if model == nil {
		return nil, nil
	}

	date, err := biztime.ParseCivilDate(model.DeliveryDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse delivery date: %w", err)
	}

	var checkpoints []delivery.Checkpoint
	if len(model.Checkpoints) > 0 {
		if err := json.Unmarshal(model.Checkpoints, &checkpoints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkpoints: %w", err)
		}
	}

	entity, err := delivery.ReconstructTrackingRecord(delivery.ReconstructTrackingRecordParams{
		ID:             model.ID,
		UUID:           model.UUID,
		DeliveryNumber: model.DeliveryNumber,
		SubscriptionID: model.SubscriptionID,
		Date:           date,
		Shift:          vo.Shift(model.Shift),
		Status:         dvo.DeliveryStatus(model.Status),
		DriverSID:      model.DriverSID,
		ETA:            model.ETA,
		Checkpoints:    checkpoints,
		DeliveredAt:    model.DeliveredAt,
		Version:        model.Version,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct tracking record entity: %w", err)
	}
	return entity, nil
}

func (m *TrackingRecordMapperImpl) ToModel(entity *delivery.TrackingRecord) (*models.TrackingRecordModel, error) {
	if entity == nil {
		return nil, nil
	}

	checkpoints, err := json.Marshal(entity.Checkpoints())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkpoints: %w", err)
	}

	return &models.TrackingRecordModel{
		ID:             entity.ID(),
		UUID:           entity.UUID(),
		DeliveryNumber: entity.DeliveryNumber(),
		SubscriptionID: entity.SubscriptionID(),
		DeliveryDate:   entity.Date().String(),
		Shift:          entity.Shift().String(),
		Status:         entity.Status().String(),
		DriverSID:      entity.DriverSID(),
		ETA:            entity.ETA(),
		Checkpoints:    datatypes.JSON(checkpoints),
		DeliveredAt:    entity.DeliveredAt(),
		Version:        entity.Version(),
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}, nil
}

func (m *TrackingRecordMapperImpl) ToEntities(recordModels []*models.TrackingRecordModel) ([]*delivery.TrackingRecord, error) {
	entities := make([]*delivery.TrackingRecord, 0, len(recordModels))
	for _, model := range recordModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
