package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrackingRecordModel represents the database persistence model for delivery
// tracking records. The composite unique index on
// (subscription_id, delivery_date, shift) is what makes lazy materialization
// race-safe: concurrent inserts for the same occurrence collide there and the
// loser re-reads the winner.
type TrackingRecordModel struct {
	ID             uint   `gorm:"primarykey"`
	UUID           string `gorm:"uniqueIndex;not null;size:36"`
	DeliveryNumber string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: del_xxx"`

	SubscriptionID uint   `gorm:"not null;uniqueIndex:idx_schedule_key,priority:1"`
	DeliveryDate   string `gorm:"not null;size:10;uniqueIndex:idx_schedule_key,priority:2;index:idx_delivery_date"`
	Shift          string `gorm:"not null;size:10;uniqueIndex:idx_schedule_key,priority:3"`

	Status      string  `gorm:"not null;size:20;index:idx_tracking_status"`
	DriverSID   *string `gorm:"column:driver_sid;size:50;index:idx_driver"`
	ETA         time.Time
	Checkpoints datatypes.JSON
	DeliveredAt *time.Time

	Version   int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (TrackingRecordModel) TableName() string {
	return "delivery_tracking_records"
}

// BeforeCreate hook for GORM
func (t *TrackingRecordModel) BeforeCreate(tx *gorm.DB) error {
	if t.Version == 0 {
		t.Version = 1
	}
	return nil
}
