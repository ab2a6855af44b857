package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionModel represents the database persistence model for subscriptions
// This is the anti-corruption layer between domain and database
//
// Civil dates are stored as their "YYYY-MM-DD" string form so lookups are
// exact-date matches, never timestamp range scans. The meal ledger lives in
// four plain integer columns so the repository can mutate it with a single
// conditional UPDATE instead of read-modify-write.
type SubscriptionModel struct {
	ID         uint   `gorm:"primarykey"`
	SID        string `gorm:"column:sid;uniqueIndex;not null;size:50;comment:Stripe-style ID: sub_xxx"`
	UserID     uint   `gorm:"not null;index:idx_user_subscription"`
	SellerSID  string `gorm:"column:seller_sid;not null;size:50;index:idx_seller_subscription"`
	PlanSID    string `gorm:"column:plan_sid;not null;size:50;index:idx_plan_subscription"`
	Status     string `gorm:"not null;size:20;index:idx_status"`
	TotalMeals int    `gorm:"not null"`

	StartDate  string  `gorm:"not null;size:10;index:idx_start_date"`
	LastDate   string  `gorm:"not null;size:10;index:idx_last_date"`
	StartShift string  `gorm:"not null;size:10"`
	Shift      *string `gorm:"size:10"`

	TimingMorning bool `gorm:"not null;default:false"`
	TimingEvening bool `gorm:"not null;default:false"`

	Schedule datatypes.JSON `gorm:"not null"`

	LedgerTotal     int `gorm:"not null"`
	LedgerDelivered int `gorm:"not null;default:0"`
	LedgerSkipped   int `gorm:"not null;default:0"`
	LedgerRemaining int `gorm:"not null"`

	Skips          datatypes.JSON
	Replacements   datatypes.JSON
	Customizations datatypes.JSON

	CancelledAt  *time.Time
	CancelReason *string `gorm:"size:500"`
	Version      int     `gorm:"not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
