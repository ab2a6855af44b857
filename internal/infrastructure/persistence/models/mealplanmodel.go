package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MealPlanModel represents the database persistence model for catalog meal
// plans. The core only reads this table; catalog management writes it from
// outside this service.
type MealPlanModel struct {
	ID           uint            `gorm:"primarykey"`
	SID          string          `gorm:"column:sid;uniqueIndex;not null;size:50;comment:Stripe-style ID: plan_xxx"`
	SellerSID    string          `gorm:"column:seller_sid;not null;size:50;index:idx_seller_plan"`
	Name         string          `gorm:"not null;size:200"`
	Items        datatypes.JSON  `gorm:"comment:list of included dishes"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DefaultShift string          `gorm:"not null;size:10;default:evening"`
	Available    bool            `gorm:"not null;default:true;index:idx_available"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (MealPlanModel) TableName() string {
	return "meal_plans"
}
