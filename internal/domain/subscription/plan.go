package subscription

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
)

// MealPlan is the catalog entry a subscription or overlay references. The
// core only reads plans; catalog management lives outside this service.
type MealPlan struct {
	id           uint
	sid          string
	sellerSID    string
	name         string
	items        []string
	price        decimal.Decimal
	defaultShift vo.Shift
	available    bool
}

// ReconstructMealPlan rebuilds a plan from the catalog store.
func ReconstructMealPlan(id uint, sid, sellerSID, name string, items []string, price decimal.Decimal, defaultShift vo.Shift, available bool) (*MealPlan, error) {
	if sid == "" {
		return nil, fmt.Errorf("plan SID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if !defaultShift.Valid() {
		defaultShift = vo.ShiftEvening
	}
	return &MealPlan{
		id:           id,
		sid:          sid,
		sellerSID:    sellerSID,
		name:         name,
		items:        items,
		price:        price,
		defaultShift: defaultShift,
		available:    available,
	}, nil
}

func (p *MealPlan) ID() uint                 { return p.id }
func (p *MealPlan) SID() string              { return p.sid }
func (p *MealPlan) SellerSID() string        { return p.sellerSID }
func (p *MealPlan) Name() string             { return p.name }
func (p *MealPlan) Items() []string          { return p.items }
func (p *MealPlan) Price() decimal.Decimal   { return p.price }
func (p *MealPlan) DefaultShift() vo.Shift   { return p.defaultShift }
func (p *MealPlan) Available() bool          { return p.available }

// PlanCatalog resolves meal-plan references to display attributes. Read-only.
type PlanCatalog interface {
	GetBySID(ctx context.Context, sid string) (*MealPlan, error)
}
