package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

const (
	planKeyPrefix = "meal_plan:catalog:"
	basePlanTTL   = 30 * time.Minute
	planTTLJitter = 10 * time.Minute // TTL range: 30-40 min (anti-stampede)
	nullMarkerTTL = 2 * time.Minute  // Short TTL for not-found markers (anti-penetration)
	nullMarker    = "_null"
)

// cachedMealPlan is the wire form of a catalog plan in Redis.
type cachedMealPlan struct {
	ID           uint            `json:"id"`
	SID          string          `json:"sid"`
	SellerSID    string          `json:"seller_sid"`
	Name         string          `json:"name"`
	Items        []string        `json:"items,omitempty"`
	Price        decimal.Decimal `json:"price"`
	DefaultShift string          `json:"default_shift"`
	Available    bool            `json:"available"`
}

// CachedPlanCatalog is a read-through cache in front of the meal plan
// catalog. Delivery view assembly resolves the same handful of plans for
// every subscription on a date, so catalog rows are cached aggressively.
// Cache failures degrade to the underlying catalog, never to an error.
type CachedPlanCatalog struct {
	client   *redis.Client
	delegate subscription.PlanCatalog
	logger   logger.Interface
}

// NewCachedPlanCatalog wraps the catalog with a Redis cache.
func NewCachedPlanCatalog(client *redis.Client, delegate subscription.PlanCatalog, logger logger.Interface) subscription.PlanCatalog {
	return &CachedPlanCatalog{
		client:   client,
		delegate: delegate,
		logger:   logger,
	}
}

func (c *CachedPlanCatalog) key(sid string) string {
	return planKeyPrefix + sid
}

func (c *CachedPlanCatalog) GetBySID(ctx context.Context, sid string) (*subscription.MealPlan, error) {
	key := c.key(sid)

	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if val == nullMarker {
			return nil, nil
		}
		plan, unmarshalErr := c.unmarshal(val)
		if unmarshalErr == nil {
			return plan, nil
		}
		c.logger.Warnw("discarding corrupt cached meal plan", "sid", sid, "error", unmarshalErr)
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warnw("meal plan cache read failed, falling back to catalog", "sid", sid, "error", err)
	}

	plan, err := c.delegate.GetBySID(ctx, sid)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, plan)
	return plan, nil
}

func (c *CachedPlanCatalog) store(ctx context.Context, key string, plan *subscription.MealPlan) {
	if plan == nil {
		if err := c.client.Set(ctx, key, nullMarker, nullMarkerTTL).Err(); err != nil {
			c.logger.Warnw("failed to cache meal plan null marker", "key", key, "error", err)
		}
		return
	}

	data, err := json.Marshal(cachedMealPlan{
		ID:           plan.ID(),
		SID:          plan.SID(),
		SellerSID:    plan.SellerSID(),
		Name:         plan.Name(),
		Items:        plan.Items(),
		Price:        plan.Price(),
		DefaultShift: plan.DefaultShift().String(),
		Available:    plan.Available(),
	})
	if err != nil {
		c.logger.Warnw("failed to marshal meal plan for cache", "sid", plan.SID(), "error", err)
		return
	}

	if err := c.client.Set(ctx, key, data, planTTLWithJitter()).Err(); err != nil {
		c.logger.Warnw("failed to cache meal plan", "sid", plan.SID(), "error", err)
	}
}

func (c *CachedPlanCatalog) unmarshal(val string) (*subscription.MealPlan, error) {
	var cached cachedMealPlan
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached meal plan: %w", err)
	}
	return subscription.ReconstructMealPlan(
		cached.ID,
		cached.SID,
		cached.SellerSID,
		cached.Name,
		cached.Items,
		cached.Price,
		vo.Shift(cached.DefaultShift),
		cached.Available,
	)
}

// Invalidate drops a plan from the cache. Catalog management calls this after
// a plan changes.
func (c *CachedPlanCatalog) Invalidate(ctx context.Context, sid string) error {
	if err := c.client.Del(ctx, c.key(sid)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate meal plan cache: %w", err)
	}
	return nil
}

func planTTLWithJitter() time.Duration {
	return basePlanTTL + time.Duration(rand.Int63n(int64(planTTLJitter)))
}
