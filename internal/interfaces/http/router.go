package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	deliveryUsecases "github.com/tastyaana/tiffin/internal/application/delivery/usecases"
	subscriptionUsecases "github.com/tastyaana/tiffin/internal/application/subscription/usecases"
	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/infrastructure/cache"
	"github.com/tastyaana/tiffin/internal/infrastructure/config"
	"github.com/tastyaana/tiffin/internal/infrastructure/notification"
	"github.com/tastyaana/tiffin/internal/infrastructure/repository"
	"github.com/tastyaana/tiffin/internal/interfaces/http/handlers"
	"github.com/tastyaana/tiffin/internal/interfaces/http/middleware"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

// Router wires repositories, use cases and handlers behind the HTTP surface.
type Router struct {
	engine              *gin.Engine
	cfg                 *config.Config
	logger              logger.Interface
	subscriptionHandler *handlers.SubscriptionHandler
	deliveryHandler     *handlers.DeliveryHandler

	reconcileZoneUC       *deliveryUsecases.ReconcileZoneUseCase
	expireSubscriptionsUC *subscriptionUsecases.ExpireSubscriptionsUseCase
}

// NewRouter creates a new HTTP router with all dependencies. redisClient may
// be nil, in which case the plan catalog is read straight from the database.
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	engine := gin.New()

	subscriptionRepo := repository.NewSubscriptionRepository(db, log)
	trackingRepo := repository.NewTrackingRecordRepository(db, log)

	var planCatalog subscription.PlanCatalog = repository.NewMealPlanRepository(db, log)
	if redisClient != nil {
		planCatalog = cache.NewCachedPlanCatalog(redisClient, planCatalog, log)
	}

	var sink interface {
		deliveryUsecases.NotificationSink
		subscriptionUsecases.ExpiryNotifier
	}
	if cfg.Email.Enabled {
		sink = notification.NewEmailNotificationSink(cfg.Email, log)
	} else {
		sink = notification.NewLogNotificationSink(log)
	}

	resolver := subscription.NewOverlayResolver(nil, nil)
	morningOffset := time.Duration(cfg.Delivery.MorningETAOffsetHours) * time.Hour
	eveningOffset := time.Duration(cfg.Delivery.EveningETAOffsetHours) * time.Hour

	createSubscriptionUC := subscriptionUsecases.NewCreateSubscriptionUseCase(subscriptionRepo, planCatalog, log)
	activateSubscriptionUC := subscriptionUsecases.NewActivateSubscriptionUseCase(subscriptionRepo, log)
	cancelSubscriptionUC := subscriptionUsecases.NewCancelSubscriptionUseCase(subscriptionRepo, log)
	getSubscriptionUC := subscriptionUsecases.NewGetSubscriptionUseCase(subscriptionRepo, log)
	listSubscriptionsUC := subscriptionUsecases.NewListUserSubscriptionsUseCase(subscriptionRepo, log)
	skipMealUC := subscriptionUsecases.NewSkipMealUseCase(subscriptionRepo, log)
	unskipMealUC := subscriptionUsecases.NewUnskipMealUseCase(subscriptionRepo, log)
	replaceMealUC := subscriptionUsecases.NewReplaceMealUseCase(subscriptionRepo, planCatalog, log)
	customizeMealUC := subscriptionUsecases.NewCustomizeMealUseCase(subscriptionRepo, log)

	expireSubscriptionsUC := subscriptionUsecases.NewExpireSubscriptionsUseCase(subscriptionRepo, log)
	expireSubscriptionsUC.SetNotifier(sink)

	getDeliveriesUC := deliveryUsecases.NewGetDeliveriesUseCase(
		subscriptionRepo, trackingRepo, planCatalog, resolver, morningOffset, eveningOffset, log)
	markDeliveryStatusUC := deliveryUsecases.NewMarkDeliveryStatusUseCase(subscriptionRepo, trackingRepo, log)
	markDeliveryStatusUC.SetNotificationSink(sink)
	reconcileZoneUC := deliveryUsecases.NewReconcileZoneUseCase(
		subscriptionRepo, trackingRepo, planCatalog, morningOffset, eveningOffset, log)

	return &Router{
		engine: engine,
		cfg:    cfg,
		logger: log,
		subscriptionHandler: handlers.NewSubscriptionHandler(
			createSubscriptionUC,
			activateSubscriptionUC,
			cancelSubscriptionUC,
			getSubscriptionUC,
			listSubscriptionsUC,
			skipMealUC,
			unskipMealUC,
			replaceMealUC,
			customizeMealUC,
		),
		deliveryHandler: handlers.NewDeliveryHandler(
			getDeliveriesUC,
			markDeliveryStatusUC,
			reconcileZoneUC,
		),
		reconcileZoneUC:       reconcileZoneUC,
		expireSubscriptionsUC: expireSubscriptionsUC,
	}
}

// SetupRoutes registers middleware and all API routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(middleware.ErrorHandler())

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.engine.Group("/api/v1")

	subscriptions := v1.Group("/subscriptions")
	{
		subscriptions.POST("", r.subscriptionHandler.CreateSubscription)
		subscriptions.GET("", r.subscriptionHandler.ListUserSubscriptions)
		subscriptions.GET("/:sid", r.subscriptionHandler.GetSubscription)
		subscriptions.POST("/:sid/activate", r.subscriptionHandler.ActivateSubscription)
		subscriptions.POST("/:sid/cancel", r.subscriptionHandler.CancelSubscription)
		subscriptions.POST("/:sid/skip", r.subscriptionHandler.SkipMeal)
		subscriptions.POST("/:sid/unskip", r.subscriptionHandler.UnskipMeal)
		subscriptions.POST("/:sid/replace", r.subscriptionHandler.ReplaceMeal)
		subscriptions.POST("/:sid/customize", r.subscriptionHandler.CustomizeMeal)
	}

	deliveries := v1.Group("/deliveries")
	{
		deliveries.GET("", r.deliveryHandler.GetDeliveries)
		deliveries.PATCH("/:number/status", r.deliveryHandler.MarkDeliveryStatus)
		deliveries.POST("/reconcile", r.deliveryHandler.ReconcileDeliveries)
	}
}

// GetEngine returns the underlying gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// ReconcileZoneUseCase exposes the reconciliation use case for the
// background scheduler.
func (r *Router) ReconcileZoneUseCase() *deliveryUsecases.ReconcileZoneUseCase {
	return r.reconcileZoneUC
}

// ExpireSubscriptionsUseCase exposes the expiry sweep for the background
// scheduler.
func (r *Router) ExpireSubscriptionsUseCase() *subscriptionUsecases.ExpireSubscriptionsUseCase {
	return r.expireSubscriptionsUC
}
