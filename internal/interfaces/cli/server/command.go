package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/tastyaana/tiffin/internal/infrastructure/config"
	"github.com/tastyaana/tiffin/internal/infrastructure/database"
	"github.com/tastyaana/tiffin/internal/infrastructure/migration"
	"github.com/tastyaana/tiffin/internal/infrastructure/scheduler"
	httpInterface "github.com/tastyaana/tiffin/internal/interfaces/http"
	"github.com/tastyaana/tiffin/internal/shared/constants"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

var (
	env                string
	autoMigrate        bool
	skipMigrationCheck bool
)

// NewCommand creates the server command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the tiffin subscription server",
		Long:  "Start the HTTP server that serves the meal subscription and delivery tracking API",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip the migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ginMode := mapEnvToGinMode(env)
	cfg.Server.Mode = ginMode

	if err := logger.Init(&cfg.Logger, ginMode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	gin.SetMode(ginMode)
	if ginMode == gin.ReleaseMode {
		gin.DefaultWriter = io.Discard
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Errorw("failed to close database", "error", err)
		}
	}()

	if err := handleMigrations(log); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Errorw("failed to close redis client", "error", err)
			}
		}()
	}

	router := httpInterface.NewRouter(database.Get(), redisClient, cfg, log)
	router.SetupRoutes()

	reconcileInterval := time.Duration(cfg.Delivery.ReconcileIntervalMinutes) * time.Minute
	deliveryScheduler := scheduler.NewDeliveryScheduler(router.ReconcileZoneUseCase(), reconcileInterval, log)
	subscriptionScheduler := scheduler.NewSubscriptionScheduler(router.ExpireSubscriptionsUseCase(), log)

	schedulerCtx, cancelSchedulers := context.WithCancel(context.Background())
	defer cancelSchedulers()
	deliveryScheduler.Start(schedulerCtx)
	subscriptionScheduler.Start(schedulerCtx)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("starting server", "addr", cfg.Server.GetAddr(), "env", env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	deliveryScheduler.Stop()
	subscriptionScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Infow("server exited")
	return nil
}

func handleMigrations(log logger.Interface) error {
	if !autoMigrate {
		if !skipMigrationCheck {
			log.Infow("skipping migrations, run with --auto-migrate to apply them")
		}
		return nil
	}

	manager := migration.NewManager(env)
	log.Infow("running migrations", "strategy", manager.GetStrategy().GetName())
	if err := manager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Infow("migrations completed")
	return nil
}

func mapEnvToGinMode(env string) string {
	switch env {
	case "production", "prod":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	case "development", "dev", "debug":
		return gin.DebugMode
	default:
		return gin.DebugMode
	}
}
