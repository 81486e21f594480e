package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/adapter"
	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/common/database"
	"github.com/letitbe-trn/oneroom-app/internal/common/health"
	"github.com/letitbe-trn/oneroom-app/internal/common/kafka"
	"github.com/letitbe-trn/oneroom-app/internal/common/logger"
	"github.com/letitbe-trn/oneroom-app/internal/common/middleware"
	"github.com/letitbe-trn/oneroom-app/internal/config"
	bookingEvents "github.com/letitbe-trn/oneroom-app/internal/events"
	"github.com/letitbe-trn/oneroom-app/internal/handler"
	"github.com/letitbe-trn/oneroom-app/internal/repository"
	"github.com/letitbe-trn/oneroom-app/internal/scheduler"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

const serviceName = "oneroom-app"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
		zap.String("sync_mode", cfg.Sync.Mode),
	)

	appLoc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		zapLogger.Fatal("invalid APP_TIMEZONE", zap.Error(err))
	}
	syncLoc, err := time.LoadLocation(cfg.Sync.Timezone)
	if err != nil {
		zapLogger.Fatal("invalid SYNC_TIMEZONE", zap.Error(err))
	}

	// Initialize persistence
	store, checks := openStore(cfg, zapLogger)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	holder, err := state.NewHolder(startupCtx, store)
	startupCancel()
	if err != nil {
		zapLogger.Fatal("failed to load persisted state", zap.Error(err))
	}
	snapshot := holder.Snapshot()
	zapLogger.Info("state loaded",
		zap.Int("bookings", len(snapshot.Bookings)),
		zap.Bool("profile", snapshot.Profile != nil),
		zap.Bool("sync_enabled", snapshot.SyncEndpoint != ""),
	)

	// Initialize assistant adapter (mock when no API key is configured)
	var assistant adapter.AssistantAdapter
	if cfg.Assistant.APIKey != "" {
		assistant = adapter.NewGeminiAssistantAdapter(adapter.GeminiConfig{
			BaseURL:       cfg.Assistant.BaseURL,
			APIKey:        cfg.Assistant.APIKey,
			Model:         cfg.Assistant.Model,
			ConflictModel: cfg.Assistant.ConflictModel,
			Timeout:       cfg.Assistant.Timeout,
		}, zapLogger)
	} else {
		zapLogger.Warn("GEMINI_API_KEY not set, using mock assistant")
		assistant = adapter.NewMockAssistantAdapter(zapLogger)
	}

	warningCache := adapter.NewWarningCache(256, cfg.Assistant.WarningTTL)
	defer warningCache.Stop()

	// Initialize spreadsheet sync
	syncer := adapter.NewWebhookSyncer(cfg.Sync.Timeout, syncLoc, cfg.Sync.TimeLayout, zapLogger)
	syncService := application.NewSyncService(holder, syncer, zapLogger)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	var notifier application.ChangeNotifier
	switch cfg.Sync.Mode {
	case config.SyncModeKafka:
		// Initialize Kafka producer
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
		defer kafkaProducer.Close()
		kafkaNotifier := bookingEvents.NewKafkaNotifier(kafkaProducer, cfg.KafkaConfig.Topic, cfg.Sync.Timeout, zapLogger)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier

		// Initialize Kafka consumer for booking change events
		consumerGroupID := cfg.KafkaConfig.GroupPrefix + "sheet-sync"
		syncConsumer := bookingEvents.NewSyncConsumer(
			cfg.KafkaConfig.Brokers,
			consumerGroupID,
			cfg.KafkaConfig.Topic,
			syncService,
			zapLogger,
		)
		defer syncConsumer.Close()

		// Start Kafka consumer in a goroutine
		go func() {
			zapLogger.Info("starting booking event consumer")
			if err := syncConsumer.Start(consumerCtx); err != nil {
				if consumerCtx.Err() == nil {
					zapLogger.Error("booking event consumer failed", zap.Error(err))
				}
			}
		}()
	default:
		notifier = application.NewDirectNotifier(syncService, cfg.Sync.Timeout, zapLogger)
	}

	// Initialize application services
	bookingService := application.NewBookingService(holder, notifier, assistant, warningCache, zapLogger)
	profileService := application.NewProfileService(holder, zapLogger)
	assistantService := application.NewAssistantService(holder, assistant, bookingService, appLoc, zapLogger)

	// Initialize periodic resync
	var cronScheduler *scheduler.Scheduler
	if cfg.Sync.Cron != "" {
		cronScheduler = scheduler.New(appLoc, cfg.Sync.Timeout, zapLogger)
		if err := cronScheduler.Add("sheet-resync", cfg.Sync.Cron, syncService.Resync); err != nil {
			zapLogger.Fatal("failed to schedule resync", zap.Error(err))
		}
		cronScheduler.Start()
	}

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	dashboardHandler := handler.NewDashboardHandler(bookingService)
	profileHandler := handler.NewProfileHandler(profileService, syncService)
	assistantHandler := handler.NewAssistantHandler(assistantService)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(serviceName, checks...)
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	bookingHandler.RegisterRoutes(apiV1)
	dashboardHandler.RegisterRoutes(apiV1)
	profileHandler.RegisterRoutes(apiV1)
	assistantHandler.RegisterRoutes(apiV1)

	// Create HTTP server; the write timeout leaves room for a slow assistant call.
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Assistant.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down " + serviceName + "...")

	// Cancel Kafka consumer
	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if cronScheduler != nil {
		cronScheduler.Stop(shutdownCtx)
	}

	// Shutdown HTTP server with timeout
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info(serviceName + " stopped")
}

// openStore selects the persistence backend and the readiness checks that go with it.
func openStore(cfg *config.ServiceConfig, zapLogger *zap.Logger) (state.Store, []health.Check) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		// Connect to database
		db, err := database.Connect(database.PostgresConfig{
			Host:     cfg.DBConfig.Host,
			Port:     cfg.DBConfig.Port,
			User:     cfg.DBConfig.User,
			Password: cfg.DBConfig.Password,
			DBName:   cfg.DBConfig.DBName,
			SSLMode:  cfg.DBConfig.SSLMode,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to connect to database", zap.Error(err))
		}

		if err := db.AutoMigrate(&repository.RecordModel{}); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed")

		store := repository.NewGormStore(db)
		return store, []health.Check{{Name: "postgres", Fn: store.Ping}}

	case config.StorageMemory:
		zapLogger.Warn("using in-memory storage, state will not survive a restart")
		return repository.NewMemoryStore(), nil

	default:
		store, err := repository.NewFileStore(cfg.StorageDir)
		if err != nil {
			zapLogger.Fatal("failed to open storage directory", zap.Error(err), zap.String("dir", cfg.StorageDir))
		}
		return store, []health.Check{{Name: "storage", Fn: store.Ping}}
	}
}
