package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frontdesk/service-reservation/internal/application"
	"github.com/frontdesk/service-reservation/internal/cache"
	"github.com/frontdesk/service-reservation/internal/config"
	"github.com/frontdesk/service-reservation/internal/database"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	reservationEvents "github.com/frontdesk/service-reservation/internal/events"
	"github.com/frontdesk/service-reservation/internal/handler"
	"github.com/frontdesk/service-reservation/internal/logger"
	"github.com/frontdesk/service-reservation/internal/metrics"
	"github.com/frontdesk/service-reservation/internal/middleware"
	"github.com/frontdesk/service-reservation/internal/pkg/kafka"
	"github.com/frontdesk/service-reservation/internal/repository"
	"github.com/frontdesk/service-reservation/internal/repository/memory"
	"github.com/frontdesk/service-reservation/internal/tracing"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const serviceName = "service-reservation"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTelEndpoint, serviceName, cfg.AppEnv, log)
	if err != nil {
		log.Fatal("failed to set up tracing", zap.Error(err))
	}

	checks := map[string]handler.Pinger{}

	// Initialize storage
	var store reservation.Store
	switch cfg.StorageDriver {
	case config.StorageMemory:
		memStore := memory.NewStore(cfg.LockWaitTimeout)
		if err := repository.SeedDemoRooms(ctx, memStore); err != nil {
			log.Fatal("failed to seed rooms", zap.Error(err))
		}
		log.Warn("using in-memory storage; data is lost on restart")
		store = memStore

	default:
		db, err := database.Connect(cfg.DBConfig, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to get sql.DB", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()
		checks["database"] = sqlDB.PingContext

		// Run database migrations. Every environment gets the same schema,
		// including the check constraints and the room_id trigger.
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsPath, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		store = repository.NewGormStore(db, cfg.LockWaitTimeout)
	}

	// Initialize room cache
	var roomCache application.RoomCache
	if cfg.RedisConfig.Addr != "" {
		redisCache := cache.NewRedisRoomCache(cfg.RedisConfig.Addr, cfg.RedisConfig.RoomTTL, log)
		defer func() { _ = redisCache.Close() }()
		checks["redis"] = redisCache.Ping
		roomCache = redisCache
	}

	// Initialize Kafka producer
	var publisher application.EventPublisher
	if cfg.KafkaConfig.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = reservationEvents.NewKafkaPublisher(kafkaProducer, serviceName)
	} else {
		log.Info("kafka disabled; integration events are not published")
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Initialize application services
	pricingStrategy := reservation.NewNightlyRatePricing()
	bookingIntake := application.NewBookingIntake(store, pricingStrategy, publisher, roomCache, m, log)
	lifecycleEngine := application.NewLifecycleEngine(store, publisher, roomCache, m, log)
	availabilityChecker := application.NewAvailabilityChecker(store, m)
	queryService := application.NewReservationQueryService(store)
	roomService := application.NewRoomService(store, publisher, roomCache, log)

	// Initialize and start housekeeping event consumer in a goroutine
	if cfg.KafkaConfig.Enabled() {
		groupID := cfg.KafkaConfig.GroupPrefix + "reservation-service"
		housekeepingConsumer := reservationEvents.NewHousekeepingConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			roomService,
			m,
			log,
		)
		defer func() { _ = housekeepingConsumer.Close() }()

		go func() {
			log.Info("starting housekeeping event consumer")
			if err := housekeepingConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("housekeeping event consumer error", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	reservationHandler := handler.NewReservationHandler(bookingIntake, lifecycleEngine, queryService)
	roomHandler := handler.NewRoomHandler(roomService, availabilityChecker)
	adminHandler := handler.NewAdminHandler(queryService)
	healthHandler := handler.NewHealthHandler(serviceName, registry, checks)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	writeLimit := middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	// Register routes
	healthHandler.RegisterRoutes(router)
	reservationHandler.RegisterRoutes(&router.RouterGroup, writeLimit)
	roomHandler.RegisterRoutes(&router.RouterGroup, writeLimit)
	adminHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("failed to flush traces", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
