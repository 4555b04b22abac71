package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/eventbooking/internal/cache"
	"github.com/seatsurge/eventbooking/internal/di"
	"github.com/seatsurge/eventbooking/internal/domain"
	"github.com/seatsurge/eventbooking/internal/metrics"
	"github.com/seatsurge/eventbooking/internal/repository"
	"github.com/seatsurge/eventbooking/internal/service"
	"github.com/seatsurge/eventbooking/pkg/config"
	"github.com/seatsurge/eventbooking/pkg/database"
	"github.com/seatsurge/eventbooking/pkg/logger"
	"github.com/seatsurge/eventbooking/pkg/middleware"
	pkgredis "github.com/seatsurge/eventbooking/pkg/redis"
	"github.com/seatsurge/eventbooking/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := "info"
	if cfg.App.Debug {
		level = "debug"
	}
	if err := logger.Init(&logger.Config{
		Level:       level,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting event booking service",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	if err := metrics.Init(); err != nil {
		appLog.Warn("Failed to initialize metrics, continuing without them", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MinIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected",
		zap.Int("min_conns", cfg.Database.MinIdleConns),
		zap.Int("max_conns", cfg.Database.MaxOpenConns),
	)

	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	})
	if err != nil {
		appLog.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))

	// Notifications are best effort: without Kafka the service still takes
	// bookings, confirmations just land in the log.
	var notifier service.Notifier
	notifier, err = service.NewKafkaNotifier(ctx, &service.KafkaNotifierConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.NotificationsTopic,
		ClientID: cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn("Kafka connection failed, using log notifier", zap.Error(err))
		notifier = service.NewLogNotifier()
	} else {
		appLog.Info("Kafka notifier connected", zap.String("topic", cfg.Kafka.NotificationsTopic))
	}
	defer notifier.Close()

	reservationRepo := repository.NewPostgresReservationRepository(db.Pool())
	eventRepo := repository.NewPostgresEventRepository(db.Pool())
	availabilityCache := cache.NewAvailabilityCache(redisClient, cfg.Booking.AvailabilityCacheTTL)

	container := di.NewContainer(&di.ContainerConfig{
		DB:              db,
		Redis:           redisClient,
		ReservationRepo: reservationRepo,
		EventRepo:       eventRepo,
		Cache:           availabilityCache,
		Notifier:        notifier,
		LockTimeout:     cfg.Booking.LockTimeout,
		ListLimit:       cfg.Booking.UserReservationsLimit,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware())

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Public reads
	router.GET("/events", container.EventHandler.List)
	router.GET("/events/:id", container.EventHandler.Get)
	router.GET("/events/:id/availability", container.EventHandler.Availability)

	// Authenticated writes and per-user reads
	auth := router.Group("")
	auth.Use(middleware.Auth(&middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}))
	{
		organizerOnly := middleware.RequireRole(domain.RoleOrganizer, domain.RoleSuperAdmin)
		auth.POST("/events", organizerOnly, container.EventHandler.Create)
		auth.POST("/events/:id/cancel", container.EventHandler.Cancel)
		auth.GET("/admin/events", organizerOnly, container.EventHandler.OrganizerEvents)

		auth.POST("/bookings", container.ReservationHandler.Reserve)
		auth.GET("/bookings", container.ReservationHandler.List)
		auth.POST("/bookings/:id/cancel", container.ReservationHandler.Cancel)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
