package di

import (
	"time"

	"github.com/seatsurge/eventbooking/internal/handler"
	"github.com/seatsurge/eventbooking/internal/repository"
	"github.com/seatsurge/eventbooking/internal/service"
	"github.com/seatsurge/eventbooking/pkg/database"
	"github.com/seatsurge/eventbooking/pkg/redis"
)

// Container holds all dependencies for the booking service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	ReservationRepo repository.ReservationRepository
	EventRepo       repository.EventRepository

	// Sinks
	Notifier service.Notifier

	// Services
	ReservationService service.ReservationService
	EventService       service.EventService

	// Handlers
	HealthHandler      *handler.HealthHandler
	ReservationHandler *handler.ReservationHandler
	EventHandler       *handler.EventHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB              *database.PostgresDB
	Redis           *redis.Client
	ReservationRepo repository.ReservationRepository
	EventRepo       repository.EventRepository
	Cache           service.AvailabilityCache
	Notifier        service.Notifier
	LockTimeout     time.Duration
	ListLimit       int
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:              cfg.DB,
		Redis:           cfg.Redis,
		ReservationRepo: cfg.ReservationRepo,
		EventRepo:       cfg.EventRepo,
		Notifier:        cfg.Notifier,
	}

	// Initialize services
	c.ReservationService = service.NewReservationService(
		c.ReservationRepo,
		c.EventRepo,
		cfg.Cache,
		c.Notifier,
		&service.ReservationServiceConfig{
			LockTimeout: cfg.LockTimeout,
			ListLimit:   cfg.ListLimit,
		},
	)
	c.EventService = service.NewEventService(
		c.EventRepo,
		cfg.Cache,
		c.Notifier,
		&service.EventServiceConfig{
			LockTimeout: cfg.LockTimeout,
			ListLimit:   cfg.ListLimit,
		},
	)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.ReservationHandler = handler.NewReservationHandler(c.ReservationService)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.ReservationService)

	return c
}
