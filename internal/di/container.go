package di

import (
	"time"

	"go.uber.org/zap"

	"github.com/busreserve/bus-reservation/internal/handler"
	"github.com/busreserve/bus-reservation/internal/repository"
	"github.com/busreserve/bus-reservation/internal/service"
	"github.com/busreserve/bus-reservation/pkg/database"
	"github.com/busreserve/bus-reservation/pkg/redis"
)

// Container holds all dependencies for the reservation service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	BusRepo         repository.BusRepository
	ReservationRepo repository.ReservationRepository
	SeatCache       repository.SeatCache

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	BusService         service.BusService
	ReservationService service.ReservationService

	// Handlers
	HealthHandler      *handler.HealthHandler
	BusHandler         *handler.BusHandler
	ReservationHandler *handler.ReservationHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB              *database.PostgresDB
	Redis           *redis.Client
	BusRepo         repository.BusRepository
	ReservationRepo repository.ReservationRepository
	EventPublisher  service.EventPublisher
	Logger          *zap.Logger
	SeatCacheTTL    time.Duration
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:              cfg.DB,
		Redis:           cfg.Redis,
		BusRepo:         cfg.BusRepo,
		ReservationRepo: cfg.ReservationRepo,
		EventPublisher:  cfg.EventPublisher,
	}

	if cfg.Redis != nil {
		c.SeatCache = repository.NewRedisSeatCache(cfg.Redis, cfg.SeatCacheTTL)
	}

	// Initialize services. Both share one per-bus lock set so bus deletes
	// and seat bookings on the same bus serialize.
	seatLocks := service.NewSeatLocks()
	c.BusService = service.NewBusService(
		c.BusRepo,
		c.ReservationRepo,
		c.EventPublisher,
		&service.BusServiceConfig{
			Locks:  seatLocks,
			Logger: cfg.Logger,
		},
	)
	c.ReservationService = service.NewReservationService(
		c.BusRepo,
		c.ReservationRepo,
		c.EventPublisher,
		&service.ReservationServiceConfig{
			SeatCache: c.SeatCache,
			Locks:     seatLocks,
			Logger:    cfg.Logger,
		},
	)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.BusHandler = handler.NewBusHandler(c.BusService)
	c.ReservationHandler = handler.NewReservationHandler(c.ReservationService)

	return c
}
