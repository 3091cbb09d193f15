package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/busreserve/bus-reservation/internal/domain"
	"github.com/busreserve/bus-reservation/internal/repository"
	"github.com/busreserve/bus-reservation/pkg/telemetry"
)

// BusService defines the interface for bus registry business logic
type BusService interface {
	// CreateBus validates and persists a new bus
	CreateBus(ctx context.Context, bus *domain.Bus) (*domain.Bus, error)

	// UpdateBus replaces all fields of an existing bus
	UpdateBus(ctx context.Context, id int64, bus *domain.Bus) (*domain.Bus, error)

	// DeleteBus removes a bus and all its reservations
	DeleteBus(ctx context.Context, id int64) error

	// GetBusByID retrieves a bus by ID
	GetBusByID(ctx context.Context, id int64) (*domain.Bus, error)

	// GetBusByNumber retrieves a bus by its unique number
	GetBusByNumber(ctx context.Context, busNumber string) (*domain.Bus, error)

	// ListBuses returns all buses
	ListBuses(ctx context.Context) ([]*domain.Bus, error)

	// ListUpcomingBuses returns buses departing strictly in the future
	ListUpcomingBuses(ctx context.Context) ([]*domain.Bus, error)

	// SearchBuses returns buses on the given route (exact match)
	SearchBuses(ctx context.Context, source, destination string) ([]*domain.Bus, error)

	// SearchBusesByRouteAndDate returns route matches departing strictly after the given time
	SearchBusesByRouteAndDate(ctx context.Context, source, destination string, after time.Time) ([]*domain.Bus, error)

	// SearchAvailableBuses returns route matches that still have free seats
	SearchAvailableBuses(ctx context.Context, source, destination string) ([]*domain.Bus, error)

	// BusNumberExists checks whether a bus number is taken
	BusNumberExists(ctx context.Context, busNumber string) (bool, error)

	// AvailableSeats returns the number of unreserved seats on a bus
	AvailableSeats(ctx context.Context, busID int64) (int, error)
}

// busService implements BusService
type busService struct {
	busRepo         repository.BusRepository
	reservationRepo repository.ReservationRepository
	eventPublisher  EventPublisher
	locks           *SeatLocks
	logger          *zap.Logger
	now             func() time.Time
}

// BusServiceConfig contains configuration for the bus service
type BusServiceConfig struct {
	// Locks is the per-bus lock set, shared with the reservation service so
	// deletes and bookings on one bus serialize
	Locks  *SeatLocks
	Logger *zap.Logger
	// Now overrides the clock, used in tests
	Now func() time.Time
}

// NewBusService creates a new bus service
func NewBusService(
	busRepo repository.BusRepository,
	reservationRepo repository.ReservationRepository,
	eventPublisher EventPublisher,
	cfg *BusServiceConfig,
) BusService {
	logger := zap.NewNop()
	now := time.Now
	var locks *SeatLocks
	if cfg != nil {
		if cfg.Logger != nil {
			logger = cfg.Logger
		}
		if cfg.Now != nil {
			now = cfg.Now
		}
		locks = cfg.Locks
	}
	if locks == nil {
		locks = NewSeatLocks()
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &busService{
		busRepo:         busRepo,
		reservationRepo: reservationRepo,
		eventPublisher:  eventPublisher,
		locks:           locks,
		logger:          logger,
		now:             now,
	}
}

// validateBus checks bus fields in a fixed order; the first failure wins.
func validateBus(bus *domain.Bus) error {
	if bus == nil || strings.TrimSpace(bus.BusNumber) == "" {
		return domain.ErrBusNumberRequired
	}
	if strings.TrimSpace(bus.Source) == "" {
		return domain.ErrSourceRequired
	}
	if strings.TrimSpace(bus.Destination) == "" {
		return domain.ErrDestinationRequired
	}
	if strings.EqualFold(strings.TrimSpace(bus.Source), strings.TrimSpace(bus.Destination)) {
		return domain.ErrSameSourceDestination
	}
	if bus.Price <= 0 {
		return domain.ErrInvalidPrice
	}
	if bus.DepartureTime.IsZero() {
		return domain.ErrDepartureTimeRequired
	}
	if bus.TotalSeats < domain.MinTotalSeats || bus.TotalSeats > domain.MaxTotalSeats {
		return domain.ErrInvalidTotalSeats
	}
	return nil
}

// CreateBus validates and persists a new bus
func (s *busService) CreateBus(ctx context.Context, bus *domain.Bus) (*domain.Bus, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.bus.create")
	defer span.End()

	if err := validateBus(bus); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	exists, err := s.busRepo.ExistsByNumber(ctx, bus.BusNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		span.SetStatus(codes.Error, "duplicate bus number")
		return nil, domain.ErrDuplicateBusNumber
	}

	if err := s.busRepo.Create(ctx, bus); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("bus_id", bus.ID))
	s.logger.Info("bus created",
		zap.Int64("bus_id", bus.ID),
		zap.String("bus_number", bus.BusNumber),
		zap.String("source", bus.Source),
		zap.String("destination", bus.Destination),
	)

	return bus, nil
}

// UpdateBus replaces all fields of an existing bus
func (s *busService) UpdateBus(ctx context.Context, id int64, bus *domain.Bus) (*domain.Bus, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.bus.update")
	defer span.End()

	existing, err := s.busRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		span.SetStatus(codes.Error, "bus not found")
		return nil, domain.ErrBusNotFound
	}

	if err := validateBus(bus); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Duplicate check only when the number changed
	if bus.BusNumber != existing.BusNumber {
		taken, err := s.busRepo.ExistsByNumber(ctx, bus.BusNumber)
		if err != nil {
			return nil, err
		}
		if taken {
			span.SetStatus(codes.Error, "duplicate bus number")
			return nil, domain.ErrDuplicateBusNumber
		}
	}

	bus.ID = id
	if err := s.busRepo.Update(ctx, bus); err != nil {
		return nil, err
	}

	s.logger.Info("bus updated",
		zap.Int64("bus_id", id),
		zap.String("bus_number", bus.BusNumber),
	)

	return bus, nil
}

// DeleteBus removes a bus and all its reservations. It holds the per-bus
// seat lock so no booking can slip in between the cascade and the delete.
func (s *busService) DeleteBus(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "service.bus.delete")
	defer span.End()

	mu := s.locks.lock(id)
	defer mu.Unlock()

	bus, err := s.busRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bus == nil {
		span.SetStatus(codes.Error, "bus not found")
		return domain.ErrBusNotFound
	}

	if err := s.busRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.locks.forget(id)

	if err := s.eventPublisher.PublishBusDeleted(ctx, bus); err != nil {
		s.logger.Warn("failed to publish bus deleted event",
			zap.Int64("bus_id", id),
			zap.Error(err),
		)
	}

	s.logger.Info("bus deleted",
		zap.Int64("bus_id", id),
		zap.String("bus_number", bus.BusNumber),
	)

	return nil
}

// GetBusByID retrieves a bus by ID
func (s *busService) GetBusByID(ctx context.Context, id int64) (*domain.Bus, error) {
	bus, err := s.busRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, domain.ErrBusNotFound
	}
	return bus, nil
}

// GetBusByNumber retrieves a bus by its unique number
func (s *busService) GetBusByNumber(ctx context.Context, busNumber string) (*domain.Bus, error) {
	bus, err := s.busRepo.GetByNumber(ctx, busNumber)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, domain.ErrBusNotFound
	}
	return bus, nil
}

// ListBuses returns all buses
func (s *busService) ListBuses(ctx context.Context) ([]*domain.Bus, error) {
	s.logger.Debug("listing buses")
	return s.busRepo.List(ctx)
}

// ListUpcomingBuses returns buses departing strictly in the future
func (s *busService) ListUpcomingBuses(ctx context.Context) ([]*domain.Bus, error) {
	return s.busRepo.ListDepartingAfter(ctx, s.now())
}

// SearchBuses returns buses on the given route (exact match)
func (s *busService) SearchBuses(ctx context.Context, source, destination string) ([]*domain.Bus, error) {
	s.logger.Debug("searching buses",
		zap.String("source", source),
		zap.String("destination", destination),
	)
	return s.busRepo.FindByRoute(ctx, source, destination)
}

// SearchBusesByRouteAndDate returns route matches departing strictly after the given time
func (s *busService) SearchBusesByRouteAndDate(ctx context.Context, source, destination string, after time.Time) ([]*domain.Bus, error) {
	return s.busRepo.FindByRouteDepartingAfter(ctx, source, destination, after)
}

// SearchAvailableBuses returns route matches that still have free seats
func (s *busService) SearchAvailableBuses(ctx context.Context, source, destination string) ([]*domain.Bus, error) {
	buses, err := s.busRepo.FindByRoute(ctx, source, destination)
	if err != nil {
		return nil, err
	}

	available := make([]*domain.Bus, 0, len(buses))
	for _, bus := range buses {
		count, err := s.reservationRepo.CountByBus(ctx, bus.ID)
		if err != nil {
			return nil, err
		}
		if count < bus.TotalSeats {
			available = append(available, bus)
		}
	}
	return available, nil
}

// BusNumberExists checks whether a bus number is taken
func (s *busService) BusNumberExists(ctx context.Context, busNumber string) (bool, error) {
	return s.busRepo.ExistsByNumber(ctx, busNumber)
}

// AvailableSeats returns the number of unreserved seats on a bus
func (s *busService) AvailableSeats(ctx context.Context, busID int64) (int, error) {
	bus, err := s.busRepo.GetByID(ctx, busID)
	if err != nil {
		return 0, err
	}
	if bus == nil {
		return 0, domain.ErrBusNotFound
	}

	count, err := s.reservationRepo.CountByBus(ctx, busID)
	if err != nil {
		return 0, err
	}
	return bus.TotalSeats - count, nil
}
