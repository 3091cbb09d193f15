package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/busreserve/bus-reservation/internal/domain"
	"github.com/busreserve/bus-reservation/internal/metrics"
	"github.com/busreserve/bus-reservation/internal/repository"
	"github.com/busreserve/bus-reservation/pkg/telemetry"
)

// ReservationService defines the interface for seat inventory business logic
type ReservationService interface {
	// BookSeat reserves a single seat on a bus for a passenger
	BookSeat(ctx context.Context, busID int64, passengerName string, seatNumber int) (*domain.Reservation, error)

	// CancelReservation cancels a reservation by ID
	CancelReservation(ctx context.Context, id int64) error

	// GetReservationByID retrieves a reservation by ID
	GetReservationByID(ctx context.Context, id int64) (*domain.Reservation, error)

	// ListReservations returns all reservations
	ListReservations(ctx context.Context) ([]*domain.Reservation, error)

	// ListReservationsByBus returns all reservations for a bus
	ListReservationsByBus(ctx context.Context, busID int64) ([]*domain.Reservation, error)

	// ListReservationsByPassenger returns reservations matching a passenger name
	ListReservationsByPassenger(ctx context.Context, passengerName string) ([]*domain.Reservation, error)

	// IsSeatAvailable reports whether a seat on a bus is free
	IsSeatAvailable(ctx context.Context, busID int64, seatNumber int) (bool, error)

	// ReservedSeatNumbers returns booked seat numbers for a bus, ascending
	ReservedSeatNumbers(ctx context.Context, busID int64) ([]int, error)

	// AvailableSeatNumbers returns free seat numbers for a bus, ascending
	AvailableSeatNumbers(ctx context.Context, busID int64) ([]int, error)

	// ReservationCount returns the number of reservations for a bus
	ReservationCount(ctx context.Context, busID int64) (int, error)
}

// reservationService implements ReservationService
type reservationService struct {
	busRepo         repository.BusRepository
	reservationRepo repository.ReservationRepository
	seatCache       repository.SeatCache
	eventPublisher  EventPublisher
	locks           *SeatLocks
	logger          *zap.Logger
	now             func() time.Time
}

// ReservationServiceConfig contains configuration for the reservation service
type ReservationServiceConfig struct {
	// SeatCache is optional; reads fall through to the repository without it
	SeatCache repository.SeatCache
	// Locks is the per-bus lock set, shared with the bus service
	Locks  *SeatLocks
	Logger *zap.Logger
	// Now overrides the clock, used in tests
	Now func() time.Time
}

// NewReservationService creates a new reservation service
func NewReservationService(
	busRepo repository.BusRepository,
	reservationRepo repository.ReservationRepository,
	eventPublisher EventPublisher,
	cfg *ReservationServiceConfig,
) ReservationService {
	logger := zap.NewNop()
	now := time.Now
	var seatCache repository.SeatCache
	var locks *SeatLocks
	if cfg != nil {
		if cfg.Logger != nil {
			logger = cfg.Logger
		}
		if cfg.Now != nil {
			now = cfg.Now
		}
		seatCache = cfg.SeatCache
		locks = cfg.Locks
	}
	if locks == nil {
		locks = NewSeatLocks()
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &reservationService{
		busRepo:         busRepo,
		reservationRepo: reservationRepo,
		seatCache:       seatCache,
		eventPublisher:  eventPublisher,
		locks:           locks,
		logger:          logger,
		now:             now,
	}
}

// BookSeat reserves a single seat on a bus for a passenger. Mutations on the
// same bus are serialized by a per-bus lock; the store's unique constraint
// backs the seat check so two racing books for one seat yield one winner.
func (s *reservationService) BookSeat(ctx context.Context, busID int64, passengerName string, seatNumber int) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.book_seat")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("bus_id", busID),
		attribute.Int("seat_number", seatNumber),
	)

	mu := s.locks.lock(busID)
	defer mu.Unlock()

	bus, err := s.busRepo.GetByID(ctx, busID)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		span.SetStatus(codes.Error, "bus not found")
		return nil, domain.ErrBusNotFound
	}

	name := strings.TrimSpace(passengerName)
	if name == "" {
		span.SetStatus(codes.Error, "invalid passenger name")
		return nil, domain.ErrInvalidPassengerName
	}

	if seatNumber < 1 || seatNumber > bus.TotalSeats {
		span.SetStatus(codes.Error, "invalid seat number")
		return nil, domain.ErrInvalidSeatNumber
	}

	if bus.HasDeparted(s.now()) {
		span.SetStatus(codes.Error, "bus departed")
		return nil, domain.ErrBusDeparted
	}

	taken, err := s.reservationRepo.SeatTaken(ctx, busID, seatNumber)
	if err != nil {
		return nil, err
	}
	if taken {
		span.SetStatus(codes.Error, "seat already booked")
		metrics.RecordBookingFailure(ctx, busID, "seat_already_booked")
		return nil, domain.ErrSeatAlreadyBooked
	}

	count, err := s.reservationRepo.CountByBus(ctx, busID)
	if err != nil {
		return nil, err
	}
	if count >= bus.TotalSeats {
		span.SetStatus(codes.Error, "bus full")
		metrics.RecordBookingFailure(ctx, busID, "bus_full")
		return nil, domain.ErrBusFull
	}

	reservation := &domain.Reservation{
		BusID:           busID,
		PassengerName:   name,
		SeatNumber:      seatNumber,
		ReservationDate: s.now(),
	}

	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		if err == domain.ErrSeatAlreadyBooked {
			metrics.RecordBookingFailure(ctx, busID, "seat_already_booked")
		}
		return nil, err
	}

	s.invalidateSeatCache(ctx, busID)
	metrics.RecordBooking(ctx, busID, seatNumber)

	if err := s.eventPublisher.PublishReservationCreated(ctx, reservation); err != nil {
		s.logger.Warn("failed to publish reservation created event",
			zap.Int64("reservation_id", reservation.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("seat booked",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("bus_id", busID),
		zap.Int("seat_number", seatNumber),
	)

	return reservation, nil
}

// CancelReservation cancels a reservation by ID
func (s *reservationService) CancelReservation(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.cancel")
	defer span.End()

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if reservation == nil {
		span.SetStatus(codes.Error, "reservation not found")
		return domain.ErrReservationNotFound
	}

	mu := s.locks.lock(reservation.BusID)
	defer mu.Unlock()

	bus, err := s.busRepo.GetByID(ctx, reservation.BusID)
	if err != nil {
		return err
	}
	if bus != nil && bus.HasDeparted(s.now()) {
		span.SetStatus(codes.Error, "bus departed")
		return domain.ErrBusDeparted
	}

	if err := s.reservationRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateSeatCache(ctx, reservation.BusID)
	metrics.RecordCancellation(ctx, reservation.BusID)

	if err := s.eventPublisher.PublishReservationCancelled(ctx, reservation); err != nil {
		s.logger.Warn("failed to publish reservation cancelled event",
			zap.Int64("reservation_id", id),
			zap.Error(err),
		)
	}

	s.logger.Info("reservation cancelled",
		zap.Int64("reservation_id", id),
		zap.Int64("bus_id", reservation.BusID),
		zap.Int("seat_number", reservation.SeatNumber),
	)

	return nil
}

// GetReservationByID retrieves a reservation by ID
func (s *reservationService) GetReservationByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, domain.ErrReservationNotFound
	}
	return reservation, nil
}

// ListReservations returns all reservations
func (s *reservationService) ListReservations(ctx context.Context) ([]*domain.Reservation, error) {
	s.logger.Debug("listing reservations")
	return s.reservationRepo.List(ctx)
}

// ListReservationsByBus returns all reservations for a bus
func (s *reservationService) ListReservationsByBus(ctx context.Context, busID int64) ([]*domain.Reservation, error) {
	exists, err := s.busRepo.ExistsByID(ctx, busID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrBusNotFound
	}
	return s.reservationRepo.ListByBus(ctx, busID)
}

// ListReservationsByPassenger returns reservations matching a passenger name
// case-insensitively
func (s *reservationService) ListReservationsByPassenger(ctx context.Context, passengerName string) ([]*domain.Reservation, error) {
	name := strings.TrimSpace(passengerName)
	if name == "" {
		return nil, domain.ErrInvalidPassengerName
	}
	return s.reservationRepo.ListByPassengerName(ctx, name)
}

// IsSeatAvailable reports whether a seat on a bus is free
func (s *reservationService) IsSeatAvailable(ctx context.Context, busID int64, seatNumber int) (bool, error) {
	exists, err := s.busRepo.ExistsByID(ctx, busID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrBusNotFound
	}

	taken, err := s.reservationRepo.SeatTaken(ctx, busID, seatNumber)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// ReservedSeatNumbers returns booked seat numbers for a bus, ascending
func (s *reservationService) ReservedSeatNumbers(ctx context.Context, busID int64) ([]int, error) {
	exists, err := s.busRepo.ExistsByID(ctx, busID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrBusNotFound
	}

	if s.seatCache != nil {
		seats, hit, err := s.seatCache.GetReservedSeats(ctx, busID)
		if err != nil {
			s.logger.Warn("seat cache read failed", zap.Int64("bus_id", busID), zap.Error(err))
		} else if hit {
			return seats, nil
		}
	}

	seats, err := s.reservationRepo.ReservedSeatNumbers(ctx, busID)
	if err != nil {
		return nil, err
	}

	if s.seatCache != nil {
		if err := s.seatCache.SetReservedSeats(ctx, busID, seats); err != nil {
			s.logger.Warn("seat cache write failed", zap.Int64("bus_id", busID), zap.Error(err))
		}
	}

	return seats, nil
}

// AvailableSeatNumbers returns free seat numbers for a bus, ascending
func (s *reservationService) AvailableSeatNumbers(ctx context.Context, busID int64) ([]int, error) {
	bus, err := s.busRepo.GetByID(ctx, busID)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, domain.ErrBusNotFound
	}

	reserved, err := s.ReservedSeatNumbers(ctx, busID)
	if err != nil {
		return nil, err
	}

	taken := make(map[int]bool, len(reserved))
	for _, seat := range reserved {
		taken[seat] = true
	}

	available := make([]int, 0, bus.TotalSeats-len(reserved))
	for seat := 1; seat <= bus.TotalSeats; seat++ {
		if !taken[seat] {
			available = append(available, seat)
		}
	}
	return available, nil
}

// ReservationCount returns the number of reservations for a bus
func (s *reservationService) ReservationCount(ctx context.Context, busID int64) (int, error) {
	exists, err := s.busRepo.ExistsByID(ctx, busID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.ErrBusNotFound
	}
	return s.reservationRepo.CountByBus(ctx, busID)
}

func (s *reservationService) invalidateSeatCache(ctx context.Context, busID int64) {
	if s.seatCache == nil {
		return
	}
	if err := s.seatCache.Invalidate(ctx, busID); err != nil {
		s.logger.Warn("seat cache invalidation failed", zap.Int64("bus_id", busID), zap.Error(err))
	}
}
