package repository

import (
	"context"
	"time"

	"github.com/busreserve/bus-reservation/internal/domain"
)

// BusRepository defines persistence operations for buses.
// Lookup methods return (nil, nil) when no bus matches.
type BusRepository interface {
	// Create persists a new bus and assigns its ID.
	// Returns domain.ErrDuplicateBusNumber if the bus number is taken.
	Create(ctx context.Context, bus *domain.Bus) error

	// Update replaces all fields of an existing bus.
	// Returns domain.ErrBusNotFound if the id is unknown and
	// domain.ErrDuplicateBusNumber if the new number collides.
	Update(ctx context.Context, bus *domain.Bus) error

	// Delete removes a bus and all of its reservations in one atomic
	// unit of work. Returns domain.ErrBusNotFound if the id is unknown.
	Delete(ctx context.Context, id int64) error

	GetByID(ctx context.Context, id int64) (*domain.Bus, error)
	GetByNumber(ctx context.Context, busNumber string) (*domain.Bus, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByNumber(ctx context.Context, busNumber string) (bool, error)

	List(ctx context.Context) ([]*domain.Bus, error)
	ListDepartingAfter(ctx context.Context, after time.Time) ([]*domain.Bus, error)
	FindByRoute(ctx context.Context, source, destination string) ([]*domain.Bus, error)
	FindByRouteDepartingAfter(ctx context.Context, source, destination string, after time.Time) ([]*domain.Bus, error)
}

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	// Create persists a new reservation and assigns its ID. Creation is
	// atomic with the seat-uniqueness check: a concurrent insert for the
	// same (bus, seat) pair yields domain.ErrSeatAlreadyBooked for all
	// but one caller.
	Create(ctx context.Context, reservation *domain.Reservation) error

	// Delete removes a reservation. Returns domain.ErrReservationNotFound
	// if the id is unknown.
	Delete(ctx context.Context, id int64) error

	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context) ([]*domain.Reservation, error)
	ListByBus(ctx context.Context, busID int64) ([]*domain.Reservation, error)

	// ListByPassengerName matches the trimmed name case-insensitively.
	ListByPassengerName(ctx context.Context, name string) ([]*domain.Reservation, error)

	// ReservedSeatNumbers returns the booked seat numbers for a bus in
	// ascending order.
	ReservedSeatNumbers(ctx context.Context, busID int64) ([]int, error)

	SeatTaken(ctx context.Context, busID int64, seatNumber int) (bool, error)
	CountByBus(ctx context.Context, busID int64) (int, error)
}

// SeatCache is an optional read-through cache for per-bus reserved seat
// sets. Implementations must tolerate being skipped entirely: a miss or a
// cache error always falls back to the repository.
type SeatCache interface {
	// GetReservedSeats returns the cached seat set and whether it was present.
	GetReservedSeats(ctx context.Context, busID int64) ([]int, bool, error)
	SetReservedSeats(ctx context.Context, busID int64, seats []int) error

	// Invalidate drops the cached set after a booking or cancellation.
	Invalidate(ctx context.Context, busID int64) error
}
