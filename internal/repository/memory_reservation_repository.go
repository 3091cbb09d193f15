package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/busreserve/bus-reservation/internal/domain"
)

type seatKey struct {
	busID int64
	seat  int
}

// MemoryReservationRepository implements ReservationRepository using
// in-memory storage. The seat index makes Create an atomic
// check-and-insert: the mutex is held across both the uniqueness check and
// the insert, so two racing books for the same seat cannot both succeed.
type MemoryReservationRepository struct {
	reservations map[int64]*domain.Reservation
	bySeat       map[seatKey]int64
	nextID       int64
	mu           sync.RWMutex
}

// NewMemoryReservationRepository creates a new in-memory reservation repository
func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{
		reservations: make(map[int64]*domain.Reservation),
		bySeat:       make(map[seatKey]int64),
	}
}

// Create persists a new reservation and assigns its ID
func (r *MemoryReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := seatKey{busID: reservation.BusID, seat: reservation.SeatNumber}
	if _, taken := r.bySeat[key]; taken {
		return domain.ErrSeatAlreadyBooked
	}

	r.nextID++
	reservation.ID = r.nextID

	res := *reservation
	r.reservations[reservation.ID] = &res
	r.bySeat[key] = reservation.ID
	return nil
}

// Delete removes a reservation by ID
func (r *MemoryReservationRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reservation, ok := r.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}

	delete(r.reservations, id)
	delete(r.bySeat, seatKey{busID: reservation.BusID, seat: reservation.SeatNumber})
	return nil
}

// deleteByBus removes all reservations for a bus. Called by the bus
// repository's cascading delete.
func (r *MemoryReservationRepository) deleteByBus(busID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, reservation := range r.reservations {
		if reservation.BusID == busID {
			delete(r.reservations, id)
			delete(r.bySeat, seatKey{busID: busID, seat: reservation.SeatNumber})
		}
	}
}

// GetByID retrieves a reservation by ID, returning (nil, nil) on miss
func (r *MemoryReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reservation, ok := r.reservations[id]
	if !ok {
		return nil, nil
	}
	res := *reservation
	return &res, nil
}

// List returns all reservations ordered by ID
func (r *MemoryReservationRepository) List(ctx context.Context) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(*domain.Reservation) bool { return true }), nil
}

// ListByBus returns all reservations for a bus
func (r *MemoryReservationRepository) ListByBus(ctx context.Context, busID int64) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(res *domain.Reservation) bool {
		return res.BusID == busID
	}), nil
}

// ListByPassengerName matches the passenger name case-insensitively
func (r *MemoryReservationRepository) ListByPassengerName(ctx context.Context, name string) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(res *domain.Reservation) bool {
		return strings.EqualFold(res.PassengerName, name)
	}), nil
}

// ReservedSeatNumbers returns booked seat numbers for a bus, ascending
func (r *MemoryReservationRepository) ReservedSeatNumbers(ctx context.Context, busID int64) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seats := []int{}
	for key := range r.bySeat {
		if key.busID == busID {
			seats = append(seats, key.seat)
		}
	}
	sort.Ints(seats)
	return seats, nil
}

// SeatTaken checks whether a seat on a bus is already booked
func (r *MemoryReservationRepository) SeatTaken(ctx context.Context, busID int64, seatNumber int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, taken := r.bySeat[seatKey{busID: busID, seat: seatNumber}]
	return taken, nil
}

// CountByBus returns the number of reservations for a bus
func (r *MemoryReservationRepository) CountByBus(ctx context.Context, busID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for key := range r.bySeat {
		if key.busID == busID {
			count++
		}
	}
	return count, nil
}

// collect returns copies of all reservations matching the predicate,
// ordered by ID. Callers must hold at least a read lock.
func (r *MemoryReservationRepository) collect(match func(*domain.Reservation) bool) []*domain.Reservation {
	var reservations []*domain.Reservation
	for _, reservation := range r.reservations {
		if match(reservation) {
			res := *reservation
			reservations = append(reservations, &res)
		}
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations
}

// Ensure MemoryReservationRepository implements ReservationRepository
var _ ReservationRepository = (*MemoryReservationRepository)(nil)
