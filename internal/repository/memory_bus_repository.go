package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/busreserve/bus-reservation/internal/domain"
)

// MemoryBusRepository implements BusRepository using in-memory storage.
// Useful for testing and development.
type MemoryBusRepository struct {
	buses    map[int64]*domain.Bus
	byNumber map[string]int64
	nextID   int64
	mu       sync.RWMutex

	// reservations, when set, is used by Delete to cascade.
	reservations *MemoryReservationRepository
}

// NewMemoryBusRepository creates a new in-memory bus repository.
// The reservation repository may be nil; Delete then removes the bus only.
func NewMemoryBusRepository(reservations *MemoryReservationRepository) *MemoryBusRepository {
	return &MemoryBusRepository{
		buses:        make(map[int64]*domain.Bus),
		byNumber:     make(map[string]int64),
		reservations: reservations,
	}
}

// Create persists a new bus and assigns its ID
func (r *MemoryBusRepository) Create(ctx context.Context, bus *domain.Bus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byNumber[bus.BusNumber]; exists {
		return domain.ErrDuplicateBusNumber
	}

	r.nextID++
	now := time.Now()
	bus.ID = r.nextID
	bus.CreatedAt = now
	bus.UpdatedAt = now

	b := *bus
	r.buses[bus.ID] = &b
	r.byNumber[bus.BusNumber] = bus.ID
	return nil
}

// Update replaces all fields of an existing bus
func (r *MemoryBusRepository) Update(ctx context.Context, bus *domain.Bus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.buses[bus.ID]
	if !ok {
		return domain.ErrBusNotFound
	}

	if id, taken := r.byNumber[bus.BusNumber]; taken && id != bus.ID {
		return domain.ErrDuplicateBusNumber
	}

	delete(r.byNumber, existing.BusNumber)
	bus.CreatedAt = existing.CreatedAt
	bus.UpdatedAt = time.Now()

	b := *bus
	r.buses[bus.ID] = &b
	r.byNumber[bus.BusNumber] = bus.ID
	return nil
}

// Delete removes a bus and cascades to its reservations
func (r *MemoryBusRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bus, ok := r.buses[id]
	if !ok {
		return domain.ErrBusNotFound
	}

	delete(r.buses, id)
	delete(r.byNumber, bus.BusNumber)

	if r.reservations != nil {
		r.reservations.deleteByBus(id)
	}
	return nil
}

// GetByID retrieves a bus by ID, returning (nil, nil) on miss
func (r *MemoryBusRepository) GetByID(ctx context.Context, id int64) (*domain.Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bus, ok := r.buses[id]
	if !ok {
		return nil, nil
	}
	b := *bus
	return &b, nil
}

// GetByNumber retrieves a bus by its number, returning (nil, nil) on miss
func (r *MemoryBusRepository) GetByNumber(ctx context.Context, busNumber string) (*domain.Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[busNumber]
	if !ok {
		return nil, nil
	}
	b := *r.buses[id]
	return &b, nil
}

// ExistsByID checks whether a bus with the given ID exists
func (r *MemoryBusRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.buses[id]
	return ok, nil
}

// ExistsByNumber checks whether a bus with the given number exists
func (r *MemoryBusRepository) ExistsByNumber(ctx context.Context, busNumber string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byNumber[busNumber]
	return ok, nil
}

// List returns all buses in insertion order
func (r *MemoryBusRepository) List(ctx context.Context) ([]*domain.Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(*domain.Bus) bool { return true }), nil
}

// ListDepartingAfter returns buses departing strictly after the given time
func (r *MemoryBusRepository) ListDepartingAfter(ctx context.Context, after time.Time) ([]*domain.Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(b *domain.Bus) bool {
		return b.DepartureTime.After(after)
	}), nil
}

// FindByRoute returns buses matching source and destination exactly
func (r *MemoryBusRepository) FindByRoute(ctx context.Context, source, destination string) ([]*domain.Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(b *domain.Bus) bool {
		return b.Source == source && b.Destination == destination
	}), nil
}

// FindByRouteDepartingAfter returns route matches departing strictly after the given time
func (r *MemoryBusRepository) FindByRouteDepartingAfter(ctx context.Context, source, destination string, after time.Time) ([]*domain.Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(b *domain.Bus) bool {
		return b.Source == source && b.Destination == destination && b.DepartureTime.After(after)
	}), nil
}

// collect returns copies of all buses matching the predicate, ordered by ID.
// Callers must hold at least a read lock.
func (r *MemoryBusRepository) collect(match func(*domain.Bus) bool) []*domain.Bus {
	var buses []*domain.Bus
	for _, bus := range r.buses {
		if match(bus) {
			b := *bus
			buses = append(buses, &b)
		}
	}
	sort.Slice(buses, func(i, j int) bool { return buses[i].ID < buses[j].ID })
	return buses
}

// Ensure MemoryBusRepository implements BusRepository
var _ BusRepository = (*MemoryBusRepository)(nil)
