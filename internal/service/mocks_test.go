package service

import (
	"context"
	"time"

	"github.com/busreserve/bus-reservation/internal/domain"
)

// MockBusRepository is a mock implementation of repository.BusRepository
type MockBusRepository struct {
	CreateFunc                    func(ctx context.Context, bus *domain.Bus) error
	UpdateFunc                    func(ctx context.Context, bus *domain.Bus) error
	DeleteFunc                    func(ctx context.Context, id int64) error
	GetByIDFunc                   func(ctx context.Context, id int64) (*domain.Bus, error)
	GetByNumberFunc               func(ctx context.Context, busNumber string) (*domain.Bus, error)
	ExistsByIDFunc                func(ctx context.Context, id int64) (bool, error)
	ExistsByNumberFunc            func(ctx context.Context, busNumber string) (bool, error)
	ListFunc                      func(ctx context.Context) ([]*domain.Bus, error)
	ListDepartingAfterFunc        func(ctx context.Context, after time.Time) ([]*domain.Bus, error)
	FindByRouteFunc               func(ctx context.Context, source, destination string) ([]*domain.Bus, error)
	FindByRouteDepartingAfterFunc func(ctx context.Context, source, destination string, after time.Time) ([]*domain.Bus, error)
}

func (m *MockBusRepository) Create(ctx context.Context, bus *domain.Bus) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, bus)
	}
	return nil
}

func (m *MockBusRepository) Update(ctx context.Context, bus *domain.Bus) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, bus)
	}
	return nil
}

func (m *MockBusRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockBusRepository) GetByID(ctx context.Context, id int64) (*domain.Bus, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBusRepository) GetByNumber(ctx context.Context, busNumber string) (*domain.Bus, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, busNumber)
	}
	return nil, nil
}

func (m *MockBusRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if m.ExistsByIDFunc != nil {
		return m.ExistsByIDFunc(ctx, id)
	}
	return false, nil
}

func (m *MockBusRepository) ExistsByNumber(ctx context.Context, busNumber string) (bool, error) {
	if m.ExistsByNumberFunc != nil {
		return m.ExistsByNumberFunc(ctx, busNumber)
	}
	return false, nil
}

func (m *MockBusRepository) List(ctx context.Context) ([]*domain.Bus, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockBusRepository) ListDepartingAfter(ctx context.Context, after time.Time) ([]*domain.Bus, error) {
	if m.ListDepartingAfterFunc != nil {
		return m.ListDepartingAfterFunc(ctx, after)
	}
	return nil, nil
}

func (m *MockBusRepository) FindByRoute(ctx context.Context, source, destination string) ([]*domain.Bus, error) {
	if m.FindByRouteFunc != nil {
		return m.FindByRouteFunc(ctx, source, destination)
	}
	return nil, nil
}

func (m *MockBusRepository) FindByRouteDepartingAfter(ctx context.Context, source, destination string, after time.Time) ([]*domain.Bus, error) {
	if m.FindByRouteDepartingAfterFunc != nil {
		return m.FindByRouteDepartingAfterFunc(ctx, source, destination, after)
	}
	return nil, nil
}

// MockReservationRepository is a mock implementation of repository.ReservationRepository
type MockReservationRepository struct {
	CreateFunc              func(ctx context.Context, reservation *domain.Reservation) error
	DeleteFunc              func(ctx context.Context, id int64) error
	GetByIDFunc             func(ctx context.Context, id int64) (*domain.Reservation, error)
	ListFunc                func(ctx context.Context) ([]*domain.Reservation, error)
	ListByBusFunc           func(ctx context.Context, busID int64) ([]*domain.Reservation, error)
	ListByPassengerNameFunc func(ctx context.Context, name string) ([]*domain.Reservation, error)
	ReservedSeatNumbersFunc func(ctx context.Context, busID int64) ([]int, error)
	SeatTakenFunc           func(ctx context.Context, busID int64, seatNumber int) (bool, error)
	CountByBusFunc          func(ctx context.Context, busID int64) (int, error)
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reservation)
	}
	return nil
}

func (m *MockReservationRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReservationRepository) List(ctx context.Context) ([]*domain.Reservation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockReservationRepository) ListByBus(ctx context.Context, busID int64) ([]*domain.Reservation, error) {
	if m.ListByBusFunc != nil {
		return m.ListByBusFunc(ctx, busID)
	}
	return nil, nil
}

func (m *MockReservationRepository) ListByPassengerName(ctx context.Context, name string) ([]*domain.Reservation, error) {
	if m.ListByPassengerNameFunc != nil {
		return m.ListByPassengerNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockReservationRepository) ReservedSeatNumbers(ctx context.Context, busID int64) ([]int, error) {
	if m.ReservedSeatNumbersFunc != nil {
		return m.ReservedSeatNumbersFunc(ctx, busID)
	}
	return nil, nil
}

func (m *MockReservationRepository) SeatTaken(ctx context.Context, busID int64, seatNumber int) (bool, error) {
	if m.SeatTakenFunc != nil {
		return m.SeatTakenFunc(ctx, busID, seatNumber)
	}
	return false, nil
}

func (m *MockReservationRepository) CountByBus(ctx context.Context, busID int64) (int, error) {
	if m.CountByBusFunc != nil {
		return m.CountByBusFunc(ctx, busID)
	}
	return 0, nil
}

// MockSeatCache is a mock implementation of repository.SeatCache
type MockSeatCache struct {
	GetReservedSeatsFunc func(ctx context.Context, busID int64) ([]int, bool, error)
	SetReservedSeatsFunc func(ctx context.Context, busID int64, seats []int) error
	InvalidateFunc       func(ctx context.Context, busID int64) error

	SetCalls        int
	InvalidateCalls int
}

func (m *MockSeatCache) GetReservedSeats(ctx context.Context, busID int64) ([]int, bool, error) {
	if m.GetReservedSeatsFunc != nil {
		return m.GetReservedSeatsFunc(ctx, busID)
	}
	return nil, false, nil
}

func (m *MockSeatCache) SetReservedSeats(ctx context.Context, busID int64, seats []int) error {
	m.SetCalls++
	if m.SetReservedSeatsFunc != nil {
		return m.SetReservedSeatsFunc(ctx, busID, seats)
	}
	return nil
}

func (m *MockSeatCache) Invalidate(ctx context.Context, busID int64) error {
	m.InvalidateCalls++
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, busID)
	}
	return nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	Created   []*domain.Reservation
	Cancelled []*domain.Reservation
	Deleted   []*domain.Bus
	Err       error
}

func (m *MockEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	m.Created = append(m.Created, reservation)
	return m.Err
}

func (m *MockEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	m.Cancelled = append(m.Cancelled, reservation)
	return m.Err
}

func (m *MockEventPublisher) PublishBusDeleted(ctx context.Context, bus *domain.Bus) error {
	m.Deleted = append(m.Deleted, bus)
	return m.Err
}

func (m *MockEventPublisher) Close() error {
	return nil
}
