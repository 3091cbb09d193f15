package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/busreserve/bus-reservation/internal/domain"
)

func testBus(number string) *domain.Bus {
	return &domain.Bus{
		BusNumber:     number,
		Source:        "Delhi",
		Destination:   "Mumbai",
		Price:         1200,
		DepartureTime: time.Now().Add(24 * time.Hour),
		TotalSeats:    40,
	}
}

func TestMemoryBusRepositoryCreate(t *testing.T) {
	repo := NewMemoryBusRepository(nil)
	ctx := context.Background()

	bus := testBus("BR-101")
	if err := repo.Create(ctx, bus); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if bus.ID == 0 {
		t.Error("ID not assigned")
	}
	if bus.CreatedAt.IsZero() || bus.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	if err := repo.Create(ctx, testBus("BR-101")); !errors.Is(err, domain.ErrDuplicateBusNumber) {
		t.Errorf("Create() duplicate error = %v, want %v", err, domain.ErrDuplicateBusNumber)
	}
}

func TestMemoryBusRepositoryGetByID(t *testing.T) {
	repo := NewMemoryBusRepository(nil)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetByID() = %v, want nil on miss", got)
	}

	bus := testBus("BR-101")
	if err := repo.Create(ctx, bus); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err = repo.GetByID(ctx, bus.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil || got.BusNumber != "BR-101" {
		t.Errorf("GetByID() = %v, want BR-101", got)
	}

	// Returned value is a copy; mutating it must not affect the store
	got.BusNumber = "MUTATED"
	again, _ := repo.GetByID(ctx, bus.ID)
	if again.BusNumber != "BR-101" {
		t.Errorf("stored bus mutated through returned copy: %q", again.BusNumber)
	}
}

func TestMemoryBusRepositoryUpdateReindexesNumber(t *testing.T) {
	repo := NewMemoryBusRepository(nil)
	ctx := context.Background()

	bus := testBus("BR-101")
	if err := repo.Create(ctx, bus); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated := testBus("BR-202")
	updated.ID = bus.ID
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Old number is released, new number resolves
	if got, _ := repo.GetByNumber(ctx, "BR-101"); got != nil {
		t.Errorf("GetByNumber(old) = %v, want nil", got)
	}
	if got, _ := repo.GetByNumber(ctx, "BR-202"); got == nil || got.ID != bus.ID {
		t.Errorf("GetByNumber(new) = %v, want bus %d", got, bus.ID)
	}

	missing := testBus("BR-303")
	missing.ID = 999
	if err := repo.Update(ctx, missing); !errors.Is(err, domain.ErrBusNotFound) {
		t.Errorf("Update() error = %v, want %v", err, domain.ErrBusNotFound)
	}
}

func TestMemoryBusRepositoryDeleteCascades(t *testing.T) {
	reservations := NewMemoryReservationRepository()
	repo := NewMemoryBusRepository(reservations)
	ctx := context.Background()

	bus := testBus("BR-101")
	if err := repo.Create(ctx, bus); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	other := testBus("BR-202")
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for seat, busID := range map[int]int64{1: bus.ID, 2: bus.ID, 3: other.ID} {
		err := reservations.Create(ctx, &domain.Reservation{
			BusID:         busID,
			PassengerName: "Asha",
			SeatNumber:    seat,
		})
		if err != nil {
			t.Fatalf("Create reservation error = %v", err)
		}
	}

	if err := repo.Delete(ctx, bus.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	remaining, err := reservations.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0].BusID != other.ID {
		t.Errorf("remaining reservations = %v, want only the other bus's", remaining)
	}

	if err := repo.Delete(ctx, bus.ID); !errors.Is(err, domain.ErrBusNotFound) {
		t.Errorf("Delete() error = %v, want %v", err, domain.ErrBusNotFound)
	}
}

func TestMemoryBusRepositoryRouteQueries(t *testing.T) {
	repo := NewMemoryBusRepository(nil)
	ctx := context.Background()
	now := time.Now()

	early := testBus("BR-101")
	early.DepartureTime = now.Add(time.Hour)
	late := testBus("BR-102")
	late.DepartureTime = now.Add(5 * time.Hour)
	elsewhere := testBus("BR-201")
	elsewhere.Destination = "Jaipur"

	for _, bus := range []*domain.Bus{early, late, elsewhere} {
		if err := repo.Create(ctx, bus); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	onRoute, err := repo.FindByRoute(ctx, "Delhi", "Mumbai")
	if err != nil {
		t.Fatalf("FindByRoute() error = %v", err)
	}
	if len(onRoute) != 2 {
		t.Errorf("FindByRoute() returned %d buses, want 2", len(onRoute))
	}

	afterThree, err := repo.FindByRouteDepartingAfter(ctx, "Delhi", "Mumbai", now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("FindByRouteDepartingAfter() error = %v", err)
	}
	if len(afterThree) != 1 || afterThree[0].BusNumber != "BR-102" {
		t.Errorf("FindByRouteDepartingAfter() = %v, want only BR-102", afterThree)
	}

	// Boundary is strict: a bus departing exactly at the cutoff is excluded
	atCutoff, err := repo.ListDepartingAfter(ctx, early.DepartureTime)
	if err != nil {
		t.Fatalf("ListDepartingAfter() error = %v", err)
	}
	for _, bus := range atCutoff {
		if bus.BusNumber == "BR-101" {
			t.Error("bus departing exactly at cutoff included")
		}
	}
}

func TestMemoryReservationRepositoryCreateAtomic(t *testing.T) {
	repo := NewMemoryReservationRepository()

	const attempts = 100
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(context.Background(), &domain.Reservation{
				BusID:         1,
				PassengerName: "Asha",
				SeatNumber:    7,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else if !errors.Is(err, domain.ErrSeatAlreadyBooked) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}

	count, err := repo.CountByBus(context.Background(), 1)
	if err != nil {
		t.Fatalf("CountByBus() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountByBus() = %d, want 1", count)
	}
}

func TestMemoryReservationRepositoryDelete(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()

	reservation := &domain.Reservation{BusID: 1, PassengerName: "Asha", SeatNumber: 3}
	if err := repo.Create(ctx, reservation); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, reservation.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// Seat index is released with the row
	taken, err := repo.SeatTaken(ctx, 1, 3)
	if err != nil {
		t.Fatalf("SeatTaken() error = %v", err)
	}
	if taken {
		t.Error("seat still indexed after delete")
	}

	if err := repo.Delete(ctx, reservation.ID); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Errorf("Delete() error = %v, want %v", err, domain.ErrReservationNotFound)
	}
}

func TestMemoryReservationRepositoryReservedSeatNumbersSorted(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()

	for _, seat := range []int{9, 2, 5, 1} {
		err := repo.Create(ctx, &domain.Reservation{BusID: 1, PassengerName: "Asha", SeatNumber: seat})
		if err != nil {
			t.Fatalf("Create(%d) error = %v", seat, err)
		}
	}
	if err := repo.Create(ctx, &domain.Reservation{BusID: 2, PassengerName: "Ravi", SeatNumber: 4}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	seats, err := repo.ReservedSeatNumbers(ctx, 1)
	if err != nil {
		t.Fatalf("ReservedSeatNumbers() error = %v", err)
	}

	want := []int{1, 2, 5, 9}
	if len(seats) != len(want) {
		t.Fatalf("ReservedSeatNumbers() = %v, want %v", seats, want)
	}
	for i := range want {
		if seats[i] != want[i] {
			t.Errorf("seats[%d] = %d, want %d", i, seats[i], want[i])
		}
	}
}

func TestMemoryReservationRepositoryReservedSeatNumbersEmpty(t *testing.T) {
	repo := NewMemoryReservationRepository()

	seats, err := repo.ReservedSeatNumbers(context.Background(), 1)
	if err != nil {
		t.Fatalf("ReservedSeatNumbers() error = %v", err)
	}
	// Non-nil so the set serializes as [] rather than null
	if seats == nil {
		t.Fatal("ReservedSeatNumbers() = nil, want empty slice")
	}
	if len(seats) != 0 {
		t.Errorf("ReservedSeatNumbers() = %v, want empty", seats)
	}
}

func TestMemoryReservationRepositoryListByPassengerName(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()

	for seat, name := range map[int]string{1: "Asha Patel", 2: "ASHA PATEL", 3: "Ravi"} {
		err := repo.Create(ctx, &domain.Reservation{BusID: 1, PassengerName: name, SeatNumber: seat})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := repo.ListByPassengerName(ctx, "asha patel")
	if err != nil {
		t.Fatalf("ListByPassengerName() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListByPassengerName() returned %d reservations, want 2", len(got))
	}
}
