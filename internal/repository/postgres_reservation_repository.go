package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/busreserve/bus-reservation/internal/domain"
)

// PostgresReservationRepository implements ReservationRepository using
// PostgreSQL. The reservations table carries a UNIQUE (bus_id, seat_number)
// constraint, so the insert is the seat-uniqueness check: a racing insert
// for the same seat fails with a unique violation and is reported as
// domain.ErrSeatAlreadyBooked.
type PostgresReservationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReservationRepository creates a new PostgresReservationRepository
func NewPostgresReservationRepository(pool *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{pool: pool}
}

const reservationColumns = `id, bus_id, passenger_name, seat_number, reservation_date`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	reservation := &domain.Reservation{}
	err := row.Scan(
		&reservation.ID,
		&reservation.BusID,
		&reservation.PassengerName,
		&reservation.SeatNumber,
		&reservation.ReservationDate,
	)
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func scanReservations(rows pgx.Rows) ([]*domain.Reservation, error) {
	var reservations []*domain.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, rows.Err()
}

// Create persists a new reservation and assigns its ID
func (r *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (bus_id, passenger_name, seat_number, reservation_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		reservation.BusID,
		reservation.PassengerName,
		reservation.SeatNumber,
		reservation.ReservationDate,
	).Scan(&reservation.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSeatAlreadyBooked
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// Delete removes a reservation by ID
func (r *PostgresReservationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

// GetByID retrieves a reservation by ID, returning (nil, nil) on miss
func (r *PostgresReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE id = $1`, reservationColumns)
	reservation, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return reservation, nil
}

// List returns all reservations
func (r *PostgresReservationRepository) List(ctx context.Context) ([]*domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations ORDER BY id`, reservationColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ListByBus returns all reservations for a bus
func (r *PostgresReservationRepository) ListByBus(ctx context.Context, busID int64) ([]*domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE bus_id = $1 ORDER BY seat_number`, reservationColumns)
	rows, err := r.pool.Query(ctx, query, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ListByPassengerName matches the passenger name case-insensitively
func (r *PostgresReservationRepository) ListByPassengerName(ctx context.Context, name string) ([]*domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE LOWER(passenger_name) = LOWER($1) ORDER BY id`, reservationColumns)
	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ReservedSeatNumbers returns booked seat numbers for a bus, ascending
func (r *PostgresReservationRepository) ReservedSeatNumbers(ctx context.Context, busID int64) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT seat_number FROM reservations WHERE bus_id = $1 ORDER BY seat_number`, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Non-nil even when empty so the set serializes as [] rather than null
	seats := []int{}
	for rows.Next() {
		var seat int
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// SeatTaken checks whether a seat on a bus is already booked
func (r *PostgresReservationRepository) SeatTaken(ctx context.Context, busID int64, seatNumber int) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE bus_id = $1 AND seat_number = $2)`,
		busID, seatNumber).Scan(&taken)
	return taken, err
}

// CountByBus returns the number of reservations for a bus
func (r *PostgresReservationRepository) CountByBus(ctx context.Context, busID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reservations WHERE bus_id = $1`, busID).Scan(&count)
	return count, err
}

// Ensure PostgresReservationRepository implements ReservationRepository
var _ ReservationRepository = (*PostgresReservationRepository)(nil)
