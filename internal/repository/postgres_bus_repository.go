package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/busreserve/bus-reservation/internal/domain"
)

// PostgresBusRepository implements BusRepository using PostgreSQL
type PostgresBusRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBusRepository creates a new PostgresBusRepository
func NewPostgresBusRepository(pool *pgxpool.Pool) *PostgresBusRepository {
	return &PostgresBusRepository{pool: pool}
}

const busColumns = `id, bus_number, source, destination, price, departure_time, total_seats, created_at, updated_at`

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

func scanBus(row pgx.Row) (*domain.Bus, error) {
	bus := &domain.Bus{}
	err := row.Scan(
		&bus.ID,
		&bus.BusNumber,
		&bus.Source,
		&bus.Destination,
		&bus.Price,
		&bus.DepartureTime,
		&bus.TotalSeats,
		&bus.CreatedAt,
		&bus.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bus, nil
}

func scanBuses(rows pgx.Rows) ([]*domain.Bus, error) {
	var buses []*domain.Bus
	for rows.Next() {
		bus, err := scanBus(rows)
		if err != nil {
			return nil, err
		}
		buses = append(buses, bus)
	}
	return buses, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create persists a new bus and assigns its ID
func (r *PostgresBusRepository) Create(ctx context.Context, bus *domain.Bus) error {
	query := `
		INSERT INTO buses (bus_number, source, destination, price, departure_time, total_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id
	`

	now := time.Now()
	err := r.pool.QueryRow(ctx, query,
		bus.BusNumber,
		bus.Source,
		bus.Destination,
		bus.Price,
		bus.DepartureTime,
		bus.TotalSeats,
		now,
	).Scan(&bus.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateBusNumber
		}
		return fmt.Errorf("failed to create bus: %w", err)
	}

	bus.CreatedAt = now
	bus.UpdatedAt = now
	return nil
}

// Update replaces all fields of an existing bus
func (r *PostgresBusRepository) Update(ctx context.Context, bus *domain.Bus) error {
	query := `
		UPDATE buses SET
			bus_number = $2, source = $3, destination = $4, price = $5,
			departure_time = $6, total_seats = $7, updated_at = $8
		WHERE id = $1
	`

	bus.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, query,
		bus.ID,
		bus.BusNumber,
		bus.Source,
		bus.Destination,
		bus.Price,
		bus.DepartureTime,
		bus.TotalSeats,
		bus.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateBusNumber
		}
		return fmt.Errorf("failed to update bus: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBusNotFound
	}
	return nil
}

// Delete removes a bus and its reservations in one transaction
func (r *PostgresBusRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reservations WHERE bus_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete reservations for bus: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM buses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bus: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBusNotFound
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a bus by ID, returning (nil, nil) on miss
func (r *PostgresBusRepository) GetByID(ctx context.Context, id int64) (*domain.Bus, error) {
	query := fmt.Sprintf(`SELECT %s FROM buses WHERE id = $1`, busColumns)
	bus, err := scanBus(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bus, nil
}

// GetByNumber retrieves a bus by its bus number, returning (nil, nil) on miss
func (r *PostgresBusRepository) GetByNumber(ctx context.Context, busNumber string) (*domain.Bus, error) {
	query := fmt.Sprintf(`SELECT %s FROM buses WHERE bus_number = $1`, busColumns)
	bus, err := scanBus(r.pool.QueryRow(ctx, query, busNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bus, nil
}

// ExistsByID checks whether a bus with the given ID exists
func (r *PostgresBusRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM buses WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// ExistsByNumber checks whether a bus with the given number exists
func (r *PostgresBusRepository) ExistsByNumber(ctx context.Context, busNumber string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM buses WHERE bus_number = $1)`, busNumber).Scan(&exists)
	return exists, err
}

// List returns all buses in insertion order
func (r *PostgresBusRepository) List(ctx context.Context) ([]*domain.Bus, error) {
	query := fmt.Sprintf(`SELECT %s FROM buses ORDER BY id`, busColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuses(rows)
}

// ListDepartingAfter returns buses departing strictly after the given time
func (r *PostgresBusRepository) ListDepartingAfter(ctx context.Context, after time.Time) ([]*domain.Bus, error) {
	query := fmt.Sprintf(`SELECT %s FROM buses WHERE departure_time > $1 ORDER BY id`, busColumns)
	rows, err := r.pool.Query(ctx, query, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuses(rows)
}

// FindByRoute returns buses matching source and destination exactly
func (r *PostgresBusRepository) FindByRoute(ctx context.Context, source, destination string) ([]*domain.Bus, error) {
	query := fmt.Sprintf(`SELECT %s FROM buses WHERE source = $1 AND destination = $2 ORDER BY id`, busColumns)
	rows, err := r.pool.Query(ctx, query, source, destination)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuses(rows)
}

// FindByRouteDepartingAfter returns route matches departing strictly after the given time
func (r *PostgresBusRepository) FindByRouteDepartingAfter(ctx context.Context, source, destination string, after time.Time) ([]*domain.Bus, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM buses
		WHERE source = $1 AND destination = $2 AND departure_time > $3
		ORDER BY id
	`, busColumns)
	rows, err := r.pool.Query(ctx, query, source, destination, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuses(rows)
}

// Ensure PostgresBusRepository implements BusRepository
var _ BusRepository = (*PostgresBusRepository)(nil)
