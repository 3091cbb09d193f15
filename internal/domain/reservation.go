package domain

import "time"

// Reservation is a single passenger's claim on one seat of one bus.
// It carries an explicit BusID foreign key; bus attributes are always
// resolved through the bus repository, never lazily through the reservation.
// Reservations are immutable after creation. Cancellation deletes the row.
type Reservation struct {
	ID              int64     `json:"id"`
	BusID           int64     `json:"bus_id"`
	PassengerName   string    `json:"passenger_name"`
	SeatNumber      int       `json:"seat_number"`
	ReservationDate time.Time `json:"reservation_date"`
}
