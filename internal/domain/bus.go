package domain

import "time"

// Seat capacity bounds enforced on every create and update.
const (
	MinTotalSeats = 1
	MaxTotalSeats = 100
)

// Bus represents a scheduled route instance with a fixed seat capacity.
type Bus struct {
	ID            int64     `json:"id"`
	BusNumber     string    `json:"bus_number"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	Price         float64   `json:"price"`
	DepartureTime time.Time `json:"departure_time"`
	TotalSeats    int       `json:"total_seats"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasDeparted reports whether the bus departure time is at or before now.
// Booking and cancellation are disallowed once this is true.
func (b *Bus) HasDeparted(now time.Time) bool {
	return !b.DepartureTime.After(now)
}
