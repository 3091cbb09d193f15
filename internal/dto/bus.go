package dto

import (
	"time"

	"github.com/busreserve/bus-reservation/internal/domain"
)

// BusRequest is the payload for creating or updating a bus. Updates are a
// full-field replace, so the same shape serves both.
type BusRequest struct {
	BusNumber     string    `json:"bus_number"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	Price         float64   `json:"price"`
	DepartureTime time.Time `json:"departure_time"`
	TotalSeats    int       `json:"total_seats"`
}

// ToBus converts the request into a domain bus.
func (r *BusRequest) ToBus() *domain.Bus {
	return &domain.Bus{
		BusNumber:     r.BusNumber,
		Source:        r.Source,
		Destination:   r.Destination,
		Price:         r.Price,
		DepartureTime: r.DepartureTime,
		TotalSeats:    r.TotalSeats,
	}
}

// BusResponse is the API representation of a bus, including derived
// availability.
type BusResponse struct {
	ID             int64     `json:"id"`
	BusNumber      string    `json:"bus_number"`
	Source         string    `json:"source"`
	Destination    string    `json:"destination"`
	Price          float64   `json:"price"`
	DepartureTime  time.Time `json:"departure_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
}

// NewBusResponse builds a BusResponse from a bus and its reservation count.
func NewBusResponse(bus *domain.Bus, reserved int) *BusResponse {
	return &BusResponse{
		ID:             bus.ID,
		BusNumber:      bus.BusNumber,
		Source:         bus.Source,
		Destination:    bus.Destination,
		Price:          bus.Price,
		DepartureTime:  bus.DepartureTime,
		TotalSeats:     bus.TotalSeats,
		AvailableSeats: bus.TotalSeats - reserved,
	}
}
