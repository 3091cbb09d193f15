package dto

// BookSeatRequest is the payload for booking a seat on a bus.
type BookSeatRequest struct {
	BusID         int64  `json:"bus_id"`
	PassengerName string `json:"passenger_name"`
	SeatNumber    int    `json:"seat_number"`
}

// SeatAvailabilityResponse describes the seat inventory of a bus.
type SeatAvailabilityResponse struct {
	BusID          int64 `json:"bus_id"`
	TotalSeats     int   `json:"total_seats"`
	ReservedSeats  []int `json:"reserved_seats"`
	AvailableSeats []int `json:"available_seats"`
}

// SeatStatusResponse reports whether a single seat is free.
type SeatStatusResponse struct {
	BusID      int64 `json:"bus_id"`
	SeatNumber int   `json:"seat_number"`
	Available  bool  `json:"available"`
}
