package domain

import "errors"

// Domain errors
var (
	// Lookup errors
	ErrBusNotFound         = errors.New("bus not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// Bus validation errors
	ErrBusNumberRequired     = errors.New("bus number cannot be empty")
	ErrSourceRequired        = errors.New("source location cannot be empty")
	ErrDestinationRequired   = errors.New("destination location cannot be empty")
	ErrSameSourceDestination = errors.New("source and destination cannot be the same")
	ErrInvalidPrice          = errors.New("price must be greater than zero")
	ErrDepartureTimeRequired = errors.New("departure time cannot be empty")
	ErrInvalidTotalSeats     = errors.New("total seats must be between 1 and 100")

	// Reservation validation errors
	ErrInvalidPassengerName = errors.New("passenger name cannot be empty")
	ErrInvalidSeatNumber    = errors.New("invalid seat number")

	// Conflict errors
	ErrDuplicateBusNumber = errors.New("bus number already exists")
	ErrSeatAlreadyBooked  = errors.New("seat is already booked")
	ErrBusFull            = errors.New("no seats available on this bus")
	ErrBusDeparted        = errors.New("bus has already departed")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBusNotFound) ||
		errors.Is(err, ErrReservationNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrBusNumberRequired) ||
		errors.Is(err, ErrSourceRequired) ||
		errors.Is(err, ErrDestinationRequired) ||
		errors.Is(err, ErrSameSourceDestination) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrDepartureTimeRequired) ||
		errors.Is(err, ErrInvalidTotalSeats) ||
		errors.Is(err, ErrInvalidPassengerName) ||
		errors.Is(err, ErrInvalidSeatNumber)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateBusNumber) ||
		errors.Is(err, ErrSeatAlreadyBooked) ||
		errors.Is(err, ErrBusFull) ||
		errors.Is(err, ErrBusDeparted)
}
