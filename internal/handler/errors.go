package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/busreserve/bus-reservation/internal/domain"
	"github.com/busreserve/bus-reservation/pkg/response"
)

// errorCodes maps domain errors to stable API error codes
var errorCodes = map[error]string{
	domain.ErrBusNotFound:           "BUS_NOT_FOUND",
	domain.ErrReservationNotFound:   "RESERVATION_NOT_FOUND",
	domain.ErrDuplicateBusNumber:    "DUPLICATE_BUS_NUMBER",
	domain.ErrSeatAlreadyBooked:     "SEAT_ALREADY_BOOKED",
	domain.ErrBusFull:               "BUS_FULL",
	domain.ErrBusDeparted:           "BUS_DEPARTED",
	domain.ErrBusNumberRequired:     "BUS_NUMBER_REQUIRED",
	domain.ErrSourceRequired:        "SOURCE_REQUIRED",
	domain.ErrDestinationRequired:   "DESTINATION_REQUIRED",
	domain.ErrSameSourceDestination: "SAME_SOURCE_DESTINATION",
	domain.ErrInvalidPrice:          "INVALID_PRICE",
	domain.ErrDepartureTimeRequired: "DEPARTURE_TIME_REQUIRED",
	domain.ErrInvalidTotalSeats:     "INVALID_TOTAL_SEATS",
	domain.ErrInvalidPassengerName:  "INVALID_PASSENGER_NAME",
	domain.ErrInvalidSeatNumber:     "INVALID_SEAT_NUMBER",
}

// handleError maps a domain error onto an HTTP response
func handleError(c *gin.Context, err error) {
	code := "INTERNAL_ERROR"
	if mapped, ok := errorCodes[err]; ok {
		code = mapped
	}

	switch {
	case domain.IsNotFoundError(err):
		response.Error(c, http.StatusNotFound, code, err.Error(), "")
	case domain.IsConflictError(err):
		response.Error(c, http.StatusConflict, code, err.Error(), "")
	case domain.IsValidationError(err):
		response.Error(c, http.StatusBadRequest, code, err.Error(), "")
	default:
		response.InternalError(c, err)
	}
}
