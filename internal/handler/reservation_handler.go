package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/busreserve/bus-reservation/internal/dto"
	"github.com/busreserve/bus-reservation/internal/service"
	"github.com/busreserve/bus-reservation/pkg/response"
	"github.com/busreserve/bus-reservation/pkg/telemetry"
)

// ReservationHandler handles seat inventory HTTP requests
type ReservationHandler struct {
	reservationService service.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// RegisterRoutes registers reservation routes on the router group. The
// booking middleware (idempotency) is applied to the booking POST only.
func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup, bookingMiddleware ...gin.HandlerFunc) {
	reservations := rg.Group("/reservations")
	{
		reservations.POST("", append(bookingMiddleware, h.BookSeat)...)
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.DELETE("/:id", h.CancelReservation)
	}

	buses := rg.Group("/buses")
	{
		buses.GET("/:id/reservations", h.ListReservationsByBus)
		buses.GET("/:id/seats", h.SeatAvailability)
		buses.GET("/:id/seats/:seat", h.SeatStatus)
	}

	rg.GET("/passengers/:name/reservations", h.ListReservationsByPassenger)
}

// BookSeat handles POST /reservations
func (h *ReservationHandler) BookSeat(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.book")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.BookSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "invalid request body")
		return
	}

	span.SetAttributes(
		attribute.Int64("bus_id", req.BusID),
		attribute.Int("seat_number", req.SeatNumber),
	)

	reservation, err := h.reservationService.BookSeat(ctx, req.BusID, req.PassengerName, req.SeatNumber)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("reservation_id", reservation.ID))
	response.Created(c, reservation)
}

// CancelReservation handles DELETE /reservations/:id
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.reservationService.CancelReservation(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	response.NoContent(c)
}

// GetReservation handles GET /reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := parseID(c)
	if !ok {
		return
	}

	reservation, err := h.reservationService.GetReservationByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	response.Success(c, reservation)
}

// ListReservations handles GET /reservations
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	reservations, err := h.reservationService.ListReservations(ctx)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, reservations)
}

// ListReservationsByBus handles GET /buses/:id/reservations
func (h *ReservationHandler) ListReservationsByBus(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.list_by_bus")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := parseID(c)
	if !ok {
		return
	}

	reservations, err := h.reservationService.ListReservationsByBus(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	response.Success(c, reservations)
}

// ListReservationsByPassenger handles GET /passengers/:name/reservations
func (h *ReservationHandler) ListReservationsByPassenger(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.list_by_passenger")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	reservations, err := h.reservationService.ListReservationsByPassenger(ctx, c.Param("name"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	response.Success(c, reservations)
}

// SeatAvailability handles GET /buses/:id/seats
func (h *ReservationHandler) SeatAvailability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.seat_availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := parseID(c)
	if !ok {
		return
	}

	reserved, err := h.reservationService.ReservedSeatNumbers(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	available, err := h.reservationService.AvailableSeatNumbers(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.SeatAvailabilityResponse{
		BusID:          id,
		TotalSeats:     len(reserved) + len(available),
		ReservedSeats:  reserved,
		AvailableSeats: available,
	})
}

// SeatStatus handles GET /buses/:id/seats/:seat
func (h *ReservationHandler) SeatStatus(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.seat_status")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := parseID(c)
	if !ok {
		return
	}

	seat, err := strconv.Atoi(c.Param("seat"))
	if err != nil {
		response.BadRequest(c, "invalid seat number")
		return
	}

	available, err := h.reservationService.IsSeatAvailable(ctx, id, seat)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	response.Success(c, dto.SeatStatusResponse{
		BusID:      id,
		SeatNumber: seat,
		Available:  available,
	})
}
