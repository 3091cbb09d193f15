package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/busreserve/bus-reservation/internal/dto"
	"github.com/busreserve/bus-reservation/internal/service"
	"github.com/busreserve/bus-reservation/pkg/response"
	"github.com/busreserve/bus-reservation/pkg/telemetry"
)

// BusHandler handles bus registry HTTP requests
type BusHandler struct {
	busService service.BusService
}

// NewBusHandler creates a new bus handler
func NewBusHandler(busService service.BusService) *BusHandler {
	return &BusHandler{busService: busService}
}

// RegisterRoutes registers bus routes on the router group
func (h *BusHandler) RegisterRoutes(rg *gin.RouterGroup) {
	buses := rg.Group("/buses")
	{
		buses.POST("", h.CreateBus)
		buses.GET("", h.ListBuses)
		buses.GET("/upcoming", h.ListUpcomingBuses)
		buses.GET("/search", h.SearchBuses)
		buses.GET("/number/:number", h.GetBusByNumber)
		buses.GET("/:id", h.GetBus)
		buses.PUT("/:id", h.UpdateBus)
		buses.DELETE("/:id", h.DeleteBus)
		buses.GET("/:id/available-seats", h.AvailableSeats)
	}
}

// CreateBus handles POST /buses
func (h *BusHandler) CreateBus(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.bus.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.BusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "invalid request body")
		return
	}

	bus, err := h.busService.CreateBus(ctx, req.ToBus())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("bus_id", bus.ID))
	response.Created(c, dto.NewBusResponse(bus, 0))
}

// GetBus handles GET /buses/:id
func (h *BusHandler) GetBus(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.bus.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := parseID(c)
	if !ok {
		return
	}

	bus, err := h.busService.GetBusByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	available, err := h.busService.AvailableSeats(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewBusResponse(bus, bus.TotalSeats-available))
}

// GetBusByNumber handles GET /buses/number/:number
func (h *BusHandler) GetBusByNumber(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.bus.get_by_number")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bus, err := h.busService.GetBusByNumber(ctx, c.Param("number"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	available, err := h.busService.AvailableSeats(ctx, bus.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewBusResponse(bus, bus.TotalSeats-available))
}

// UpdateBus handles PUT /buses/:id
func (h *BusHandler) UpdateBus(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.bus.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.BusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "invalid request body")
		return
	}

	bus, err := h.busService.UpdateBus(ctx, id, req.ToBus())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	available, err := h.busService.AvailableSeats(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewBusResponse(bus, bus.TotalSeats-available))
}

// DeleteBus handles DELETE /buses/:id
func (h *BusHandler) DeleteBus(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.bus.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.busService.DeleteBus(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	response.NoContent(c)
}

// ListBuses handles GET /buses
func (h *BusHandler) ListBuses(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.bus.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	buses, err := h.busService.ListBuses(ctx)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, buses)
}

// ListUpcomingBuses handles GET /buses/upcoming
func (h *BusHandler) ListUpcomingBuses(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.bus.upcoming")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	buses, err := h.busService.ListUpcomingBuses(ctx)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, buses)
}

// SearchBuses handles GET /buses/search?source=&destination=[&date=][&available=true]
func (h *BusHandler) SearchBuses(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.bus.search")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	source := c.Query("source")
	destination := c.Query("destination")
	if source == "" || destination == "" {
		response.BadRequest(c, "source and destination are required")
		return
	}

	span.SetAttributes(
		attribute.String("source", source),
		attribute.String("destination", destination),
	)

	if c.Query("available") == "true" {
		buses, err := h.busService.SearchAvailableBuses(ctx, source, destination)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, buses)
		return
	}

	if dateStr := c.Query("date"); dateStr != "" {
		after, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			response.BadRequest(c, "date must be RFC3339")
			return
		}
		buses, err := h.busService.SearchBusesByRouteAndDate(ctx, source, destination, after)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, buses)
		return
	}

	buses, err := h.busService.SearchBuses(ctx, source, destination)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, buses)
}

// AvailableSeats handles GET /buses/:id/available-seats
func (h *BusHandler) AvailableSeats(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.bus.available_seats")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := parseID(c)
	if !ok {
		return
	}

	available, err := h.busService.AvailableSeats(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"bus_id": id, "available_seats": available})
}

// parseID parses the :id path parameter, writing a 400 on failure
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
