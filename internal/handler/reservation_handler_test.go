package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookPayload(busID int64, name string, seat int) map[string]interface{} {
	return map[string]interface{}{
		"bus_id":         busID,
		"passenger_name": name,
		"seat_number":    seat,
	}
}

func TestBookSeatHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	busID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodPost, "/api/v1/reservations", bookPayload(busID, "Asha", 5))
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Asha", data["passenger_name"])
	assert.Equal(t, float64(5), data["seat_number"])
	assert.NotZero(t, data["id"])
}

func TestBookSeatHandlerConflicts(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	busID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodPost, "/api/v1/reservations", bookPayload(busID, "Asha", 5))
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name     string
		payload  map[string]interface{}
		wantCode int
		wantErr  string
	}{
		{
			name:     "seat taken",
			payload:  bookPayload(busID, "Ravi", 5),
			wantCode: http.StatusConflict,
			wantErr:  "SEAT_ALREADY_BOOKED",
		},
		{
			name:     "unknown bus",
			payload:  bookPayload(999, "Ravi", 5),
			wantCode: http.StatusNotFound,
			wantErr:  "BUS_NOT_FOUND",
		},
		{
			name:     "seat out of range",
			payload:  bookPayload(busID, "Ravi", 41),
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_SEAT_NUMBER",
		},
		{
			name:     "blank passenger",
			payload:  bookPayload(busID, "   ", 6),
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_PASSENGER_NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/v1/reservations", tt.payload)
			assert.Equal(t, tt.wantCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestCancelReservationHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	busID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodPost, "/api/v1/reservations", bookPayload(busID, "Asha", 5))
	require.Equal(t, http.StatusCreated, w.Code)
	reservationID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/reservations/%d", reservationID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/reservations/%d", reservationID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "RESERVATION_NOT_FOUND", resp.Error.Code)
}

func TestGetReservationHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodGet, "/api/v1/reservations/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	busID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodPost, "/api/v1/reservations", bookPayload(busID, "Asha", 5))
	require.Equal(t, http.StatusCreated, w.Code)
	reservationID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/reservations/%d", reservationID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "Asha", data["passenger_name"])
}

func TestSeatAvailabilityHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	busID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	// No bookings yet, reserved set is an empty array, not null
	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/buses/%d/seats", busID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reserved_seats":[]`)

	for _, seat := range []int{3, 7} {
		w = performRequest(router, http.MethodPost, "/api/v1/reservations", bookPayload(busID, "Asha", seat))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/buses/%d/seats", busID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(40), data["total_seats"])
	reserved := data["reserved_seats"].([]interface{})
	available := data["available_seats"].([]interface{})
	assert.Len(t, reserved, 2)
	assert.Len(t, available, 38)
	assert.Equal(t, float64(3), reserved[0])
	assert.Equal(t, float64(7), reserved[1])

	w = performRequest(router, http.MethodGet, "/api/v1/buses/999/seats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeatStatusHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	busID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodPost, "/api/v1/reservations", bookPayload(busID, "Asha", 5))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/buses/%d/seats/5", busID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, false, data["available"])

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/buses/%d/seats/6", busID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, true, data["available"])

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/buses/%d/seats/abc", busID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown bus is a 404, not an available seat
	w = performRequest(router, http.MethodGet, "/api/v1/buses/999/seats/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "BUS_NOT_FOUND", decodeResponse(t, w).Error.Code)
}

func TestListReservationsByBusHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodGet, "/api/v1/buses/999/reservations", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	busID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	for seat, name := range map[int]string{1: "Asha", 2: "Ravi"} {
		w = performRequest(router, http.MethodPost, "/api/v1/reservations", bookPayload(busID, name, seat))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/buses/%d/reservations", busID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.([]interface{})
	assert.Len(t, data, 2)
}

func TestListReservationsByPassengerHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	busID := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodPost, "/api/v1/reservations", bookPayload(busID, "Asha Patel", 1))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/passengers/asha%20patel/reservations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.([]interface{})
	assert.Len(t, data, 1)
}
