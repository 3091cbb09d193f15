package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busreserve/bus-reservation/internal/repository"
	"github.com/busreserve/bus-reservation/internal/service"
	"github.com/busreserve/bus-reservation/pkg/response"
)

func setupRouter(t *testing.T) (*gin.Engine, service.BusService, service.ReservationService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reservations := repository.NewMemoryReservationRepository()
	buses := repository.NewMemoryBusRepository(reservations)
	busSvc := service.NewBusService(buses, reservations, nil, nil)
	resSvc := service.NewReservationService(buses, reservations, nil, nil)

	router := gin.New()
	api := router.Group("/api/v1")
	NewBusHandler(busSvc).RegisterRoutes(api)
	NewReservationHandler(resSvc).RegisterRoutes(api)
	return router, busSvc, resSvc
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func busPayload(number string) map[string]interface{} {
	return map[string]interface{}{
		"bus_number":     number,
		"source":         "Delhi",
		"destination":    "Mumbai",
		"price":          1200.0,
		"departure_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"total_seats":    40,
	}
}

func TestCreateBusHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "BR-101", data["bus_number"])
	assert.Equal(t, float64(40), data["available_seats"])
	assert.NotZero(t, data["id"])
}

func TestCreateBusHandlerInvalidBody(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/buses", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestCreateBusHandlerValidationError(t *testing.T) {
	router, _, _ := setupRouter(t)

	payload := busPayload("BR-101")
	payload["total_seats"] = 101
	w := performRequest(router, http.MethodPost, "/api/v1/buses", payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "INVALID_TOTAL_SEATS", resp.Error.Code)
}

func TestCreateBusHandlerDuplicate(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "DUPLICATE_BUS_NUMBER", resp.Error.Code)
}

func TestGetBusHandler(t *testing.T) {
	router, _, resSvc := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	id := int64(data["id"].(float64))

	// Booked seats reduce the reported availability
	_, err := resSvc.BookSeat(context.Background(), id, "Asha", 1)
	require.NoError(t, err)

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/buses/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	got := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(39), got["available_seats"])
}

func TestGetBusHandlerNotFound(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodGet, "/api/v1/buses/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "BUS_NOT_FOUND", resp.Error.Code)
}

func TestGetBusHandlerInvalidID(t *testing.T) {
	router, _, _ := setupRouter(t)

	for _, path := range []string{"/api/v1/buses/abc", "/api/v1/buses/-1", "/api/v1/buses/0"} {
		w := performRequest(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %s", path)
	}
}

func TestGetBusByNumberHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/buses/number/BR-101", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "BR-101", data["bus_number"])

	w = performRequest(router, http.MethodGet, "/api/v1/buses/number/BR-999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBusHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	payload := busPayload("BR-101")
	payload["price"] = 1500.0
	w = performRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/buses/%d", id), payload)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, 1500.0, data["price"])
}

func TestDeleteBusHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/buses/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/buses/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchBusesHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("missing params", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/buses/search?source=Delhi", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("route match", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/buses/search?source=Delhi&destination=Mumbai", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.([]interface{})
		assert.Len(t, data, 1)
	})

	t.Run("no match", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/buses/search?source=Delhi&destination=Jaipur", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
	})

	t.Run("bad date", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/buses/search?source=Delhi&destination=Mumbai&date=tomorrow", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAvailableSeatsHandler(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/buses", busPayload("BR-101"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decodeResponse(t, w).Data.(map[string]interface{})["id"].(float64))

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/buses/%d/available-seats", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(40), data["available_seats"])
}
