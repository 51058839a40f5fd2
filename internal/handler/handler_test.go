package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontdesk/service-reservation/internal/application"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/metrics"
	"github.com/frontdesk/service-reservation/internal/middleware"
	"github.com/frontdesk/service-reservation/internal/pkg/response"
	"github.com/frontdesk/service-reservation/internal/repository/memory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	room   *room.Room
}

func newTestServer(t *testing.T, limit gin.HandlerFunc) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore(time.Second)
	rm, err := room.NewRoom("101", room.Type{ID: uuid.New(), Name: "Standard", BaseNightlyRateCents: 8900})
	require.NoError(t, err)
	require.NoError(t, store.SeedRoom(context.Background(), rm))

	log := zap.NewNop()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	intake := application.NewBookingIntake(store, reservation.NewNightlyRatePricing(), nil, nil, m, log)
	engine := application.NewLifecycleEngine(store, nil, nil, m, log)
	queries := application.NewReservationQueryService(store)
	rooms := application.NewRoomService(store, nil, nil, log)
	availability := application.NewAvailabilityChecker(store, m)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware(), middleware.RecoveryMiddleware(log))

	var writeMW []gin.HandlerFunc
	if limit != nil {
		writeMW = append(writeMW, limit)
	}
	NewHealthHandler("service-reservation", registry, nil).RegisterRoutes(router)
	NewReservationHandler(intake, engine, queries).RegisterRoutes(&router.RouterGroup, writeMW...)
	NewRoomHandler(rooms, availability).RegisterRoutes(&router.RouterGroup, writeMW...)
	NewAdminHandler(queries).RegisterRoutes(&router.RouterGroup)

	return &testServer{router: router, room: rm}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env response.Envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decodeData(t *testing.T, env response.Envelope, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func (s *testServer) createReservation(t *testing.T, checkIn, checkOut, status string) application.ReservationDTO {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/reservations", gin.H{
		"guest":     gin.H{"full_name": "Ada Lovelace", "id_document": "P100200"},
		"room_id":   s.room.ID(),
		"check_in":  checkIn,
		"check_out": checkOut,
		"status":    status,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dto application.ReservationDTO
	decodeData(t, env, &dto)
	return dto
}

func TestCreateReservation(t *testing.T) {
	s := newTestServer(t, nil)

	dto := s.createReservation(t, "2026-03-10", "2026-03-12", "confirmed")
	assert.Equal(t, "confirmed", dto.Status)
	assert.Equal(t, int64(17800), dto.TotalAmountCents)

	w, env := s.do(t, http.MethodPost, "/api/v1/reservations", gin.H{
		"guest":     gin.H{"full_name": "Grace Hopper"},
		"room_id":   s.room.ID(),
		"check_in":  "2026-03-11",
		"check_out": "2026-03-13",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DATE_RANGE_CONFLICT", env.Error.Code)
	assert.False(t, env.Success)
}

func TestCreateReservation_BadRequest(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodPost, "/api/v1/reservations", gin.H{"guest": gin.H{"full_name": "x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/reservations", gin.H{
		"guest": gin.H{"full_name": "x"}, "room_id": s.room.ID(),
		"check_in": "2026-03-12", "check_out": "2026-03-10",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestTransitionReservation(t *testing.T) {
	s := newTestServer(t, nil)
	dto := s.createReservation(t, "2026-03-10", "2026-03-12", "")
	path := "/api/v1/reservations/" + dto.ID.String() + "/transition"

	w, env := s.do(t, http.MethodPost, path, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result application.TransitionResult
	decodeData(t, env, &result)
	assert.True(t, result.Changed)
	assert.Equal(t, "reserved", result.RoomStatus)

	w, env = s.do(t, http.MethodPost, path, gin.H{"status": "checked_out"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)

	w, env = s.do(t, http.MethodPost, path, gin.H{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/reservations/"+uuid.NewString()+"/transition", gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RESERVATION_NOT_FOUND", env.Error.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/reservations/not-a-uuid/transition", gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReservation_RoomIDImmutable(t *testing.T) {
	s := newTestServer(t, nil)
	dto := s.createReservation(t, "2026-03-10", "2026-03-12", "")

	w, env := s.do(t, http.MethodPatch, "/api/v1/reservations/"+dto.ID.String(), gin.H{"room_id": uuid.New()})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ROOM_ID_IMMUTABLE", env.Error.Code)

	w, _ = s.do(t, http.MethodPatch, "/api/v1/reservations/"+dto.ID.String(), gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListAndGetReservations(t *testing.T) {
	s := newTestServer(t, nil)
	first := s.createReservation(t, "2026-03-10", "2026-03-12", "")
	s.createReservation(t, "2026-03-20", "2026-03-22", "confirmed")

	w, env := s.do(t, http.MethodGet, "/api/v1/reservations?status=pending&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 5, env.Meta.Limit)

	w, env = s.do(t, http.MethodGet, "/api/v1/reservations/"+first.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got application.ReservationDTO
	decodeData(t, env, &got)
	assert.Equal(t, first.Code, got.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/reservations?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	roomPath := "/api/v1/rooms/" + s.room.ID().String()

	w, env := s.do(t, http.MethodGet, "/api/v1/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []application.RoomDTO
	decodeData(t, env, &rooms)
	require.Len(t, rooms, 1)

	w, env = s.do(t, http.MethodPatch, roomPath+"/status", gin.H{"status": "maintenance"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rm application.RoomDTO
	decodeData(t, env, &rm)
	assert.Equal(t, "maintenance", rm.Status)

	w, env = s.do(t, http.MethodPatch, roomPath+"/status", gin.H{"status": "occupied"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	w, env = s.do(t, http.MethodGet, roomPath+"/availability?check_in=2026-03-10&check_out=2026-03-12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var avail application.AvailabilityDTO
	decodeData(t, env, &avail)
	assert.True(t, avail.Available)

	w, env = s.do(t, http.MethodGet, "/api/v1/rooms/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ROOM_NOT_FOUND", env.Error.Code)
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t, nil)
	s.createReservation(t, "2026-03-10", "2026-03-12", "")

	w, env := s.do(t, http.MethodGet, "/api/v1/admin/stats/reservations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats application.ReservationStatsDTO
	decodeData(t, env, &stats)
	assert.Equal(t, int64(1), stats.TotalReservations)
	assert.Equal(t, int64(1), stats.ByStatus["pending"])
}

func TestRateLimitedWrites(t *testing.T) {
	s := newTestServer(t, middleware.RateLimitMiddleware(0.001, 1))

	s.createReservation(t, "2026-03-10", "2026-03-12", "")
	w, env := s.do(t, http.MethodPost, "/api/v1/reservations", gin.H{
		"guest": gin.H{"full_name": "x"}, "room_id": s.room.ID(),
		"check_in": "2026-04-10", "check_out": "2026-04-12",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/reservations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	w, _ := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	s.createReservation(t, "2026-03-10", "2026-03-12", "")
	w, _ = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reservation_bookings_total")
}

func TestHealth_Degraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHealthHandler("service-reservation", prometheus.NewRegistry(), map[string]Pinger{
		"database": func(context.Context) error { return assert.AnError },
	}).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}
