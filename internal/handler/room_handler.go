package handler

import (
	"github.com/frontdesk/service-reservation/internal/application"
	"github.com/frontdesk/service-reservation/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// manualCause is the cause recorded for status changes made at the desk.
const manualCause = "manual"

// RoomHandler handles HTTP requests for rooms.
type RoomHandler struct {
	rooms        *application.RoomService
	availability *application.AvailabilityChecker
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rooms *application.RoomService, availability *application.AvailabilityChecker) *RoomHandler {
	return &RoomHandler{rooms: rooms, availability: availability}
}

// RegisterRoutes registers room routes.
func (h *RoomHandler) RegisterRoutes(r *gin.RouterGroup, writeMW ...gin.HandlerFunc) {
	rooms := r.Group("/api/v1/rooms")
	{
		rooms.GET("", h.ListRooms)
		rooms.GET("/:id", h.GetRoom)
		rooms.GET("/:id/availability", h.CheckAvailability)
		rooms.PATCH("/:id/status", withMiddleware(writeMW, h.SetRoomStatus)...)
	}
}

// ListRooms handles GET /api/v1/rooms?status=.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rooms)
}

// GetRoom handles GET /api/v1/rooms/:id.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	result, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CheckAvailability handles GET /api/v1/rooms/:id/availability?check_in=&check_out=.
func (h *RoomHandler) CheckAvailability(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	result, err := h.availability.CheckAvailability(c.Request.Context(), roomID, c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SetRoomStatus handles PATCH /api/v1/rooms/:id/status.
func (h *RoomHandler) SetRoomStatus(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req application.SetRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.rooms.SetRoomStatus(c.Request.Context(), roomID, req.Status, manualCause)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
