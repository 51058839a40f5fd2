package handler

import (
	"strconv"

	"github.com/frontdesk/service-reservation/internal/application"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReservationHandler handles HTTP requests for reservation operations.
type ReservationHandler struct {
	intake  *application.BookingIntake
	engine  *application.LifecycleEngine
	queries *application.ReservationQueryService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(
	intake *application.BookingIntake,
	engine *application.LifecycleEngine,
	queries *application.ReservationQueryService,
) *ReservationHandler {
	return &ReservationHandler{intake: intake, engine: engine, queries: queries}
}

// RegisterRoutes registers all reservation routes on the given router group.
// Mutating routes go through writeMW.
func (h *ReservationHandler) RegisterRoutes(r *gin.RouterGroup, writeMW ...gin.HandlerFunc) {
	reservations := r.Group("/api/v1/reservations")
	{
		reservations.POST("", withMiddleware(writeMW, h.CreateReservation)...)
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.POST("/:id/transition", withMiddleware(writeMW, h.TransitionReservation)...)
		reservations.PATCH("/:id", withMiddleware(writeMW, h.UpdateReservation)...)
	}
}

// CreateReservation handles POST /api/v1/reservations.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.intake.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListReservations handles GET /api/v1/reservations?status=&room_id=&page=&limit=.
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.queries.ListReservations(c.Request.Context(), application.ListReservationsQuery{
		Status: c.Query("status"),
		RoomID: c.Query("room_id"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetReservation handles GET /api/v1/reservations/:id.
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	result, err := h.queries.GetReservation(c.Request.Context(), reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// TransitionReservation handles POST /api/v1/reservations/:id/transition.
func (h *ReservationHandler) TransitionReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	var req application.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.engine.Transition(c.Request.Context(), reservationID, reservation.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateReservation handles PATCH /api/v1/reservations/:id.
func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	var req application.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.engine.UpdateReservation(c.Request.Context(), reservationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func withMiddleware(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(mw)+1)
	chain = append(chain, mw...)
	return append(chain, h)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
