package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/frontdesk/service-reservation/internal/application"
	"github.com/frontdesk/service-reservation/internal/pkg/response"
)

// AdminHandler serves the back-office summary endpoints.
type AdminHandler struct {
	queries *application.ReservationQueryService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(queries *application.ReservationQueryService) *AdminHandler {
	return &AdminHandler{queries: queries}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/api/v1/admin")
	{
		admin.GET("/stats/reservations", h.ReservationStats)
	}
}

// ReservationStats handles GET /api/v1/admin/stats/reservations.
func (h *AdminHandler) ReservationStats(c *gin.Context) {
	stats, err := h.queries.GetReservationStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
