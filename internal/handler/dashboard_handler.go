package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/common/response"
)

// DashboardHandler serves read-only summaries of the schedule.
type DashboardHandler struct {
	bookingService *application.BookingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(bookingService *application.BookingService) *DashboardHandler {
	return &DashboardHandler{bookingService: bookingService}
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", h.Stats)
	r.GET("/bookings/conflicts", h.Conflicts)
}

// Stats handles GET /api/v1/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	response.Success(c, h.bookingService.GetStats(c.Request.Context()))
}

// Conflicts handles GET /api/v1/bookings/conflicts.
func (h *DashboardHandler) Conflicts(c *gin.Context) {
	response.Success(c, h.bookingService.CheckConflicts(c.Request.Context()))
}
