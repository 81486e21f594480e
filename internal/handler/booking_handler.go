package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/common/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.POST("", h.AddBookings)
		bookings.GET("/calendar.ics", h.ExportCalendar)
		bookings.GET("/:id", h.GetBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}
}

// ListBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	response.Success(c, h.service.ListBookings(c.Request.Context()))
}

// AddBookings handles POST /api/v1/bookings
func (h *BookingHandler) AddBookings(c *gin.Context) {
	var req application.AddBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dtos, err := h.service.AddBookings(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dtos)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	dto, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), bookingID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ExportCalendar handles GET /api/v1/bookings/calendar.ics
func (h *BookingHandler) ExportCalendar(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="oneroom.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", h.service.ExportCalendar(c.Request.Context()))
}
