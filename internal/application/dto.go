package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/domain/profile"
)

// AddBookingsRequest is the DTO for creating one booking or a weekly series.
type AddBookingsRequest struct {
	Name          string    `json:"name" binding:"required"`
	Phone         string    `json:"phone"`
	CheckIn       time.Time `json:"check_in" binding:"required"`
	Departure     time.Time `json:"departure" binding:"required"`
	IsRecurring   bool      `json:"is_recurring"`
	UpdateProfile bool      `json:"update_profile"`
}

// BookingDTO is the API response DTO for a booking.
type BookingDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	CheckIn     time.Time  `json:"check_in"`
	Departure   time.Time  `json:"departure"`
	CreatedAt   time.Time  `json:"created_at"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	IsRecurring bool       `json:"is_recurring"`
}

// BookingStatsDTO summarizes the booking list.
type BookingStatsDTO struct {
	TotalBookings      int `json:"total_bookings"`
	SingleBookings     int `json:"single_bookings"`
	RecurringSeries    int `json:"recurring_series"`
	RecurringInstances int `json:"recurring_instances"`
	UpcomingBookings   int `json:"upcoming_bookings"`
}

// ConflictDTO is one overlapping pair of stored bookings.
type ConflictDTO struct {
	First  BookingDTO `json:"first"`
	Second BookingDTO `json:"second"`
}

// ConflictReportDTO lists overlapping pairs and an optional assistant warning.
type ConflictReportDTO struct {
	Conflicts []ConflictDTO `json:"conflicts"`
	Warning   string        `json:"warning,omitempty"`
}

// ProfileRequest is the DTO for saving the user profile.
type ProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

// ProfileDTO is the API response DTO for the user profile.
type ProfileDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// SyncSettingsRequest is the DTO for changing the spreadsheet endpoint.
// An empty endpoint disables mirroring.
type SyncSettingsRequest struct {
	Endpoint string `json:"endpoint"`
}

// SyncSettingsDTO reports the spreadsheet endpoint.
type SyncSettingsDTO struct {
	Endpoint string `json:"endpoint"`
	Enabled  bool   `json:"enabled"`
}

// AskRequest is the DTO for a free-text assistant instruction.
type AskRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// AssistantReplyDTO is the assistant's answer and, for booking intents,
// the outcome of the booking attempt.
type AssistantReplyDTO struct {
	Action       string       `json:"action"`
	Message      string       `json:"message"`
	Booked       []BookingDTO `json:"booked,omitempty"`
	BookingError string       `json:"booking_error,omitempty"`
}

func toBookingDTO(b *booking.Booking) BookingDTO {
	return BookingDTO{
		ID:          b.ID(),
		Name:        b.Name(),
		Phone:       b.Phone(),
		CheckIn:     b.CheckIn(),
		Departure:   b.Departure(),
		CreatedAt:   b.CreatedAt(),
		GroupID:     b.GroupID(),
		IsRecurring: b.IsRecurring(),
	}
}

func toBookingDTOs(bookings []*booking.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos
}

func toProfileDTO(p *profile.UserProfile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{Name: p.Name(), Phone: p.Phone()}
}
