package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
)

// Event types and source published on the booking topic.
const (
	EventSource          = "oneroom-app"
	BookingsChangedType  = "oneroom.bookings.changed"
	DefaultBookingsTopic = "oneroom.booking.events"
)

// BookingPayload is a booking as carried inside an event.
type BookingPayload struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	CheckIn   time.Time  `json:"checkIn"`
	Departure time.Time  `json:"departure"`
	CreatedAt time.Time  `json:"createdAt"`
	GroupID   *uuid.UUID `json:"groupId,omitempty"`
}

// BookingsChangedEvent carries the full booking list after a committed change.
type BookingsChangedEvent struct {
	Reason     string           `json:"reason"`
	Endpoint   string           `json:"endpoint"`
	Bookings   []BookingPayload `json:"bookings"`
	OccurredAt time.Time        `json:"occurredAt"`
}

func newBookingsChangedEvent(change application.BookingsChanged) BookingsChangedEvent {
	payloads := make([]BookingPayload, len(change.Bookings))
	for i, b := range change.Bookings {
		payloads[i] = BookingPayload{
			ID:        b.ID(),
			Name:      b.Name(),
			Phone:     b.Phone(),
			CheckIn:   b.CheckIn(),
			Departure: b.Departure(),
			CreatedAt: b.CreatedAt(),
			GroupID:   b.GroupID(),
		}
	}
	return BookingsChangedEvent{
		Reason:     change.Reason,
		Endpoint:   change.Endpoint,
		Bookings:   payloads,
		OccurredAt: change.At,
	}
}

func (e BookingsChangedEvent) toChange() application.BookingsChanged {
	bookings := make([]*booking.Booking, len(e.Bookings))
	for i, p := range e.Bookings {
		bookings[i] = booking.Reconstitute(p.ID, p.Name, p.Phone, p.CheckIn, p.Departure, p.CreatedAt, p.GroupID)
	}
	return application.BookingsChanged{
		Reason:   e.Reason,
		Endpoint: e.Endpoint,
		Bookings: bookings,
		At:       e.OccurredAt,
	}
}
