package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/domain/profile"
)

// BookingRecord is the persisted shape of a booking, shared by every store.
type BookingRecord struct {
	ID        uuid.UUID  `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Phone     string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	CheckIn   time.Time  `json:"checkIn" yaml:"checkIn"`
	Departure time.Time  `json:"departure" yaml:"departure"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	GroupID   *uuid.UUID `json:"groupId,omitempty" yaml:"groupId,omitempty"`
}

// ProfileRecord is the persisted shape of the user profile.
type ProfileRecord struct {
	Name  string `json:"name" yaml:"name"`
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

func toBookingRecords(bookings []*booking.Booking) []BookingRecord {
	records := make([]BookingRecord, len(bookings))
	for i, b := range bookings {
		records[i] = BookingRecord{
			ID:        b.ID(),
			Name:      b.Name(),
			Phone:     b.Phone(),
			CheckIn:   b.CheckIn(),
			Departure: b.Departure(),
			CreatedAt: b.CreatedAt(),
			GroupID:   b.GroupID(),
		}
	}
	return records
}

func toBookingDomain(records []BookingRecord) []*booking.Booking {
	bookings := make([]*booking.Booking, len(records))
	for i, r := range records {
		bookings[i] = booking.Reconstitute(r.ID, r.Name, r.Phone, r.CheckIn, r.Departure, r.CreatedAt, r.GroupID)
	}
	return bookings
}

func toProfileRecord(p *profile.UserProfile) ProfileRecord {
	return ProfileRecord{Name: p.Name(), Phone: p.Phone()}
}

func toProfileDomain(r ProfileRecord) *profile.UserProfile {
	return profile.Reconstitute(r.Name, r.Phone)
}
