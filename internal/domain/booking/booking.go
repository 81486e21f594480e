package booking

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/letitbe-trn/oneroom-app/internal/common/domain"
)

// Booking is a single reserved interval of the room.
// It is immutable after creation; the only lifecycle event is deletion.
type Booking struct {
	id        uuid.UUID
	name      string
	phone     string
	checkIn   time.Time
	departure time.Time
	createdAt time.Time
	groupID   *uuid.UUID
}

// NewBooking creates a booking with a fresh identifier.
func NewBooking(name, phone string, checkIn, departure, createdAt time.Time, groupID *uuid.UUID) (*Booking, error) {
	if !checkIn.Before(departure) {
		return nil, ErrInvalidRange
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	return &Booking{
		id:        uuid.New(),
		name:      name,
		phone:     strings.TrimSpace(phone),
		checkIn:   checkIn,
		departure: departure,
		createdAt: createdAt,
		groupID:   groupID,
	}, nil
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID        { return b.id }
func (b *Booking) Name() string         { return b.name }
func (b *Booking) Phone() string        { return b.phone }
func (b *Booking) CheckIn() time.Time   { return b.checkIn }
func (b *Booking) Departure() time.Time { return b.departure }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) GroupID() *uuid.UUID  { return b.groupID }

// Duration is the length of the reserved interval.
func (b *Booking) Duration() time.Duration { return b.departure.Sub(b.checkIn) }

// IsRecurring reports whether the booking belongs to a weekly series.
func (b *Booking) IsRecurring() bool { return b.groupID != nil }

// OverlapsRange applies the half-open overlap predicate against [start, end).
func (b *Booking) OverlapsRange(start, end time.Time) bool {
	return Overlaps(start, end, b.checkIn, b.departure)
}

// Overlaps reports whether [startA, endA) and [startB, endB) intersect.
// Intervals that only touch at an endpoint do not overlap.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && endA.After(startB)
}

// Reconstitute rebuilds a Booking from persisted data without validation.
func Reconstitute(id uuid.UUID, name, phone string, checkIn, departure, createdAt time.Time, groupID *uuid.UUID) *Booking {
	return &Booking{
		id:        id,
		name:      name,
		phone:     phone,
		checkIn:   checkIn,
		departure: departure,
		createdAt: createdAt,
		groupID:   groupID,
	}
}

// Remove returns the list without the booking identified by id.
// An unknown id leaves the list as it was and reports false.
func Remove(bookings []*Booking, id uuid.UUID) ([]*Booking, bool) {
	out := make([]*Booking, 0, len(bookings))
	removed := false
	for _, b := range bookings {
		if b.id == id {
			removed = true
			continue
		}
		out = append(out, b)
	}
	if !removed {
		return bookings, false
	}
	return out, true
}

// Find returns the booking with the given id.
func Find(bookings []*Booking, id uuid.UUID) (*Booking, error) {
	for _, b := range bookings {
		if b.id == id {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", id.String())
}

// SortByCheckIn returns a copy ordered by check-in, earliest first.
func SortByCheckIn(bookings []*Booking) []*Booking {
	out := make([]*Booking, len(bookings))
	copy(out, bookings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].checkIn.Before(out[j].checkIn)
	})
	return out
}

// Conflict is a pair of stored bookings whose intervals overlap.
type Conflict struct {
	First  *Booking
	Second *Booking
}

// FindConflicts scans every pair of bookings for overlaps.
func FindConflicts(bookings []*Booking) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(bookings); i++ {
		for j := i + 1; j < len(bookings); j++ {
			a, b := bookings[i], bookings[j]
			if Overlaps(a.checkIn, a.departure, b.checkIn, b.departure) {
				conflicts = append(conflicts, Conflict{First: a, Second: b})
			}
		}
	}
	return conflicts
}
