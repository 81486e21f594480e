package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

// RecurringWeeks is the number of weekly instances a recurring request expands to.
const RecurringWeeks = 8

// SeriesRequest describes a booking request before expansion.
type SeriesRequest struct {
	Name      string
	Phone     string
	CheckIn   time.Time
	Departure time.Time
	Recurring bool
}

// PlanSeries expands req into the bookings to accept, or rejects it.
//
// The whole batch is accepted or none of it: the first generated occurrence
// that overlaps an existing booking yields an *OverlapError naming it.
// Every returned booking shares createdAt and, for recurring requests, a group id.
// PlanSeries performs no I/O; persisting the result is the caller's job.
func PlanSeries(req SeriesRequest, existing []*Booking, createdAt time.Time) ([]*Booking, error) {
	if !req.CheckIn.Before(req.Departure) {
		return nil, ErrInvalidRange
	}

	starts, err := OccurrenceStarts(req.CheckIn, req.Recurring)
	if err != nil {
		return nil, err
	}

	var groupID *uuid.UUID
	if req.Recurring {
		id := uuid.New()
		groupID = &id
	}

	duration := req.Departure.Sub(req.CheckIn)
	planned := make([]*Booking, 0, len(starts))
	for i, start := range starts {
		end := start.Add(duration)

		for _, b := range existing {
			if b.OverlapsRange(start, end) {
				return nil, &OverlapError{
					Occurrence:    i,
					Start:         start,
					End:           end,
					ConflictingID: b.ID(),
				}
			}
		}

		nb, err := NewBooking(req.Name, req.Phone, start, end, createdAt, groupID)
		if err != nil {
			return nil, err
		}
		planned = append(planned, nb)
	}

	return planned, nil
}

// OccurrenceStarts returns the check-in instants of a request: one for a
// single booking, RecurringWeeks weekly instants for a recurring one.
// Weekly steps keep the wall-clock time in checkIn's location.
func OccurrenceStarts(checkIn time.Time, recurring bool) ([]time.Time, error) {
	if !recurring {
		return []time.Time{checkIn}, nil
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   RecurringWeeks,
		Dtstart: checkIn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build weekly rule: %w", err)
	}

	// rrule stops at its maximum year, so a late series can come back short.
	occurrences := rule.All()
	if len(occurrences) != RecurringWeeks {
		return nil, ErrSeriesOutOfRange
	}

	// rrule truncates DTSTART to whole seconds; re-anchor on the exact check-in.
	starts := make([]time.Time, len(occurrences))
	for i, occ := range occurrences {
		starts[i] = checkIn.Add(occ.Sub(occurrences[0]))
	}
	return starts, nil
}
