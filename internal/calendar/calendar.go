// Package calendar renders bookings as an iCalendar feed.
package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
)

const productID = "-//OneRoom//Booking Tracker//EN"

// Export builds a VCALENDAR with one VEVENT per booking.
// Recurring instances are exported individually; they share a RELATED-TO group id.
func Export(bookings []*booking.Booking, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("OneRoom bookings")

	for _, b := range booking.SortByCheckIn(bookings) {
		ev := cal.AddEvent(b.ID().String() + "@oneroom")
		ev.SetDtStampTime(stamp.UTC())
		ev.SetCreatedTime(b.CreatedAt().UTC())
		ev.SetStartAt(b.CheckIn().UTC())
		ev.SetEndAt(b.Departure().UTC())
		ev.SetSummary(summary(b))
		if b.Phone() != "" {
			ev.SetDescription("Phone: " + b.Phone())
		}
		if gid := b.GroupID(); gid != nil {
			ev.AddProperty(ical.ComponentPropertyRelatedTo, gid.String())
		}
	}

	return cal.Serialize()
}

func summary(b *booking.Booking) string {
	if b.IsRecurring() {
		return fmt.Sprintf("%s (weekly)", b.Name())
	}
	return b.Name()
}
