package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/adapter"
	"github.com/letitbe-trn/oneroom-app/internal/calendar"
	"github.com/letitbe-trn/oneroom-app/internal/common/domain"
	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/domain/profile"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

// BookingService is the application service that orchestrates booking use cases.
type BookingService struct {
	holder    *state.Holder
	notifier  ChangeNotifier
	assistant adapter.AssistantAdapter
	warnings  *adapter.WarningCache
	now       func() time.Time
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
// warnings may be nil, in which case every conflict check asks the assistant.
func NewBookingService(
	holder *state.Holder,
	notifier ChangeNotifier,
	assistant adapter.AssistantAdapter,
	warnings *adapter.WarningCache,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		holder:    holder,
		notifier:  notifier,
		assistant: assistant,
		warnings:  warnings,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// AddBookings plans a booking or weekly series and commits it as one batch.
// On any validation or overlap error nothing is stored.
func (s *BookingService) AddBookings(ctx context.Context, req AddBookingsRequest) ([]BookingDTO, error) {
	createdAt := s.now()

	var planned []*booking.Booking
	st, _, err := s.holder.UpdateBookings(ctx, func(st state.AppState) ([]*booking.Booking, bool, error) {
		var err error
		planned, err = booking.PlanSeries(booking.SeriesRequest{
			Name:      req.Name,
			Phone:     req.Phone,
			CheckIn:   req.CheckIn,
			Departure: req.Departure,
			Recurring: req.IsRecurring,
		}, st.Bookings, createdAt)
		if err != nil {
			return nil, false, err
		}
		return append(st.Bookings, planned...), true, nil
	})
	if err != nil {
		s.logRejected("add bookings rejected", err)
		return nil, err
	}

	s.logger.Info("bookings added",
		zap.String("name", planned[0].Name()),
		zap.Int("count", len(planned)),
		zap.Bool("recurring", req.IsRecurring),
	)

	if req.UpdateProfile {
		s.rememberProfile(ctx, req.Name, req.Phone)
	}

	s.notifier.Notify(ctx, BookingsChanged{
		Reason:   ReasonAdded,
		Endpoint: st.SyncEndpoint,
		Bookings: st.Bookings,
		At:       createdAt,
	})

	return toBookingDTOs(planned), nil
}

// DeleteBooking removes one booking. Deleting an unknown id is a no-op.
func (s *BookingService) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	st, changed, err := s.holder.UpdateBookings(ctx, func(st state.AppState) ([]*booking.Booking, bool, error) {
		next, removed := booking.Remove(st.Bookings, id)
		return next, removed, nil
	})
	if err != nil {
		s.logger.Error("failed to delete booking", zap.String("booking_id", id.String()), zap.Error(err))
		return err
	}
	if !changed {
		s.logger.Debug("delete of unknown booking ignored", zap.String("booking_id", id.String()))
		return nil
	}

	s.logger.Info("booking deleted", zap.String("booking_id", id.String()))
	s.notifier.Notify(ctx, BookingsChanged{
		Reason:   ReasonDeleted,
		Endpoint: st.SyncEndpoint,
		Bookings: st.Bookings,
		At:       s.now(),
	})
	return nil
}

// GetBooking returns one booking by id.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	b, err := booking.Find(s.holder.Snapshot().Bookings, id)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// ListBookings returns every booking ordered by check-in.
func (s *BookingService) ListBookings(ctx context.Context) []BookingDTO {
	return toBookingDTOs(booking.SortByCheckIn(s.holder.Snapshot().Bookings))
}

// GetStats returns aggregate booking statistics.
func (s *BookingService) GetStats(ctx context.Context) *BookingStatsDTO {
	bookings := s.holder.Snapshot().Bookings
	now := s.now()

	stats := &BookingStatsDTO{TotalBookings: len(bookings)}
	groups := make(map[uuid.UUID]struct{})
	for _, b := range bookings {
		if gid := b.GroupID(); gid != nil {
			groups[*gid] = struct{}{}
			stats.RecurringInstances++
		} else {
			stats.SingleBookings++
		}
		if b.CheckIn().After(now) {
			stats.UpcomingBookings++
		}
	}
	stats.RecurringSeries = len(groups)
	return stats
}

// CheckConflicts scans the stored bookings for overlapping pairs. When any
// exist, the assistant is asked for a warning; its failure leaves the warning empty.
func (s *BookingService) CheckConflicts(ctx context.Context) *ConflictReportDTO {
	conflicts := booking.FindConflicts(s.holder.Snapshot().Bookings)

	report := &ConflictReportDTO{Conflicts: make([]ConflictDTO, len(conflicts))}
	for i, c := range conflicts {
		report.Conflicts[i] = ConflictDTO{First: toBookingDTO(c.First), Second: toBookingDTO(c.Second)}
	}
	if len(conflicts) == 0 {
		return report
	}

	if s.warnings != nil {
		if cached, ok := s.warnings.Get(conflicts); ok {
			report.Warning = cached
			return report
		}
	}

	warning, err := s.assistant.SummarizeConflicts(ctx, conflicts)
	if err != nil {
		s.logger.Warn("conflict summary unavailable", zap.Int("conflicts", len(conflicts)), zap.Error(err))
		return report
	}
	if s.warnings != nil {
		s.warnings.Set(conflicts, warning)
	}
	report.Warning = warning
	return report
}

// ExportCalendar renders all bookings as an iCalendar document.
func (s *BookingService) ExportCalendar(ctx context.Context) []byte {
	return []byte(calendar.Export(s.holder.Snapshot().Bookings, s.now()))
}

// rememberProfile overwrites the profile after a committed booking.
// A failure here does not undo the booking.
func (s *BookingService) rememberProfile(ctx context.Context, name, phone string) {
	p, err := profile.NewUserProfile(name, phone)
	if err != nil {
		s.logger.Warn("profile not updated", zap.Error(err))
		return
	}
	if err := s.holder.SetProfile(ctx, p); err != nil {
		s.logger.Error("failed to save profile after booking", zap.Error(err))
	}
}

func (s *BookingService) logRejected(msg string, err error) {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
		s.logger.Info(msg, zap.Error(err))
		return
	}
	s.logger.Error(msg, zap.Error(err))
}
