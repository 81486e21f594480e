package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/adapter"
	"github.com/letitbe-trn/oneroom-app/internal/common/domain"
	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/repository"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

func TestAddBookings_SingleCommitsAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.holder.SetSyncEndpoint(ctx, "https://sheet.example/exec"))

	got, err := f.bookings.AddBookings(ctx, AddBookingsRequest{
		Name:      "Lan",
		Phone:     "0901",
		CheckIn:   at(t, "2024-03-04T09:00:00Z"),
		Departure: at(t, "2024-03-04T10:00:00Z"),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lan", got[0].Name)
	assert.Equal(t, fixedNow, got[0].CreatedAt)
	assert.Nil(t, got[0].GroupID)

	assert.Len(t, f.holder.Snapshot().Bookings, 1)
	assert.Equal(t, 1, f.store.WriteCount(state.KeyBookings))
	assert.Equal(t, 0, f.store.WriteCount(state.KeyProfile))

	changes := f.notifier.all()
	require.Len(t, changes, 1)
	assert.Equal(t, ReasonAdded, changes[0].Reason)
	assert.Equal(t, "https://sheet.example/exec", changes[0].Endpoint)
	assert.Len(t, changes[0].Bookings, 1)
}

func TestAddBookings_RecurringWithProfileUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.bookings.AddBookings(ctx, AddBookingsRequest{
		Name:          "Minh",
		Phone:         "0902",
		CheckIn:       at(t, "2024-03-04T09:00:00Z"),
		Departure:     at(t, "2024-03-04T10:00:00Z"),
		IsRecurring:   true,
		UpdateProfile: true,
	})
	require.NoError(t, err)
	require.Len(t, got, booking.RecurringWeeks)
	for _, b := range got {
		assert.Equal(t, got[0].GroupID, b.GroupID)
		assert.True(t, b.IsRecurring)
	}

	p := f.holder.Snapshot().Profile
	require.NotNil(t, p)
	assert.Equal(t, "Minh", p.Name())
	assert.Equal(t, "0902", p.Phone())
}

func TestAddBookings_OverlapRejectsWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.AddBookings(ctx, AddBookingsRequest{
		Name: "A", CheckIn: at(t, "2024-03-04T10:00:00Z"), Departure: at(t, "2024-03-04T12:00:00Z"),
	})
	require.NoError(t, err)

	_, err = f.bookings.AddBookings(ctx, AddBookingsRequest{
		Name: "B", CheckIn: at(t, "2024-03-04T11:00:00Z"), Departure: at(t, "2024-03-04T13:00:00Z"),
		UpdateProfile: true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	var overlap *booking.OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, 0, overlap.Occurrence)

	assert.Len(t, f.holder.Snapshot().Bookings, 1)
	assert.Nil(t, f.holder.Snapshot().Profile)
	assert.Equal(t, 1, f.store.WriteCount(state.KeyBookings))
	assert.Len(t, f.notifier.all(), 1)
}

func TestAddBookings_InvalidRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.bookings.AddBookings(context.Background(), AddBookingsRequest{
		Name: "A", CheckIn: at(t, "2024-03-04T10:00:00Z"), Departure: at(t, "2024-03-04T10:00:00Z"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, f.holder.Snapshot().Bookings)
	assert.Empty(t, f.notifier.all())
}

func TestAddBookings_PersistenceFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	holder, err := state.NewHolder(ctx, failingBookingsStore{repository.NewMemoryStore()})
	require.NoError(t, err)
	notifier := &recordingNotifier{}
	svc := NewBookingService(holder, notifier, &fakeAssistant{}, nil, zap.NewNop())

	_, err = svc.AddBookings(ctx, AddBookingsRequest{
		Name: "A", CheckIn: at(t, "2024-03-04T10:00:00Z"), Departure: at(t, "2024-03-04T11:00:00Z"),
	})
	require.Error(t, err)
	assert.Empty(t, holder.Snapshot().Bookings)
	assert.Empty(t, notifier.all())
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.bookings.AddBookings(ctx, AddBookingsRequest{
		Name: "A", CheckIn: at(t, "2024-03-04T10:00:00Z"), Departure: at(t, "2024-03-04T11:00:00Z"), IsRecurring: true,
	})
	require.NoError(t, err)

	require.NoError(t, f.bookings.DeleteBooking(ctx, added[3].ID))
	remaining := f.holder.Snapshot().Bookings
	assert.Len(t, remaining, booking.RecurringWeeks-1)
	for _, b := range remaining {
		assert.NotEqual(t, added[3].ID, b.ID())
	}

	changes := f.notifier.all()
	require.Len(t, changes, 2)
	assert.Equal(t, ReasonDeleted, changes[1].Reason)
}

func TestDeleteBooking_UnknownIDIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.bookings.DeleteBooking(ctx, uuid.New()))
	assert.Equal(t, 0, f.store.WriteCount(state.KeyBookings))
	assert.Empty(t, f.notifier.all())
}

func TestListBookings_SortedByCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, start := range []string{"2024-03-06T10:00:00Z", "2024-03-04T10:00:00Z", "2024-03-05T10:00:00Z"} {
		checkIn := at(t, start)
		_, err := f.bookings.AddBookings(ctx, AddBookingsRequest{Name: "A", CheckIn: checkIn, Departure: checkIn.Add(time.Hour)})
		require.NoError(t, err)
	}

	list := f.bookings.ListBookings(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, at(t, "2024-03-04T10:00:00Z"), list[0].CheckIn)
	assert.Equal(t, at(t, "2024-03-06T10:00:00Z"), list[2].CheckIn)

	got, err := f.bookings.GetBooking(ctx, list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, list[1].ID, got.ID)

	_, err = f.bookings.GetBooking(ctx, uuid.New())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.AddBookings(ctx, AddBookingsRequest{
		Name: "A", CheckIn: at(t, "2024-02-01T10:00:00Z"), Departure: at(t, "2024-02-01T11:00:00Z"),
	})
	require.NoError(t, err)
	_, err = f.bookings.AddBookings(ctx, AddBookingsRequest{
		Name: "B", CheckIn: at(t, "2024-03-04T10:00:00Z"), Departure: at(t, "2024-03-04T11:00:00Z"), IsRecurring: true,
	})
	require.NoError(t, err)

	stats := f.bookings.GetStats(ctx)
	assert.Equal(t, 9, stats.TotalBookings)
	assert.Equal(t, 1, stats.SingleBookings)
	assert.Equal(t, 1, stats.RecurringSeries)
	assert.Equal(t, 8, stats.RecurringInstances)
	assert.Equal(t, 8, stats.UpcomingBookings)
}

func seedConflict(t *testing.T, f *fixture) {
	t.Helper()
	now := at(t, "2024-03-04T10:00:00Z")
	_, _, err := f.holder.UpdateBookings(context.Background(), func(st state.AppState) ([]*booking.Booking, bool, error) {
		return []*booking.Booking{
			booking.Reconstitute(uuid.New(), "A", "", now, now.Add(2*time.Hour), now, nil),
			booking.Reconstitute(uuid.New(), "B", "", now.Add(time.Hour), now.Add(3*time.Hour), now, nil),
		}, true, nil
	})
	require.NoError(t, err)
}

func TestCheckConflicts_NoneSkipsAssistant(t *testing.T) {
	f := newFixture(t)

	report := f.bookings.CheckConflicts(context.Background())
	assert.Empty(t, report.Conflicts)
	assert.Empty(t, report.Warning)
	assert.Equal(t, 0, f.assistant.summaryCalls)
}

func TestCheckConflicts_UsesCache(t *testing.T) {
	f := newFixture(t)
	cache := adapter.NewWarningCache(10, time.Minute)
	defer cache.Stop()
	f.bookings.warnings = cache
	f.assistant.summary = "A and B overlap"
	seedConflict(t, f)

	report := f.bookings.CheckConflicts(context.Background())
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, "A and B overlap", report.Warning)

	report = f.bookings.CheckConflicts(context.Background())
	assert.Equal(t, "A and B overlap", report.Warning)
	assert.Equal(t, 1, f.assistant.summaryCalls)
}

func TestCheckConflicts_AssistantFailureLeavesWarningEmpty(t *testing.T) {
	f := newFixture(t)
	f.assistant.summaryErr = errors.New("quota")
	seedConflict(t, f)

	report := f.bookings.CheckConflicts(context.Background())
	assert.Len(t, report.Conflicts, 1)
	assert.Empty(t, report.Warning)
}

func TestExportCalendar(t *testing.T) {
	f := newFixture(t)
	seedConflict(t, f)

	out := string(f.bookings.ExportCalendar(context.Background()))
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:A")
	assert.Contains(t, out, "SUMMARY:B")
}
