package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/adapter"
	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/repository"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []BookingsChanged
}

func (n *recordingNotifier) Notify(_ context.Context, change BookingsChanged) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) all() []BookingsChanged {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]BookingsChanged(nil), n.changes...)
}

type fakeAssistant struct {
	intent       *adapter.Intent
	err          error
	summary      string
	summaryErr   error
	summaryCalls int
}

func (f *fakeAssistant) Interpret(context.Context, string, []*booking.Booking, time.Time) (*adapter.Intent, error) {
	return f.intent, f.err
}

func (f *fakeAssistant) SummarizeConflicts(context.Context, []booking.Conflict) (string, error) {
	f.summaryCalls++
	return f.summary, f.summaryErr
}

type fakeSyncer struct {
	mu        sync.Mutex
	err       error
	endpoints []string
	rows      []int
}

func (f *fakeSyncer) Sync(_ context.Context, endpoint string, bookings []*booking.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endpoints = append(f.endpoints, endpoint)
	f.rows = append(f.rows, len(bookings))
	return f.err
}

func (f *fakeSyncer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.endpoints)
}

type failingBookingsStore struct {
	*repository.MemoryStore
}

func (failingBookingsStore) SaveBookings(context.Context, []*booking.Booking) error {
	return errors.New("disk full")
}

type fixture struct {
	store     *repository.MemoryStore
	holder    *state.Holder
	notifier  *recordingNotifier
	assistant *fakeAssistant
	bookings  *BookingService
}

var fixedNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	holder, err := state.NewHolder(context.Background(), store)
	require.NoError(t, err)

	f := &fixture{
		store:     store,
		holder:    holder,
		notifier:  &recordingNotifier{},
		assistant: &fakeAssistant{},
	}
	f.bookings = NewBookingService(holder, f.notifier, f.assistant, nil, zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}
