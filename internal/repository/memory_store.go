package repository

import (
	"context"
	"sync"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/domain/profile"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

// MemoryStore keeps records in process memory. State is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	bookings []BookingRecord
	profile  *ProfileRecord
	endpoint string
	writes   map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{writes: make(map[string]int)}
}

func (s *MemoryStore) Load(_ context.Context) (state.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := state.AppState{
		Bookings:     toBookingDomain(s.bookings),
		SyncEndpoint: s.endpoint,
	}
	if s.profile != nil {
		st.Profile = toProfileDomain(*s.profile)
	}
	return st, nil
}

func (s *MemoryStore) SaveBookings(_ context.Context, bookings []*booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = toBookingRecords(bookings)
	s.writes[state.KeyBookings]++
	return nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, p *profile.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := toProfileRecord(p)
	s.profile = &record
	s.writes[state.KeyProfile]++
	return nil
}

func (s *MemoryStore) SaveSyncEndpoint(_ context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoint = endpoint
	s.writes[state.KeySyncEndpoint]++
	return nil
}

// WriteCount returns how many times the record under key was saved.
func (s *MemoryStore) WriteCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[key]
}
