package state

import (
	"context"
	"sync"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/domain/profile"
)

// Keys of the three independently persisted records.
const (
	KeyBookings     = "oneroom_bookings"
	KeyProfile      = "oneroom_user_profile"
	KeySyncEndpoint = "oneroom_sheet_url"
)

// AppState is everything the service persists.
type AppState struct {
	Bookings     []*booking.Booking
	Profile      *profile.UserProfile
	SyncEndpoint string
}

// Store is the persistence port. Load runs once at startup; each Save
// rewrites one record in full.
type Store interface {
	Load(ctx context.Context) (AppState, error)
	SaveBookings(ctx context.Context, bookings []*booking.Booking) error
	SaveProfile(ctx context.Context, p *profile.UserProfile) error
	SaveSyncEndpoint(ctx context.Context, endpoint string) error
}

// Holder owns the in-memory AppState and serializes every change to it.
// A change is applied in memory only after the store accepted it.
type Holder struct {
	mu      sync.Mutex
	current AppState
	store   Store
}

// NewHolder loads the persisted state through store.
func NewHolder(ctx context.Context, store Store) (*Holder, error) {
	st, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Holder{current: st, store: store}, nil
}

// Snapshot returns a copy of the current state.
// Bookings are immutable, so sharing the pointers is safe.
func (h *Holder) Snapshot() AppState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.clone()
}

// UpdateBookings computes a new booking list from the current state and
// persists it. fn returning changed=false skips persistence.
func (h *Holder) UpdateBookings(ctx context.Context, fn func(st AppState) (next []*booking.Booking, changed bool, err error)) (AppState, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, changed, err := fn(h.current.clone())
	if err != nil || !changed {
		return h.current.clone(), false, err
	}
	if err := h.store.SaveBookings(ctx, next); err != nil {
		return h.current.clone(), false, err
	}
	h.current.Bookings = next
	return h.current.clone(), true, nil
}

// SetProfile persists and installs p.
func (h *Holder) SetProfile(ctx context.Context, p *profile.UserProfile) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.SaveProfile(ctx, p); err != nil {
		return err
	}
	h.current.Profile = p
	return nil
}

// SetSyncEndpoint persists and installs the spreadsheet webhook URL.
func (h *Holder) SetSyncEndpoint(ctx context.Context, endpoint string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.SaveSyncEndpoint(ctx, endpoint); err != nil {
		return err
	}
	h.current.SyncEndpoint = endpoint
	return nil
}

func (s AppState) clone() AppState {
	bookings := make([]*booking.Booking, len(s.Bookings))
	copy(bookings, s.Bookings)
	return AppState{
		Bookings:     bookings,
		Profile:      s.Profile,
		SyncEndpoint: s.SyncEndpoint,
	}
}
