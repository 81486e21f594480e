package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
)

// BookingsChanged is the snapshot emitted after every committed add or delete.
type BookingsChanged struct {
	Reason   string
	Endpoint string
	Bookings []*booking.Booking
	At       time.Time
}

// Change reasons.
const (
	ReasonAdded   = "added"
	ReasonDeleted = "deleted"
	ReasonResync  = "resync"
)

// ChangeNotifier propagates committed booking changes to the mirror.
// Notify must not block on the mirror and must not fail the caller.
type ChangeNotifier interface {
	Notify(ctx context.Context, change BookingsChanged)
}

// Mirror pushes a change to the external spreadsheet.
type Mirror interface {
	Mirror(ctx context.Context, change BookingsChanged) error
}

// DirectNotifier mirrors each change on its own goroutine.
type DirectNotifier struct {
	mirror  Mirror
	timeout time.Duration
	logger  *zap.Logger
}

// NewDirectNotifier creates a fire-and-forget notifier.
func NewDirectNotifier(mirror Mirror, timeout time.Duration, logger *zap.Logger) *DirectNotifier {
	return &DirectNotifier{mirror: mirror, timeout: timeout, logger: logger}
}

// Notify starts the mirror call and returns immediately.
// The request context is not reused since the caller's request may end first.
func (n *DirectNotifier) Notify(_ context.Context, change BookingsChanged) {
	if change.Endpoint == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.mirror.Mirror(ctx, change); err != nil {
			n.logger.Warn("direct sync failed", zap.String("reason", change.Reason), zap.Error(err))
		}
	}()
}
