package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/adapter"
	"github.com/letitbe-trn/oneroom-app/internal/common/domain"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

// SyncService mirrors the booking list to the external spreadsheet.
// Mirror failures are logged and never roll back local state.
type SyncService struct {
	holder *state.Holder
	syncer adapter.SpreadsheetSyncer
	logger *zap.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(holder *state.Holder, syncer adapter.SpreadsheetSyncer, logger *zap.Logger) *SyncService {
	return &SyncService{holder: holder, syncer: syncer, logger: logger}
}

// Mirror posts the snapshot carried by change. No endpoint means nothing to do.
func (s *SyncService) Mirror(ctx context.Context, change BookingsChanged) error {
	if change.Endpoint == "" {
		return nil
	}
	if err := s.syncer.Sync(ctx, change.Endpoint, change.Bookings); err != nil {
		s.logger.Warn("spreadsheet sync failed",
			zap.String("reason", change.Reason),
			zap.Int("rows", len(change.Bookings)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// SyncNow mirrors the current state synchronously and reports the outcome.
func (s *SyncService) SyncNow(ctx context.Context) error {
	st := s.holder.Snapshot()
	if st.SyncEndpoint == "" {
		return domain.NewValidationError("sync endpoint is not configured")
	}
	if err := s.Mirror(ctx, BookingsChanged{Reason: ReasonResync, Endpoint: st.SyncEndpoint, Bookings: st.Bookings}); err != nil {
		return domain.NewExternalError("spreadsheet sync failed", err)
	}
	return nil
}

// Resync mirrors the current state in the background schedule. A missing
// endpoint is skipped silently.
func (s *SyncService) Resync(ctx context.Context) {
	st := s.holder.Snapshot()
	if st.SyncEndpoint == "" {
		return
	}
	if err := s.Mirror(ctx, BookingsChanged{Reason: ReasonResync, Endpoint: st.SyncEndpoint, Bookings: st.Bookings}); err == nil {
		s.logger.Info("scheduled resync completed", zap.Int("rows", len(st.Bookings)))
	}
}
