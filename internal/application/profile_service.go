package application

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/common/domain"
	"github.com/letitbe-trn/oneroom-app/internal/domain/profile"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

// ProfileService manages the user profile and the spreadsheet endpoint.
type ProfileService struct {
	holder *state.Holder
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(holder *state.Holder, logger *zap.Logger) *ProfileService {
	return &ProfileService{holder: holder, logger: logger}
}

// GetProfile returns the saved profile.
func (s *ProfileService) GetProfile(ctx context.Context) (*ProfileDTO, error) {
	p := s.holder.Snapshot().Profile
	if p == nil {
		return nil, domain.NewNotFoundError("UserProfile", "current")
	}
	return toProfileDTO(p), nil
}

// SaveProfile overwrites the profile wholesale.
func (s *ProfileService) SaveProfile(ctx context.Context, req ProfileRequest) (*ProfileDTO, error) {
	p, err := profile.NewUserProfile(req.Name, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.holder.SetProfile(ctx, p); err != nil {
		s.logger.Error("failed to save profile", zap.Error(err))
		return nil, err
	}
	s.logger.Info("profile saved")
	return toProfileDTO(p), nil
}

// GetSyncSettings returns the configured spreadsheet endpoint.
func (s *ProfileService) GetSyncSettings(ctx context.Context) *SyncSettingsDTO {
	endpoint := s.holder.Snapshot().SyncEndpoint
	return &SyncSettingsDTO{Endpoint: endpoint, Enabled: endpoint != ""}
}

// UpdateSyncEndpoint stores a new endpoint. Blank disables mirroring.
func (s *ProfileService) UpdateSyncEndpoint(ctx context.Context, req SyncSettingsRequest) (*SyncSettingsDTO, error) {
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, domain.NewValidationError("sync endpoint must be an absolute http(s) URL")
		}
	}
	if err := s.holder.SetSyncEndpoint(ctx, endpoint); err != nil {
		s.logger.Error("failed to save sync endpoint", zap.Error(err))
		return nil, err
	}
	s.logger.Info("sync endpoint updated", zap.Bool("enabled", endpoint != ""))
	return &SyncSettingsDTO{Endpoint: endpoint, Enabled: endpoint != ""}, nil
}
