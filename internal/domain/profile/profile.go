package profile

import (
	"strings"

	"github.com/letitbe-trn/oneroom-app/internal/common/domain"
)

// UserProfile prefills booking forms. It is saved wholesale, never patched.
type UserProfile struct {
	name  string
	phone string
}

// NewUserProfile validates and creates a profile.
func NewUserProfile(name, phone string) (*UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("profile name is required")
	}
	return &UserProfile{name: name, phone: strings.TrimSpace(phone)}, nil
}

// Reconstitute rebuilds a profile from persisted data.
func Reconstitute(name, phone string) *UserProfile {
	return &UserProfile{name: name, phone: phone}
}

func (p *UserProfile) Name() string  { return p.name }
func (p *UserProfile) Phone() string { return p.phone }
