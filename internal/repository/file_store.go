package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/domain/profile"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

// FileStore keeps each record in its own file under dir:
//
//	oneroom_bookings.yaml      booking list
//	oneroom_user_profile.yaml  profile
//	oneroom_sheet_url          sync endpoint, plain text
//
// Writes go through a temp file and rename so a crash never leaves a
// half-written record behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store directory is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load reads all three records; missing files yield zero values.
func (s *FileStore) Load(_ context.Context) (state.AppState, error) {
	var st state.AppState

	data, err := s.read(state.KeyBookings + ".yaml")
	if err != nil {
		return st, err
	}
	if len(data) > 0 {
		var records []BookingRecord
		if err := yaml.Unmarshal(data, &records); err != nil {
			return st, fmt.Errorf("failed to decode %s: %w", state.KeyBookings, err)
		}
		st.Bookings = toBookingDomain(records)
	}

	data, err = s.read(state.KeyProfile + ".yaml")
	if err != nil {
		return st, err
	}
	if len(data) > 0 {
		var record ProfileRecord
		if err := yaml.Unmarshal(data, &record); err != nil {
			return st, fmt.Errorf("failed to decode %s: %w", state.KeyProfile, err)
		}
		st.Profile = toProfileDomain(record)
	}

	data, err = s.read(state.KeySyncEndpoint)
	if err != nil {
		return st, err
	}
	st.SyncEndpoint = strings.TrimSpace(string(data))

	return st, nil
}

// SaveBookings rewrites the booking list file.
func (s *FileStore) SaveBookings(_ context.Context, bookings []*booking.Booking) error {
	data, err := yaml.Marshal(toBookingRecords(bookings))
	if err != nil {
		return err
	}
	return s.write(state.KeyBookings+".yaml", data)
}

// SaveProfile rewrites the profile file.
func (s *FileStore) SaveProfile(_ context.Context, p *profile.UserProfile) error {
	data, err := yaml.Marshal(toProfileRecord(p))
	if err != nil {
		return err
	}
	return s.write(state.KeyProfile+".yaml", data)
}

// SaveSyncEndpoint rewrites the endpoint file.
func (s *FileStore) SaveSyncEndpoint(_ context.Context, endpoint string) error {
	return s.write(state.KeySyncEndpoint, []byte(endpoint))
}

// Ping reports whether the store directory is still present.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *FileStore) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (s *FileStore) write(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(s.dir, name))
}
