package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/domain/profile"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

// RecordModel is the GORM persistence model for the app_records table.
// Each row holds one of the three string-keyed records.
type RecordModel struct {
	Key       string    `gorm:"type:varchar(64);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (RecordModel) TableName() string {
	return "app_records"
}

// GormStore is the PostgreSQL implementation of state.Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-based store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Load reads all three records. Missing rows yield zero values.
func (s *GormStore) Load(ctx context.Context) (state.AppState, error) {
	var st state.AppState

	raw, ok, err := s.get(ctx, state.KeyBookings)
	if err != nil {
		return st, err
	}
	if ok && raw != "" {
		var records []BookingRecord
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return st, fmt.Errorf("failed to decode %s: %w", state.KeyBookings, err)
		}
		st.Bookings = toBookingDomain(records)
	}

	raw, ok, err = s.get(ctx, state.KeyProfile)
	if err != nil {
		return st, err
	}
	if ok && raw != "" {
		var record ProfileRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return st, fmt.Errorf("failed to decode %s: %w", state.KeyProfile, err)
		}
		st.Profile = toProfileDomain(record)
	}

	raw, _, err = s.get(ctx, state.KeySyncEndpoint)
	if err != nil {
		return st, err
	}
	st.SyncEndpoint = raw

	return st, nil
}

// SaveBookings rewrites the booking list record.
func (s *GormStore) SaveBookings(ctx context.Context, bookings []*booking.Booking) error {
	data, err := json.Marshal(toBookingRecords(bookings))
	if err != nil {
		return err
	}
	return s.put(ctx, state.KeyBookings, string(data))
}

// SaveProfile rewrites the profile record.
func (s *GormStore) SaveProfile(ctx context.Context, p *profile.UserProfile) error {
	data, err := json.Marshal(toProfileRecord(p))
	if err != nil {
		return err
	}
	return s.put(ctx, state.KeyProfile, string(data))
}

// SaveSyncEndpoint rewrites the sync endpoint record.
func (s *GormStore) SaveSyncEndpoint(ctx context.Context, endpoint string) error {
	return s.put(ctx, state.KeySyncEndpoint, endpoint)
}

// Ping verifies the database connection, for readiness checks.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) get(ctx context.Context, key string) (string, bool, error) {
	var model RecordModel
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return model.Value, true, nil
}

func (s *GormStore) put(ctx context.Context, key, value string) error {
	model := RecordModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
