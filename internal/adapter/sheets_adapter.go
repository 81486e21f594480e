package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
)

const phonePlaceholder = "N/A"

// SpreadsheetSyncer mirrors the full booking list to an external spreadsheet.
type SpreadsheetSyncer interface {
	Sync(ctx context.Context, endpoint string, bookings []*booking.Booking) error
}

// SyncRow is one booking as the spreadsheet receives it.
type SyncRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	CheckIn     string `json:"checkIn"`
	Departure   string `json:"departure"`
	CreatedAt   string `json:"createdAt"`
	IsRecurring bool   `json:"isRecurring"`
}

// SyncPayload is the webhook request body.
type SyncPayload struct {
	Action string    `json:"action"`
	Data   []SyncRow `json:"data"`
}

// WebhookSyncer posts the booking list as JSON to the configured endpoint.
type WebhookSyncer struct {
	client   *http.Client
	location *time.Location
	layout   string
	logger   *zap.Logger
}

// NewWebhookSyncer creates a syncer formatting times with layout in loc.
func NewWebhookSyncer(timeout time.Duration, loc *time.Location, layout string, logger *zap.Logger) *WebhookSyncer {
	if loc == nil {
		loc = time.UTC
	}
	return &WebhookSyncer{
		client:   &http.Client{Timeout: timeout},
		location: loc,
		layout:   layout,
		logger:   logger,
	}
}

// BuildPayload converts bookings into the webhook body.
func (w *WebhookSyncer) BuildPayload(bookings []*booking.Booking) SyncPayload {
	rows := make([]SyncRow, len(bookings))
	for i, b := range bookings {
		phone := b.Phone()
		if phone == "" {
			phone = phonePlaceholder
		}
		rows[i] = SyncRow{
			ID:          b.ID().String(),
			Name:        b.Name(),
			Phone:       phone,
			CheckIn:     w.format(b.CheckIn()),
			Departure:   w.format(b.Departure()),
			CreatedAt:   w.format(b.CreatedAt()),
			IsRecurring: b.IsRecurring(),
		}
	}
	return SyncPayload{Action: "sync", Data: rows}
}

// Sync posts the payload. The response body is not inspected beyond its status.
func (w *WebhookSyncer) Sync(ctx context.Context, endpoint string, bookings []*booking.Booking) error {
	body, err := json.Marshal(w.BuildPayload(bookings))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid sync endpoint: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sync endpoint returned status %d", resp.StatusCode)
	}

	w.logger.Info("bookings synced to spreadsheet", zap.Int("rows", len(bookings)))
	return nil
}

func (w *WebhookSyncer) format(t time.Time) string {
	return t.In(w.location).Format(w.layout)
}
