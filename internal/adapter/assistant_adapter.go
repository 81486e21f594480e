package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
)

// Action is the intent tag returned by the assistant.
type Action string

const (
	ActionBook    Action = "book"
	ActionQuery   Action = "query"
	ActionUnknown Action = "unknown"
)

// ParseAction normalizes a raw tag; anything unrecognized is ActionUnknown.
func ParseAction(raw string) Action {
	switch Action(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionBook:
		return ActionBook
	case ActionQuery:
		return ActionQuery
	default:
		return ActionUnknown
	}
}

// Intent is the structured result of interpreting a free-text instruction.
// CheckIn and Departure are ISO-8601 strings exactly as the model produced them.
type Intent struct {
	Action      Action
	Name        string
	CheckIn     string
	Departure   string
	IsRecurring bool
	Message     string
}

// HasBookingFields reports whether the intent carries everything a booking needs.
func (i *Intent) HasBookingFields() bool {
	return i.Action == ActionBook && i.Name != "" && i.CheckIn != "" && i.Departure != ""
}

// AssistantAdapter is the Anti-Corruption Layer for the language-model service.
type AssistantAdapter interface {
	// Interpret extracts an intent from prompt given the current bookings.
	Interpret(ctx context.Context, prompt string, bookings []*booking.Booking, now time.Time) (*Intent, error)

	// SummarizeConflicts writes a short, friendly warning about overlapping bookings.
	SummarizeConflicts(ctx context.Context, conflicts []booking.Conflict) (string, error)
}

// MockAssistantAdapter stands in when no API key is configured.
// It never books anything and describes conflicts with a fixed template.
type MockAssistantAdapter struct {
	logger *zap.Logger
}

// NewMockAssistantAdapter creates a mock assistant for development.
func NewMockAssistantAdapter(logger *zap.Logger) *MockAssistantAdapter {
	return &MockAssistantAdapter{logger: logger}
}

// Interpret always answers with ActionUnknown.
func (m *MockAssistantAdapter) Interpret(ctx context.Context, prompt string, bookings []*booking.Booking, now time.Time) (*Intent, error) {
	m.logger.Info("[MOCK ASSISTANT] interpret",
		zap.Int("prompt_len", len(prompt)),
		zap.Int("booking_count", len(bookings)),
	)
	return &Intent{
		Action:  ActionUnknown,
		Message: "The assistant is not configured. Please use the booking form.",
	}, nil
}

// SummarizeConflicts lists the overlapping pairs.
func (m *MockAssistantAdapter) SummarizeConflicts(ctx context.Context, conflicts []booking.Conflict) (string, error) {
	m.logger.Info("[MOCK ASSISTANT] summarize conflicts", zap.Int("count", len(conflicts)))

	parts := make([]string, len(conflicts))
	for i, c := range conflicts {
		parts[i] = fmt.Sprintf("%s and %s on %s",
			c.First.Name(), c.Second.Name(), c.First.CheckIn().Format("2006-01-02 15:04"))
	}
	return fmt.Sprintf("Heads up: %d overlapping booking(s) found: %s.", len(conflicts), strings.Join(parts, "; ")), nil
}
