package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/adapter"
	"github.com/letitbe-trn/oneroom-app/internal/common/domain"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

const assistantUnavailableMessage = "Something went wrong while contacting the assistant. Please try again."

// localLayouts are accepted for extracted times without a zone offset.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// AssistantService turns free-text instructions into queries or bookings.
type AssistantService struct {
	holder    *state.Holder
	assistant adapter.AssistantAdapter
	bookings  *BookingService
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewAssistantService creates a new AssistantService.
// loc interprets extracted times that carry no offset.
func NewAssistantService(
	holder *state.Holder,
	assistant adapter.AssistantAdapter,
	bookings *BookingService,
	loc *time.Location,
	logger *zap.Logger,
) *AssistantService {
	if loc == nil {
		loc = time.UTC
	}
	return &AssistantService{
		holder:    holder,
		assistant: assistant,
		bookings:  bookings,
		location:  loc,
		now:       time.Now,
		logger:    logger,
	}
}

// Ask interprets prompt against the current bookings. A booking intent with
// all fields present is forwarded to AddBookings without touching the profile;
// its rejection is reported in the reply rather than as an error.
func (s *AssistantService) Ask(ctx context.Context, req AskRequest) (*AssistantReplyDTO, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, domain.NewValidationError("prompt is required")
	}

	intent, err := s.assistant.Interpret(ctx, prompt, s.holder.Snapshot().Bookings, s.now().In(s.location))
	if err != nil {
		s.logger.Error("assistant call failed", zap.Error(err))
		return nil, domain.NewExternalError(assistantUnavailableMessage, err)
	}

	reply := &AssistantReplyDTO{
		Action:  string(intent.Action),
		Message: intent.Message,
	}
	if !intent.HasBookingFields() {
		return reply, nil
	}

	checkIn, err := s.parseTime(intent.CheckIn)
	if err != nil {
		reply.BookingError = "could not understand the check-in time: " + intent.CheckIn
		return reply, nil
	}
	departure, err := s.parseTime(intent.Departure)
	if err != nil {
		reply.BookingError = "could not understand the departure time: " + intent.Departure
		return reply, nil
	}

	booked, err := s.bookings.AddBookings(ctx, AddBookingsRequest{
		Name:        intent.Name,
		CheckIn:     checkIn,
		Departure:   departure,
		IsRecurring: intent.IsRecurring,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
			reply.BookingError = err.Error()
			return reply, nil
		}
		return nil, err
	}

	reply.Booked = booked
	return reply, nil
}

func (s *AssistantService) parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, value, s.location)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
