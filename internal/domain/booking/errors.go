package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/letitbe-trn/oneroom-app/internal/common/domain"
)

var (
	// ErrInvalidRange is returned when check-in does not precede departure.
	ErrInvalidRange = &domain.DomainError{Err: domain.ErrValidation, Message: "invalid time range: check-in must be before departure"}

	// ErrNameRequired is returned when the holder name is blank.
	ErrNameRequired = &domain.DomainError{Err: domain.ErrValidation, Message: "holder name is required"}

	// ErrSeriesOutOfRange is returned when a recurring series cannot fit all
	// of its weekly instances before the end of the supported calendar.
	ErrSeriesOutOfRange = &domain.DomainError{Err: domain.ErrValidation, Message: "recurring series extends past the supported calendar range"}
)

// OverlapError rejects a whole batch because one generated occurrence
// intersects an existing booking.
type OverlapError struct {
	// Occurrence is the zero-based index of the offending instance.
	Occurrence    int
	Start         time.Time
	End           time.Time
	ConflictingID uuid.UUID
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("schedule conflict in week %d: %s - %s overlaps booking %s",
		e.Occurrence+1,
		e.Start.Format(time.RFC3339),
		e.End.Format(time.RFC3339),
		e.ConflictingID,
	)
}

// Is classifies overlaps as domain conflicts.
func (e *OverlapError) Is(target error) bool {
	return target == domain.ErrConflict
}
