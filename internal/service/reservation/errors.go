package reservation

import (
	"fmt"
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
)

var (
	ErrMissingField      = fmt.Errorf("required field is missing: %w", domain.ErrInvalidArgument)
	ErrStartNotInFuture  = fmt.Errorf("start time must be in the future: %w", domain.ErrInvalidArgument)
	ErrEndBeforeStart    = fmt.Errorf("end time must be after start time: %w", domain.ErrInvalidArgument)
	ErrTooLong           = fmt.Errorf("reservation exceeds 8 hours: %w", domain.ErrInvalidArgument)
	ErrSeatBroken        = fmt.Errorf("seat is broken: %w", domain.ErrInvalidArgument)
	ErrSeatAlreadyBooked = fmt.Errorf("seat already booked: %w", domain.ErrInvalidArgument)
	ErrDailyLimit        = fmt.Errorf("daily reservation limit of 8 hours exceeded: %w", domain.ErrInvalidArgument)
	ErrExtensionStep     = fmt.Errorf("extension must add exactly one hour: %w", domain.ErrInvalidArgument)
	ErrExtensionNextDay  = fmt.Errorf("extension must end before the next day: %w", domain.ErrInvalidArgument)
	ErrNoCandidates      = fmt.Errorf("seat ids are required: %w", domain.ErrInvalidArgument)
	ErrBadPage           = fmt.Errorf("skip and limit must not be negative: %w", domain.ErrInvalidArgument)

	ErrNotReserved      = fmt.Errorf("reservation is not RESERVED: %w", domain.ErrInvalidState)
	ErrNotInUse         = fmt.Errorf("reservation is not IN_USE: %w", domain.ErrInvalidState)
	ErrSeatNotAvailable = fmt.Errorf("seat is not AVAILABLE: %w", domain.ErrInvalidState)
	ErrSeatUnavailable  = fmt.Errorf("seat is UNAVAILABLE: %w", domain.ErrInvalidState)
	ErrSeatNotOccupied  = fmt.Errorf("seat is not UNAVAILABLE: %w", domain.ErrInvalidState)
	ErrStaleReservation = fmt.Errorf("reservation changed concurrently: %w", domain.ErrInvalidState)

	ErrNotOwner = fmt.Errorf("reservation belongs to another employee: %w", domain.ErrPermissionDenied)

	ErrReservationNotFound = fmt.Errorf("reservation not found: %w", domain.ErrNotFound)
	ErrSeatNotFound        = fmt.Errorf("seat not found: %w", domain.ErrNotFound)
)

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}
