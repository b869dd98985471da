package errors

import "errors"

// Business-rule outcomes of the reservation pipeline. The first group is
// surfaced to callers as-is and requires no compensation; the second group
// is only ever returned after reserved seats have been released again.
var (
	ErrEventNotFound     = errors.New("event slot not found")
	ErrSlotNotOpen       = errors.New("event slot is not open for reservations")
	ErrInsufficientSeats = errors.New("not enough seats remaining")
	ErrHostSuspended     = errors.New("host account is suspended")
	ErrDuplicateBooking  = errors.New("guest already holds an active booking for this event")
	ErrQuotaExceeded     = errors.New("per-guest seat quota exceeded for this event")

	ErrInvalidPrice       = errors.New("resolved price is invalid")
	ErrPersistenceFailure = errors.New("persistence failure")
)

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

// Code returns the stable API error code for err, or empty if err is not
// part of the reservation taxonomy. Raw storage errors never reach callers.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return "EVENT_NOT_FOUND"
	case errors.Is(err, ErrSlotNotOpen):
		return "SLOT_NOT_OPEN"
	case errors.Is(err, ErrInsufficientSeats):
		return "INSUFFICIENT_SEATS"
	case errors.Is(err, ErrHostSuspended):
		return "HOST_SUSPENDED"
	case errors.Is(err, ErrDuplicateBooking):
		return "DUPLICATE_BOOKING"
	case errors.Is(err, ErrQuotaExceeded):
		return "QUOTA_EXCEEDED"
	case errors.Is(err, ErrInvalidPrice):
		return "INVALID_PRICE"
	case errors.Is(err, ErrPersistenceFailure):
		return "PERSISTENCE_FAILURE"
	}
	return ""
}
