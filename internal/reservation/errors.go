package reservation

import "errors"

// Sentinel errors returned by the engine.  Handlers match them with
// errors.Is and translate each into a specific HTTP status and message;
// the business rejections are surfaced verbatim to the user because the
// reason (full slot vs. quota vs. duplicate) determines what they should
// do next.  ErrSlotFull and ErrDuplicateBooking are usually wrapped with
// the offending start hour.
var (
	// ErrInvalidRequest indicates malformed input: no starts, too many
	// starts, repeated starts, an unknown start label or a bad date.
	// It is a caller bug and must not be retried.
	ErrInvalidRequest = errors.New("invalid reservation request")

	// ErrMonthlyQuotaExceeded is returned when the request would push a
	// student past the monthly hour cap.
	ErrMonthlyQuotaExceeded = errors.New("monthly hour limit exceeded")

	// ErrDailyQuotaExceeded is returned when the request would push a
	// student past the daily slot cap.
	ErrDailyQuotaExceeded = errors.New("daily slot limit exceeded")

	// ErrSlotFull is returned when a requested slot already has the
	// maximum number of seats taken.
	ErrSlotFull = errors.New("slot is full")

	// ErrDuplicateBooking is returned when the student already holds a
	// booking for one of the requested slots.
	ErrDuplicateBooking = errors.New("slot already booked")

	// ErrContention is returned when the store could not commit the
	// transaction after its bounded conflict retries.  The whole call is
	// side-effect free and safe to retry from scratch.
	ErrContention = errors.New("transaction contention")

	// ErrNotFound is returned by Cancel when no active booking exists
	// for the given ID.
	ErrNotFound = errors.New("booking not found")

	// ErrCutoffViolation is returned when a cancellation arrives on or
	// after the booking's date.  Same-day cancellation is not allowed.
	ErrCutoffViolation = errors.New("cancellation cutoff passed")
)
