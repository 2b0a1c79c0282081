package reservation

import (
	"context"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// Tx is the set of ledger operations available inside one transaction.
// Reads must reflect the transaction's own snapshot plus its writes, and
// must lock the rows they touch so two concurrent admissions over the
// same key cannot both observe the pre-update value.  Implementations do
// no validation of their own; they trust the engine's transaction
// boundary.
type Tx interface {
	// SlotCount returns the occupancy of one slot.  A slot with no
	// ledger row has count zero.
	SlotCount(ctx context.Context, date, start string) (int, error)
	// IncrementSlot adjusts a slot's occupancy by delta, creating the
	// row if needed.
	IncrementSlot(ctx context.Context, date, start string, delta int) error

	// DailyStarts returns the start labels the student already booked on
	// the date.
	DailyStarts(ctx context.Context, studentID, date string) ([]string, error)
	// MergeDailyStarts adds the given starts to the student's day record.
	MergeDailyStarts(ctx context.Context, studentID, date string, starts []string) error
	// RemoveDailyStart removes one start from the student's day record.
	RemoveDailyStart(ctx context.Context, studentID, date, start string) error

	// MonthlyHours returns the student's booked hours for a YYYY-MM month.
	MonthlyHours(ctx context.Context, studentID, month string) (int, error)
	// AddMonthlyHours adjusts the student's monthly counter by delta.
	AddMonthlyHours(ctx context.Context, studentID, month string, delta int) error

	// BookingExists reports whether the student already holds the slot.
	BookingExists(ctx context.Context, studentID, date, start string) (bool, error)
	// CreateBooking inserts a booking row.  Implementations must return
	// ErrDuplicateBooking when the natural key already exists.
	CreateBooking(ctx context.Context, b *model.Booking) error
	// GetBooking loads a booking by its natural-key ID, or nil when the
	// booking does not exist.
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	// DeleteBooking removes a booking row.
	DeleteBooking(ctx context.Context, id string) error
}

// Store runs a function inside one atomic transaction.  The writes made
// by fn become visible all at once on commit; when fn returns an error
// nothing is applied.  Implementations retry internally on store-level
// conflicts and return ErrContention once the retry budget is spent.
// Errors returned by fn itself are passed through unchanged and never
// retried.
type Store interface {
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}
