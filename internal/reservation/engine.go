package reservation

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// Engine decides whether a booking request may be admitted and applies
// the resulting ledger writes atomically.  It holds no state of its own;
// every call is one transaction against the store, so concurrent callers
// coordinate only through the store's locking.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine returns an Engine backed by the given store.
func NewEngine(store Store) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{store: store, now: time.Now}
}

// Reserve books the requested start hours for the student on the given
// date and returns the created booking IDs in ascending start order.
//
// Validation happens in a fixed order so the first failure determines
// the error: request shape, monthly quota, daily quota, per-slot
// capacity (ascending start order), duplicate booking.  All checks and
// writes run inside a single store transaction, so a request that fails
// any check leaves every ledger untouched, and two concurrent requests
// for the last seat of a slot cannot both commit.
func (e *Engine) Reserve(ctx context.Context, studentID, date string, starts []string, details model.BookingDetails) ([]string, error) {
	if studentID == "" {
		return nil, fmt.Errorf("%w: missing student id", ErrInvalidRequest)
	}
	if !ValidDate(date) {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidRequest, date)
	}
	if len(starts) == 0 || len(starts) > DailyMaxSlots {
		return nil, fmt.Errorf("%w: select between 1 and %d slots", ErrInvalidRequest, DailyMaxSlots)
	}
	// Work on a sorted copy; ascending order keeps error reporting
	// deterministic when more than one slot is invalid.
	sorted := make([]string, len(starts))
	copy(sorted, starts)
	sort.Strings(sorted)
	for i, start := range sorted {
		if !ValidStart(start) {
			return nil, fmt.Errorf("%w: unknown start %q", ErrInvalidRequest, start)
		}
		if i > 0 && sorted[i-1] == start {
			return nil, fmt.Errorf("%w: start %q requested twice", ErrInvalidRequest, start)
		}
	}

	month := MonthOf(date)
	ids := make([]string, 0, len(sorted))
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		ids = ids[:0]

		used, err := tx.MonthlyHours(ctx, studentID, month)
		if err != nil {
			return err
		}
		if used+len(sorted) > MonthlyMaxHours {
			return ErrMonthlyQuotaExceeded
		}

		booked, err := tx.DailyStarts(ctx, studentID, date)
		if err != nil {
			return err
		}
		if len(booked)+len(sorted) > DailyMaxSlots {
			return ErrDailyQuotaExceeded
		}

		for _, start := range sorted {
			count, err := tx.SlotCount(ctx, date, start)
			if err != nil {
				return err
			}
			if count >= MaxSeatsPerSlot {
				return fmt.Errorf("%w: start %s", ErrSlotFull, start)
			}
		}
		for _, start := range sorted {
			exists, err := tx.BookingExists(ctx, studentID, date, start)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: start %s", ErrDuplicateBooking, start)
			}
		}

		now := e.now().UTC()
		for _, start := range sorted {
			if err := tx.IncrementSlot(ctx, date, start, 1); err != nil {
				return err
			}
			b := &model.Booking{
				ID:        BookingID(studentID, date, start),
				StudentID: studentID,
				Date:      date,
				Start:     start,
				Hours:     1,
				Subject:   details.Subject,
				Purpose:   details.Purpose,
				Unit:      details.Unit,
				Memo:      details.Memo,
				Status:    model.BookingStatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.CreateBooking(ctx, b); err != nil {
				return err
			}
			ids = append(ids, b.ID)
		}
		if err := tx.MergeDailyStarts(ctx, studentID, date, sorted); err != nil {
			return err
		}
		return tx.AddMonthlyHours(ctx, studentID, month, len(sorted))
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Cancel removes a booking and reverses its ledger entries: the slot
// counter, the daily usage record and the monthly hour counter all go
// down by one, atomically with the delete.  Cancellation is allowed only
// while the booking date is strictly after today; this is a soft guard,
// the store's own access rules are the outer line of defence.  On
// success the removed booking is returned.
func (e *Engine) Cancel(ctx context.Context, bookingID string) (*model.Booking, error) {
	today := YMD(e.now())
	var cancelled *model.Booking
	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrNotFound
		}
		if b.Date <= today {
			return ErrCutoffViolation
		}
		if err := tx.DeleteBooking(ctx, b.ID); err != nil {
			return err
		}
		count, err := tx.SlotCount(ctx, b.Date, b.Start)
		if err != nil {
			return err
		}
		if count > 0 {
			if err := tx.IncrementSlot(ctx, b.Date, b.Start, -1); err != nil {
				return err
			}
		} else {
			// A zero counter with a live booking means the ledgers were
			// already out of sync; don't push the counter negative.
			log.Printf("reservation: slot counter for %s_%s already zero while cancelling %s", b.Date, b.Start, b.ID)
		}
		if err := tx.RemoveDailyStart(ctx, b.StudentID, b.Date, b.Start); err != nil {
			return err
		}
		hours, err := tx.MonthlyHours(ctx, b.StudentID, MonthOf(b.Date))
		if err != nil {
			return err
		}
		if hours > 0 {
			if err := tx.AddMonthlyHours(ctx, b.StudentID, MonthOf(b.Date), -1); err != nil {
				return err
			}
		} else {
			log.Printf("reservation: monthly counter for %s %s already zero while cancelling %s", b.StudentID, MonthOf(b.Date), b.ID)
		}
		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Occupancy returns the current occupancy and the capacity of one slot.
// The read runs in its own transaction, so it is fresh at the moment it
// executes; display layers are free to cache the result.
func (e *Engine) Occupancy(ctx context.Context, date, start string) (count, capacity int, err error) {
	if !ValidDate(date) || !ValidStart(start) {
		return 0, 0, fmt.Errorf("%w: bad slot %s_%s", ErrInvalidRequest, date, start)
	}
	err = e.store.RunTransaction(ctx, func(tx Tx) error {
		count, err = tx.SlotCount(ctx, date, start)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return count, MaxSeatsPerSlot, nil
}

// Usage returns the student's booked hours for a YYYY-MM month together
// with the monthly cap.
func (e *Engine) Usage(ctx context.Context, studentID, month string) (used, limit int, err error) {
	if studentID == "" || !ValidMonth(month) {
		return 0, 0, fmt.Errorf("%w: bad usage query", ErrInvalidRequest)
	}
	err = e.store.RunTransaction(ctx, func(tx Tx) error {
		used, err = tx.MonthlyHours(ctx, studentID, month)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return used, MonthlyMaxHours, nil
}
