// Package reservation implements the admission rules for study-slot
// bookings: per-slot capacity, per-day and per-month quotas, and the
// atomic commit that keeps those ledgers consistent under concurrent
// requests.  All state lives in the backing store; the engine itself is
// stateless between calls.
package reservation

import (
	"fmt"
	"time"
)

// Booking limits.  These mirror the studio's house rules: up to twenty
// students per slot, two slots per student per day, thirty hours per
// student per month.
const (
	MaxSeatsPerSlot = 20
	DailyMaxSlots   = 2
	MonthlyMaxHours = 30
)

// dateLayout is the calendar-day format used throughout the service.
const dateLayout = "2006-01-02"

// SlotStarts is the catalog of offered start hours.  Each slot is one
// hour long, beginning at the labelled hour ("15" = 15:00–16:00).  The
// catalog is fixed; slots outside it cannot be booked.
var SlotStarts = []string{"15", "16", "17", "18", "19", "20"}

// ValidStart reports whether the given start-hour label is part of the
// slot catalog.
func ValidStart(start string) bool {
	for _, s := range SlotStarts {
		if s == start {
			return true
		}
	}
	return false
}

// ValidDate reports whether the string is a well-formed YYYY-MM-DD day.
func ValidDate(date string) bool {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	// Reject inputs that parse but do not round-trip, e.g. "2026-2-08".
	return t.Format(dateLayout) == date
}

// MonthOf returns the YYYY-MM month of a YYYY-MM-DD date.  Callers must
// pass a validated date.
func MonthOf(date string) string {
	return date[:7]
}

// ValidMonth reports whether the string is a well-formed YYYY-MM month.
func ValidMonth(month string) bool {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return false
	}
	return t.Format("2006-01") == month
}

// BookingID derives the natural key for a booking.  The same student,
// date and start always produce the same ID, which is what lets the
// store's primary key reject duplicate bookings atomically.
func BookingID(studentID, date, start string) string {
	return fmt.Sprintf("%s_%s_%s", studentID, date, start)
}

// YMD formats a time as a YYYY-MM-DD day in the time's location.  The
// cancellation cutoff compares calendar days, not instants, so "today"
// is derived with this helper.
func YMD(t time.Time) string {
	return t.Format(dateLayout)
}
