package model

import "time"

// Subjects lists the accepted values for a booking's subject field.
// They mirror the subjects offered by the studio.
var Subjects = []string{"japanese", "math", "english", "science", "social", "other"}

// Purposes lists the accepted values for a booking's purpose field.
var Purposes = []string{"preview", "review", "homework", "test-prep", "quiz", "other"}

// BookingStatusActive is the only persisted booking status.  Cancellation
// removes the row entirely instead of flipping a flag, so a row's mere
// existence means the seat is taken.
const BookingStatusActive = "active"

// Booking records one accepted reservation of a single one-hour slot.
// The ID is the natural key `{studentId}_{date}_{start}` and doubles as
// the primary key in the bookings table, which is what enforces that a
// student cannot hold the same slot twice.
//
// Fields:
//  ID        – natural key, e.g. "s1_2026-02-08_17".
//  StudentID – student who owns the booking.
//  Date      – calendar day in YYYY-MM-DD form.
//  Start     – start-hour label from the slot catalog (e.g. "17").
//  Hours     – booked hours; always 1 for a single slot.
//  Subject   – subject the student plans to study.
//  Purpose   – purpose of the session (review, homework, ...).
//  Unit      – free-text unit or chapter description.
//  Memo      – free-text note from the student.
//  Status    – always "active" while the row exists.
//  CreatedAt – server-assigned creation timestamp.
//  UpdatedAt – last modification timestamp.
type Booking struct {
	ID        string    // bookings.id
	StudentID string    // bookings.student_id
	Date      string    // bookings.slot_date
	Start     string    // bookings.start_hour
	Hours     uint8     // bookings.hours
	Subject   string    // bookings.subject
	Purpose   string    // bookings.purpose
	Unit      string    // bookings.unit
	Memo      string    // bookings.memo
	Status    string    // bookings.status
	CreatedAt time.Time // bookings.created_at
	UpdatedAt time.Time // bookings.updated_at
}

// BookingDetails carries the free-form metadata a student attaches to a
// reservation request.  It is copied verbatim onto every booking created
// by the request.
type BookingDetails struct {
	Subject string
	Purpose string
	Unit    string
	Memo    string
}
