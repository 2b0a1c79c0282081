package model

import "time"

// Record statuses.  A record starts as a draft the student fills in on
// the day of the session and becomes confirmed once a teacher signs it
// off.  Confirmed records are no longer editable by the student.
const (
	RecordStatusDraft     = "draft"
	RecordStatusConfirmed = "confirmed"
)

// Self-assessment marks a student can give their own session.
const (
	SelfMarkGood = "good"
	SelfMarkBad  = "bad"
)

// StudyRecord is the self-study reflection attached to a booking.  It is
// created on demand from the booking (copying the session metadata) and
// shares the booking's natural-key ID.  Creating it again is a no-op so
// a student's entries are never overwritten.
type StudyRecord struct {
	ID        string // study_records.id (same as the booking ID)
	BookingID string // study_records.booking_id
	StudentID string // study_records.student_id
	Date      string // study_records.slot_date
	Start     string // study_records.start_hour

	Subject string // study_records.subject
	Purpose string // study_records.purpose
	Unit    string // study_records.unit
	Memo    string // study_records.memo

	// Filled in by the student on the day of the session.
	Goal       string  // study_records.goal
	Reflection string  // study_records.reflection
	SelfMark   *string // study_records.self_mark (nullable)

	// Optional teacher feedback.
	TeacherComment string // study_records.teacher_comment

	Status      string     // study_records.status
	ConfirmedBy *string    // study_records.confirmed_by (nullable)
	ConfirmedAt *time.Time // study_records.confirmed_at (nullable)
	CreatedAt   time.Time  // study_records.created_at
	UpdatedAt   time.Time  // study_records.updated_at
}
