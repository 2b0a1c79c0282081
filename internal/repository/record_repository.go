package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// RecordRepo provides access to study records, the self-study
// reflections students fill in on the day of a booked session.  A
// record shares its booking's natural-key ID and is created at most
// once: EnsureFromBooking never overwrites an existing record.
type RecordRepo struct {
	db *sql.DB
}

// NewRecordRepo returns a new RecordRepo bound to the given database.
func NewRecordRepo(db *sql.DB) *RecordRepo { return &RecordRepo{db: db} }

const recordColumns = `id, booking_id, student_id, slot_date, start_hour,
                       subject, purpose, unit, memo,
                       goal, reflection, self_mark, teacher_comment,
                       status, confirmed_by, confirmed_at, created_at, updated_at`

func scanRecord(row interface{ Scan(...interface{}) error }) (*model.StudyRecord, error) {
	var rec model.StudyRecord
	var selfMark, confirmedBy sql.NullString
	var confirmedAt sql.NullTime
	err := row.Scan(
		&rec.ID, &rec.BookingID, &rec.StudentID, &rec.Date, &rec.Start,
		&rec.Subject, &rec.Purpose, &rec.Unit, &rec.Memo,
		&rec.Goal, &rec.Reflection, &selfMark, &rec.TeacherComment,
		&rec.Status, &confirmedBy, &confirmedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if selfMark.Valid {
		m := selfMark.String
		rec.SelfMark = &m
	}
	if confirmedBy.Valid {
		cb := confirmedBy.String
		rec.ConfirmedBy = &cb
	}
	if confirmedAt.Valid {
		ca := confirmedAt.Time
		rec.ConfirmedAt = &ca
	}
	return &rec, nil
}

// Get loads a record by ID, returning (nil, nil) when it does not exist.
func (r *RecordRepo) Get(ctx context.Context, id string) (*model.StudyRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM study_records WHERE id = ?`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// EnsureFromBooking creates the draft record for a booking if it does
// not exist yet, copying the session metadata, and returns the stored
// record either way.  A concurrent create loses the duplicate-key race
// harmlessly; the existing record is returned.
func (r *RecordRepo) EnsureFromBooking(ctx context.Context, b *model.Booking) (*model.StudyRecord, error) {
	if rec, err := r.Get(ctx, b.ID); err != nil || rec != nil {
		return rec, err
	}
	const q = `INSERT INTO study_records
               (id, booking_id, student_id, slot_date, start_hour, subject, purpose, unit, memo, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.ID, b.StudentID, b.Date, b.Start,
		b.Subject, b.Purpose, b.Unit, b.Memo, model.RecordStatusDraft,
	)
	var me *mysql.MySQLError
	if err != nil && !(errors.As(err, &me) && me.Number == mysqlDuplicateEntry) {
		return nil, err
	}
	return r.Get(ctx, b.ID)
}

// UpdateStudentFields stores the student-entered reflection fields.
// Confirmed records are immutable for students; the WHERE clause makes
// the update a no-op in that case and the caller can detect it via the
// returned flag.
func (r *RecordRepo) UpdateStudentFields(ctx context.Context, id, goal, reflection string, selfMark *string) (bool, error) {
	const q = `UPDATE study_records
               SET goal = ?, reflection = ?, self_mark = ?, updated_at = NOW()
               WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, goal, reflection, selfMark, id, model.RecordStatusDraft)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Confirm marks a record as confirmed by the given teacher/admin.
func (r *RecordRepo) Confirm(ctx context.Context, id, confirmedBy string, at time.Time) error {
	const q = `UPDATE study_records
               SET status = ?, confirmed_by = ?, confirmed_at = ?, updated_at = NOW()
               WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, model.RecordStatusConfirmed, confirmedBy, at, id)
	return err
}

// SetTeacherComment stores teacher feedback on a record.
func (r *RecordRepo) SetTeacherComment(ctx context.Context, id, comment string) error {
	const q = `UPDATE study_records SET teacher_comment = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, comment, id)
	return err
}
