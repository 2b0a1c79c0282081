package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/reservation"
)

// mysqlDuplicateEntry is the MySQL error number for a violated unique
// or primary key (ER_DUP_ENTRY).
const mysqlDuplicateEntry = 1062

// BookingRepo provides CRUD operations for booking records.  A booking's
// primary key is the natural key `{studentId}_{date}_{start}`, so the
// database itself rejects a second booking of the same slot by the same
// student; there is no separate uniqueness check to race against.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, student_id, slot_date, start_hour, hours, subject, purpose, unit, memo, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID, &b.StudentID, &b.Date, &b.Start, &b.Hours,
		&b.Subject, &b.Purpose, &b.Unit, &b.Memo, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ExistsTx reports whether the student already holds a booking for the
// slot, locking any matching row FOR UPDATE.
func (r *BookingRepo) ExistsTx(ctx context.Context, tx *sql.Tx, studentID, date, start string) (bool, error) {
	const q = `SELECT 1 FROM bookings WHERE id = ? FOR UPDATE`
	var one int
	err := tx.QueryRowContext(ctx, q, reservation.BookingID(studentID, date, start)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a booking row within the provided transaction.  A
// duplicate natural key is reported as reservation.ErrDuplicateBooking
// so the engine surfaces the same error whether the duplicate was seen
// by the pre-check or raced in at insert time.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		b.ID, b.StudentID, b.Date, b.Start, b.Hours,
		b.Subject, b.Purpose, b.Unit, b.Memo, b.Status,
		b.CreatedAt, b.UpdatedAt,
	)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return reservation.ErrDuplicateBooking
	}
	return err
}

// GetTx loads a booking by ID within the transaction, locking the row
// FOR UPDATE.  It returns (nil, nil) when the booking does not exist.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteTx removes a booking row within the transaction.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `DELETE FROM bookings WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// Get loads a booking by ID outside any transaction, returning
// (nil, nil) when it does not exist.
func (r *BookingRepo) Get(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByStudentAndDate returns a student's bookings on one day, ordered
// by start hour.
func (r *BookingRepo) ListByStudentAndDate(ctx context.Context, studentID, date string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE student_id = ? AND slot_date = ?
               ORDER BY start_hour`
	return r.list(ctx, q, studentID, date)
}

// ListByStudentAndMonth returns a student's bookings within a YYYY-MM
// month, ordered by day then start hour.  The range predicate matches
// the key layout: days sort lexicographically within a month.
func (r *BookingRepo) ListByStudentAndMonth(ctx context.Context, studentID, month string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE student_id = ? AND slot_date >= ? AND slot_date <= ?
               ORDER BY slot_date, start_hour`
	return r.list(ctx, q, studentID, month+"-01", month+"-31")
}

// ListByDate returns every booking on one day across all students,
// ordered by start hour then student.  Used by admin views.
func (r *BookingRepo) ListByDate(ctx context.Context, date string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE slot_date = ?
               ORDER BY start_hour, student_id`
	return r.list(ctx, q, date)
}

// ListByMonth returns every booking within a YYYY-MM month across all
// students, ordered by day, start hour, student.  Used by the admin
// export.
func (r *BookingRepo) ListByMonth(ctx context.Context, month string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE slot_date >= ? AND slot_date <= ?
               ORDER BY slot_date, start_hour, student_id`
	return r.list(ctx, q, month+"-01", month+"-31")
}
