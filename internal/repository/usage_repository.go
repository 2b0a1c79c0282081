package repository

import (
	"context"
	"database/sql"
	"strings"
)

// UsageRepo provides data access to the per-student usage ledgers: the
// user_days table (which start hours a student booked on a day) and the
// user_months table (hours booked in a month).  Both are created lazily
// and mutated only inside the admission/cancellation transactions.
type UsageRepo struct {
	db *sql.DB
}

// NewUsageRepo returns a new UsageRepo bound to the given database.
func NewUsageRepo(db *sql.DB) *UsageRepo { return &UsageRepo{db: db} }

// joinStarts serialises a set of start labels into the single-column
// form stored in user_days.starts.
func joinStarts(starts []string) string {
	return strings.Join(starts, ",")
}

// splitStarts parses the stored column back into labels.  An empty
// column yields an empty slice, not [""].
func splitStarts(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// DailyStartsTx returns the start labels already booked by the student
// on the date, locking the row FOR UPDATE.  A missing row yields nil.
func (r *UsageRepo) DailyStartsTx(ctx context.Context, tx *sql.Tx, studentID, date string) ([]string, error) {
	const q = `SELECT starts FROM user_days WHERE student_id = ? AND slot_date = ? FOR UPDATE`
	var raw string
	err := tx.QueryRowContext(ctx, q, studentID, date).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return splitStarts(raw), nil
}

// MergeDailyStartsTx adds the given starts to the student's day record,
// creating the row on first booking of the day.  The caller must have
// read the row with DailyStartsTx in the same transaction, so the
// read-modify-write here operates on a locked row.
func (r *UsageRepo) MergeDailyStartsTx(ctx context.Context, tx *sql.Tx, studentID, date string, starts []string) error {
	existing, err := r.DailyStartsTx(ctx, tx, studentID, date)
	if err != nil {
		return err
	}
	merged := append(existing, starts...)
	const q = `INSERT INTO user_days (student_id, slot_date, starts)
               VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE starts = VALUES(starts)`
	_, err = tx.ExecContext(ctx, q, studentID, date, joinStarts(merged))
	return err
}

// RemoveDailyStartTx removes one start from the student's day record.
// When the last start goes, the row is deleted so the table only holds
// days with at least one booking.
func (r *UsageRepo) RemoveDailyStartTx(ctx context.Context, tx *sql.Tx, studentID, date, start string) error {
	existing, err := r.DailyStartsTx(ctx, tx, studentID, date)
	if err != nil {
		return err
	}
	kept := existing[:0]
	for _, s := range existing {
		if s != start {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		const del = `DELETE FROM user_days WHERE student_id = ? AND slot_date = ?`
		_, err = tx.ExecContext(ctx, del, studentID, date)
		return err
	}
	const upd = `UPDATE user_days SET starts = ? WHERE student_id = ? AND slot_date = ?`
	_, err = tx.ExecContext(ctx, upd, joinStarts(kept), studentID, date)
	return err
}

// MonthlyHoursTx returns the student's booked hours for a YYYY-MM month,
// locking the row FOR UPDATE.  A missing row yields zero.
func (r *UsageRepo) MonthlyHoursTx(ctx context.Context, tx *sql.Tx, studentID, month string) (int, error) {
	const q = `SELECT used_hours FROM user_months WHERE student_id = ? AND ym = ? FOR UPDATE`
	var hours int
	err := tx.QueryRowContext(ctx, q, studentID, month).Scan(&hours)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return hours, nil
}

// AddMonthlyHoursTx adjusts the student's monthly counter by delta,
// creating the row on first use.
func (r *UsageRepo) AddMonthlyHoursTx(ctx context.Context, tx *sql.Tx, studentID, month string, delta int) error {
	const q = `INSERT INTO user_months (student_id, ym, used_hours)
               VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE used_hours = used_hours + ?`
	_, err := tx.ExecContext(ctx, q, studentID, month, delta, delta)
	return err
}

// MonthlyHours returns the monthly counter outside any transaction, for
// display reads.
func (r *UsageRepo) MonthlyHours(ctx context.Context, studentID, month string) (int, error) {
	const q = `SELECT used_hours FROM user_months WHERE student_id = ? AND ym = ?`
	var hours int
	err := r.db.QueryRowContext(ctx, q, studentID, month).Scan(&hours)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return hours, nil
}
