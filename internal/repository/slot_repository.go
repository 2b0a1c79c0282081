package repository // repository for slot capacity persistence

import (
	"context"
	"database/sql"
)

// SlotCounterRepo encapsulates database operations for slot_counters.
// Each row tracks the occupancy of one offered slot, identified by its
// calendar day and start hour.  Rows are created lazily: a slot nobody
// has booked yet has no row and counts as zero.
type SlotCounterRepo struct {
	db *sql.DB
}

// NewSlotCounterRepo constructs a SlotCounterRepo given a DB handle.
func NewSlotCounterRepo(db *sql.DB) *SlotCounterRepo {
	return &SlotCounterRepo{db: db}
}

// CountTx returns the occupancy of one slot within the provided
// transaction.  The row is read FOR UPDATE so a concurrent admission for
// the same slot blocks until this transaction finishes; that lock is
// what keeps two near-simultaneous requests from both seeing the last
// free seat.  A missing row yields zero.
func (r *SlotCounterRepo) CountTx(ctx context.Context, tx *sql.Tx, date, start string) (int, error) {
	const q = `SELECT occupied_count FROM slot_counters WHERE slot_date = ? AND start_hour = ? FOR UPDATE`
	var count int
	err := tx.QueryRowContext(ctx, q, date, start).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementTx adjusts a slot's occupancy by delta, creating the row on
// first use.  Callers are expected to have read the counter FOR UPDATE
// in the same transaction before incrementing.
func (r *SlotCounterRepo) IncrementTx(ctx context.Context, tx *sql.Tx, date, start string, delta int) error {
	const q = `INSERT INTO slot_counters (slot_date, start_hour, occupied_count)
               VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE occupied_count = occupied_count + ?`
	_, err := tx.ExecContext(ctx, q, date, start, delta, delta)
	return err
}

// Count returns a slot's occupancy outside any transaction.  It is used
// for display reads where a slightly stale value is acceptable.
func (r *SlotCounterRepo) Count(ctx context.Context, date, start string) (int, error) {
	const q = `SELECT occupied_count FROM slot_counters WHERE slot_date = ? AND start_hour = ?`
	var count int
	err := r.db.QueryRowContext(ctx, q, date, start).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountsByDate returns the occupancy of every booked slot on a day as a
// map keyed by start hour.  Starts without a row are simply absent.
func (r *SlotCounterRepo) CountsByDate(ctx context.Context, date string) (map[string]int, error) {
	const q = `SELECT start_hour, occupied_count FROM slot_counters WHERE slot_date = ?`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var start string
		var count int
		if err := rows.Scan(&start, &count); err != nil {
			return nil, err
		}
		counts[start] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
