package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/study-room-reservation/internal/metrics"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/reservation"
)

// MySQL error numbers that mean the transaction lost a race and should
// be retried from scratch: ER_LOCK_DEADLOCK and ER_LOCK_WAIT_TIMEOUT.
const (
	mysqlDeadlock        = 1213
	mysqlLockWaitTimeout = 1205
)

// maxTxAttempts bounds the automatic conflict retries before a call is
// failed with reservation.ErrContention.
const maxTxAttempts = 3

// LedgerStore implements reservation.Store on top of MySQL.  Every
// RunTransaction call is one BEGIN..COMMIT; reads inside it go through
// the repo Tx methods, which lock the touched rows FOR UPDATE, so the
// engine's re-validation really does see committed state and blocks
// competing admissions on the same keys.  Deadlocks between competing
// transactions are retried transparently a bounded number of times.
type LedgerStore struct {
	db       *sql.DB
	slots    *SlotCounterRepo
	usage    *UsageRepo
	bookings *BookingRepo
}

// NewLedgerStore constructs a LedgerStore over the given handle and
// ledger repositories.
func NewLedgerStore(db *sql.DB, slots *SlotCounterRepo, usage *UsageRepo, bookings *BookingRepo) *LedgerStore {
	if db == nil || slots == nil || usage == nil || bookings == nil {
		panic("nil dependency passed to NewLedgerStore")
	}
	return &LedgerStore{db: db, slots: slots, usage: usage, bookings: bookings}
}

// RunTransaction executes fn inside a database transaction, retrying on
// lock conflicts.  Errors returned by fn abort the transaction and are
// returned unchanged; only store-level conflict errors trigger a retry.
func (s *LedgerStore) RunTransaction(ctx context.Context, fn func(tx reservation.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if attempt > 0 {
			metrics.TxRetries.Inc()
			// Brief pause so the competing transaction can finish.
			select {
			case <-time.After(time.Duration(attempt) * 20 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !retryableTxError(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", reservation.ErrContention, lastErr)
}

func (s *LedgerStore) runOnce(ctx context.Context, fn func(tx reservation.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&ledgerTx{store: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// retryableTxError reports whether the error is a MySQL lock conflict
// worth retrying.  Business errors from the engine never match.
func retryableTxError(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout
}

// ledgerTx adapts one *sql.Tx to the reservation.Tx interface by
// delegating to the ledger repositories' Tx methods.
type ledgerTx struct {
	store *LedgerStore
	tx    *sql.Tx
}

func (t *ledgerTx) SlotCount(ctx context.Context, date, start string) (int, error) {
	return t.store.slots.CountTx(ctx, t.tx, date, start)
}

func (t *ledgerTx) IncrementSlot(ctx context.Context, date, start string, delta int) error {
	return t.store.slots.IncrementTx(ctx, t.tx, date, start, delta)
}

func (t *ledgerTx) DailyStarts(ctx context.Context, studentID, date string) ([]string, error) {
	return t.store.usage.DailyStartsTx(ctx, t.tx, studentID, date)
}

func (t *ledgerTx) MergeDailyStarts(ctx context.Context, studentID, date string, starts []string) error {
	return t.store.usage.MergeDailyStartsTx(ctx, t.tx, studentID, date, starts)
}

func (t *ledgerTx) RemoveDailyStart(ctx context.Context, studentID, date, start string) error {
	return t.store.usage.RemoveDailyStartTx(ctx, t.tx, studentID, date, start)
}

func (t *ledgerTx) MonthlyHours(ctx context.Context, studentID, month string) (int, error) {
	return t.store.usage.MonthlyHoursTx(ctx, t.tx, studentID, month)
}

func (t *ledgerTx) AddMonthlyHours(ctx context.Context, studentID, month string, delta int) error {
	return t.store.usage.AddMonthlyHoursTx(ctx, t.tx, studentID, month, delta)
}

func (t *ledgerTx) BookingExists(ctx context.Context, studentID, date, start string) (bool, error) {
	return t.store.bookings.ExistsTx(ctx, t.tx, studentID, date, start)
}

func (t *ledgerTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	return t.store.bookings.CreateTx(ctx, t.tx, b)
}

func (t *ledgerTx) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return t.store.bookings.GetTx(ctx, t.tx, id)
}

func (t *ledgerTx) DeleteBooking(ctx context.Context, id string) error {
	return t.store.bookings.DeleteTx(ctx, t.tx, id)
}
