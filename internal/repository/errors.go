// Package repository implements data access over MySQL: the three
// reservation ledgers (slot counters, daily and monthly usage), booking
// records, student accounts, refresh tokens and study records.  The
// ledger repositories expose ...Tx variants that operate inside a
// caller-provided transaction with FOR UPDATE reads; LedgerStore ties
// them together into the engine's transactional store.
package repository

import "errors"

// ErrStudentNotFound is returned when a student lookup by ID matches
// no row.  During login it is folded into a generic authentication
// failure so IDs cannot be probed.
var ErrStudentNotFound = errors.New("student not found")
