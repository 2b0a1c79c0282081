package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// StudentRepo provides CRUD operations for student accounts.  Students
// are created and updated by admins only; the login flow merely reads.
type StudentRepo struct {
	db *sql.DB
}

// NewStudentRepo returns a new StudentRepo bound to the given database.
func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

// GetByID loads one student.  It returns ErrStudentNotFound when no row
// matches.
func (r *StudentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	const q = `SELECT id, display_name, pin_hash, active, created_at, updated_at
               FROM students WHERE id = ?`
	var s model.Student
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.DisplayName, &s.PinHash, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert creates or updates a student account.  Empty DisplayName or
// PinHash leave the stored values untouched so an admin can rename a
// student without resetting the PIN and vice versa.
func (r *StudentRepo) Upsert(ctx context.Context, s *model.Student) error {
	const q = `INSERT INTO students (id, display_name, pin_hash, active)
               VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                   display_name = IF(VALUES(display_name) = '', display_name, VALUES(display_name)),
                   pin_hash     = IF(VALUES(pin_hash) = '', pin_hash, VALUES(pin_hash)),
                   active       = VALUES(active),
                   updated_at   = NOW()`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.DisplayName, s.PinHash, s.Active)
	return err
}

// List returns all students ordered by ID.
func (r *StudentRepo) List(ctx context.Context) ([]model.Student, error) {
	const q = `SELECT id, display_name, pin_hash, active, created_at, updated_at
               FROM students ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	students := make([]model.Student, 0)
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.DisplayName, &s.PinHash, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return students, nil
}
