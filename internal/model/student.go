package model

import "time"

// Student represents a student account as stored in the `students`
// table.  Students authenticate with their ID plus a numeric PIN; only
// the bcrypt hash of the PIN is persisted.  Inactive students keep
// their history but can no longer log in or book slots.
//
// Fields:
//  ID          – studio-assigned student identifier (also the login name).
//  DisplayName – name shown in admin listings.
//  PinHash     – bcrypt hash of the student's PIN.
//  Active      – whether the account may log in.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Student struct {
	ID          string    // students.id
	DisplayName string    // students.display_name
	PinHash     string    // students.pin_hash
	Active      bool      // students.active
	CreatedAt   time.Time // students.created_at
	UpdatedAt   time.Time // students.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// subject is a student ID or the fixed admin subject.  The plain token
// is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	Subject   string     // refresh_tokens.subject
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
