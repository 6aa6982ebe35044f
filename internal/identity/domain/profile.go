package domain

import "time"

// Profile is a person's account, shared across every platform. A profile is
// active when DeletedAt is nil; soft-deleted profiles keep their row for
// audit history but fail every auth gate.
type Profile struct {
	ID            string
	Email         string
	PasswordHash  string // argon2 encoded
	Superuser     bool
	Validated     bool
	LoginAttempts int
	LastLoginAt   *time.Time // nil until the first successful login
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// Active reports whether the profile is not soft-deleted.
func (p Profile) Active() bool { return p.DeletedAt == nil }
