package domain

import "time"

// Role bundles permissions within a single platform. Profiles hold roles via
// the profile_roles join table; a soft-deleted role silently drops out of
// every snapshot built after its deletion.
type Role struct {
	ID          string
	PlatformID  string
	Name        string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

func (r Role) Active() bool { return r.DeletedAt == nil }
