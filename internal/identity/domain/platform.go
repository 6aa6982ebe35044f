package domain

import "time"

// Platform is a tenant. Sessions, roles and permissions are all scoped to a
// platform; a token issued against one platform is useless on another.
type Platform struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (p Platform) Active() bool { return p.DeletedAt == nil }
