// Package jwtx signs and verifies the bearer tokens issued by the identity
// service. Every token carries a full authorization snapshot so downstream
// services can enforce permissions without a database round trip. The
// snapshot is only as fresh as the last issue or refresh; role changes made
// after signing are not visible until the token rotates.
package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token use values carried in the "use" claim. A refresh token presented on
// an authenticated endpoint (or vice versa) is rejected as malformed.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Snapshot is the authorization state embedded in every signed token. It is
// captured at issue time from the active profile, platform and role rows.
type Snapshot struct {
	ProfileID    string   `json:"pid"`
	Email        string   `json:"email"`
	PlatformID   string   `json:"plat"`
	PlatformName string   `json:"plat_name"`
	Superuser    bool     `json:"su,omitempty"`
	Roles        []string `json:"roles,omitempty"`
	Permissions  []string `json:"perms,omitempty"`
}

// HasPermission reports whether the snapshot grants the named permission.
// Superusers hold every permission implicitly.
func (s Snapshot) HasPermission(perm string) bool {
	if s.Superuser {
		return true
	}
	for _, p := range s.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAny reports whether the snapshot grants at least one of the named
// permissions. Superusers always pass.
func (s Snapshot) HasAny(perms ...string) bool {
	if s.Superuser {
		return true
	}
	for _, perm := range perms {
		if s.HasPermission(perm) {
			return true
		}
	}
	return false
}

// Claims is the full JWT payload: registered claims plus the token use and
// the embedded authorization snapshot. Subject is the profile email.
type Claims struct {
	jwt.RegisteredClaims
	Use      string `json:"use"`
	Snapshot `json:"snapshot"`
}
