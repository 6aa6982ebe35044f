package domain

import "time"

// Token is a ledger row recording one session: the SHA-256 fingerprints of
// the current access and refresh tokens plus the client IP that minted them.
// Refresh rotates the fingerprints in place, so the row id is stable for the
// life of the session. Revocation sets DeletedAt and is terminal.
type Token struct {
	ID          string
	PlatformID  string
	ProfileID   string
	AccessHash  string
	RefreshHash string
	IP          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Revoked reports whether the session has been revoked.
func (t Token) Revoked() bool { return t.DeletedAt != nil }

// TokenPair carries the signed JWTs handed to the client. Only fingerprints
// of these values are persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // seconds until the access token expires
}
