package domain

import "time"

// CredentialToken purposes.
const (
	CredentialPurposeValidate = "validate"
	CredentialPurposeReset    = "reset"
)

// CredentialToken is a single-use out-of-band token for email validation or
// password reset. Only the fingerprint is stored; the opaque value is handed
// to the delivery channel once and never persisted.
type CredentialToken struct {
	ID        string
	ProfileID string
	Purpose   string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
