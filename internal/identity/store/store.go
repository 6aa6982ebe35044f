package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable.
//
// Getters return soft-deleted rows as-is; the service layer decides whether
// a deleted row means "not found" or "not active". The exception is role
// listing, which only ever feeds snapshots and so filters deleted rows.
type Store interface {
	Profiles() Profiles
	Platforms() Platforms
	Roles() Roles
	Tokens() Tokens
	CredentialTokens() CredentialTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh
	// rotation). The caller MUST call Commit() or Rollback() on the
	// returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Profiles interface {
	// GetProfileByID returns a profile by id, soft-deleted included.
	GetProfileByID(ctx context.Context, id string) (domain.Profile, error)

	// GetProfileByEmail is used during login. Emails are unique.
	GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error)

	// CreateProfile inserts a new profile (id is provided by app via ULID).
	CreateProfile(ctx context.Context, p domain.Profile) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, profileID string, newHash string) error

	// SetLoginAttempts writes the failed-login counter.
	SetLoginAttempts(ctx context.Context, profileID string, attempts int) error

	// RecordLogin sets last_login_at and resets the failed-login counter.
	RecordLogin(ctx context.Context, profileID string, at time.Time) error

	// MarkValidated flips the validated flag.
	MarkValidated(ctx context.Context, profileID string) error

	// SoftDeleteProfile sets deleted_at, keeping the row for audit history.
	SoftDeleteProfile(ctx context.Context, profileID string) error
}

type Platforms interface {
	// GetPlatformByID returns a platform by id, soft-deleted included.
	GetPlatformByID(ctx context.Context, id string) (domain.Platform, error)

	// GetPlatformByName returns a platform by its unique name.
	GetPlatformByName(ctx context.Context, name string) (domain.Platform, error)

	// CreatePlatform inserts a new platform.
	CreatePlatform(ctx context.Context, p domain.Platform) error

	// SoftDeletePlatform sets deleted_at.
	SoftDeletePlatform(ctx context.Context, platformID string) error
}

type Roles interface {
	// GetRoleByID returns a role by id, soft-deleted included.
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// ListRolesForProfile returns the active roles a profile holds on a
	// platform. Soft-deleted roles are excluded so they never reach a
	// snapshot.
	ListRolesForProfile(ctx context.Context, profileID, platformID string) ([]domain.Role, error)

	// CreateRole inserts a new role.
	CreateRole(ctx context.Context, r domain.Role) error

	// AssignRole links a profile to a role via profile_roles.
	AssignRole(ctx context.Context, profileID, roleID string) error

	// UnassignRole removes a profile's role link.
	UnassignRole(ctx context.Context, profileID, roleID string) error

	// SoftDeleteRole sets deleted_at. Existing profile_roles rows remain
	// but stop contributing to snapshots.
	SoftDeleteRole(ctx context.Context, roleID string) error
}

type Tokens interface {
	// CreateToken inserts a new ledger row.
	CreateToken(ctx context.Context, t domain.Token) error

	// GetTokenByID returns a ledger row, revoked included.
	GetTokenByID(ctx context.Context, id string) (domain.Token, error)

	// GetTokenByAccessHash looks up the row owning an access fingerprint.
	GetTokenByAccessHash(ctx context.Context, hash string) (domain.Token, error)

	// GetTokenByRefreshHash looks up the row owning a refresh fingerprint.
	GetTokenByRefreshHash(ctx context.Context, hash string) (domain.Token, error)

	// RotateToken replaces both fingerprints in place, keeping the row id,
	// and bumps updated_at.
	RotateToken(ctx context.Context, id, accessHash, refreshHash, ip string) error

	// RevokeToken sets deleted_at. Revocation is terminal.
	RevokeToken(ctx context.Context, id string) error

	// RevokeAllProfileTokens revokes every live session for a profile
	// (e.g., password reset).
	RevokeAllProfileTokens(ctx context.Context, profileID string) error

	// RevokeLapsedTokens revokes live rows not rotated since the cutoff.
	// Rows are kept, not deleted; the ledger is audit history.
	RevokeLapsedTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type CredentialTokens interface {
	// CreateCredentialToken stores a new validation or reset token record.
	CreateCredentialToken(ctx context.Context, t domain.CredentialToken) error

	// GetActiveCredentialToken returns a not-used, not-expired token by
	// fingerprint and purpose.
	GetActiveCredentialToken(ctx context.Context, hash, purpose string) (domain.CredentialToken, error)

	// MarkCredentialTokenUsed sets used_at so the token cannot be redeemed twice.
	MarkCredentialTokenUsed(ctx context.Context, id string) error

	// DeleteExpiredCredentialTokens is housekeeping.
	DeleteExpiredCredentialTokens(ctx context.Context) (int64, error)
}
