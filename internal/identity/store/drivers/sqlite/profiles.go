package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
)

type profilesRepo struct {
	q dbtx
}

const profileColumns = `id, email, password_hash, superuser, validated, login_attempts,
	last_login_at, created_at, updated_at, deleted_at`

func scanProfile(row interface{ Scan(...any) error }) (domain.Profile, error) {
	var p domain.Profile
	var lastLogin, deleted sql.NullTime
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.Superuser, &p.Validated,
		&p.LoginAttempts, &lastLogin, &p.CreatedAt, &p.UpdatedAt, &deleted,
	)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	p.LastLoginAt = mapNullTimePtr(lastLogin)
	p.DeletedAt = mapNullTimePtr(deleted)
	return p, nil
}

func (r *profilesRepo) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

func (r *profilesRepo) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email)
	return scanProfile(row)
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO profiles (id, email, password_hash, superuser, validated,
			login_attempts, last_login_at, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.PasswordHash, p.Superuser, p.Validated,
		p.LoginAttempts, mapOptionalTime(p.LastLoginAt),
		p.CreatedAt, p.UpdatedAt, mapOptionalTime(p.DeletedAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *profilesRepo) UpdatePasswordHash(ctx context.Context, profileID string, newHash string) error {
	return r.exec(ctx, `
		UPDATE profiles SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), profileID)
}

func (r *profilesRepo) SetLoginAttempts(ctx context.Context, profileID string, attempts int) error {
	return r.exec(ctx, `
		UPDATE profiles SET login_attempts = ?, updated_at = ? WHERE id = ?`,
		attempts, time.Now().UTC(), profileID)
}

func (r *profilesRepo) RecordLogin(ctx context.Context, profileID string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE profiles SET last_login_at = ?, login_attempts = 0, updated_at = ? WHERE id = ?`,
		at, time.Now().UTC(), profileID)
}

func (r *profilesRepo) MarkValidated(ctx context.Context, profileID string) error {
	return r.exec(ctx, `
		UPDATE profiles SET validated = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), profileID)
}

func (r *profilesRepo) SoftDeleteProfile(ctx context.Context, profileID string) error {
	now := time.Now().UTC()
	return r.exec(ctx, `
		UPDATE profiles SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, profileID)
}

func (r *profilesRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
