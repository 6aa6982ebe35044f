package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
)

type tokensRepo struct {
	q dbtx
}

const tokenColumns = `id, platform_id, profile_id, access_hash, refresh_hash, ip,
	created_at, updated_at, deleted_at`

func scanToken(row interface{ Scan(...any) error }) (domain.Token, error) {
	var t domain.Token
	var deleted sql.NullTime
	err := row.Scan(
		&t.ID, &t.PlatformID, &t.ProfileID, &t.AccessHash, &t.RefreshHash,
		&t.IP, &t.CreatedAt, &t.UpdatedAt, &deleted,
	)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	t.DeletedAt = mapNullTimePtr(deleted)
	return t, nil
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tokens (id, platform_id, profile_id, access_hash, refresh_hash,
			ip, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.PlatformID, t.ProfileID, t.AccessHash, t.RefreshHash,
		t.IP, t.CreatedAt, t.UpdatedAt, mapOptionalTime(t.DeletedAt),
	)
	return err
}

func (r *tokensRepo) GetTokenByID(ctx context.Context, id string) (domain.Token, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE id = ?`, id)
	return scanToken(row)
}

func (r *tokensRepo) GetTokenByAccessHash(ctx context.Context, hash string) (domain.Token, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE access_hash = ?`, hash)
	return scanToken(row)
}

func (r *tokensRepo) GetTokenByRefreshHash(ctx context.Context, hash string) (domain.Token, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE refresh_hash = ?`, hash)
	return scanToken(row)
}

func (r *tokensRepo) RotateToken(ctx context.Context, id, accessHash, refreshHash, ip string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE tokens SET access_hash = ?, refresh_hash = ?, ip = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		accessHash, refreshHash, ip, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tokensRepo) RevokeToken(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		UPDATE tokens SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tokensRepo) RevokeAllProfileTokens(ctx context.Context, profileID string) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		UPDATE tokens SET deleted_at = ?, updated_at = ? WHERE profile_id = ? AND deleted_at IS NULL`,
		now, now, profileID)
	return err
}

func (r *tokensRepo) RevokeLapsedTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		UPDATE tokens SET deleted_at = ?, updated_at = ? WHERE updated_at < ? AND deleted_at IS NULL`,
		now, now, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
