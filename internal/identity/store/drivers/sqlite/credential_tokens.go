package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
)

type credentialTokensRepo struct {
	q dbtx
}

func (r *credentialTokensRepo) CreateCredentialToken(ctx context.Context, t domain.CredentialToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO credential_tokens (id, profile_id, purpose, token_hash, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProfileID, t.Purpose, t.TokenHash, t.ExpiresAt,
		mapOptionalTime(t.UsedAt), t.CreatedAt,
	)
	return err
}

func (r *credentialTokensRepo) GetActiveCredentialToken(ctx context.Context, hash, purpose string) (domain.CredentialToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, profile_id, purpose, token_hash, expires_at, used_at, created_at
		FROM credential_tokens
		WHERE token_hash = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?`,
		hash, purpose, time.Now().UTC())

	var t domain.CredentialToken
	var used sql.NullTime
	err := row.Scan(&t.ID, &t.ProfileID, &t.Purpose, &t.TokenHash, &t.ExpiresAt, &used, &t.CreatedAt)
	if err != nil {
		return domain.CredentialToken{}, mapNotFound(err)
	}
	t.UsedAt = mapNullTimePtr(used)
	return t, nil
}

func (r *credentialTokensRepo) MarkCredentialTokenUsed(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE credential_tokens SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *credentialTokensRepo) DeleteExpiredCredentialTokens(ctx context.Context) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM credential_tokens WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
