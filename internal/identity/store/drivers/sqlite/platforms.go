package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
)

type platformsRepo struct {
	q dbtx
}

func scanPlatform(row interface{ Scan(...any) error }) (domain.Platform, error) {
	var p domain.Platform
	var deleted sql.NullTime
	err := row.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt, &deleted)
	if err != nil {
		return domain.Platform{}, mapNotFound(err)
	}
	p.DeletedAt = mapNullTimePtr(deleted)
	return p, nil
}

func (r *platformsRepo) GetPlatformByID(ctx context.Context, id string) (domain.Platform, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at, deleted_at
		FROM platforms WHERE id = ?`, id)
	return scanPlatform(row)
}

func (r *platformsRepo) GetPlatformByName(ctx context.Context, name string) (domain.Platform, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at, deleted_at
		FROM platforms WHERE name = ?`, name)
	return scanPlatform(row)
}

func (r *platformsRepo) CreatePlatform(ctx context.Context, p domain.Platform) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO platforms (id, name, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt, p.UpdatedAt, mapOptionalTime(p.DeletedAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *platformsRepo) SoftDeletePlatform(ctx context.Context, platformID string) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		UPDATE platforms SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, platformID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
