package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
)

type rolesRepo struct {
	q dbtx
}

func scanRole(row interface{ Scan(...any) error }) (domain.Role, error) {
	var r domain.Role
	var perms string
	var deleted sql.NullTime
	err := row.Scan(&r.ID, &r.PlatformID, &r.Name, &perms, &r.CreatedAt, &r.UpdatedAt, &deleted)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	r.Permissions = splitPermissions(perms)
	r.DeletedAt = mapNullTimePtr(deleted)
	return r, nil
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, platform_id, name, permissions, created_at, updated_at, deleted_at
		FROM roles WHERE id = ?`, id)
	return scanRole(row)
}

func (r *rolesRepo) ListRolesForProfile(ctx context.Context, profileID, platformID string) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.platform_id, r.name, r.permissions, r.created_at, r.updated_at, r.deleted_at
		FROM roles r
		JOIN profile_roles pr ON pr.role_id = r.id
		WHERE pr.profile_id = ? AND r.platform_id = ? AND r.deleted_at IS NULL
		ORDER BY r.name`,
		profileID, platformID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO roles (id, platform_id, name, permissions, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		role.ID, role.PlatformID, role.Name, joinPermissions(role.Permissions),
		role.CreatedAt, role.UpdatedAt, mapOptionalTime(role.DeletedAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *rolesRepo) AssignRole(ctx context.Context, profileID, roleID string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO profile_roles (profile_id, role_id) VALUES (?, ?)`,
		profileID, roleID)
	return err
}

func (r *rolesRepo) UnassignRole(ctx context.Context, profileID, roleID string) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM profile_roles WHERE profile_id = ? AND role_id = ?`,
		profileID, roleID)
	return err
}

func (r *rolesRepo) SoftDeleteRole(ctx context.Context, roleID string) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		UPDATE roles SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, roleID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
