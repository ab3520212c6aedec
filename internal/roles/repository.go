package roles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backoffice/admin-system/internal/platform/db"
	"github.com/backoffice/admin-system/internal/rbac"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRoles(rows pgx.Rows) ([]rbac.Role, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (rbac.Role, error) { return rbac.ScanRole(row) })
}

// ListRoles returns one page of roles ordered by sort and the total match count.
func (r *Repository) ListRoles(ctx context.Context, filters RoleListFilters) ([]rbac.Role, int, error) {
	var cond db.Conditions
	cond.Contains("name", filters.Name)
	cond.Contains("code", filters.Code)
	if filters.Status != nil {
		cond.Add("status = ?", *filters.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles`+cond.Where(), cond.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := cond.Page(filters.Page.PerPage, filters.Page.Offset())
	rows, err := r.pool.Query(ctx, `SELECT `+rbac.RoleColumns+` FROM roles`+cond.Where()+` ORDER BY sort, id`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	roles, err := scanRoles(rows)
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// ListAllRoles returns every role ordered by sort.
func (r *Repository) ListAllRoles(ctx context.Context) ([]rbac.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+rbac.RoleColumns+` FROM roles ORDER BY sort, id`)
	if err != nil {
		return nil, err
	}
	return scanRoles(rows)
}

// GetRole fetches a role with its permissions.
func (r *Repository) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	role, err := rbac.ScanRole(r.pool.QueryRow(ctx, `SELECT `+rbac.RoleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		return rbac.Role{}, db.MapError(err, "role")
	}
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, p.code, p.description, p.menu_id, p.type, p.created_at, p.updated_at
FROM permissions p JOIN permission_role pr ON pr.permission_id = p.id
WHERE pr.role_id = $1 ORDER BY p.id`, id)
	if err != nil {
		return rbac.Role{}, err
	}
	role.Permissions, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (rbac.Permission, error) { return rbac.ScanPermission(row) })
	if err != nil {
		return rbac.Role{}, err
	}
	return role, nil
}

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, in RoleInput) (rbac.Role, error) {
	role, err := rbac.ScanRole(r.pool.QueryRow(ctx, `INSERT INTO roles (name, code, description, sort, status)
VALUES ($1, $2, $3, $4, $5) RETURNING `+rbac.RoleColumns,
		in.Name, in.Code, in.Description, in.Sort, in.status()))
	if err != nil {
		return rbac.Role{}, db.MapError(err, "role")
	}
	return role, nil
}

// UpdateRole overwrites a role.
func (r *Repository) UpdateRole(ctx context.Context, id int64, in RoleInput) (rbac.Role, error) {
	role, err := rbac.ScanRole(r.pool.QueryRow(ctx, `UPDATE roles
SET name = $2, code = $3, description = $4, sort = $5, status = $6, updated_at = NOW()
WHERE id = $1 RETURNING `+rbac.RoleColumns,
		id, in.Name, in.Code, in.Description, in.Sort, in.status()))
	if err != nil {
		return rbac.Role{}, db.MapError(err, "role")
	}
	return role, nil
}

// DeleteRole removes a role and its permission grants.
func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err, "role")
	}
	if tag.RowsAffected() == 0 {
		return db.MapError(pgx.ErrNoRows, "role")
	}
	return nil
}

// CountAdmins returns how many admins hold the role.
func (r *Repository) CountAdmins(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM role_admin WHERE role_id = $1`, id).Scan(&n)
	return n, err
}

// SyncPermissions replaces the role's permission grants.
func (r *Repository) SyncPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return r.sync(ctx, roleID, permissionIDs,
		`DELETE FROM permission_role WHERE role_id = $1`,
		`INSERT INTO permission_role (role_id, permission_id) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`)
}

// SyncAdmins replaces the admins holding the role.
func (r *Repository) SyncAdmins(ctx context.Context, roleID int64, adminIDs []int64) error {
	return r.sync(ctx, roleID, adminIDs,
		`DELETE FROM role_admin WHERE role_id = $1`,
		`INSERT INTO role_admin (role_id, admin_id) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`)
}

func (r *Repository) sync(ctx context.Context, roleID int64, ids []int64, clear, insert string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, roleID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return db.MapError(pgx.ErrNoRows, fmt.Sprintf("role %d", roleID))
		}
		if _, err := tx.Exec(ctx, clear, roleID); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, insert, roleID, ids); err != nil {
			return db.MapError(err, "role assignment")
		}
		return nil
	})
}
