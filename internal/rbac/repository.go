package rbac

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Column lists shared by every package reading these tables.
const (
	MenuColumns       = `id, parent_id, title, name, path, component, icon, type, sort, status, is_hidden, keep_alive, created_at, updated_at`
	PermissionColumns = `id, name, code, description, menu_id, type, created_at, updated_at`
	RoleColumns       = `id, name, code, description, sort, status, created_at, updated_at`
)

// ScanMenu reads a row selected with MenuColumns.
func ScanMenu(row pgx.Row) (Menu, error) {
	var m Menu
	err := row.Scan(&m.ID, &m.ParentID, &m.Title, &m.Name, &m.Path, &m.Component, &m.Icon,
		&m.Kind, &m.Sort, &m.Status, &m.IsHidden, &m.KeepAlive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// ScanPermission reads a row selected with PermissionColumns.
func ScanPermission(row pgx.Row) (Permission, error) {
	var p Permission
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.MenuID, &p.Type, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ScanRole reads a row selected with RoleColumns.
func ScanRole(row pgx.Row) (Role, error) {
	var r Role
	err := row.Scan(&r.ID, &r.Name, &r.Code, &r.Description, &r.Sort, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// PgRepository implements Repository on PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PgRepository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// ListAdminRoles returns the admin's roles, each with its permissions.
func (r *PgRepository) ListAdminRoles(ctx context.Context, adminID int64) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT r.id, r.name, r.code, r.description, r.sort, r.status, r.created_at, r.updated_at
FROM roles r JOIN role_admin ra ON ra.role_id = r.id
WHERE ra.admin_id = $1 ORDER BY r.sort, r.id`, adminID)
	if err != nil {
		return nil, err
	}
	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Role, error) { return ScanRole(row) })
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return roles, nil
	}

	ids := make([]int64, len(roles))
	index := make(map[int64]int, len(roles))
	for i, role := range roles {
		ids[i] = role.ID
		index[role.ID] = i
	}
	rows, err = r.pool.Query(ctx, `SELECT pr.role_id, p.id, p.name, p.code, p.description, p.menu_id, p.type, p.created_at, p.updated_at
FROM permissions p JOIN permission_role pr ON pr.permission_id = p.id
WHERE pr.role_id = ANY($1) ORDER BY p.id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			roleID int64
			p      Permission
		)
		if err := rows.Scan(&roleID, &p.ID, &p.Name, &p.Code, &p.Description, &p.MenuID, &p.Type, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		i := index[roleID]
		roles[i].Permissions = append(roles[i].Permissions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// ListMenus returns every menu ordered by sort.
func (r *PgRepository) ListMenus(ctx context.Context) ([]Menu, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+MenuColumns+` FROM menus ORDER BY sort, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Menu, error) { return ScanMenu(row) })
}

// MenuIDsForCodes returns the distinct menu ids bound to permissions with the given codes.
func (r *PgRepository) MenuIDsForCodes(ctx context.Context, codes []string) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT menu_id FROM permissions
WHERE code = ANY($1) AND menu_id IS NOT NULL ORDER BY menu_id`, codes)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
