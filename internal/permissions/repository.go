package permissions

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backoffice/admin-system/internal/platform/db"
	"github.com/backoffice/admin-system/internal/rbac"
)

const detailColumns = `p.id, p.name, p.code, p.description, p.menu_id, p.type, p.created_at, p.updated_at, m.title`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanDetail(row pgx.Row) (Detail, error) {
	var d Detail
	p := &d.Permission
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.MenuID, &p.Type, &p.CreatedAt, &p.UpdatedAt, &d.MenuTitle)
	return d, err
}

// List returns one page of permissions and the total match count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Detail, int, error) {
	var cond db.Conditions
	cond.Contains("p.name", filters.Name)
	cond.Contains("p.code", filters.Code)
	if filters.Type != nil {
		cond.Add("p.type = ?", *filters.Type)
	}
	if filters.MenuID != nil {
		cond.Add("p.menu_id = ?", int64(*filters.MenuID))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM permissions p`+cond.Where(), cond.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := cond.Page(filters.Page.PerPage, filters.Page.Offset())
	rows, err := r.pool.Query(ctx, `SELECT `+detailColumns+`
FROM permissions p LEFT JOIN menus m ON m.id = p.menu_id`+cond.Where()+` ORDER BY p.id DESC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Detail, error) { return scanDetail(row) })
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns a permission with the roles holding it.
func (r *Repository) Get(ctx context.Context, id int64) (Detail, error) {
	d, err := scanDetail(r.pool.QueryRow(ctx, `SELECT `+detailColumns+`
FROM permissions p LEFT JOIN menus m ON m.id = p.menu_id WHERE p.id = $1`, id))
	if err != nil {
		return Detail{}, db.MapError(err, "permission")
	}
	rows, err := r.pool.Query(ctx, `SELECT r.id, r.name, r.code, r.description, r.sort, r.status, r.created_at, r.updated_at
FROM roles r JOIN permission_role pr ON pr.role_id = r.id
WHERE pr.permission_id = $1 ORDER BY r.sort, r.id`, id)
	if err != nil {
		return Detail{}, err
	}
	d.Roles, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (rbac.Role, error) { return rbac.ScanRole(row) })
	if err != nil {
		return Detail{}, err
	}
	return d, nil
}

// Create inserts a permission.
func (r *Repository) Create(ctx context.Context, in PermissionInput) (rbac.Permission, error) {
	p, err := rbac.ScanPermission(r.pool.QueryRow(ctx, `INSERT INTO permissions (name, code, description, menu_id, type)
VALUES ($1, $2, $3, $4, $5) RETURNING `+rbac.PermissionColumns,
		in.Name, in.Code, in.Description, in.MenuID, in.Type))
	if err != nil {
		return rbac.Permission{}, db.MapError(err, "permission")
	}
	return p, nil
}

// Update overwrites a permission.
func (r *Repository) Update(ctx context.Context, id int64, in PermissionInput) (rbac.Permission, error) {
	p, err := rbac.ScanPermission(r.pool.QueryRow(ctx, `UPDATE permissions
SET name = $2, code = $3, description = $4, menu_id = $5, type = $6, updated_at = NOW()
WHERE id = $1 RETURNING `+rbac.PermissionColumns,
		id, in.Name, in.Code, in.Description, in.MenuID, in.Type))
	if err != nil {
		return rbac.Permission{}, db.MapError(err, "permission")
	}
	return p, nil
}

// Delete removes a permission.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err, "permission")
	}
	if tag.RowsAffected() == 0 {
		return db.MapError(pgx.ErrNoRows, "permission")
	}
	return nil
}

// CountRoles returns how many roles hold the permission.
func (r *Repository) CountRoles(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM permission_role WHERE permission_id = $1`, id).Scan(&n)
	return n, err
}
