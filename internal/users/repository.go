package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backoffice/admin-system/internal/platform/db"
	"github.com/backoffice/admin-system/internal/rbac"
)

const adminColumns = `id, username, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(avatar, ''),
status, last_login_at, COALESCE(last_login_ip, ''), created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAdmin(row pgx.Row) (Admin, error) {
	var a Admin
	err := row.Scan(&a.ID, &a.Username, &a.Name, &a.Email, &a.Phone, &a.Avatar,
		&a.Status, &a.LastLoginAt, &a.LastLoginIP, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ListAdmins returns one page of admins, newest first, with their roles.
func (r *Repository) ListAdmins(ctx context.Context, filters ListFilters) ([]Admin, int, error) {
	var cond db.Conditions
	cond.Contains("username", filters.Username)
	cond.Contains("name", filters.Name)
	cond.Contains("email", filters.Email)
	if filters.Status != nil {
		cond.Add("status = ?", *filters.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`+cond.Where(), cond.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := cond.Page(filters.Page.PerPage, filters.Page.Offset())
	rows, err := r.pool.Query(ctx, `SELECT `+adminColumns+` FROM admins`+cond.Where()+` ORDER BY id DESC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	admins, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Admin, error) { return scanAdmin(row) })
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachRoles(ctx, admins); err != nil {
		return nil, 0, err
	}
	return admins, total, nil
}

// GetAdmin fetches an admin with roles.
func (r *Repository) GetAdmin(ctx context.Context, id int64) (Admin, error) {
	a, err := scanAdmin(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
	if err != nil {
		return Admin{}, db.MapError(err, "admin")
	}
	admins := []Admin{a}
	if err := r.attachRoles(ctx, admins); err != nil {
		return Admin{}, err
	}
	return admins[0], nil
}

func (r *Repository) attachRoles(ctx context.Context, admins []Admin) error {
	if len(admins) == 0 {
		return nil
	}
	ids := make([]int64, len(admins))
	index := make(map[int64]int, len(admins))
	for i := range admins {
		ids[i] = admins[i].ID
		index[admins[i].ID] = i
		admins[i].Roles = []rbac.Role{}
	}
	rows, err := r.pool.Query(ctx, `SELECT ra.admin_id, r.id, r.name, r.code, r.description, r.sort, r.status, r.created_at, r.updated_at
FROM roles r JOIN role_admin ra ON ra.role_id = r.id
WHERE ra.admin_id = ANY($1) ORDER BY r.sort, r.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			adminID int64
			role    rbac.Role
		)
		if err := rows.Scan(&adminID, &role.ID, &role.Name, &role.Code, &role.Description, &role.Sort, &role.Status, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return err
		}
		i := index[adminID]
		admins[i].Roles = append(admins[i].Roles, role)
	}
	return rows.Err()
}

// CreateAdmin inserts an admin and its roles.
func (r *Repository) CreateAdmin(ctx context.Context, rec Record, roleIDs []int64) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO admins (username, password, name, email, phone, avatar, status)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7) RETURNING id`,
			rec.Username, rec.PasswordHash, rec.Name, rec.Email, rec.Phone, rec.Avatar, rec.Status).Scan(&id)
		if err != nil {
			return db.MapError(err, "admin")
		}
		return syncRoles(ctx, tx, id, roleIDs)
	})
	return id, err
}

// UpdateAdmin overwrites an admin. An empty PasswordHash keeps the stored
// password; nil roleIDs keeps the current roles.
func (r *Repository) UpdateAdmin(ctx context.Context, id int64, rec Record, roleIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE admins SET username = $2, name = $3, email = NULLIF($4, ''),
phone = NULLIF($5, ''), avatar = NULLIF($6, ''), status = $7,
password = COALESCE(NULLIF($8, ''), password), updated_at = NOW()
WHERE id = $1`,
			id, rec.Username, rec.Name, rec.Email, rec.Phone, rec.Avatar, rec.Status, rec.PasswordHash)
		if err != nil {
			return db.MapError(err, "admin")
		}
		if tag.RowsAffected() == 0 {
			return db.MapError(pgx.ErrNoRows, "admin")
		}
		if roleIDs == nil {
			return nil
		}
		return syncRoles(ctx, tx, id, roleIDs)
	})
}

// DeleteAdmin removes an admin. Role links cascade.
func (r *Repository) DeleteAdmin(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err, "admin")
	}
	if tag.RowsAffected() == 0 {
		return db.MapError(pgx.ErrNoRows, "admin")
	}
	return nil
}

// SyncRoles replaces the admin's roles.
func (r *Repository) SyncRoles(ctx context.Context, adminID int64, roleIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admins WHERE id = $1)`, adminID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return db.MapError(pgx.ErrNoRows, fmt.Sprintf("admin %d", adminID))
		}
		return syncRoles(ctx, tx, adminID, roleIDs)
	})
}

func syncRoles(ctx context.Context, tx pgx.Tx, adminID int64, roleIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM role_admin WHERE admin_id = $1`, adminID); err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `INSERT INTO role_admin (admin_id, role_id) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, adminID, roleIDs)
	return db.MapError(err, "role assignment")
}

// SetPassword stores a new password hash.
func (r *Repository) SetPassword(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, `UPDATE admins SET password = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

// SetStatus switches an admin on or off.
func (r *Repository) SetStatus(ctx context.Context, id int64, status int) error {
	return r.exec(ctx, `UPDATE admins SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *Repository) exec(ctx context.Context, sql string, id int64, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return db.MapError(err, "admin")
	}
	if tag.RowsAffected() == 0 {
		return db.MapError(pgx.ErrNoRows, "admin")
	}
	return nil
}
