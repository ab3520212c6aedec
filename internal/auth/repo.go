package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backoffice/admin-system/internal/platform/db"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Admin, error)
	FindByID(ctx context.Context, id int64) (*Admin, error)
	RoleNames(ctx context.Context, id int64) ([]string, error)
	RecordLogin(ctx context.Context, id int64, ip string, at time.Time) error
	UpdateProfile(ctx context.Context, id int64, in ProfileInput) error
	SetPassword(ctx context.Context, id int64, hash string) error
}

const adminColumns = `id, username, password, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(avatar, ''), status, created_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func scanAdmin(row pgx.Row) (*Admin, error) {
	var a Admin
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Name, &a.Email, &a.Phone, &a.Avatar, &a.Status, &a.CreatedAt); err != nil {
		return nil, db.MapError(err, "admin")
	}
	return &a, nil
}

// FindByUsername fetches an admin by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE username = $1`, username))
}

// FindByID fetches an admin by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
}

// RoleNames lists the names of the admin's roles.
func (r *PGRepository) RoleNames(ctx context.Context, id int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT r.name FROM roles r JOIN role_admin ra ON ra.role_id = r.id
WHERE ra.admin_id = $1 ORDER BY r.sort, r.id`, id)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// RecordLogin stamps the last sign-in.
func (r *PGRepository) RecordLogin(ctx context.Context, id int64, ip string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE admins SET last_login_at = $2, last_login_ip = $3 WHERE id = $1`, id, at, ip)
	return err
}

// UpdateProfile stores self-service profile fields.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, in ProfileInput) error {
	_, err := r.pool.Exec(ctx, `UPDATE admins SET name = $2, email = NULLIF($3, ''), phone = NULLIF($4, ''),
avatar = NULLIF($5, ''), updated_at = NOW() WHERE id = $1`, id, in.Name, in.Email, in.Phone, in.Avatar)
	return db.MapError(err, "admin")
}

// SetPassword stores a new password hash.
func (r *PGRepository) SetPassword(ctx context.Context, id int64, hash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE admins SET password = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	return err
}

var _ Repository = (*PGRepository)(nil)
