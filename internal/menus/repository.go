package menus

import (
	"context"

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

// List returns menus matching filters ordered by sort.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]rbac.Menu, error) {
	var cond db.Conditions
	cond.Contains("title", filters.Title)
	if filters.Status != nil {
		cond.Add("status = ?", *filters.Status)
	}
	query := `SELECT ` + rbac.MenuColumns + ` FROM menus` + cond.Where() + ` ORDER BY sort, id`

	rows, err := r.pool.Query(ctx, query, cond.Args()...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (rbac.Menu, error) { return rbac.ScanMenu(row) })
}

// Get fetches one menu.
func (r *Repository) Get(ctx context.Context, id int64) (rbac.Menu, error) {
	m, err := rbac.ScanMenu(r.pool.QueryRow(ctx, `SELECT `+rbac.MenuColumns+` FROM menus WHERE id = $1`, id))
	if err != nil {
		return rbac.Menu{}, db.MapError(err, "menu")
	}
	return m, nil
}

// Create inserts a menu.
func (r *Repository) Create(ctx context.Context, in MenuInput) (rbac.Menu, error) {
	m, err := rbac.ScanMenu(r.pool.QueryRow(ctx, `INSERT INTO menus
(parent_id, title, name, path, component, icon, type, sort, status, is_hidden, keep_alive)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+rbac.MenuColumns,
		in.ParentID, in.Title, in.Name, in.Path, in.Component, in.Icon, in.Type, in.Sort, in.status(), in.IsHidden, in.KeepAlive))
	if err != nil {
		return rbac.Menu{}, db.MapError(err, "menu")
	}
	return m, nil
}

// Update overwrites a menu inside a transaction. Every menu row is locked
// with FOR UPDATE before check sees the parent index, so concurrent moves
// are checked one after another.
func (r *Repository) Update(ctx context.Context, id int64, in MenuInput, check ParentCheck) (rbac.Menu, error) {
	var m rbac.Menu
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		parents, err := parentIndex(ctx, tx, `SELECT id, parent_id FROM menus ORDER BY id FOR UPDATE`)
		if err != nil {
			return err
		}
		if err := check(parents); err != nil {
			return err
		}
		m, err = rbac.ScanMenu(tx.QueryRow(ctx, `UPDATE menus SET
parent_id = $2, title = $3, name = $4, path = $5, component = $6, icon = $7, type = $8,
sort = $9, status = $10, is_hidden = $11, keep_alive = $12, updated_at = NOW()
WHERE id = $1
RETURNING `+rbac.MenuColumns,
			id, in.ParentID, in.Title, in.Name, in.Path, in.Component, in.Icon, in.Type, in.Sort, in.status(), in.IsHidden, in.KeepAlive))
		return err
	})
	if err != nil {
		return rbac.Menu{}, db.MapError(err, "menu")
	}
	return m, nil
}

// Delete removes a menu.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err, "menu")
	}
	if tag.RowsAffected() == 0 {
		return db.MapError(pgx.ErrNoRows, "menu")
	}
	return nil
}

// CountChildren returns how many menus reference id as parent.
func (r *Repository) CountChildren(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM menus WHERE parent_id = $1`, id).Scan(&n)
	return n, err
}

// ParentIndex maps every menu id to its parent id.
func (r *Repository) ParentIndex(ctx context.Context) (map[int64]int64, error) {
	return parentIndex(ctx, r.pool, `SELECT id, parent_id FROM menus`)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func parentIndex(ctx context.Context, q querier, query string) (map[int64]int64, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	index := make(map[int64]int64)
	for rows.Next() {
		var id, parent int64
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, err
		}
		index[id] = parent
	}
	return index, rows.Err()
}
