package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/backoffice/admin-system/internal/platform/db"
)

const (
	logColumns = `id, admin_id, username, module, action, method, url, ip, user_agent, params, status, error_message, created_at`
	statsTop   = 10
)

// Repository provides PostgreSQL backed persistence for operation logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanLog(row pgx.Row) (Log, error) {
	var l Log
	err := row.Scan(&l.ID, &l.AdminID, &l.Username, &l.Module, &l.Action, &l.Method, &l.URL,
		&l.IP, &l.UserAgent, &l.Params, &l.Status, &l.ErrorMessage, &l.CreatedAt)
	return l, err
}

func collectLogs(rows pgx.Rows) ([]Log, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Log, error) { return scanLog(row) })
}

func conditions(f ListFilters) db.Conditions {
	var cond db.Conditions
	cond.Contains("username", f.Username)
	cond.Contains("module", f.Module)
	cond.Contains("action", f.Action)
	if f.Status != nil {
		cond.Add("status = ?", *f.Status)
	}
	if f.From != nil {
		cond.Add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		cond.Add("created_at < ?", *f.To)
	}
	return cond
}

// Insert stores a log entry.
func (r *Repository) Insert(ctx context.Context, l Log) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO operation_logs
(admin_id, username, module, action, method, url, ip, user_agent, params, status, error_message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.AdminID, l.Username, l.Module, l.Action, l.Method, l.URL, l.IP, l.UserAgent, l.Params, l.Status, l.ErrorMessage)
	return err
}

// List returns one page of logs, newest first, and the total match count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Log, int, error) {
	cond := conditions(filters)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM operation_logs`+cond.Where(), cond.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := cond.Page(filters.Page.PerPage, filters.Page.Offset())
	rows, err := r.pool.Query(ctx, `SELECT `+logColumns+` FROM operation_logs`+cond.Where()+` ORDER BY created_at DESC, id DESC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	logs, err := collectLogs(rows)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// Export returns up to limit logs matching the filters, newest first.
func (r *Repository) Export(ctx context.Context, filters ListFilters, limit int) ([]Log, error) {
	cond := conditions(filters)
	clause, args := cond.Page(limit, 0)
	rows, err := r.pool.Query(ctx, `SELECT `+logColumns+` FROM operation_logs`+cond.Where()+` ORDER BY created_at DESC, id DESC`+clause, args...)
	if err != nil {
		return nil, err
	}
	return collectLogs(rows)
}

// Get fetches a log entry.
func (r *Repository) Get(ctx context.Context, id int64) (Log, error) {
	l, err := scanLog(r.pool.QueryRow(ctx, `SELECT `+logColumns+` FROM operation_logs WHERE id = $1`, id))
	if err != nil {
		return Log{}, db.MapError(err, "operation log")
	}
	return l, nil
}

// Delete removes a log entry.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM operation_logs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.MapError(pgx.ErrNoRows, "operation log")
	}
	return nil
}

// DeleteMany removes the listed entries and reports how many existed.
func (r *Repository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM operation_logs WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteBefore removes entries created before cutoff.
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM operation_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Statistics counts outcomes and the busiest modules and actions.
func (r *Repository) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `SELECT COUNT(*),
COUNT(*) FILTER (WHERE status = 1),
COUNT(*) FILTER (WHERE status = 0)
FROM operation_logs`).Scan(&stats.Total, &stats.Success, &stats.Failed)
	})
	g.Go(func() error {
		var err error
		stats.ModuleStats, err = r.topBy(gctx, "module")
		return err
	})
	g.Go(func() error {
		var err error
		stats.ActionStats, err = r.topBy(gctx, "action")
		return err
	})
	if err := g.Wait(); err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

// topBy groups by a fixed column name; never pass user input.
func (r *Repository) topBy(ctx context.Context, column string) ([]Bucket, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %[1]s, COUNT(*) AS n FROM operation_logs
GROUP BY %[1]s ORDER BY n DESC, %[1]s LIMIT $1`, column), statsTop)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Bucket, error) {
		var b Bucket
		err := row.Scan(&b.Key, &b.Count)
		return b, err
	})
}
