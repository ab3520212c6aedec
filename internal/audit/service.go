package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/shared"
)

// ExportLimit caps the rows written by one CSV export.
const ExportLimit = 50000

// RepositoryPort is the persistence contract of the operation log service.
type RepositoryPort interface {
	Insert(ctx context.Context, l Log) error
	List(ctx context.Context, filters ListFilters) ([]Log, int, error)
	Export(ctx context.Context, filters ListFilters, limit int) ([]Log, error)
	Get(ctx context.Context, id int64) (Log, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Statistics(ctx context.Context) (Statistics, error)
}

// Service coordinates operation log storage and housekeeping.
type Service struct {
	repo      RepositoryPort
	retention int
	now       func() time.Time
}

// NewService builds the service. retentionDays is the default age used by Clear.
func NewService(repo RepositoryPort, retentionDays int) *Service {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Service{repo: repo, retention: retentionDays, now: time.Now}
}

// RetentionDays returns the configured default retention.
func (s *Service) RetentionDays() int { return s.retention }

// Record stores one entry.
func (s *Service) Record(ctx context.Context, l Log) error {
	if s.repo == nil {
		return fmt.Errorf("audit: repository not configured")
	}
	return s.repo.Insert(ctx, l)
}

// List returns a page of logs with pagination metadata.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Log, shared.Pagination, error) {
	if err := checkRange(filters); err != nil {
		return nil, shared.Pagination{}, err
	}
	logs, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return logs, shared.NewPagination(filters.Page.Page, filters.Page.PerPage, total), nil
}

// Get fetches one entry.
func (s *Service) Get(ctx context.Context, id int64) (Log, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes one entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// BatchDelete removes the given entries.
func (s *Service) BatchDelete(ctx context.Context, ids []int64) (int64, error) {
	ids = uniquePositive(ids)
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: ids are required", httpx.ErrValidation)
	}
	return s.repo.DeleteMany(ctx, ids)
}

// Clear removes entries older than days. Zero means the configured retention.
func (s *Service) Clear(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("%w: days must not be negative", httpx.ErrValidation)
	}
	if days == 0 {
		days = s.retention
	}
	cutoff := s.now().AddDate(0, 0, -days)
	return s.repo.DeleteBefore(ctx, cutoff)
}

// Statistics summarises stored logs.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	return s.repo.Statistics(ctx)
}

// Export returns the rows for a CSV download.
func (s *Service) Export(ctx context.Context, filters ListFilters) ([]Log, error) {
	if err := checkRange(filters); err != nil {
		return nil, err
	}
	return s.repo.Export(ctx, filters, ExportLimit)
}

func checkRange(f ListFilters) error {
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return httpx.ValidationErrors{"start_date": "must be before end_date"}
	}
	return nil
}

func uniquePositive(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
