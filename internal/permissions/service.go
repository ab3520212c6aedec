package permissions

import (
	"context"
	"fmt"
	"strings"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

// RepositoryPort defines data access methods for permissions.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Detail, int, error)
	Get(ctx context.Context, id int64) (Detail, error)
	Create(ctx context.Context, in PermissionInput) (rbac.Permission, error)
	Update(ctx context.Context, id int64, in PermissionInput) (rbac.Permission, error)
	Delete(ctx context.Context, id int64) error
	CountRoles(ctx context.Context, id int64) (int, error)
}

// Service handles permission business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of permissions.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Detail, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page.Page, filters.Page.PerPage, total), nil
}

// Get returns a permission with its roles.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a permission.
func (s *Service) Create(ctx context.Context, in PermissionInput) (rbac.Permission, error) {
	return s.repo.Create(ctx, normalize(in))
}

// Update rewrites a permission.
func (s *Service) Update(ctx context.Context, id int64, in PermissionInput) (rbac.Permission, error) {
	return s.repo.Update(ctx, id, normalize(in))
}

// Delete removes a permission no role holds.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.CountRoles(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("permissions: permission %d is held by %d roles: %w", id, n, httpx.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}

func normalize(in PermissionInput) PermissionInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.TrimSpace(in.Code)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
