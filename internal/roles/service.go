package roles

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context, filters RoleListFilters) ([]rbac.Role, int, error)
	ListAllRoles(ctx context.Context) ([]rbac.Role, error)
	GetRole(ctx context.Context, id int64) (rbac.Role, error)
	CreateRole(ctx context.Context, in RoleInput) (rbac.Role, error)
	UpdateRole(ctx context.Context, id int64, in RoleInput) (rbac.Role, error)
	DeleteRole(ctx context.Context, id int64) error
	CountAdmins(ctx context.Context, id int64) (int, error)
	SyncPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	SyncAdmins(ctx context.Context, roleID int64, adminIDs []int64) error
}

// Service handles role business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns a page of roles.
func (s *Service) ListRoles(ctx context.Context, filters RoleListFilters) ([]rbac.Role, shared.Pagination, error) {
	roles, total, err := s.repo.ListRoles(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return roles, shared.NewPagination(filters.Page.Page, filters.Page.PerPage, total), nil
}

// AllRoles returns every role, for selection lists.
func (s *Service) AllRoles(ctx context.Context) ([]rbac.Role, error) {
	return s.repo.ListAllRoles(ctx)
}

// GetRole returns a role with its permissions.
func (s *Service) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a role.
func (s *Service) CreateRole(ctx context.Context, in RoleInput) (rbac.Role, error) {
	return s.repo.CreateRole(ctx, normalize(in))
}

// UpdateRole rewrites a role.
func (s *Service) UpdateRole(ctx context.Context, id int64, in RoleInput) (rbac.Role, error) {
	return s.repo.UpdateRole(ctx, id, normalize(in))
}

// DeleteRole removes a role nobody holds.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	n, err := s.repo.CountAdmins(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("roles: role %d is assigned to %d admins: %w", id, n, httpx.ErrConflict)
	}
	return s.repo.DeleteRole(ctx, id)
}

// AssignPermissions replaces the role's permissions and returns the updated role.
func (s *Service) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) (rbac.Role, error) {
	if err := s.repo.SyncPermissions(ctx, roleID, uniqueIDs(permissionIDs)); err != nil {
		return rbac.Role{}, err
	}
	return s.repo.GetRole(ctx, roleID)
}

// AssignAdmins replaces the admins holding the role.
func (s *Service) AssignAdmins(ctx context.Context, roleID int64, adminIDs []int64) error {
	return s.repo.SyncAdmins(ctx, roleID, uniqueIDs(adminIDs))
}

func normalize(in RoleInput) RoleInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.TrimSpace(in.Code)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
