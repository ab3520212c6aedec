package menus

import (
	"context"
	"fmt"
	"strings"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
)

// RepositoryPort defines data access methods for menus.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]rbac.Menu, error)
	Get(ctx context.Context, id int64) (rbac.Menu, error)
	Create(ctx context.Context, in MenuInput) (rbac.Menu, error)
	Update(ctx context.Context, id int64, in MenuInput, check ParentCheck) (rbac.Menu, error)
	Delete(ctx context.Context, id int64) error
	CountChildren(ctx context.Context, id int64) (int, error)
	ParentIndex(ctx context.Context) (map[int64]int64, error)
}

// ParentCheck vets a move against the current id to parent_id index. The
// repository runs it under the same lock as the write.
type ParentCheck func(parents map[int64]int64) error

// Navigator builds trees from the RBAC graph.
type Navigator interface {
	MenuTree(ctx context.Context) ([]rbac.MenuNode, error)
	AdminMenus(ctx context.Context, adminID int64) ([]rbac.MenuNode, error)
}

// Service handles menu business logic.
type Service struct {
	repo RepositoryPort
	nav  Navigator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, nav Navigator) *Service {
	return &Service{repo: repo, nav: nav}
}

// List returns the filtered menus as a tree. Rows whose parent was filtered
// out surface as roots.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]rbac.MenuNode, error) {
	menus, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return rbac.BuildTree(menus)
}

// Tree returns every menu as a tree.
func (s *Service) Tree(ctx context.Context) ([]rbac.MenuNode, error) {
	return s.nav.MenuTree(ctx)
}

// ForAdmin returns the navigation the admin is allowed to see.
func (s *Service) ForAdmin(ctx context.Context, adminID int64) ([]rbac.MenuNode, error) {
	return s.nav.AdminMenus(ctx, adminID)
}

// Get fetches a single menu.
func (s *Service) Get(ctx context.Context, id int64) (rbac.Menu, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the parent and inserts a menu.
func (s *Service) Create(ctx context.Context, in MenuInput) (rbac.Menu, error) {
	in = normalize(in)
	if in.ParentID != rbac.RootMenuID {
		parents, err := s.repo.ParentIndex(ctx)
		if err != nil {
			return rbac.Menu{}, err
		}
		if _, ok := parents[in.ParentID]; !ok {
			return rbac.Menu{}, fmt.Errorf("menus: parent %d does not exist: %w", in.ParentID, httpx.ErrValidation)
		}
	}
	return s.repo.Create(ctx, in)
}

// Update rewrites a menu, refusing parents that would close a cycle.
func (s *Service) Update(ctx context.Context, id int64, in MenuInput) (rbac.Menu, error) {
	in = normalize(in)
	return s.repo.Update(ctx, id, in, func(parents map[int64]int64) error {
		if _, ok := parents[id]; !ok {
			return fmt.Errorf("menu %d: %w", id, httpx.ErrNotFound)
		}
		return checkParent(parents, id, in.ParentID)
	})
}

// Delete removes a leaf menu.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("menus: menu %d has %d child menus: %w", id, n, httpx.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}

// checkParent rejects a parent that is missing, is the menu itself or one of its descendants.
func checkParent(parents map[int64]int64, id, parent int64) error {
	if parent == rbac.RootMenuID {
		return nil
	}
	if parent == id {
		return fmt.Errorf("menus: menu cannot be its own parent: %w", httpx.ErrValidation)
	}
	if _, ok := parents[parent]; !ok {
		return fmt.Errorf("menus: parent %d does not exist: %w", parent, httpx.ErrValidation)
	}
	cur := parent
	for steps := 0; cur != rbac.RootMenuID && steps <= len(parents); steps++ {
		if cur == id {
			return fmt.Errorf("menus: parent %d is a descendant of menu %d: %w", parent, id, httpx.ErrValidation)
		}
		next, ok := parents[cur]
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}

func normalize(in MenuInput) MenuInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Name = strings.TrimSpace(in.Name)
	in.Path = strings.TrimSpace(in.Path)
	in.Component = strings.TrimSpace(in.Component)
	in.Icon = strings.TrimSpace(in.Icon)
	return in
}
