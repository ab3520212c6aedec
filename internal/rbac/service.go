package rbac

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Repository loads the RBAC graph.
type Repository interface {
	// ListAdminRoles returns the admin's roles with their permissions.
	ListAdminRoles(ctx context.Context, adminID int64) ([]Role, error)
	ListMenus(ctx context.Context) ([]Menu, error)
	// MenuIDsForCodes returns the menus linked to permissions with the given codes.
	MenuIDsForCodes(ctx context.Context, codes []string) ([]int64, error)
}

// lookupTimeout bounds a shared permission lookup, which no single caller owns.
const lookupTimeout = 10 * time.Second

// Service resolves permissions and navigation for admins.
type Service struct {
	repo  Repository
	perms singleflight.Group
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EffectivePermissions returns the codes granted to the admin by its active roles.
func (s *Service) EffectivePermissions(ctx context.Context, adminID int64) (PermissionSet, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.perms.DoChan(strconv.FormatInt(adminID, 10), func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(detached, lookupTimeout)
		defer cancel()
		roles, err := s.repo.ListAdminRoles(lookupCtx, adminID)
		if err != nil {
			return nil, fmt.Errorf("rbac: load roles: %w", err)
		}
		return Resolve(activeRoles(roles)), nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(PermissionSet), nil
	}
}

// AdminMenus returns the navigation tree the admin may see.
func (s *Service) AdminMenus(ctx context.Context, adminID int64) ([]MenuNode, error) {
	var (
		roles []Role
		menus []Menu
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = s.repo.ListAdminRoles(gctx, adminID)
		if err != nil {
			return fmt.Errorf("rbac: load roles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		menus, err = s.repo.ListMenus(gctx)
		if err != nil {
			return fmt.Errorf("rbac: load menus: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	codes := Resolve(activeRoles(roles)).Codes()
	if len(codes) == 0 {
		return []MenuNode{}, nil
	}
	ids, err := s.repo.MenuIDsForCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("rbac: load menu grants: %w", err)
	}
	return BuildAuthorizedTree(menus, NewMenuIDSet(ids...))
}

// MenuTree returns every menu as a tree.
func (s *Service) MenuTree(ctx context.Context) ([]MenuNode, error) {
	menus, err := s.repo.ListMenus(ctx)
	if err != nil {
		return nil, fmt.Errorf("rbac: load menus: %w", err)
	}
	return BuildTree(menus)
}

func activeRoles(roles []Role) []Role {
	out := make([]Role, 0, len(roles))
	for _, role := range roles {
		if role.Active() {
			out = append(out, role)
		}
	}
	return out
}
