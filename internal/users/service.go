package users

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

// RepositoryPort defines data access methods for admins.
type RepositoryPort interface {
	ListAdmins(ctx context.Context, filters ListFilters) ([]Admin, int, error)
	GetAdmin(ctx context.Context, id int64) (Admin, error)
	CreateAdmin(ctx context.Context, rec Record, roleIDs []int64) (int64, error)
	UpdateAdmin(ctx context.Context, id int64, rec Record, roleIDs []int64) error
	DeleteAdmin(ctx context.Context, id int64) error
	SyncRoles(ctx context.Context, adminID int64, roleIDs []int64) error
	SetPassword(ctx context.Context, id int64, hash string) error
	SetStatus(ctx context.Context, id int64, status int) error
}

// Service handles admin account business logic.
type Service struct {
	repo RepositoryPort
	cost int
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// ListAdmins returns a page of admins.
func (s *Service) ListAdmins(ctx context.Context, filters ListFilters) ([]Admin, shared.Pagination, error) {
	admins, total, err := s.repo.ListAdmins(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return admins, shared.NewPagination(filters.Page.Page, filters.Page.PerPage, total), nil
}

// GetAdmin returns an admin with roles.
func (s *Service) GetAdmin(ctx context.Context, id int64) (Admin, error) {
	return s.repo.GetAdmin(ctx, id)
}

// CreateAdmin hashes the password and inserts the admin with its roles.
func (s *Service) CreateAdmin(ctx context.Context, in CreateInput) (Admin, error) {
	hash, err := s.hash(in.Password)
	if err != nil {
		return Admin{}, err
	}
	rec := Record{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Avatar:       strings.TrimSpace(in.Avatar),
		Status:       statusOrActive(in.Status),
	}
	id, err := s.repo.CreateAdmin(ctx, rec, uniqueIDs(in.RoleIDs))
	if err != nil {
		return Admin{}, err
	}
	return s.repo.GetAdmin(ctx, id)
}

// UpdateAdmin rewrites an admin.
func (s *Service) UpdateAdmin(ctx context.Context, id int64, in UpdateInput) (Admin, error) {
	rec := Record{
		Username: strings.TrimSpace(in.Username),
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Avatar:   strings.TrimSpace(in.Avatar),
		Status:   statusOrActive(in.Status),
	}
	if in.Password != "" {
		hash, err := s.hash(in.Password)
		if err != nil {
			return Admin{}, err
		}
		rec.PasswordHash = hash
	}
	var roleIDs []int64
	if in.RoleIDs != nil {
		roleIDs = uniqueIDs(in.RoleIDs)
	}
	if err := s.repo.UpdateAdmin(ctx, id, rec, roleIDs); err != nil {
		return Admin{}, err
	}
	return s.repo.GetAdmin(ctx, id)
}

// DeleteAdmin removes an admin other than the actor.
func (s *Service) DeleteAdmin(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return fmt.Errorf("users: cannot delete the signed-in admin: %w", httpx.ErrConflict)
	}
	return s.repo.DeleteAdmin(ctx, id)
}

// AssignRoles replaces the admin's roles.
func (s *Service) AssignRoles(ctx context.Context, id int64, roleIDs []int64) (Admin, error) {
	if err := s.repo.SyncRoles(ctx, id, uniqueIDs(roleIDs)); err != nil {
		return Admin{}, err
	}
	return s.repo.GetAdmin(ctx, id)
}

// ResetPassword sets a new password for the admin.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, id, hash)
}

// ChangeStatus switches the admin on or off.
func (s *Service) ChangeStatus(ctx context.Context, id int64, status int) error {
	if status != rbac.StatusActive && status != rbac.StatusDisabled {
		return fmt.Errorf("users: unknown status %d: %w", status, httpx.ErrValidation)
	}
	return s.repo.SetStatus(ctx, id, status)
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(hash), nil
}

func statusOrActive(status *int) int {
	if status == nil {
		return rbac.StatusActive
	}
	return *status
}

func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
