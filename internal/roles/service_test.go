package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

type stubRepo struct {
	RepositoryPort
	roles       []rbac.Role
	total       int
	admins      map[int64]int
	deleted     []int64
	synced      []int64
	lastFilters RoleListFilters
	lastInput   RoleInput
}

func (s *stubRepo) ListRoles(ctx context.Context, filters RoleListFilters) ([]rbac.Role, int, error) {
	s.lastFilters = filters
	return s.roles, s.total, nil
}

func (s *stubRepo) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	for _, role := range s.roles {
		if role.ID == id {
			return role, nil
		}
	}
	return rbac.Role{}, httpx.ErrNotFound
}

func (s *stubRepo) CreateRole(ctx context.Context, in RoleInput) (rbac.Role, error) {
	s.lastInput = in
	return rbac.Role{ID: 9, Name: in.Name, Code: in.Code, Status: in.status()}, nil
}

func (s *stubRepo) CountAdmins(ctx context.Context, id int64) (int, error) {
	return s.admins[id], nil
}

func (s *stubRepo) DeleteRole(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) SyncPermissions(ctx context.Context, roleID int64, ids []int64) error {
	s.synced = ids
	return nil
}

func TestListRolesPagination(t *testing.T) {
	repo := &stubRepo{roles: []rbac.Role{{ID: 1}, {ID: 2}}, total: 31}
	svc := NewService(repo)
	filters := RoleListFilters{Name: "ad", Page: shared.NewPageRequest(2, 15)}

	roles, pagination, err := svc.ListRoles(context.Background(), filters)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 15, repo.lastFilters.Page.Offset())
}

func TestCreateRoleTrims(t *testing.T) {
	repo := &stubRepo{}
	role, err := NewService(repo).CreateRole(context.Background(), RoleInput{Name: " Editor ", Code: " editor "})
	require.NoError(t, err)
	assert.Equal(t, "editor", repo.lastInput.Code)
	assert.Equal(t, rbac.StatusActive, role.Status)
}

func TestDeleteRoleBlockedWhileHeld(t *testing.T) {
	repo := &stubRepo{admins: map[int64]int{1: 2}}
	svc := NewService(repo)

	err := svc.DeleteRole(context.Background(), 1)
	require.ErrorIs(t, err, httpx.ErrConflict)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.DeleteRole(context.Background(), 2))
	assert.Equal(t, []int64{2}, repo.deleted)
}

func TestAssignPermissionsDeduplicates(t *testing.T) {
	repo := &stubRepo{roles: []rbac.Role{{ID: 4, Code: "editor"}}}
	role, err := NewService(repo).AssignPermissions(context.Background(), 4, []int64{3, 1, 3, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, "editor", role.Code)
	assert.Equal(t, []int64{1, 2, 3}, repo.synced)
}
