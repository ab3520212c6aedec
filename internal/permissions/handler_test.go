package permissions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

type memRepo struct {
	RepositoryPort
	items       []Detail
	holders     map[int64]int
	deleted     []int64
	lastFilters ListFilters
}

func (m *memRepo) List(ctx context.Context, filters ListFilters) ([]Detail, int, error) {
	m.lastFilters = filters
	return m.items, len(m.items), nil
}

func (m *memRepo) CountRoles(ctx context.Context, id int64) (int, error) {
	return m.holders[id], nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type grantAll struct{}

func (grantAll) ListAdminRoles(ctx context.Context, adminID int64) ([]rbac.Role, error) {
	perms := make([]rbac.Permission, 0)
	for _, code := range shared.CoreScopes() {
		perms = append(perms, rbac.Permission{Code: code})
	}
	return []rbac.Role{{ID: 1, Status: rbac.StatusActive, Permissions: perms}}, nil
}

func (grantAll) ListMenus(ctx context.Context) ([]rbac.Menu, error) { return nil, nil }

func (grantAll) MenuIDsForCodes(ctx context.Context, codes []string) ([]int64, error) {
	return nil, nil
}

func router(repo *memRepo) http.Handler {
	h := NewHandler(nil, NewService(repo), httpx.NewValidator(), rbac.Middleware{Service: rbac.NewService(grantAll{})})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithActor(req.Context(), shared.Actor{ID: 1})))
		})
	})
	r.Route("/permissions", h.MountRoutes)
	return r
}

func TestListPermissions(t *testing.T) {
	title := "Admins"
	repo := &memRepo{items: []Detail{{Permission: rbac.Permission{ID: 1, Code: "admin:list"}, MenuTitle: &title}}}
	res := httptest.NewRecorder()
	router(repo).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/permissions?type=1&menu_id=2&page=1&per_page=500", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var page struct {
		Items      []map[string]any `json:"items"`
		Pagination httpx.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Admins", page.Items[0]["menu_title"])
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, shared.MaxPerPage, repo.lastFilters.Page.PerPage)
	require.NotNil(t, repo.lastFilters.Type)
	assert.Equal(t, 1, *repo.lastFilters.Type)
}

func TestDeletePermissionHeldByRole(t *testing.T) {
	repo := &memRepo{holders: map[int64]int{7: 1}}
	res := httptest.NewRecorder()
	router(repo).ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/permissions/7", nil))
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Empty(t, repo.deleted)

	res = httptest.NewRecorder()
	router(repo).ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/permissions/8", nil))
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Equal(t, []int64{8}, repo.deleted)
}
