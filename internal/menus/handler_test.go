package menus_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/admin-system/internal/menus"
	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

type graphRepo struct {
	codes []string
	menus []rbac.Menu
}

func (g graphRepo) ListAdminRoles(ctx context.Context, adminID int64) ([]rbac.Role, error) {
	perms := make([]rbac.Permission, len(g.codes))
	for i, code := range g.codes {
		perms[i] = rbac.Permission{Code: code}
	}
	return []rbac.Role{{ID: 1, Status: rbac.StatusActive, Permissions: perms}}, nil
}

func (g graphRepo) ListMenus(ctx context.Context) ([]rbac.Menu, error) { return g.menus, nil }

func (g graphRepo) MenuIDsForCodes(ctx context.Context, codes []string) ([]int64, error) {
	return []int64{2}, nil
}

type emptyRepo struct{ menus.RepositoryPort }

func newRouter(codes ...string) http.Handler {
	graph := graphRepo{codes: codes, menus: []rbac.Menu{
		{ID: 1, Title: "System", Kind: rbac.MenuKindDirectory, Status: rbac.StatusActive},
		{ID: 2, ParentID: 1, Title: "Admins", Kind: rbac.MenuKindPage, Status: rbac.StatusActive},
		{ID: 3, ParentID: 1, Title: "Roles", Kind: rbac.MenuKindPage, Status: rbac.StatusActive},
	}}
	rbacSvc := rbac.NewService(graph)
	svc := menus.NewService(emptyRepo{}, rbacSvc)
	handler := menus.NewHandler(nil, svc, httpx.NewValidator(), rbac.Middleware{Service: rbacSvc})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithActor(req.Context(), shared.Actor{ID: 5, Username: "editor"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/menus", handler.MountRoutes)
	return r
}

func TestUserMenusOnlyNeedsAuthentication(t *testing.T) {
	router := newRouter("admin:list")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/menus/user", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var tree []rbac.MenuNode
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &tree))
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Admins", tree[0].Children[0].Title)
}

func TestTreeRequiresPermission(t *testing.T) {
	res := httptest.NewRecorder()
	newRouter("admin:list").ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/menus/tree", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = httptest.NewRecorder()
	newRouter(shared.PermMenuList).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/menus/tree", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var tree []rbac.MenuNode
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &tree))
	require.Len(t, tree, 1)
	assert.Len(t, tree[0].Children, 2)
}

func TestCreateValidatesBody(t *testing.T) {
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/menus/", strings.NewReader(`{"title":"","type":9}`))
	newRouter(shared.PermMenuCreate).ServeHTTP(res, req)
	require.Equal(t, http.StatusBadRequest, res.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	assert.Contains(t, problem.Fields, "title")
	assert.Contains(t, problem.Fields, "type")
}
