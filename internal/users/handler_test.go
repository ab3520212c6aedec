package users

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

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

type fullAccess struct{}

func (fullAccess) ListAdminRoles(ctx context.Context, adminID int64) ([]rbac.Role, error) {
	perms := make([]rbac.Permission, 0)
	for _, code := range shared.CoreScopes() {
		perms = append(perms, rbac.Permission{Code: code})
	}
	return []rbac.Role{{ID: 1, Status: rbac.StatusActive, Permissions: perms}}, nil
}

func (fullAccess) ListMenus(ctx context.Context) ([]rbac.Menu, error) { return nil, nil }

func (fullAccess) MenuIDsForCodes(ctx context.Context, codes []string) ([]int64, error) {
	return nil, nil
}

func serve(repo *memRepo, actorID int64, method, target, body string) *httptest.ResponseRecorder {
	h := NewHandler(nil, newTestService(repo), httpx.NewValidator(), rbac.Middleware{Service: rbac.NewService(fullAccess{})})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithActor(req.Context(), shared.Actor{ID: actorID, Username: "root"})))
		})
	})
	r.Route("/admins", h.MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rr
}

func TestCreateAdminEndpoint(t *testing.T) {
	repo := newMemRepo()
	rr := serve(repo, 1, http.MethodPost, "/admins", `{"username":"editor","password":"secret1","name":"Ed","role_ids":[2]}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created Admin
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "editor", created.Username)
	assert.Equal(t, []int64{2}, repo.roles[created.ID])
	assert.NotContains(t, rr.Body.String(), "secret1")
}

func TestCreateAdminRejectsBadEmail(t *testing.T) {
	rr := serve(newMemRepo(), 1, http.MethodPost, "/admins", `{"username":"editor","password":"secret1","name":"Ed","email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Contains(t, problem.Fields, "email")
}

func TestDeleteSelfConflicts(t *testing.T) {
	repo := newMemRepo()
	repo.admins[5] = Admin{ID: 5}

	rr := serve(repo, 5, http.MethodDelete, "/admins/5", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Empty(t, repo.deleted)

	rr = serve(repo, 1, http.MethodDelete, "/admins/5", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []int64{5}, repo.deleted)
}

func TestChangeStatusEndpoint(t *testing.T) {
	repo := newMemRepo()
	repo.admins[3] = Admin{ID: 3, Status: rbac.StatusActive}

	rr := serve(repo, 1, http.MethodPost, "/admins/3/change-status", `{"status":0}`)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, rbac.StatusDisabled, repo.statuses[3])

	rr = serve(repo, 1, http.MethodPost, "/admins/3/change-status", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestShowAdminNotFound(t *testing.T) {
	rr := serve(newMemRepo(), 1, http.MethodGet, "/admins/42", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
