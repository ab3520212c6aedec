package audithttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/backoffice/admin-system/internal/audit"
	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

type memRepo struct {
	logs        []audit.Log
	lastFilters audit.ListFilters
	lastIDs     []int64
	lastCutoff  time.Time
}

func (m *memRepo) Insert(ctx context.Context, l audit.Log) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *memRepo) List(ctx context.Context, filters audit.ListFilters) ([]audit.Log, int, error) {
	m.lastFilters = filters
	return m.logs, len(m.logs), nil
}

func (m *memRepo) Export(ctx context.Context, filters audit.ListFilters, limit int) ([]audit.Log, error) {
	m.lastFilters = filters
	return m.logs, nil
}

func (m *memRepo) Get(ctx context.Context, id int64) (audit.Log, error) {
	for _, l := range m.logs {
		if l.ID == id {
			return l, nil
		}
	}
	return audit.Log{}, httpx.ErrNotFound
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	return nil
}

func (m *memRepo) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	m.lastIDs = ids
	return int64(len(ids)), nil
}

func (m *memRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.lastCutoff = cutoff
	return 3, nil
}

func (m *memRepo) Statistics(ctx context.Context) (audit.Statistics, error) {
	return audit.Statistics{Total: 2, Success: 1, Failed: 1, ModuleStats: []audit.Bucket{{Key: "roles", Count: 2}}}, nil
}

type grantRepo struct{ codes []string }

func (g grantRepo) ListAdminRoles(ctx context.Context, adminID int64) ([]rbac.Role, error) {
	perms := make([]rbac.Permission, len(g.codes))
	for i, code := range g.codes {
		perms[i] = rbac.Permission{Code: code}
	}
	return []rbac.Role{{ID: 1, Status: rbac.StatusActive, Permissions: perms}}, nil
}

func (g grantRepo) ListMenus(ctx context.Context) ([]rbac.Menu, error) { return nil, nil }

func (g grantRepo) MenuIDsForCodes(ctx context.Context, codes []string) ([]int64, error) {
	return nil, nil
}

func newAuditRouter(repo *memRepo, codes ...string) http.Handler {
	svc := audit.NewService(repo, 30)
	handler := NewHandler(nil, svc, httpx.NewValidator(), rbac.Middleware{Service: rbac.NewService(grantRepo{codes: codes})})
	handler.now = func() time.Time { return time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithActor(req.Context(), shared.Actor{ID: 1, Username: "root"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/operation-logs", handler.MountRoutes)
	return r
}

func sampleLogs() []audit.Log {
	return []audit.Log{
		{ID: 2, Username: "root", Module: "roles", Action: "delete", Method: "DELETE", URL: "/api/system/roles/3", Status: audit.StatusFailed, CreatedAt: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)},
		{ID: 1, Username: "root", Module: "roles", Action: "list", Method: "GET", URL: "/api/system/roles", Status: audit.StatusSuccess, CreatedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
}

func TestListRequiresPermission(t *testing.T) {
	rr := httptest.NewRecorder()
	newAuditRouter(&memRepo{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/operation-logs/", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestListParsesFilters(t *testing.T) {
	repo := &memRepo{logs: sampleLogs()}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/operation-logs/?username=ro&status=0&start_date=2024-03-01&end_date=2024-03-10&per_page=5", nil)
	newAuditRouter(repo, shared.PermLogList).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var page httpx.Page[audit.Log]
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Items) != 2 || page.Pagination.PerPage != 5 || page.Pagination.Total != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	f := repo.lastFilters
	if f.Username != "ro" || f.Status == nil || *f.Status != 0 {
		t.Fatalf("unexpected filters: %+v", f)
	}
	if f.From == nil || !f.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", f.From)
	}
	if f.To == nil || !f.To.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end date should cover the whole day, got %v", f.To)
	}
}

func TestListRejectsBadDate(t *testing.T) {
	rr := httptest.NewRecorder()
	newAuditRouter(&memRepo{}, shared.PermLogList).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/operation-logs/?start_date=yesterday", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestShowAndMissing(t *testing.T) {
	router := newAuditRouter(&memRepo{logs: sampleLogs()}, shared.PermLogList)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/operation-logs/2", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"action":"delete"`) {
		t.Fatalf("unexpected show response %d: %s", rr.Code, rr.Body.String())
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/operation-logs/99", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestStatistics(t *testing.T) {
	rr := httptest.NewRecorder()
	newAuditRouter(&memRepo{}, shared.PermLogList).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/operation-logs/statistics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var stats audit.Statistics
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 2 || len(stats.ModuleStats) != 1 || stats.ModuleStats[0].Key != "roles" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestExportCSV(t *testing.T) {
	rr := httptest.NewRecorder()
	newAuditRouter(&memRepo{logs: sampleLogs()}, shared.PermLogList).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/operation-logs/export", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="operation_logs_20240315083000.csv"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", rr.Body.String())
	}
}

func TestDeleteEndpointsRequireDeletePermission(t *testing.T) {
	repo := &memRepo{logs: sampleLogs()}
	router := newAuditRouter(repo, shared.PermLogList)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/operation-logs/2", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}

	router = newAuditRouter(repo, shared.PermLogDelete)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/operation-logs/2", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestBatchDelete(t *testing.T) {
	repo := &memRepo{}
	router := newAuditRouter(repo, shared.PermLogDelete)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/operation-logs/batch", strings.NewReader(`{"ids":[1,2,2]}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"deleted":2`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/operation-logs/batch", strings.NewReader(`{"ids":[]}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty ids, got %d", rr.Code)
	}
}

func TestClear(t *testing.T) {
	repo := &memRepo{}
	router := newAuditRouter(repo, shared.PermLogDelete)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/operation-logs/clear?days=7", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"deleted":3`) {
		t.Fatalf("unexpected clear response %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/operation-logs/clear?days=abc", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
