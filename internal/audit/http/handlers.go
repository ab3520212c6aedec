package audithttp

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/backoffice/admin-system/internal/audit"
	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

const dateLayout = "2006-01-02"

// Handler menangani endpoint operation log.
type Handler struct {
	logger    *slog.Logger
	service   *audit.Service
	validator *httpx.Validator
	rbac      rbac.Middleware
	now       func() time.Time
}

// NewHandler membuat handler operation log baru.
func NewHandler(logger *slog.Logger, service *audit.Service, validator *httpx.Validator, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator,
		rbac:      rbac,
		now:       time.Now,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	logs, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.fail(w, "list operation logs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Page[audit.Log]{Items: logs, Pagination: pagination.Wire()})
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "show operation log", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete operation log", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var in audit.BatchDelete
	if err := h.validator.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	n, err := h.service.BatchDelete(r.Context(), in.IDs)
	if err != nil {
		h.fail(w, "batch delete operation logs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, audit.Deleted{Deleted: n})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpx.RespondError(w, httpx.ValidationErrors{"days": "must be a positive integer"})
			return
		}
		days = parsed
	}
	n, err := h.service.Clear(r.Context(), days)
	if err != nil {
		h.fail(w, "clear operation logs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, audit.Deleted{Deleted: n})
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		h.fail(w, "operation log statistics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	logs, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.fail(w, "export operation logs", err)
		return
	}
	name := fmt.Sprintf("operation_logs_%s.csv", h.now().UTC().Format("20060102150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := audit.WriteCSV(w, logs); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Warn(msg, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func parseFilters(r *http.Request) (audit.ListFilters, error) {
	q := r.URL.Query()
	filters := audit.ListFilters{
		Username: q.Get("username"),
		Module:   q.Get("module"),
		Action:   q.Get("action"),
		Status:   httpx.QueryOptionalInt(r, "status"),
		Page:     shared.NewPageRequest(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "per_page", 0)),
	}
	errs := httpx.ValidationErrors{}
	if from, ok, err := parseTime(q.Get("start_date"), false); err != nil {
		errs["start_date"] = "must be YYYY-MM-DD or RFC3339"
	} else if ok {
		filters.From = &from
	}
	if to, ok, err := parseTime(q.Get("end_date"), true); err != nil {
		errs["end_date"] = "must be YYYY-MM-DD or RFC3339"
	} else if ok {
		filters.To = &to
	}
	if len(errs) > 0 {
		return audit.ListFilters{}, errs
	}
	return filters, nil
}

// parseTime accepts a date or an RFC3339 timestamp. A bare end date covers the whole day.
func parseTime(raw string, endOfDay bool) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1)
		}
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
