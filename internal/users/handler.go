package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

// Handler manages admin account endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *httpx.Validator
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, validator *httpx.Validator, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator, rbac: rbac}
}

// MountRoutes registers admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAdminList))
		r.Get("/", h.listAdmins)
		r.Get("/{id}", h.showAdmin)
	})
	r.With(h.rbac.RequireAll(shared.PermAdminCreate)).Post("/", h.createAdmin)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermAdminUpdate))
		r.Put("/{id}", h.updateAdmin)
		r.Post("/{id}/roles", h.assignRoles)
		r.Post("/{id}/reset-password", h.resetPassword)
		r.Post("/{id}/change-status", h.changeStatus)
	})
	r.With(h.rbac.RequireAll(shared.PermAdminDelete)).Delete("/{id}", h.deleteAdmin)
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Username: q.Get("username"),
		Name:     q.Get("name"),
		Email:    q.Get("email"),
		Status:   httpx.QueryOptionalInt(r, "status"),
		Page:     shared.NewPageRequest(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "per_page", 0)),
	}
	admins, pagination, err := h.service.ListAdmins(r.Context(), filters)
	if err != nil {
		h.fail(w, "list admins", err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Page[Admin]{Items: admins, Pagination: pagination.Wire()})
}

func (h *Handler) showAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	admin, err := h.service.GetAdmin(r.Context(), id)
	if err != nil {
		h.fail(w, "show admin", err)
		return
	}
	httpx.JSON(w, http.StatusOK, admin)
}

func (h *Handler) createAdmin(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := h.validator.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	admin, err := h.service.CreateAdmin(r.Context(), in)
	if err != nil {
		h.fail(w, "create admin", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, admin)
}

func (h *Handler) updateAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in UpdateInput
	if err := h.validator.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	admin, err := h.service.UpdateAdmin(r.Context(), id, in)
	if err != nil {
		h.fail(w, "update admin", err)
		return
	}
	httpx.JSON(w, http.StatusOK, admin)
}

func (h *Handler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.DeleteAdmin(r.Context(), actor.ID, id); err != nil {
		h.fail(w, "delete admin", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) assignRoles(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in RoleAssignment
	if err := h.validator.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	admin, err := h.service.AssignRoles(r.Context(), id, in.RoleIDs)
	if err != nil {
		h.fail(w, "assign roles", err)
		return
	}
	httpx.JSON(w, http.StatusOK, admin)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in PasswordReset
	if err := h.validator.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.ResetPassword(r.Context(), id, in.Password); err != nil {
		h.fail(w, "reset password", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in StatusChange
	if err := h.validator.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.ChangeStatus(r.Context(), id, *in.Status); err != nil {
		h.fail(w, "change status", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
