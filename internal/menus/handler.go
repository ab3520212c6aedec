package menus

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

// Handler manages menu endpoints.
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

// MountRoutes registers menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/user", h.userMenus)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermMenuList))
		r.Get("/", h.list)
		r.Get("/tree", h.tree)
		r.Get("/{id}", h.show)
	})
	r.With(h.rbac.RequireAll(shared.PermMenuCreate)).Post("/", h.create)
	r.With(h.rbac.RequireAll(shared.PermMenuUpdate)).Put("/{id}", h.update)
	r.With(h.rbac.RequireAll(shared.PermMenuDelete)).Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		Title:  strings.TrimSpace(r.URL.Query().Get("title")),
		Status: httpx.QueryOptionalInt(r, "status"),
	}
	tree, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.fail(w, "list menus", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tree)
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Tree(r.Context())
	if err != nil {
		h.fail(w, "menu tree", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tree)
}

func (h *Handler) userMenus(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	tree, err := h.service.ForAdmin(r.Context(), actor.ID)
	if err != nil {
		h.fail(w, "user menus", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tree)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	menu, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "show menu", err)
		return
	}
	httpx.JSON(w, http.StatusOK, menu)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in MenuInput
	if err := h.validator.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	menu, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, "create menu", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, menu)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in MenuInput
	if err := h.validator.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	menu, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, "update menu", err)
		return
	}
	httpx.JSON(w, http.StatusOK, menu)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete menu", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
