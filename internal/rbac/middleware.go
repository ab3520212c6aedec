package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
	// OnDeny is called with "any" or "all" whenever a request is refused.
	OnDeny func(mode string)
}

// RequireAny ensures the current admin has at least one of the required permissions.
func (m Middleware) RequireAny(codes ...string) func(http.Handler) http.Handler {
	return m.require("any", codes, PermissionSet.HasAny)
}

// RequireAll ensures the current admin has all required permissions.
func (m Middleware) RequireAll(codes ...string) func(http.Handler) http.Handler {
	return m.require("all", codes, PermissionSet.HasAll)
}

func (m Middleware) require(mode string, codes []string, check func(PermissionSet, ...string) bool) func(http.Handler) http.Handler {
	required := compactCodes(codes)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			granted, err := m.Service.EffectivePermissions(r.Context(), actor.ID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require "+mode, slog.Int64("admin_id", actor.ID), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if check(granted, required...) {
				next.ServeHTTP(w, r)
				return
			}
			if m.OnDeny != nil {
				m.OnDeny(mode)
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission")
		})
	}
}

// compactCodes trims whitespace and drops blanks and repeats. Case is kept.
func compactCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
