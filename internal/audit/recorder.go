package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/shared"
)

const (
	maxParamBytes = 64 << 10
	maxErrorBytes = 1 << 10
	recordTimeout = 3 * time.Second
)

var actionAliases = map[string]string{
	"permissions": "assign-permissions",
	"admins":      "assign-admins",
	"roles":       "assign-roles",
	"user":        "user-menus",
}

// Store persists recorded entries.
type Store interface {
	Record(ctx context.Context, l Log) error
}

// Recorder writes an operation log entry for every request made by an authenticated admin.
type Recorder struct {
	store  Store
	logger *slog.Logger
	prefix string
}

// NewRecorder builds a Recorder. prefix is stripped from route patterns before
// deriving module and action names.
func NewRecorder(store Store, logger *slog.Logger, prefix string) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger, prefix: strings.TrimRight(prefix, "/")}
}

// Middleware must run after the bearer middleware so the actor is known.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok || rec.store == nil {
			next.ServeHTTP(w, r)
			return
		}
		params := captureParams(r)
		cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(cw, r)

		module, action := Describe(routePattern(r), rec.prefix, r.Method)
		adminID := actor.ID
		entry := Log{
			AdminID:   &adminID,
			Username:  actor.Username,
			Module:    module,
			Action:    action,
			Method:    r.Method,
			URL:       r.URL.RequestURI(),
			IP:        httpx.ClientIP(r),
			UserAgent: r.UserAgent(),
			Params:    params,
			Status:    StatusSuccess,
		}
		if cw.status >= http.StatusBadRequest {
			entry.Status = StatusFailed
			msg := cw.body.String()
			entry.ErrorMessage = &msg
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), recordTimeout)
		defer cancel()
		if err := rec.store.Record(ctx, entry); err != nil {
			rec.logger.Warn("record operation log", slog.Any("error", err), slog.String("url", entry.URL))
		}
	})
}

// Describe derives module and action names from a chi route pattern.
// The module is the first segment after prefix. The action is the last static
// segment, or a verb picked from the method.
func Describe(pattern, prefix, method string) (string, string) {
	pattern = strings.TrimPrefix(pattern, strings.TrimRight(prefix, "/"))
	segs := strings.FieldsFunc(pattern, func(r rune) bool { return r == '/' })
	if len(segs) > 0 && segs[len(segs)-1] == "*" {
		segs = segs[:len(segs)-1]
	}
	if len(segs) == 0 {
		return "", strings.ToLower(method)
	}
	module := segs[0]
	last := segs[len(segs)-1]
	if len(segs) > 1 && !isParam(last) {
		if alias, ok := actionAliases[last]; ok {
			return module, alias
		}
		return module, last
	}
	withID := len(segs) > 1
	switch method {
	case http.MethodGet:
		if withID {
			return module, "show"
		}
		return module, "list"
	case http.MethodPost:
		return module, "create"
	case http.MethodPut, http.MethodPatch:
		return module, "update"
	case http.MethodDelete:
		return module, "delete"
	}
	return module, strings.ToLower(method)
}

func isParam(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

// captureParams merges query values and a JSON object body, dropping password fields.
// The body is restored for the next handler.
func captureParams(r *http.Request) json.RawMessage {
	params := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = values
		}
	}
	if r.Body != nil && r.Body != http.NoBody && isJSON(r) {
		buf, err := io.ReadAll(io.LimitReader(r.Body, maxParamBytes+1))
		r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
		if err == nil && len(buf) <= maxParamBytes {
			var body map[string]any
			if json.Unmarshal(buf, &body) == nil {
				maps.Copy(params, body)
			}
		}
	}
	for key := range params {
		if strings.Contains(strings.ToLower(key), "password") {
			delete(params, key)
		}
	}
	if len(params) == 0 {
		return nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil
	}
	return data
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}

type readCloser struct {
	io.Reader
	io.Closer
}

type captureWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (w *captureWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.status >= http.StatusBadRequest && w.body.Len() < maxErrorBytes {
		rest := maxErrorBytes - w.body.Len()
		if len(p) < rest {
			rest = len(p)
		}
		w.body.Write(p[:rest])
	}
	return w.ResponseWriter.Write(p)
}
