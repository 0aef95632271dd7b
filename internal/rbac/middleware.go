package rbac

import (
	"log/slog"
	"net/http"

	"github.com/tasktrack/tasktrack/internal/platform/httpx"
	"github.com/tasktrack/tasktrack/internal/shared"
)

// DenialRecorder receives the reason of every denied request.
type DenialRecorder interface {
	RecordAuthzDenial(reason string)
}

// Middleware wires authorization helpers for HTTP handlers. It expects the
// authentication middleware to have stored a Principal in the request context.
type Middleware struct {
	Logger  *slog.Logger
	Metrics DenialRecorder
}

// Require applies check to the current principal before calling next.
func (m Middleware) Require(check Check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.Unauthenticated("missing principal", "Authentication required"))
				return
			}
			if err := check(p); err != nil {
				m.Deny(r, err)
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin ensures the current user has the admin role.
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.Require(RequireAdmin)
}

// Deny records a denial produced outside the middleware, e.g. by a guard
// evaluated inside a handler.
func (m Middleware) Deny(r *http.Request, err error) {
	e, ok := shared.AsError(err)
	if !ok || e.Kind != shared.KindForbidden {
		return
	}
	if m.Metrics != nil {
		m.Metrics.RecordAuthzDenial(e.Reason)
	}
	if m.Logger != nil {
		p, _ := PrincipalFromContext(r.Context())
		m.Logger.Info("access denied",
			slog.String("reason", e.Reason),
			slog.String("principal", p.ID),
			slog.String("path", r.URL.Path))
	}
}
