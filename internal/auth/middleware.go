package auth

import (
	"log/slog"
	"net/http"

	"github.com/tasktrack/tasktrack/internal/platform/httpx"
	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
)

// FailureRecorder receives the reason of every rejected authentication.
type FailureRecorder interface {
	RecordAuthFailure(reason string)
}

// Middleware resolves the request principal before protected handlers run.
type Middleware struct {
	Resolver *Resolver
	Logger   *slog.Logger
	Metrics  FailureRecorder
}

// Authenticate rejects requests without a valid bearer credential and stores
// the resolved principal in the request context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.Resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			m.reject(r, err)
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), principal)))
	})
}

func (m Middleware) reject(r *http.Request, err error) {
	reason := "internal"
	if e, ok := shared.AsError(err); ok && e.Kind == shared.KindUnauthenticated {
		reason = e.Reason
	}
	if m.Metrics != nil {
		m.Metrics.RecordAuthFailure(reason)
	}
	if m.Logger == nil {
		return
	}
	if reason == "internal" {
		m.Logger.Error("auth middleware error", slog.Any("error", err), slog.String("path", r.URL.Path))
		return
	}
	m.Logger.Debug("authentication rejected", slog.String("reason", reason), slog.String("path", r.URL.Path))
}
