package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
)

// Resolution failure reasons.
const (
	ReasonMissingCredential = "missing credential"
	ReasonBadFormat         = "bad format"
	ReasonExpired           = "expired"
	ReasonInvalid           = "invalid"
	ReasonSubjectNotFound   = "subject not found"
)

const (
	bearerPrefix = "Bearer "
	touchTimeout = 5 * time.Second
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (Claims, error)
}

// Resolver turns the raw Authorization header into a Principal.
type Resolver struct {
	tokens TokenVerifier
	store  CredentialStore
	logger *slog.Logger
	now    func() time.Time
}

// NewResolver constructs a Resolver.
func NewResolver(tokens TokenVerifier, store CredentialStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{tokens: tokens, store: store, logger: logger, now: time.Now}
}

// Resolve authenticates header. The role of the returned principal is the one
// currently stored for the subject, not the one embedded in the token.
func (r *Resolver) Resolve(ctx context.Context, header string) (rbac.Principal, error) {
	if header == "" {
		return rbac.Principal{}, shared.Unauthenticated(ReasonMissingCredential, "No token, authorization denied")
	}
	token, ok := bearerToken(header)
	if !ok {
		return rbac.Principal{}, shared.Unauthenticated(ReasonBadFormat, "Invalid token format")
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return rbac.Principal{}, shared.Unauthenticated(ReasonExpired, "Token has expired")
		}
		return rbac.Principal{}, shared.Unauthenticated(ReasonInvalid, "Invalid token")
	}

	user, err := r.store.FindByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return rbac.Principal{}, shared.Unauthenticated(ReasonSubjectNotFound, "User not found")
		}
		return rbac.Principal{}, shared.Internal("Server error during authentication", err)
	}

	at := r.now()
	if at.Before(user.LastActiveAt) {
		at = user.LastActiveAt
	}
	r.touch(ctx, user.ID, at)
	user.LastActiveAt = at

	if user.Role != claims.Role {
		r.logger.Debug("token role differs from stored role",
			slog.String("user_id", user.ID),
			slog.String("token_role", claims.Role.String()),
			slog.String("stored_role", user.Role.String()))
	}
	return user.Principal(), nil
}

// touch persists activity without failing the request and without being
// aborted by a client disconnect.
func (r *Resolver) touch(ctx context.Context, id string, at time.Time) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), touchTimeout)
	defer cancel()
	if err := r.store.TouchLastActive(ctx, id, at); err != nil {
		r.logger.Warn("update last active", slog.String("user_id", id), slog.Any("error", err))
	}
}

// bearerToken strips exactly one "Bearer " prefix. Whatever follows is handed
// to the codec untouched, so padded or empty tokens fail verification.
func bearerToken(header string) (string, bool) {
	return strings.CutPrefix(header, bearerPrefix)
}
