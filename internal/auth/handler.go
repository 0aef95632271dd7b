package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrack/tasktrack/internal/platform/httpx"
	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
	"github.com/tasktrack/tasktrack/internal/users"
)

const msgRoleInvalid = "Role must be either user or admin"

var registerMessages = map[string]string{
	"username": "Username must be at least 3 characters long",
	"email":    "Please enter a valid email",
	"password": "Password must be at least 6 characters long",
	"role":     msgRoleInvalid,
}

var loginMessages = map[string]string{
	"email":    "Please enter a valid email",
	"password": "Password is required",
	"role":     msgRoleInvalid,
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers auth routes on provided router. authenticate guards
// the routes that need a resolved principal.
func (h *Handler) MountRoutes(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.With(authenticate).Get("/me", h.handleMe)
}

type registerRequest struct {
	Username string `json:"username" validate:"min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
	Role     string `json:"role" validate:"oneof=user admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"oneof=user admin"`
}

type sessionResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    users.Summary `json:"user"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	normalize := func() {
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
	}
	if err := httpx.DecodeValid(r, &req, registerMessages, normalize); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		httpx.RespondError(w, shared.ValidationFailed([]shared.FieldError{{Field: "role", Message: msgRoleInvalid}}))
		return
	}

	sess, err := h.service.Register(r.Context(), RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		h.logFailure("registration error", err)
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("user registered", slog.String("user_id", sess.User.ID), slog.String("role", sess.User.Role.String()))
	writeSession(w, http.StatusCreated, "User registered successfully", sess)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	normalize := func() { req.Email = strings.TrimSpace(req.Email) }
	if err := httpx.DecodeValid(r, &req, loginMessages, normalize); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		httpx.RespondError(w, shared.ValidationFailed([]shared.FieldError{{Field: "role", Message: msgRoleInvalid}}))
		return
	}

	sess, err := h.service.Login(r.Context(), req.Email, req.Password, role)
	if err != nil {
		h.logFailure("login error", err)
		httpx.RespondError(w, err)
		return
	}
	writeSession(w, http.StatusOK, "Login successful", sess)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.Unauthenticated("missing principal", "Authentication required"))
		return
	}
	user, err := h.service.Me(r.Context(), principal)
	if err != nil {
		h.logFailure("get user error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.Profile())
}

func (h *Handler) logFailure(msg string, err error) {
	if shared.KindOf(err) == shared.KindInternal {
		h.logger.Error(msg, slog.Any("error", err))
	}
}

func writeSession(w http.ResponseWriter, status int, message string, sess *Session) {
	w.Header().Set("Authorization", bearerPrefix+sess.Token)
	httpx.JSON(w, status, sessionResponse{Message: message, Token: sess.Token, User: sess.User.Summary()})
}
