package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrack/tasktrack/internal/platform/httpx"
	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
)

const msgRoleInvalid = "Role must be either user or admin"

var updateRoleMessages = map[string]string{
	"userId": "Invalid user ID",
	"role":   msgRoleInvalid,
}

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountAdminRoutes registers user management routes. The caller is
// responsible for the admin gate on r.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/users", h.listUsers)
	r.Put("/users/{userId}/role", h.updateRole)
}

type updateRoleRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,oneof=user admin"`
}

type updateRoleResponse struct {
	Message string  `json:"message"`
	User    Summary `json:"user"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	dir, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dir)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	normalize := func() { req.UserID = chi.URLParam(r, "userId") }
	if err := httpx.DecodeValid(r, &req, updateRoleMessages, normalize); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		httpx.RespondError(w, shared.ValidationFailed([]shared.FieldError{{Field: "role", Message: msgRoleInvalid}}))
		return
	}
	user, err := h.service.UpdateRole(r.Context(), req.UserID, role)
	if err != nil {
		if shared.KindOf(err) == shared.KindInternal {
			h.logger.Error("update user role failed", slog.Any("error", err), slog.String("user_id", req.UserID))
		}
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("user role updated", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
	httpx.JSON(w, http.StatusOK, updateRoleResponse{Message: "User role updated successfully", User: user.Summary()})
}
