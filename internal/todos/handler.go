package todos

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrack/tasktrack/internal/platform/httpx"
	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
)

var todoMessages = map[string]string{
	"title.required": "Title is required",
	"title.max":      "Title must be less than 100 characters",
	"description":    "Description must be less than 500 characters",
	"category.max":   "Category must be less than 50 characters",
	"category.oneof": "Category must be either Urgent or Non-Urgent",
	"dueDate":        "Due date must be a valid date",
	"completed":      "Completed must be a boolean",
}

// Handler exposes todo endpoints.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	authz          rbac.Middleware
	concealForeign bool
}

// NewHandler builds Handler instance. When concealForeign is set, ownership
// denials are reported as a missing todo.
func NewHandler(logger *slog.Logger, service *Service, authz rbac.Middleware, concealForeign bool) *Handler {
	return &Handler{logger: logger, service: service, authz: authz, concealForeign: concealForeign}
}

// MountRoutes registers the todo routes. r must already be authenticated.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// MountAdminRoutes registers cross-user todo listings. The caller is
// responsible for the admin gate on r.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/todos", h.listAll)
	r.Get("/users/{userId}/todos", h.listByOwner)
}

type todoRequest struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Category    *string `json:"category" validate:"omitempty,max=50,oneof=Urgent Non-Urgent"`
	DueDate     *string `json:"dueDate" validate:"omitempty,iso8601"`
	Completed   *bool   `json:"completed"`
}

func (h *Handler) decode(r *http.Request) (todoRequest, error) {
	var req todoRequest
	err := httpx.DecodeValid(r, &req, todoMessages, func() {
		req.Title = strings.TrimSpace(req.Title)
		if req.Description != nil {
			d := strings.TrimSpace(*req.Description)
			req.Description = &d
		}
		if req.Category != nil {
			c := strings.TrimSpace(*req.Category)
			req.Category = &c
		}
	})
	return req, err
}

func (req todoRequest) changes() Changes {
	title := req.Title
	ch := Changes{Title: &title, Description: req.Description, Completed: req.Completed}
	if req.Category != nil && *req.Category != "" {
		c := Category(*req.Category)
		ch.Category = &c
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if due, err := shared.ParseDate(*req.DueDate); err == nil {
			ch.DueDate = &due
		}
	}
	return ch
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ch := req.changes()
	in := CreateInput{Title: req.Title, DueDate: ch.DueDate}
	if ch.Description != nil {
		in.Description = *ch.Description
	}
	if ch.Category != nil {
		in.Category = *ch.Category
	}
	if ch.Completed != nil {
		in.Completed = *ch.Completed
	}
	todo, err := h.service.Create(r.Context(), p, in)
	if err != nil {
		h.fail(w, r, "create todo failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, todo.View())
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var filter ListFilter
	if raw := q.Get("completed"); raw != "" {
		completed := raw == "true"
		filter.Completed = &completed
	}
	filter.Category = Category(q.Get("category"))
	filter.Search = q.Get("search")

	list, err := h.service.List(r.Context(), p, filter)
	if err != nil {
		h.fail(w, r, "list todos failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, Views(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	todo, err := h.service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get todo failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, todo.View())
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	todo, err := h.service.Update(r.Context(), p, chi.URLParam(r, "id"), req.changes())
	if err != nil {
		h.fail(w, r, "update todo failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, todo.View())
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete todo failed", err)
		return
	}
	httpx.Message(w, http.StatusOK, "Todo deleted successfully")
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, "list all todos failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, Views(list))
}

func (h *Handler) listByOwner(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByOwner(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.fail(w, r, "list user todos failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, Views(list))
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (rbac.Principal, bool) {
	p, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.Unauthenticated("missing principal", "Authentication required"))
	}
	return p, ok
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch shared.KindOf(err) {
	case shared.KindInternal:
		h.logger.Error(msg, slog.Any("error", err))
	case shared.KindForbidden:
		h.authz.Deny(r, err)
		if h.concealForeign {
			err = shared.NotFound(msgNotFound)
		}
	}
	httpx.RespondError(w, err)
}
