package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskpad/taskpad-go/internal/apperr"
	"github.com/taskpad/taskpad-go/internal/middleware"
	"github.com/taskpad/taskpad-go/internal/model"
	"github.com/taskpad/taskpad-go/internal/service"
)

// TodoHandler handles HTTP requests for todo operations. All routes sit
// behind the auth gate, so a missing principal is a wiring bug surfaced as
// an internal error rather than a 401.
type TodoHandler struct {
	service *service.TodoService
	respond *Responder
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, respond *Responder) *TodoHandler {
	return &TodoHandler{service: svc, respond: respond}
}

// HandleList handles GET /api/todos.
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, r, errors.New("missing principal on protected route"))
		return
	}

	todos, err := h.service.List(r.Context(), p.UserID)
	if err != nil {
		h.respond.Error(w, r, translateTodoError(err))
		return
	}

	h.respond.JSON(w, http.StatusOK, "", todos)
}

// HandleCreate handles POST /api/todos.
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, r, errors.New("missing principal on protected route"))
		return
	}

	var req model.CreateTodoRequest
	if !decodeBody(w, r, h.respond, &req) {
		return
	}

	todo, err := h.service.Create(r.Context(), p.UserID, req)
	if err != nil {
		h.respond.Error(w, r, translateTodoError(err))
		return
	}

	h.respond.JSON(w, http.StatusCreated, "Todo created successfully", todo)
}

// HandleUpdate handles PUT /api/todos/{id}.
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, r, errors.New("missing principal on protected route"))
		return
	}

	var req model.UpdateTodoRequest
	if !decodeBody(w, r, h.respond, &req) {
		return
	}

	todo, err := h.service.Update(r.Context(), p.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.respond.Error(w, r, translateTodoError(err))
		return
	}

	h.respond.JSON(w, http.StatusOK, "Todo updated successfully", todo)
}

// HandleDelete handles DELETE /api/todos/{id}.
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, r, errors.New("missing principal on protected route"))
		return
	}

	if err := h.service.Delete(r.Context(), p.UserID, chi.URLParam(r, "id")); err != nil {
		h.respond.Error(w, r, translateTodoError(err))
		return
	}

	h.respond.JSON(w, http.StatusOK, "Todo deleted successfully", nil)
}

// HandleToggle handles PATCH /api/todos/{id}/toggle.
func (h *TodoHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, r, errors.New("missing principal on protected route"))
		return
	}

	todo, err := h.service.Toggle(r.Context(), p.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, r, translateTodoError(err))
		return
	}

	h.respond.JSON(w, http.StatusOK, "Todo status updated successfully", todo)
}

// translateTodoError maps service sentinels to response kinds.
func translateTodoError(err error) error {
	switch {
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrTitleTooLong),
		errors.Is(err, service.ErrDescriptionTooLong):
		return apperr.Validation(err.Error())
	case errors.Is(err, service.ErrInvalidTodoID):
		return apperr.Validation("Invalid todo ID")
	case errors.Is(err, service.ErrTodoNotFound):
		return apperr.NotFound("Todo not found")
	default:
		return err
	}
}
