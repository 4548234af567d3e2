package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/service"
	"go.uber.org/zap"
)

// UserRegister defines the register methods needed by user handlers.
// Satisfied by *service.Register; narrow interface for testability.
type UserRegister interface {
	Users() []domain.User
	AddUser(ctx context.Context, in service.UserInput) (domain.User, error)
	UpdateUser(ctx context.Context, id int64, in service.UserInput) (domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserHandler handles employee management endpoints.
type UserHandler struct {
	reg UserRegister
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(reg UserRegister, log *zap.Logger) *UserHandler {
	return &UserHandler{reg: reg, log: log}
}

// RegisterRoutes registers user CRUD endpoints on the given Chi router.
// Expected to be mounted at /users behind manager-only gating.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type userRequest struct {
	Name string `json:"name"`
	Pin  string `json:"pin"`
	Role string `json:"role"`
}

func (req userRequest) input() service.UserInput {
	return service.UserInput{Name: req.Name, PIN: req.Pin, Role: req.Role}
}

// --- Handlers ---

// List returns every user without PIN hashes.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users := h.reg.Users()
	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a user. A PIN is required.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := h.reg.AddUser(r.Context(), req.input())
	if err != nil {
		writeError(w, h.log, "add user", err)
		return
	}
	h.log.Info("user added", zap.Int64("user_id", u.ID), zap.String("role", u.Role))
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Update changes a user. An empty PIN keeps the current one.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := h.reg.UpdateUser(r.Context(), id, req.input())
	if err != nil {
		writeError(w, h.log, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Delete removes a user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.reg.DeleteUser(r.Context(), id); err != nil {
		writeError(w, h.log, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
