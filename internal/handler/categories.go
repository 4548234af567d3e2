package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryRegister defines the register methods needed by category handlers.
// Satisfied by *service.Register; narrow interface for testability.
type CategoryRegister interface {
	Categories() []string
	AddCategory(ctx context.Context, name string) ([]string, error)
	RenameCategory(ctx context.Context, from, to string) ([]string, error)
	DeleteCategory(ctx context.Context, name string) ([]string, error)
}

// CategoryHandler handles category endpoints. Categories are identified by
// name.
type CategoryHandler struct {
	reg CategoryRegister
	log *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(reg CategoryRegister, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{reg: reg, log: log}
}

// RegisterRoutes registers the category listing. Expected to be mounted at
// /categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// RegisterManageRoutes registers the category editing endpoints.
func (h *CategoryHandler) RegisterManageRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{name}", h.Rename)
	r.Delete("/{name}", h.Delete)
}

type categoryRequest struct {
	Name string `json:"name"`
}

// List returns the category names in display order.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.Categories())
}

// Create appends a category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cats, err := h.reg.AddCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, h.log, "add category", err)
		return
	}
	writeJSON(w, http.StatusCreated, cats)
}

// Rename renames a category and moves its products along.
func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	from, ok := nameParam(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cats, err := h.reg.RenameCategory(r.Context(), from, req.Name)
	if err != nil {
		writeError(w, h.log, "rename category", err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// Delete removes a category no product uses.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}
	cats, err := h.reg.DeleteCategory(r.Context(), name)
	if err != nil {
		writeError(w, h.log, "delete category", err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func nameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category name"})
		return "", false
	}
	return name, true
}
