package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRegister defines the register methods needed by product handlers.
// Satisfied by *service.Register; narrow interface for testability.
type ProductRegister interface {
	Products(category string) []domain.Product
	Product(id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in service.ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	DescribeProduct(ctx context.Context, name string) string
}

// ProductHandler handles the catalog endpoints.
type ProductHandler struct {
	reg ProductRegister
	log *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(reg ProductRegister, log *zap.Logger) *ProductHandler {
	return &ProductHandler{reg: reg, log: log}
}

// RegisterRoutes registers the read-only catalog endpoints.
// Expected to be mounted at /products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterManageRoutes registers the catalog editing endpoints. The caller
// is responsible for role gating.
func (h *ProductHandler) RegisterManageRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Post("/describe", h.Describe)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type productRequest struct {
	Name        string              `json:"name"`
	Price       decimal.Decimal     `json:"price"`
	Category    string              `json:"category"`
	ImageURL    string              `json:"image_url"`
	Description string              `json:"description"`
	Discount    decimal.NullDecimal `json:"discount"`
	Stock       int                 `json:"stock"`
}

func (req productRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Discount:    req.Discount,
		Stock:       req.Stock,
	}
}

type describeRequest struct {
	Name string `json:"name"`
}

// --- Handlers ---

// List returns the catalog, optionally filtered by ?category=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.Products(r.URL.Query().Get("category")))
}

// Get returns a single product.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.reg.Product(id)
	if err != nil {
		writeError(w, h.log, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create adds a product to the catalog.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.reg.CreateProduct(r.Context(), req.input())
	if err != nil {
		writeError(w, h.log, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update replaces a product's fields.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.reg.UpdateProduct(r.Context(), id, req.input())
	if err != nil {
		writeError(w, h.log, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete removes a product from the catalog.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.reg.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, h.log, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Describe generates a marketing description for a product name. The
// result is always 200; generation problems come back as the text.
func (h *ProductHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"description": h.reg.DescribeProduct(r.Context(), name)})
}
