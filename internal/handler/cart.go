package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/middleware"
	"github.com/kiwari-pos/register/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartRegister defines the register methods needed by cart handlers.
// Satisfied by *service.Register; narrow interface for testability.
type CartRegister interface {
	Cart() service.CartView
	AddToCart(productID int64) (service.CartView, error)
	SetCartQuantity(productID int64, q int) (service.CartView, error)
	SetCartDiscount(productID int64, percent decimal.Decimal) (service.CartView, error)
	RemoveFromCart(productID int64) service.CartView
	ClearCart() service.CartView
	PaymentPayload() (string, error)
	Checkout(ctx context.Context, cashier *domain.Identity) (domain.CompletedOrder, error)
}

// CartHandler handles the order being built at the register.
type CartHandler struct {
	reg CartRegister
	log *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(reg CartRegister, log *zap.Logger) *CartHandler {
	return &CartHandler{reg: reg, log: log}
}

// RegisterRoutes registers cart endpoints. Expected to be mounted at /cart
// behind authentication.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Put("/items/{pid}", h.SetQuantity)
	r.Put("/items/{pid}/discount", h.SetDiscount)
	r.Delete("/items/{pid}", h.RemoveItem)
	r.Get("/payment", h.Payment)
	r.Post("/checkout", h.Checkout)
}

// --- Request types ---

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type discountRequest struct {
	Discount *decimal.Decimal `json:"discount"`
}

// --- Handlers ---

// Get returns the cart with its totals.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.Cart())
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.ClearCart())
}

// AddItem adds one unit of a product.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cart, err := h.reg.AddToCart(req.ProductID)
	if err != nil {
		writeError(w, h.log, "add to cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// SetQuantity sets a line's quantity; zero or less removes it.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	pid, ok := idParam(w, r, "pid")
	if !ok {
		return
	}
	var req quantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity is required"})
		return
	}
	cart, err := h.reg.SetCartQuantity(pid, *req.Quantity)
	if err != nil {
		writeError(w, h.log, "set cart quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// SetDiscount sets a line's discount percentage.
func (h *CartHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	pid, ok := idParam(w, r, "pid")
	if !ok {
		return
	}
	var req discountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Discount == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "discount is required"})
		return
	}
	cart, err := h.reg.SetCartDiscount(pid, *req.Discount)
	if err != nil {
		writeError(w, h.log, "set cart discount", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem deletes a line from the cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	pid, ok := idParam(w, r, "pid")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.reg.RemoveFromCart(pid))
}

// Payment returns the simulated payment QR payload for the cart total.
func (h *CartHandler) Payment(w http.ResponseWriter, r *http.Request) {
	payload, err := h.reg.PaymentPayload()
	if err != nil {
		writeError(w, h.log, "payment payload", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payload": payload})
}

// Checkout settles the cart as a sale by the logged-in user.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.reg.Checkout(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, h.log, "checkout", err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}
