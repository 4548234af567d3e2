package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/service"
	"go.uber.org/zap"
)

// OrderRegister defines the register methods needed by order handlers.
// Satisfied by *service.Register; narrow interface for testability.
type OrderRegister interface {
	Orders(status string) []domain.CompletedOrder
	Order(id string) (domain.CompletedOrder, error)
	Receipt(id string) (service.Receipt, error)
	Refund(ctx context.Context, id string) (domain.CompletedOrder, error)
}

// OrderHandler handles sales history endpoints.
type OrderHandler struct {
	reg OrderRegister
	log *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(reg OrderRegister, log *zap.Logger) *OrderHandler {
	return &OrderHandler{reg: reg, log: log}
}

// RegisterRoutes registers the read-only history endpoints.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/receipt", h.Receipt)
}

// RegisterManageRoutes registers the refund endpoint.
func (h *OrderHandler) RegisterManageRoutes(r chi.Router) {
	r.Post("/{id}/refund", h.Refund)
}

// List returns completed orders, newest first, optionally filtered by
// ?status=completed|refunded and searched by ?q= (order id or cashier).
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != enum.OrderStatusCompleted && status != enum.OrderStatusRefunded {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
		return
	}
	writeJSON(w, http.StatusOK, service.MatchOrders(h.reg.Orders(status), r.URL.Query().Get("q")))
}

// Get returns one order.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.reg.Order(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Receipt returns the formatted receipt for an order.
func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	rc, err := h.reg.Receipt(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, "receipt", err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

// Refund reverses a completed sale and restores its stock.
func (h *OrderHandler) Refund(w http.ResponseWriter, r *http.Request) {
	o, err := h.reg.Refund(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, "refund", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
