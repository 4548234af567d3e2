package service

import (
	"fmt"
	"strings"

	"github.com/kiwari-pos/register/internal/domain"
)

// History is the ledger of settled orders, most recent first. Orders are
// never removed; only their status changes.
type History struct {
	orders []domain.CompletedOrder
}

// NewHistory returns a history holding a copy of orders (most recent first).
func NewHistory(orders []domain.CompletedOrder) *History {
	return &History{orders: append([]domain.CompletedOrder(nil), orders...)}
}

// Prepend records o as the most recent order.
func (h *History) Prepend(o domain.CompletedOrder) {
	h.orders = append([]domain.CompletedOrder{o}, h.orders...)
}

// Get returns the order with id.
func (h *History) Get(id string) (domain.CompletedOrder, error) {
	i := h.index(id)
	if i < 0 {
		return domain.CompletedOrder{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return h.orders[i], nil
}

// List returns orders with status, or every order when status is empty.
func (h *History) List(status string) []domain.CompletedOrder {
	out := make([]domain.CompletedOrder, 0, len(h.orders))
	for _, o := range h.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// MatchOrders keeps the orders whose id or cashier name contains term,
// ignoring case. An empty term keeps everything.
func MatchOrders(orders []domain.CompletedOrder, term string) []domain.CompletedOrder {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return orders
	}
	out := make([]domain.CompletedOrder, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.ID), term) || strings.Contains(strings.ToLower(o.CashierName), term) {
			out = append(out, o)
		}
	}
	return out
}

// Snapshot returns a copy of every order for persistence.
func (h *History) Snapshot() []domain.CompletedOrder {
	return append([]domain.CompletedOrder(nil), h.orders...)
}

func (h *History) setStatus(id, status string) {
	if i := h.index(id); i >= 0 {
		h.orders[i].Status = status
	}
}

func (h *History) index(id string) int {
	for i, o := range h.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
