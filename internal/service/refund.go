package service

import (
	"fmt"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"go.uber.org/zap"
)

// Refunder reverses a completed order: stock goes back to the catalog and
// the order is marked refunded. Priced fields are left as charged.
type Refunder struct {
	catalog *Catalog
	history *History
	log     *zap.Logger
}

// NewRefunder creates a Refunder over catalog and history.
func NewRefunder(catalog *Catalog, history *History, log *zap.Logger) *Refunder {
	return &Refunder{catalog: catalog, history: history, log: log}
}

// Refund refunds order id. A second refund of the same order fails with
// ErrAlreadyRefunded and changes nothing.
func (r *Refunder) Refund(id string) (domain.CompletedOrder, error) {
	order, err := r.history.Get(id)
	if err != nil {
		return domain.CompletedOrder{}, err
	}
	if !domain.CanTransition(order.Status, enum.OrderStatusRefunded) {
		return domain.CompletedOrder{}, fmt.Errorf("%w: %s", ErrAlreadyRefunded, id)
	}

	for _, it := range order.Items {
		if !r.catalog.increment(it.Product.ID, it.Quantity) {
			r.log.Info("refund skipped restock for deleted product",
				zap.String("order_id", id), zap.Int64("product_id", it.Product.ID))
		}
	}
	r.history.setStatus(id, enum.OrderStatusRefunded)
	order.Status = enum.OrderStatusRefunded
	return order, nil
}
