package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"go.uber.org/zap"
)

// Settler turns priced cart lines into a completed order and takes the
// sold quantities out of the catalog.
type Settler struct {
	catalog *Catalog
	history *History
	log     *zap.Logger
	now     func() time.Time
}

// NewSettler creates a Settler writing to catalog and history.
func NewSettler(catalog *Catalog, history *History, log *zap.Logger) *Settler {
	return &Settler{catalog: catalog, history: history, log: log, now: time.Now}
}

// Settle records a completed order for lines priced as totals and
// attributed to cashier. The cart is not touched; callers clear it.
func (s *Settler) Settle(lines []domain.OrderLine, totals Totals, cashier *domain.Identity, settings domain.SystemSettings) (domain.CompletedOrder, error) {
	if cashier == nil || cashier.Name == "" {
		return domain.CompletedOrder{}, ErrNoIdentity
	}
	if len(lines) == 0 {
		return domain.CompletedOrder{}, ErrEmptyCart
	}

	now := s.now()
	order := domain.CompletedOrder{
		ID:            newOrderID(now),
		Items:         append([]domain.OrderLine(nil), lines...),
		Subtotal:      totals.Subtotal,
		DiscountTotal: totals.DiscountTotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Date:          now,
		Status:        enum.OrderStatusCompleted,
		CashierName:   cashier.Name,
	}
	if settings.HasSecondaryCurrency() {
		order.ExchangeRate = settings.ExchangeRate
		order.SecondaryCurrencySymbol = settings.SecondaryCurrencySymbol
	}

	for _, l := range lines {
		short, ok := s.catalog.decrement(l.Product.ID, l.Quantity)
		if !ok {
			s.log.Warn("settled product no longer in catalog",
				zap.String("order_id", order.ID), zap.Int64("product_id", l.Product.ID))
			continue
		}
		if short > 0 {
			s.log.Warn("oversell clamped at zero stock",
				zap.String("order_id", order.ID),
				zap.Int64("product_id", l.Product.ID),
				zap.Int("shortfall", short))
		}
	}
	s.history.Prepend(order)
	return order, nil
}

// newOrderID returns ORD-<unix millis>-<8 random hex chars>. The random
// part keeps two sales in the same millisecond apart.
func newOrderID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%d-%s", t.UnixMilli(), suffix)
}
