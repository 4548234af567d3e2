package service

import (
	"testing"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func settledOrder(t *testing.T, catalog *Catalog, history *History, lines []domain.OrderLine) domain.CompletedOrder {
	t.Helper()
	order, err := NewSettler(catalog, history, zap.NewNop()).Settle(lines, Price(lines, d("0.08")), cashier, domain.DefaultSettings())
	require.NoError(t, err)
	return order
}

func TestRefund_RestoresExactQuantities(t *testing.T) {
	catalog := NewCatalog([]domain.Product{product(1, "1.00", 10), product(2, "2.00", 10)})
	history := NewHistory(nil)
	order := settledOrder(t, catalog, history, []domain.OrderLine{
		{Product: product(2, "2.00", 10), Quantity: 3, Discount: d("0")},
	})

	// Stock moves between sale and refund.
	catalog.decrement(2, 4)
	before, _ := catalog.Stock(2)

	refunded, err := NewRefunder(catalog, history, zap.NewNop()).Refund(order.ID)
	require.NoError(t, err)

	after, _ := catalog.Stock(2)
	assert.Equal(t, before+3, after)
	assert.Equal(t, enum.OrderStatusRefunded, refunded.Status)
	assert.True(t, refunded.Total.Equal(order.Total), "priced fields stay as charged")

	stored, _ := history.Get(order.ID)
	assert.Equal(t, enum.OrderStatusRefunded, stored.Status)
}

func TestRefund_SecondAttemptFails(t *testing.T) {
	catalog := NewCatalog([]domain.Product{product(1, "1.00", 10)})
	history := NewHistory(nil)
	order := settledOrder(t, catalog, history, []domain.OrderLine{
		{Product: product(1, "1.00", 10), Quantity: 2, Discount: d("0")},
	})
	refunder := NewRefunder(catalog, history, zap.NewNop())

	_, err := refunder.Refund(order.ID)
	require.NoError(t, err)
	stockAfterFirst, _ := catalog.Stock(1)

	_, err = refunder.Refund(order.ID)
	assert.ErrorIs(t, err, ErrAlreadyRefunded)
	assert.True(t, IsIntegrity(err))

	stock, _ := catalog.Stock(1)
	assert.Equal(t, stockAfterFirst, stock)
	stored, _ := history.Get(order.ID)
	assert.Equal(t, enum.OrderStatusRefunded, stored.Status)
}

func TestRefund_UnknownOrder(t *testing.T) {
	_, err := NewRefunder(NewCatalog(nil), NewHistory(nil), zap.NewNop()).Refund("ORD-404")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.True(t, IsNotFound(err))
}

func TestRefund_SkipsDeletedProducts(t *testing.T) {
	catalog := NewCatalog([]domain.Product{product(1, "1.00", 10), product(2, "2.00", 10)})
	history := NewHistory(nil)
	order := settledOrder(t, catalog, history, []domain.OrderLine{
		{Product: product(1, "1.00", 10), Quantity: 1, Discount: d("0")},
		{Product: product(2, "2.00", 10), Quantity: 2, Discount: d("0")},
	})
	require.NoError(t, catalog.Delete(2))

	_, err := NewRefunder(catalog, history, zap.NewNop()).Refund(order.ID)
	require.NoError(t, err)

	stock, _ := catalog.Stock(1)
	assert.Equal(t, 10, stock)
	_, err = catalog.Get(2)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestHistory_ListByStatus(t *testing.T) {
	h := NewHistory([]domain.CompletedOrder{
		{ID: "b", Status: enum.OrderStatusRefunded},
		{ID: "a", Status: enum.OrderStatusCompleted},
	})

	assert.Len(t, h.List(""), 2)
	completed := h.List(enum.OrderStatusCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "a", completed[0].ID)

	h.Prepend(domain.CompletedOrder{ID: "c", Status: enum.OrderStatusCompleted})
	assert.Equal(t, "c", h.List("")[0].ID)
}

func TestMatchOrders(t *testing.T) {
	orders := []domain.CompletedOrder{
		{ID: "ORD-1700000000000-ab12cd34", CashierName: "Jessica"},
		{ID: "ORD-1700000000001-ffee0011", CashierName: "Michael"},
	}

	assert.Len(t, MatchOrders(orders, ""), 2)
	assert.Len(t, MatchOrders(orders, "  "), 2)

	byCashier := MatchOrders(orders, "MICH")
	require.Len(t, byCashier, 1)
	assert.Equal(t, "Michael", byCashier[0].CashierName)

	byID := MatchOrders(orders, "ab12")
	require.Len(t, byID, 1)
	assert.Equal(t, "Jessica", byID[0].CashierName)

	assert.Empty(t, MatchOrders(orders, "susan"))
}

func TestRefund_DoesNotRestockReplacementProduct(t *testing.T) {
	catalog := NewCatalog(DefaultProducts())
	history := NewHistory(nil)
	tumbler, err := catalog.Get(7)
	require.NoError(t, err)
	order := settledOrder(t, catalog, history, []domain.OrderLine{
		{Product: tumbler, Quantity: 1, Discount: d("10")},
	})

	require.NoError(t, catalog.Delete(7))
	bagel, err := catalog.Create(ProductInput{Name: "Bagel", Price: d("2.25"), Category: "Pastries", Stock: 5}, domain.DefaultSettings())
	require.NoError(t, err)
	require.NotEqual(t, tumbler.ID, bagel.ID)

	_, err = NewRefunder(catalog, history, zap.NewNop()).Refund(order.ID)
	require.NoError(t, err)

	stock, err := catalog.Stock(bagel.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)
}
