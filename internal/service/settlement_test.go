package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSettlerFixture(products ...domain.Product) (*Catalog, *History, *Cart, *Settler) {
	catalog := NewCatalog(products)
	history := NewHistory(nil)
	return catalog, history, NewCart(catalog), NewSettler(catalog, history, zap.NewNop())
}

func TestSettle_DecrementsStockAndRecordsOrder(t *testing.T) {
	catalog, history, cart, settler := newSettlerFixture(product(1, "3.50", 2))
	p, _ := catalog.Get(1)
	require.NoError(t, cart.Add(p))
	require.NoError(t, cart.Add(p))

	lines := cart.Lines()
	order, err := settler.Settle(lines, Price(lines, d("0.08")), cashier, domain.DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, enum.OrderStatusCompleted, order.Status)
	assert.Equal(t, "Jessica", order.CashierName)
	assert.True(t, order.Total.Equal(d("7.56")))
	assert.True(t, order.ExchangeRate.Valid)
	assert.Equal(t, "៛", order.SecondaryCurrencySymbol)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-[0-9a-f]{8}$`), order.ID)

	stock, _ := catalog.Stock(1)
	assert.Equal(t, 0, stock)

	// The settler leaves the cart alone.
	assert.Len(t, cart.Lines(), 1)
	assert.Equal(t, 2, cart.Quantity(1))

	// Sold out: the next add is rejected.
	assert.ErrorIs(t, cart.Add(p), ErrOutOfStock)

	got, err := history.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestSettle_ClampsOversell(t *testing.T) {
	catalog, _, _, settler := newSettlerFixture(product(1, "1.00", 1))
	lines := []domain.OrderLine{{Product: product(1, "1.00", 1), Quantity: 3, Discount: d("0")}}

	_, err := settler.Settle(lines, Price(lines, d("0")), cashier, domain.DefaultSettings())
	require.NoError(t, err)

	stock, _ := catalog.Stock(1)
	assert.Equal(t, 0, stock)
}

func TestSettle_SkipsDeletedProduct(t *testing.T) {
	catalog, history, _, settler := newSettlerFixture(product(1, "1.00", 5))
	lines := []domain.OrderLine{
		{Product: product(1, "1.00", 5), Quantity: 1, Discount: d("0")},
		{Product: product(2, "1.00", 5), Quantity: 1, Discount: d("0")},
	}

	_, err := settler.Settle(lines, Price(lines, d("0")), cashier, domain.DefaultSettings())
	require.NoError(t, err)

	stock, _ := catalog.Stock(1)
	assert.Equal(t, 4, stock)
	assert.Len(t, history.List(""), 1)
}

func TestSettle_Rejections(t *testing.T) {
	catalog, history, _, settler := newSettlerFixture(product(1, "1.00", 5))
	lines := []domain.OrderLine{{Product: product(1, "1.00", 5), Quantity: 1, Discount: d("0")}}
	totals := Price(lines, d("0"))

	_, err := settler.Settle(lines, totals, nil, domain.DefaultSettings())
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.True(t, IsIntegrity(err))

	_, err = settler.Settle(nil, Totals{}, cashier, domain.DefaultSettings())
	assert.ErrorIs(t, err, ErrEmptyCart)

	stock, _ := catalog.Stock(1)
	assert.Equal(t, 5, stock)
	assert.Empty(t, history.List(""))
}

func TestSettle_NoSecondaryCurrencyWithoutRate(t *testing.T) {
	_, _, _, settler := newSettlerFixture(product(1, "1.00", 5))
	settings := domain.DefaultSettings()
	settings.ExchangeRate.Valid = false
	lines := []domain.OrderLine{{Product: product(1, "1.00", 5), Quantity: 1, Discount: d("0")}}

	order, err := settler.Settle(lines, Price(lines, settings.TaxRate), cashier, settings)
	require.NoError(t, err)
	assert.False(t, order.ExchangeRate.Valid)
	assert.Empty(t, order.SecondaryCurrencySymbol)
}

func TestSettle_MostRecentFirst(t *testing.T) {
	_, history, _, settler := newSettlerFixture(product(1, "1.00", 5))
	lines := []domain.OrderLine{{Product: product(1, "1.00", 5), Quantity: 1, Discount: d("0")}}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	settler.now = func() time.Time { return base }
	first, err := settler.Settle(lines, Price(lines, d("0")), cashier, domain.DefaultSettings())
	require.NoError(t, err)
	settler.now = func() time.Time { return base.Add(time.Minute) }
	second, err := settler.Settle(lines, Price(lines, d("0")), cashier, domain.DefaultSettings())
	require.NoError(t, err)

	all := history.List("")
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
}
