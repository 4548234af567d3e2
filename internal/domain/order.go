package domain

import (
	"time"

	"github.com/kiwari-pos/register/internal/enum"
	"github.com/shopspring/decimal"
)

// CompletedOrder is a settled sale. Only Status changes after creation.
type CompletedOrder struct {
	ID                      string              `json:"id"`
	Items                   []OrderLine         `json:"items"`
	Subtotal                decimal.Decimal     `json:"subtotal"`
	DiscountTotal           decimal.Decimal     `json:"discount_total"`
	Tax                     decimal.Decimal     `json:"tax"`
	Total                   decimal.Decimal     `json:"total"`
	Date                    time.Time           `json:"date"`
	Status                  string              `json:"status"`
	CashierName             string              `json:"cashier_name"`
	ExchangeRate            decimal.NullDecimal `json:"exchange_rate"`
	SecondaryCurrencySymbol string              `json:"secondary_currency_symbol,omitempty"`
}

// ItemCount is the number of units across all lines.
func (o CompletedOrder) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

var validNext = map[string]map[string]bool{
	enum.OrderStatusCompleted: {enum.OrderStatusRefunded: true},
	enum.OrderStatusRefunded:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	return validNext[from][to]
}
