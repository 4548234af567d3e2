package service

import (
	"github.com/kiwari-pos/register/internal/domain"
	"github.com/shopspring/decimal"
)

// Totals is the priced result of a set of order lines. Amounts are exact;
// rounding happens only when formatting for display.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// Price computes totals for lines at taxRate:
//
//	subtotal = Σ price*qty
//	discount = Σ price*qty*discount/100
//	tax      = (subtotal - discount) * taxRate
//	total    = subtotal - discount + tax
func Price(lines []domain.OrderLine, taxRate decimal.Decimal) Totals {
	subtotal, discount := decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
		discount = discount.Add(l.DiscountAmount())
	}
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRate)
	return Totals{
		Subtotal:      subtotal,
		DiscountTotal: discount,
		Tax:           tax,
		Total:         taxable.Add(tax),
	}
}
