package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Product is a catalog entry. Discount is the optional default discount
// percentage copied onto a new order line.
type Product struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Price       decimal.Decimal     `json:"price"`
	Category    string              `json:"category"`
	ImageURL    string              `json:"image_url"`
	Description string              `json:"description,omitempty"`
	Discount    decimal.NullDecimal `json:"discount"`
	Stock       int                 `json:"stock"`
}

// DefaultDiscount returns the product's default discount, zero when absent.
func (p Product) DefaultDiscount() decimal.Decimal {
	if p.Discount.Valid {
		return p.Discount.Decimal
	}
	return decimal.Zero
}

// OrderLine is one product in a cart or completed order. Product is a
// snapshot taken when the line was created.
type OrderLine struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Discount decimal.Decimal `json:"discount"`
}

// LineTotal is price * quantity.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DiscountAmount is LineTotal * discount / 100.
func (l OrderLine) DiscountAmount() decimal.Decimal {
	return l.LineTotal().Mul(l.Discount).Div(hundred)
}

// NetTotal is the line total after its discount.
func (l OrderLine) NetTotal() decimal.Decimal {
	return l.LineTotal().Sub(l.DiscountAmount())
}

// ValidPercent reports whether d lies within 0–100 inclusive.
func ValidPercent(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}
