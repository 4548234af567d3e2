package service

import (
	"fmt"
	"time"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/shopspring/decimal"
)

// ReceiptLine is one printed line of a receipt.
type ReceiptLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Amount   string `json:"amount"`
}

// Receipt is a completed order rendered for printing.
type Receipt struct {
	OrderID        string        `json:"order_id"`
	StoreLogoURL   string        `json:"store_logo_url"`
	StoreAddress   string        `json:"store_address"`
	Date           time.Time     `json:"date"`
	CashierName    string        `json:"cashier_name"`
	Status         string        `json:"status"`
	Lines          []ReceiptLine `json:"lines"`
	Subtotal       string        `json:"subtotal"`
	Discount       string        `json:"discount,omitempty"`
	Tax            string        `json:"tax"`
	Total          string        `json:"total"`
	SecondaryTotal string        `json:"secondary_total,omitempty"`
	Message        string        `json:"message,omitempty"`
}

// BuildReceipt renders o with the store details from s. The secondary total
// uses the exchange rate captured on the order at settlement.
func BuildReceipt(o domain.CompletedOrder, s domain.SystemSettings) Receipt {
	sym := s.CurrencySymbol
	r := Receipt{
		OrderID:      o.ID,
		StoreLogoURL: s.StoreLogoURL,
		StoreAddress: s.StoreAddress,
		Date:         o.Date,
		CashierName:  o.CashierName,
		Status:       o.Status,
		Lines:        make([]ReceiptLine, 0, len(o.Items)),
		Subtotal:     domain.FormatCurrency(o.Subtotal, sym),
		Tax:          domain.FormatCurrency(o.Tax, sym),
		Total:        domain.FormatCurrency(o.Total, sym),
		Message:      s.ReceiptMessage,
	}
	for _, it := range o.Items {
		r.Lines = append(r.Lines, ReceiptLine{
			Name:     it.Product.Name,
			Quantity: it.Quantity,
			Amount:   domain.FormatCurrency(it.LineTotal(), sym),
		})
	}
	if o.DiscountTotal.IsPositive() {
		r.Discount = "-" + domain.FormatCurrency(o.DiscountTotal, sym)
	}
	if o.SecondaryCurrencySymbol != "" {
		if amt, ok := domain.Convert(o.Total, o.ExchangeRate); ok && o.ExchangeRate.Decimal.IsPositive() {
			r.SecondaryTotal = "≈ " + domain.FormatSecondary(amt, o.SecondaryCurrencySymbol)
		}
	}
	return r
}

// PaymentPayload is the string encoded into the simulated payment QR code.
func PaymentPayload(total decimal.Decimal, now time.Time) string {
	return fmt.Sprintf("bakong-payment-total-%s-%d", total.StringFixed(2), now.UnixMilli())
}
