package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var groupPrinter = message.NewPrinter(language.English)

// FormatCurrency renders amount rounded to the minor unit, e.g. "$10.53".
func FormatCurrency(amount decimal.Decimal, symbol string) string {
	return symbol + amount.StringFixed(2)
}

// FormatSecondary renders a converted amount as a whole number with
// thousands separators, e.g. "៛ 43,173".
func FormatSecondary(amount decimal.Decimal, symbol string) string {
	return symbol + " " + groupPrinter.Sprintf("%d", amount.Round(0).IntPart())
}

// Convert returns amount in the secondary currency, or false when no
// exchange rate is configured.
func Convert(amount decimal.Decimal, rate decimal.NullDecimal) (decimal.Decimal, bool) {
	if !rate.Valid {
		return decimal.Zero, false
	}
	return amount.Mul(rate.Decimal), true
}
