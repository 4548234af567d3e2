package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

const maxCurrencySymbolLen = 5

// SystemSettings holds register-wide configuration. ExchangeRate is
// 1 primary = X secondary; absent disables secondary-currency display.
type SystemSettings struct {
	TaxRate                 decimal.Decimal     `json:"tax_rate"`
	Categories              []string            `json:"categories"`
	StoreLogoURL            string              `json:"store_logo_url"`
	StoreAddress            string              `json:"store_address"`
	ReceiptMessage          string              `json:"receipt_message"`
	CurrencySymbol          string              `json:"currency_symbol"`
	SecondaryCurrencySymbol string              `json:"secondary_currency_symbol,omitempty"`
	ExchangeRate            decimal.NullDecimal `json:"exchange_rate"`
}

// DefaultSettings returns the built-in settings used when nothing is stored.
func DefaultSettings() SystemSettings {
	return SystemSettings{
		TaxRate:                 decimal.RequireFromString("0.08"),
		Categories:              []string{"Beverages", "Pastries", "Sandwiches", "Merchandise"},
		StoreLogoURL:            "https://www.gstatic.com/images/branding/googlelogo/svg/googlelogo_clr_74x24px.svg",
		StoreAddress:            "123 Gemini Way, Mountain View, CA 94043",
		ReceiptMessage:          "Thank you for your business!",
		CurrencySymbol:          "$",
		SecondaryCurrencySymbol: "៛",
		ExchangeRate:            decimal.NewNullDecimal(decimal.NewFromInt(4100)),
	}
}

// Clone returns a copy that shares no slices with s.
func (s SystemSettings) Clone() SystemSettings {
	s.Categories = append([]string(nil), s.Categories...)
	return s
}

// HasSecondaryCurrency reports whether converted totals should be shown.
func (s SystemSettings) HasSecondaryCurrency() bool {
	return s.ExchangeRate.Valid && s.SecondaryCurrencySymbol != ""
}

// HasCategory reports whether name is a known category (exact match).
func (s SystemSettings) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Validate checks every field of s.
func (s SystemSettings) Validate() error {
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: tax rate must be between 0 and 1", ErrInvalidSettings)
	}
	if s.CurrencySymbol == "" || len([]rune(s.CurrencySymbol)) > maxCurrencySymbolLen {
		return fmt.Errorf("%w: currency symbol must be 1-%d characters", ErrInvalidSettings, maxCurrencySymbolLen)
	}
	if len([]rune(s.SecondaryCurrencySymbol)) > maxCurrencySymbolLen {
		return fmt.Errorf("%w: secondary currency symbol must be at most %d characters", ErrInvalidSettings, maxCurrencySymbolLen)
	}
	if s.ExchangeRate.Valid && !s.ExchangeRate.Decimal.IsPositive() {
		return fmt.Errorf("%w: exchange rate must be positive", ErrInvalidSettings)
	}
	seen := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			return fmt.Errorf("%w: category name cannot be empty", ErrInvalidSettings)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidSettings, c)
		}
		seen[key] = true
	}
	return nil
}

// ParseSettings overrides the defaults with the fields present in raw.
// Unknown fields and values that fail validation are rejected.
func ParseSettings(raw []byte) (SystemSettings, error) {
	s := DefaultSettings()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return SystemSettings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return SystemSettings{}, err
	}
	return s, nil
}
