package service

import (
	"fmt"
	"strings"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/shopspring/decimal"
)

// SettingsPatch carries the settings fields to change. Nil fields are left
// as they are. Categories are changed through the category operations.
type SettingsPatch struct {
	TaxRate                 *decimal.Decimal
	StoreLogoURL            *string
	StoreAddress            *string
	ReceiptMessage          *string
	CurrencySymbol          *string
	SecondaryCurrencySymbol *string
	ExchangeRate            *decimal.Decimal
	ClearExchangeRate       bool
}

// Settings owns the system settings and keeps product categories in step
// with the category list.
type Settings struct {
	current domain.SystemSettings
	catalog *Catalog
}

// NewSettings wraps s; catalog receives category renames.
func NewSettings(s domain.SystemSettings, catalog *Catalog) *Settings {
	return &Settings{current: s.Clone(), catalog: catalog}
}

// Current returns a copy of the settings.
func (s *Settings) Current() domain.SystemSettings { return s.current.Clone() }

// Apply validates the patched settings as a whole and commits them.
func (s *Settings) Apply(p SettingsPatch) (domain.SystemSettings, error) {
	next := s.current.Clone()
	if p.TaxRate != nil {
		next.TaxRate = *p.TaxRate
	}
	if p.StoreLogoURL != nil {
		next.StoreLogoURL = *p.StoreLogoURL
	}
	if p.StoreAddress != nil {
		next.StoreAddress = *p.StoreAddress
	}
	if p.ReceiptMessage != nil {
		next.ReceiptMessage = *p.ReceiptMessage
	}
	if p.CurrencySymbol != nil {
		next.CurrencySymbol = strings.TrimSpace(*p.CurrencySymbol)
	}
	if p.SecondaryCurrencySymbol != nil {
		next.SecondaryCurrencySymbol = strings.TrimSpace(*p.SecondaryCurrencySymbol)
	}
	switch {
	case p.ClearExchangeRate:
		next.ExchangeRate = decimal.NullDecimal{}
	case p.ExchangeRate != nil:
		next.ExchangeRate = decimal.NewNullDecimal(*p.ExchangeRate)
	}
	if err := next.Validate(); err != nil {
		return domain.SystemSettings{}, err
	}
	s.current = next
	return s.current.Clone(), nil
}

// AddCategory appends name to the category list.
func (s *Settings) AddCategory(name string) error {
	name, err := s.checkNewCategory(name, "")
	if err != nil {
		return err
	}
	s.current.Categories = append(s.current.Categories, name)
	return nil
}

// RenameCategory renames from to to in the list and on every product.
func (s *Settings) RenameCategory(from, to string) error {
	i := s.categoryIndex(from)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, from)
	}
	to, err := s.checkNewCategory(to, from)
	if err != nil {
		return err
	}
	s.current.Categories[i] = to
	s.catalog.renameCategory(from, to)
	return nil
}

// DeleteCategory removes name. Categories still used by a product cannot
// be deleted.
func (s *Settings) DeleteCategory(name string) error {
	i := s.categoryIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	if s.catalog.usesCategory(name) {
		return fmt.Errorf("%w: %q", ErrCategoryInUse, name)
	}
	cats := s.current.Categories
	s.current.Categories = append(cats[:i:i], cats[i+1:]...)
	return nil
}

// checkNewCategory trims name and rejects it when empty or when it equals
// (case-insensitively) an existing category other than except.
func (s *Settings) checkNewCategory(name, except string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyCategory
	}
	for _, c := range s.current.Categories {
		if c != except && strings.EqualFold(c, name) {
			return "", fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
		}
	}
	return name, nil
}

func (s *Settings) categoryIndex(name string) int {
	for i, c := range s.current.Categories {
		if c == name {
			return i
		}
	}
	return -1
}
