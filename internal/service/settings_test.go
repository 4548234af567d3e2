package service

import (
	"testing"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsFixture() (*Settings, *Catalog) {
	catalog := NewCatalog(DefaultProducts())
	return NewSettings(domain.DefaultSettings(), catalog), catalog
}

func ptr[T any](v T) *T { return &v }

func TestSettings_Apply(t *testing.T) {
	s, _ := newSettingsFixture()

	got, err := s.Apply(SettingsPatch{
		TaxRate:        ptr(d("0.1")),
		ReceiptMessage: ptr("See you soon"),
		CurrencySymbol: ptr(" € "),
	})
	require.NoError(t, err)
	assert.True(t, got.TaxRate.Equal(d("0.1")))
	assert.Equal(t, "See you soon", got.ReceiptMessage)
	assert.Equal(t, "€", got.CurrencySymbol)
	assert.Equal(t, domain.DefaultSettings().StoreAddress, got.StoreAddress)
}

func TestSettings_ApplyRejectsWholePatch(t *testing.T) {
	s, _ := newSettingsFixture()
	before := s.Current()

	_, err := s.Apply(SettingsPatch{
		ReceiptMessage: ptr("changed"),
		TaxRate:        ptr(d("2")),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
	assert.True(t, IsValidation(err))
	assert.Equal(t, before, s.Current())
}

func TestSettings_ExchangeRate(t *testing.T) {
	s, _ := newSettingsFixture()

	got, err := s.Apply(SettingsPatch{ClearExchangeRate: true})
	require.NoError(t, err)
	assert.False(t, got.HasSecondaryCurrency())

	got, err = s.Apply(SettingsPatch{ExchangeRate: ptr(d("4000"))})
	require.NoError(t, err)
	assert.True(t, got.ExchangeRate.Decimal.Equal(d("4000")))

	_, err = s.Apply(SettingsPatch{ExchangeRate: ptr(d("-1"))})
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestSettings_AddCategory(t *testing.T) {
	s, _ := newSettingsFixture()

	require.NoError(t, s.AddCategory("  Tea "))
	assert.Equal(t, "Tea", s.Current().Categories[4])

	assert.ErrorIs(t, s.AddCategory("   "), ErrEmptyCategory)
	assert.ErrorIs(t, s.AddCategory("beverages"), ErrDuplicateCategory)
	assert.Len(t, s.Current().Categories, 5)
}

func TestSettings_RenameCategoryCascades(t *testing.T) {
	s, catalog := newSettingsFixture()

	require.NoError(t, s.RenameCategory("Pastries", "Bakery"))
	assert.Equal(t, []string{"Beverages", "Bakery", "Sandwiches", "Merchandise"}, s.Current().Categories)
	assert.Len(t, catalog.List("Bakery"), 2)
	assert.Empty(t, catalog.List("Pastries"))

	// Case-only rename of the same category is allowed.
	require.NoError(t, s.RenameCategory("Bakery", "BAKERY"))

	assert.ErrorIs(t, s.RenameCategory("Soup", "Stew"), ErrCategoryNotFound)
	assert.ErrorIs(t, s.RenameCategory("BAKERY", "beverages"), ErrDuplicateCategory)
	assert.ErrorIs(t, s.RenameCategory("BAKERY", ""), ErrEmptyCategory)
}

func TestSettings_DeleteCategory(t *testing.T) {
	s, catalog := newSettingsFixture()
	before := s.Current().Categories

	err := s.DeleteCategory("Beverages")
	assert.ErrorIs(t, err, ErrCategoryInUse)
	assert.True(t, IsIntegrity(err))
	assert.Equal(t, before, s.Current().Categories)

	assert.ErrorIs(t, s.DeleteCategory("Soup"), ErrCategoryNotFound)

	require.NoError(t, catalog.Delete(7))
	require.NoError(t, s.DeleteCategory("Merchandise"))
	assert.Equal(t, []string{"Beverages", "Pastries", "Sandwiches"}, s.Current().Categories)
}

func TestSettings_CurrentIsACopy(t *testing.T) {
	s, _ := newSettingsFixture()
	c := s.Current()
	c.Categories[0] = "Mutated"
	assert.Equal(t, "Beverages", s.Current().Categories[0])
}
