package service

import (
	"testing"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPrice_Scenario(t *testing.T) {
	lines := []domain.OrderLine{
		{Product: product(1, "3.75", 10), Quantity: 2, Discount: d("0")},
		{Product: product(2, "2.50", 10), Quantity: 1, Discount: d("10")},
	}

	got := Price(lines, d("0.08"))

	assert.True(t, got.Subtotal.Equal(d("10.00")), "subtotal %s", got.Subtotal)
	assert.True(t, got.DiscountTotal.Equal(d("0.25")), "discount %s", got.DiscountTotal)
	assert.True(t, got.Tax.Equal(d("0.78")), "tax %s", got.Tax)
	assert.True(t, got.Total.Equal(d("10.53")), "total %s", got.Total)
	assert.Equal(t, "10.53", got.Total.StringFixed(2))
}

func TestPrice_Identities(t *testing.T) {
	cases := [][]domain.OrderLine{
		nil,
		{{Product: product(1, "0.99", 9), Quantity: 3, Discount: d("33.3")}},
		{
			{Product: product(1, "7.50", 9), Quantity: 7, Discount: d("12.5")},
			{Product: product(2, "15.00", 9), Quantity: 1, Discount: d("100")},
			{Product: product(3, "2.75", 9), Quantity: 4, Discount: d("0")},
		},
	}
	for _, rate := range []string{"0", "0.08", "0.125", "1"} {
		for _, lines := range cases {
			got := Price(lines, d(rate))
			taxable := got.Subtotal.Sub(got.DiscountTotal)
			assert.True(t, taxable.Add(got.Tax).Equal(got.Total))
			assert.True(t, taxable.Mul(d(rate)).Equal(got.Tax))
		}
	}
}

func TestPrice_EmptyIsZero(t *testing.T) {
	got := Price(nil, d("0.08"))
	assert.True(t, got.Total.IsZero())
	assert.True(t, got.Subtotal.IsZero())
}
