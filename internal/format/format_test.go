package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/infinite-doughmain/ordering/internal/domain"
)

func TestCurrency(t *testing.T) {
	p := NewPrinter(language.AmericanEnglish)
	assert.Equal(t, "$15.99", p.Currency(decimal.RequireFromString("15.99")))
	assert.Equal(t, "$1,234.50", p.Currency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$0.00", p.Currency(decimal.Zero))
	assert.Equal(t, "-$2.49", p.Currency(decimal.RequireFromString("-2.49")))

	assert.Equal(t, "$0.00", p.Currency(decimal.RequireFromString("-0.004")))
	assert.Equal(t, "$2.50", p.Currency(decimal.RequireFromString("2.495")))
	assert.Equal(t, "-$2.50", p.Currency(decimal.RequireFromString("-2.495")))

	de := NewPrinter(language.German)
	assert.Equal(t, "$1.234,50", de.Currency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$999,00", de.Currency(decimal.RequireFromString("999")))
}

func TestCurrencyKeepsExactDigitsForLargeAmounts(t *testing.T) {
	p := NewPrinter(language.AmericanEnglish)
	amount := decimal.RequireFromString("12345678901234567890.125")
	assert.Equal(t, "$12,345,678,901,234,567,890.13", p.Currency(amount))
	assert.Equal(t, "$9,007,199,254,740,993.01", p.Currency(decimal.RequireFromString("9007199254740993.01")))
}

func TestOrderLines(t *testing.T) {
	p := NewPrinter(language.Und)
	assert.Equal(t, []string{EmptyOrderLine}, p.OrderLines(domain.Order{}))

	order := domain.Order{Items: []domain.OrderItem{
		{Description: "Large Hand-Tossed Pizza", UnitPrice: decimal.RequireFromString("15.99"), Quantity: 1},
		{Description: "Medium (20oz) Sprite", UnitPrice: decimal.RequireFromString("2.99"), Quantity: 3},
	}}
	assert.Equal(t, []string{
		"1. Large Hand-Tossed Pizza x1 - $15.99",
		"2. Medium (20oz) Sprite x3 - $8.97",
	}, p.OrderLines(order))
	assert.Equal(t, "Total: $24.96", p.RunningTotal(order))
	assert.Equal(t, "Total: $0.00", p.RunningTotal(domain.Order{}))
}
