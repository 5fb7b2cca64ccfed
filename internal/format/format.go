package format

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/infinite-doughmain/ordering/internal/domain"
)

// EmptyOrderLine is shown in place of the item list when nothing has been added.
const EmptyOrderLine = "No items in order yet."

// Printer formats order data for staff screens using the locale's separators.
type Printer struct {
	p        *message.Printer
	group    string
	decimals string
}

// NewPrinter builds a printer for tag. The zero tag falls back to American English.
func NewPrinter(tag language.Tag) *Printer {
	if tag == language.Und {
		tag = language.AmericanEnglish
	}
	p := message.NewPrinter(tag)
	return &Printer{
		p:        p,
		group:    between(p.Sprintf("%d", 1000), "1", "000"),
		decimals: between(p.Sprintf("%.1f", 1.5), "1", "5"),
	}
}

// between returns what the locale printed between head and tail, e.g. "," in "1,000".
func between(s, head, tail string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, head), tail)
}

// Currency formats amount as dollars rounded half away from zero to cents. Digits come from
// the exact decimal; only the separators are localised, grouped in threes.
// Example: Currency(1234.5) => "$1,234.50" for en-US, "$1.234,50" for de-DE.
func (f *Printer) Currency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	whole, cents, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i := 0; i < len(whole); i++ {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteByte(whole[i])
	}
	decimals := f.decimals
	if utf8.RuneCountInString(decimals) != 1 {
		decimals = "."
	}
	b.WriteString(decimals)
	b.WriteString(cents)
	return b.String()
}

// OrderLines renders "1. {desc} x{qty} - {line total}" per item.
func (f *Printer) OrderLines(order domain.Order) []string {
	if len(order.Items) == 0 {
		return []string{EmptyOrderLine}
	}
	lines := make([]string, 0, len(order.Items))
	for i, item := range order.Items {
		lines = append(lines, f.p.Sprintf("%d. %s x%d - %s", i+1, item.Description, item.Quantity, f.Currency(item.LineTotal())))
	}
	return lines
}

// RunningTotal renders the pre-tax subtotal shown under the order list.
func (f *Printer) RunningTotal(order domain.Order) string {
	return "Total: " + f.Currency(order.Subtotal())
}
