package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Customer is a registered walk-in or phone customer keyed by the digits of their phone number.
type Customer struct {
	PhoneKey     string
	Phone        string
	Name         string
	Address      string
	City         string
	State        string
	Zip          string
	Subdivision  string
	Intersection string
	// ChargeAccountType and CardLast4 are shown to staff only; checkout never reads them.
	ChargeAccountType string
	CardLast4         string
}

// FullAddress renders "address, city, state zip", skipping empty components.
func (c Customer) FullAddress() string {
	stateZip := strings.TrimSpace(strings.TrimSpace(c.State) + " " + strings.TrimSpace(c.Zip))
	parts := make([]string, 0, 3)
	for _, part := range []string{c.Address, c.City, stateZip} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// HasDeliveryHints reports whether the customer left a subdivision or cross-street hint.
func (c Customer) HasDeliveryHints() bool {
	return strings.TrimSpace(c.Subdivision) != "" || strings.TrimSpace(c.Intersection) != ""
}

// OrderType selects how the order leaves the store.
type OrderType string

const (
	// OrderTypePickup is the default fulfilment mode.
	OrderTypePickup OrderType = "Pickup"
	// OrderTypeDelivery sends the order to the customer address.
	OrderTypeDelivery OrderType = "Delivery"
)

// ParseOrderType accepts the canonical names case-insensitively.
func ParseOrderType(value string) (OrderType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pickup":
		return OrderTypePickup, true
	case "delivery":
		return OrderTypeDelivery, true
	default:
		return "", false
	}
}

// PaymentMethod enumerates the tender types accepted at the counter.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodCheck  PaymentMethod = "Check"
	PaymentMethodCredit PaymentMethod = "Credit"
)

// ParsePaymentMethod accepts the canonical names case-insensitively.
func ParsePaymentMethod(value string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cash":
		return PaymentMethodCash, true
	case "check":
		return PaymentMethodCheck, true
	case "credit":
		return PaymentMethodCredit, true
	default:
		return "", false
	}
}

// PaymentInfo captures how the customer settles the order.
type PaymentInfo struct {
	Method         PaymentMethod
	AmountTendered decimal.Decimal
}

// OrderItem is one immutable line of an order.
type OrderItem struct {
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// LineTotal returns unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the session-scoped list of items in display order.
type Order struct {
	ID    string
	Items []OrderItem
}

// Subtotal sums the line totals, before tax.
func (o Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}
