package domain

import "github.com/shopspring/decimal"

// OrderTotals captures the aggregated monetary results of settling an order.
type OrderTotals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	// Tendered is zero when no payment was recorded.
	Tendered decimal.Decimal
	// Change is only meaningful when HasChange is true.
	Change    decimal.Decimal
	HasChange bool
}
