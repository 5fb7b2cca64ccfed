package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/infinite-doughmain/ordering/internal/domain"
	"github.com/infinite-doughmain/ordering/internal/platform/textutil"
)

const (
	// DefaultStoreName heads every receipt unless configured otherwise.
	DefaultStoreName = "INFINITE DOUGHMAIN PIZZA"

	receiptWidth       = 60
	receiptDescWidth   = 40
	receiptTitleIndent = 10
	receiptDateLayout  = "01/02/2006 15:04:05"
	receiptItemHeader  = "%-40s %6s %10s\n"
	receiptItemRow     = "%-40s %6d $%9s\n"
	receiptAmountRow   = "%-40s %6s $%9s\n"
)

// TaxRate is the flat sales tax applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.08")

// ReceiptInput is everything a receipt is rendered from. Customer and Payment may be nil.
type ReceiptInput struct {
	Customer  *domain.Customer
	Order     domain.Order
	OrderType domain.OrderType
	Payment   *domain.PaymentInfo
	Timestamp time.Time
}

// ReceiptEngine settles orders and renders fixed-width receipts.
type ReceiptEngine struct {
	storeName string
}

// ReceiptEngineDeps configures the receipt engine.
type ReceiptEngineDeps struct {
	StoreName string
}

func NewReceiptEngine(deps ReceiptEngineDeps) *ReceiptEngine {
	name := strings.TrimSpace(deps.StoreName)
	if name == "" {
		name = DefaultStoreName
	}
	return &ReceiptEngine{storeName: name}
}

// Summarize computes subtotal, rounded tax, total and change for an order and optional payment.
func (e *ReceiptEngine) Summarize(order domain.Order, payment *domain.PaymentInfo) domain.OrderTotals {
	subtotal := order.Subtotal()
	tax := subtotal.Mul(TaxRate).Round(2)
	totals := domain.OrderTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
		Tendered: decimal.Zero,
		Change:   decimal.Zero,
	}
	if payment != nil {
		totals.Tendered = payment.AmountTendered
		if change := payment.AmountTendered.Sub(totals.Total); change.IsPositive() {
			totals.Change = change
			totals.HasChange = true
		}
	}
	return totals
}

// Render produces the receipt text. The same input always renders the same bytes.
func (e *ReceiptEngine) Render(in ReceiptInput) string {
	heavy := strings.Repeat("=", receiptWidth)
	light := strings.Repeat("-", receiptWidth)
	totals := e.Summarize(in.Order, in.Payment)

	orderType := in.OrderType
	if orderType == "" {
		orderType = domain.OrderTypePickup
	}

	var sb strings.Builder
	sb.WriteString(heavy + "\n")
	sb.WriteString(strings.Repeat(" ", receiptTitleIndent) + e.storeName + "\n")
	sb.WriteString(heavy + "\n")
	if in.Order.ID != "" {
		sb.WriteString("Order #: " + in.Order.ID + "\n")
	}
	sb.WriteString("Order Date: " + in.Timestamp.Format(receiptDateLayout) + "\n")
	sb.WriteString("Order Type: " + string(orderType) + "\n")
	if in.Customer == nil {
		sb.WriteString("Customer: Guest\n")
	} else {
		sb.WriteString("Customer: " + in.Customer.Name + "\n")
		sb.WriteString("Phone: " + in.Customer.Phone + "\n")
		sb.WriteString("Address: " + in.Customer.FullAddress() + "\n")
		if orderType == domain.OrderTypeDelivery && in.Customer.HasDeliveryHints() {
			sb.WriteString("Delivery Notes: " + deliveryNotes(*in.Customer) + "\n")
		}
	}
	sb.WriteString(light + "\n\n")

	fmt.Fprintf(&sb, receiptItemHeader, "Item", "Qty", "Price")
	sb.WriteString(light + "\n")
	for _, item := range in.Order.Items {
		desc := textutil.Truncate(item.Description, receiptDescWidth, "...")
		fmt.Fprintf(&sb, receiptItemRow, desc, item.Quantity, money(item.LineTotal()))
	}

	sb.WriteString(light + "\n")
	fmt.Fprintf(&sb, receiptAmountRow, "Subtotal", "", money(totals.Subtotal))
	fmt.Fprintf(&sb, receiptAmountRow, "Tax (8%)", "", money(totals.Tax))
	sb.WriteString(heavy + "\n")
	fmt.Fprintf(&sb, receiptAmountRow, "TOTAL", "", money(totals.Total))
	sb.WriteString(heavy + "\n")

	if in.Payment != nil {
		sb.WriteString("\n")
		sb.WriteString("Payment Method: " + string(in.Payment.Method) + "\n")
		if totals.Tendered.IsPositive() {
			fmt.Fprintf(&sb, receiptAmountRow, "Amount Tendered", "", money(totals.Tendered))
		}
		if totals.HasChange {
			fmt.Fprintf(&sb, receiptAmountRow, "Change", "", money(totals.Change))
		}
		if in.Payment.Method == domain.PaymentMethodCredit {
			sb.WriteString("\nSignature: ______________________________\n")
		}
	}

	sb.WriteString("\nThank you for your order!\n")
	return sb.String()
}

func deliveryNotes(c domain.Customer) string {
	notes := make([]string, 0, 2)
	if v := strings.TrimSpace(c.Subdivision); v != "" {
		notes = append(notes, "Subdivision: "+v)
	}
	if v := strings.TrimSpace(c.Intersection); v != "" {
		notes = append(notes, "Intersection: "+v)
	}
	return strings.Join(notes, "; ")
}

func money(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
