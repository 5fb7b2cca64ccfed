package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/infinite-doughmain/ordering/internal/domain"
	"github.com/infinite-doughmain/ordering/internal/menu"
)

// OrderBuilder prices menu selections and appends them to orders. Orders are treated as values;
// every mutating call returns a new order.
type OrderBuilder struct {
	catalog menu.Catalog
}

// NewOrderBuilder constructs a builder over catalog.
func NewOrderBuilder(catalog menu.Catalog) *OrderBuilder {
	return &OrderBuilder{catalog: catalog}
}

// Catalog exposes the menu the builder prices from.
func (b *OrderBuilder) Catalog() menu.Catalog {
	return b.catalog
}

// PizzaSelection is one pizza as picked on the order screen.
type PizzaSelection struct {
	Size     string
	Crust    string
	Toppings []string
}

// BeverageSelection is one beverage line as picked on the order screen.
type BeverageSelection struct {
	Beverage string
	Size     string
	Quantity int
}

// PriceOfPizza sums size, crust and the flat per-topping charge. Unknown names contribute zero.
func (b *OrderBuilder) PriceOfPizza(size, crust string, toppings []string) decimal.Decimal {
	sizePrice, _ := b.catalog.SizePrice(size)
	crustPrice, _ := b.catalog.CrustPrice(crust)
	toppingTotal := b.catalog.ToppingPrice().Mul(decimal.NewFromInt(int64(len(toppings))))
	return sizePrice.Add(crustPrice).Add(toppingTotal)
}

// DescribePizza renders "{size} {crust} Pizza" with an optional " with a, b" suffix.
func (b *OrderBuilder) DescribePizza(size, crust string, toppings []string) string {
	desc := fmt.Sprintf("%s %s Pizza", size, crust)
	if len(toppings) > 0 {
		desc += " with " + strings.Join(toppings, ", ")
	}
	return desc
}

// PriceOfBeverage returns the price of a beverage size, or zero when unknown.
func (b *OrderBuilder) PriceOfBeverage(size string) decimal.Decimal {
	price, _ := b.catalog.BeverageSizePrice(size)
	return price
}

// AddItem appends item. Items without a positive quantity or with a negative price are ignored.
func (b *OrderBuilder) AddItem(order domain.Order, item domain.OrderItem) domain.Order {
	if item.Quantity <= 0 || item.UnitPrice.IsNegative() {
		return order
	}
	items := make([]domain.OrderItem, 0, len(order.Items)+1)
	items = append(items, order.Items...)
	items = append(items, item)
	order.Items = items
	return order
}

// Clear empties the items and keeps the order id.
func (b *OrderBuilder) Clear(order domain.Order) domain.Order {
	order.Items = nil
	return order
}

// Total sums the line totals.
func (b *OrderBuilder) Total(order domain.Order) decimal.Decimal {
	return order.Subtotal()
}

// BuildPizza validates a selection against the menu and turns it into a single order line.
func (b *OrderBuilder) BuildPizza(sel PizzaSelection) (domain.OrderItem, error) {
	size := strings.TrimSpace(sel.Size)
	crust := strings.TrimSpace(sel.Crust)
	if _, ok := b.catalog.SizePrice(size); !ok {
		return domain.OrderItem{}, fmt.Errorf("%w: size %q", ErrUnknownMenuItem, sel.Size)
	}
	if _, ok := b.catalog.CrustPrice(crust); !ok {
		return domain.OrderItem{}, fmt.Errorf("%w: crust %q", ErrUnknownMenuItem, sel.Crust)
	}

	toppings := make([]string, 0, len(sel.Toppings))
	seen := make(map[string]struct{}, len(sel.Toppings))
	for _, raw := range sel.Toppings {
		topping := strings.TrimSpace(raw)
		if !b.catalog.HasTopping(topping) {
			return domain.OrderItem{}, fmt.Errorf("%w: topping %q", ErrUnknownMenuItem, raw)
		}
		if _, dup := seen[topping]; dup {
			continue
		}
		seen[topping] = struct{}{}
		toppings = append(toppings, topping)
	}
	if len(toppings) > menu.MaxToppings {
		return domain.OrderItem{}, fmt.Errorf("%w: %d selected, at most %d allowed", ErrTooManyToppings, len(toppings), menu.MaxToppings)
	}

	return domain.OrderItem{
		Description: b.DescribePizza(size, crust, toppings),
		UnitPrice:   b.PriceOfPizza(size, crust, toppings),
		Quantity:    1,
	}, nil
}

// BuildBeverage validates a beverage selection. A zero quantity is accepted here and dropped by AddItem.
func (b *OrderBuilder) BuildBeverage(sel BeverageSelection) (domain.OrderItem, error) {
	beverage := strings.TrimSpace(sel.Beverage)
	size := strings.TrimSpace(sel.Size)
	if !b.catalog.HasBeverage(beverage) {
		return domain.OrderItem{}, fmt.Errorf("%w: beverage %q", ErrUnknownMenuItem, sel.Beverage)
	}
	price, ok := b.catalog.BeverageSizePrice(size)
	if !ok {
		return domain.OrderItem{}, fmt.Errorf("%w: beverage size %q", ErrUnknownMenuItem, sel.Size)
	}
	if sel.Quantity < 0 || sel.Quantity > menu.MaxBeverageQuantity {
		return domain.OrderItem{}, fmt.Errorf("%w: %d not in 0..%d", ErrInvalidQuantity, sel.Quantity, menu.MaxBeverageQuantity)
	}
	return domain.OrderItem{
		Description: fmt.Sprintf("%s %s", size, beverage),
		UnitPrice:   price,
		Quantity:    sel.Quantity,
	}, nil
}
