// Package menu holds the fixed price tables the store sells from. Prices change only with a deploy.
package menu

import "github.com/shopspring/decimal"

const (
	// MaxToppings is the hard ceiling of distinct toppings per pizza.
	MaxToppings = 4
	// MaxBeverageQuantity bounds a single beverage line.
	MaxBeverageQuantity = 10
)

// PricedOption pairs a menu name with its price.
type PricedOption struct {
	Name  string
	Price decimal.Decimal
}

// Catalog is an immutable view over the menu. The zero value is empty; use Default.
type Catalog struct {
	sizes         []PricedOption
	crusts        []PricedOption
	toppings      []string
	toppingPrice  decimal.Decimal
	beverages     []string
	beverageSizes []PricedOption
}

var defaultCatalog = Catalog{
	sizes: []PricedOption{
		{Name: "Small", Price: decimal.RequireFromString("9.99")},
		{Name: "Medium", Price: decimal.RequireFromString("12.99")},
		{Name: "Large", Price: decimal.RequireFromString("15.99")},
		{Name: "XL", Price: decimal.RequireFromString("18.99")},
	},
	crusts: []PricedOption{
		{Name: "Hand-Tossed", Price: decimal.Zero},
		{Name: "Thin Crust", Price: decimal.RequireFromString("0.50")},
		{Name: "Deep Dish", Price: decimal.RequireFromString("1.50")},
	},
	toppings: []string{
		"Pepperoni", "Sausage", "Mushrooms", "Onions",
		"Green Peppers", "Black Olives", "Bacon", "Extra Cheese",
	},
	toppingPrice: decimal.RequireFromString("1.25"),
	beverages:    []string{"Coke", "Sprite", "Fanta", "Root Beer", "Water"},
	beverageSizes: []PricedOption{
		{Name: "Small (16oz)", Price: decimal.RequireFromString("2.49")},
		{Name: "Medium (20oz)", Price: decimal.RequireFromString("2.99")},
		{Name: "Large (2L)", Price: decimal.RequireFromString("3.49")},
	},
}

// Default returns the store menu.
func Default() Catalog {
	return defaultCatalog
}

// Sizes returns the pizza sizes in menu order.
func (c Catalog) Sizes() []PricedOption { return cloneOptions(c.sizes) }

// Crusts returns the crust choices in menu order.
func (c Catalog) Crusts() []PricedOption { return cloneOptions(c.crusts) }

// Toppings returns the topping names in menu order.
func (c Catalog) Toppings() []string { return cloneStrings(c.toppings) }

// ToppingPrice is the flat charge applied per topping.
func (c Catalog) ToppingPrice() decimal.Decimal { return c.toppingPrice }

// Beverages returns the beverage names in menu order.
func (c Catalog) Beverages() []string { return cloneStrings(c.beverages) }

// BeverageSizes returns the beverage sizes in menu order.
func (c Catalog) BeverageSizes() []PricedOption { return cloneOptions(c.beverageSizes) }

// SizePrice looks up a pizza size.
func (c Catalog) SizePrice(name string) (decimal.Decimal, bool) {
	return lookup(c.sizes, name)
}

// CrustPrice looks up a crust.
func (c Catalog) CrustPrice(name string) (decimal.Decimal, bool) {
	return lookup(c.crusts, name)
}

// BeverageSizePrice looks up a beverage size. Flavour never affects price.
func (c Catalog) BeverageSizePrice(name string) (decimal.Decimal, bool) {
	return lookup(c.beverageSizes, name)
}

// HasTopping reports whether the topping is on the menu.
func (c Catalog) HasTopping(name string) bool {
	return contains(c.toppings, name)
}

// HasBeverage reports whether the beverage is on the menu.
func (c Catalog) HasBeverage(name string) bool {
	return contains(c.beverages, name)
}

func lookup(options []PricedOption, name string) (decimal.Decimal, bool) {
	for _, option := range options {
		if option.Name == name {
			return option.Price, true
		}
	}
	return decimal.Zero, false
}

func contains(values []string, name string) bool {
	for _, value := range values {
		if value == name {
			return true
		}
	}
	return false
}

func cloneOptions(options []PricedOption) []PricedOption {
	out := make([]PricedOption, len(options))
	copy(out, options)
	return out
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
