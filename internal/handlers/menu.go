package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/infinite-doughmain/ordering/internal/menu"
)

// MenuHandlers exposes the read-only price tables.
type MenuHandlers struct {
	catalog menu.Catalog
}

// NewMenuHandlers constructs menu handlers over catalog.
func NewMenuHandlers(catalog menu.Catalog) *MenuHandlers {
	return &MenuHandlers{catalog: catalog}
}

// Routes registers the menu endpoints.
func (h *MenuHandlers) Routes(r chi.Router) {
	r.Get("/", h.getMenu)
}

type pricedOptionPayload struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type menuResponse struct {
	Sizes               []pricedOptionPayload `json:"sizes"`
	Crusts              []pricedOptionPayload `json:"crusts"`
	Toppings            []string              `json:"toppings"`
	ToppingPrice        string                `json:"topping_price"`
	MaxToppings         int                   `json:"max_toppings"`
	Beverages           []string              `json:"beverages"`
	BeverageSizes       []pricedOptionPayload `json:"beverage_sizes"`
	MaxBeverageQuantity int                   `json:"max_beverage_quantity"`
}

func (h *MenuHandlers) getMenu(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, menuResponse{
		Sizes:               optionPayloads(h.catalog.Sizes()),
		Crusts:              optionPayloads(h.catalog.Crusts()),
		Toppings:            h.catalog.Toppings(),
		ToppingPrice:        h.catalog.ToppingPrice().StringFixed(2),
		MaxToppings:         menu.MaxToppings,
		Beverages:           h.catalog.Beverages(),
		BeverageSizes:       optionPayloads(h.catalog.BeverageSizes()),
		MaxBeverageQuantity: menu.MaxBeverageQuantity,
	})
}

func optionPayloads(options []menu.PricedOption) []pricedOptionPayload {
	out := make([]pricedOptionPayload, 0, len(options))
	for _, option := range options {
		out = append(out, pricedOptionPayload{Name: option.Name, Price: option.Price.StringFixed(2)})
	}
	return out
}
