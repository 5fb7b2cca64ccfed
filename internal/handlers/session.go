package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/infinite-doughmain/ordering/internal/domain"
	"github.com/infinite-doughmain/ordering/internal/format"
	"github.com/infinite-doughmain/ordering/internal/platform/httpx"
	"github.com/infinite-doughmain/ordering/internal/platform/requestctx"
	"github.com/infinite-doughmain/ordering/internal/services"
)

// SessionHandlers drive the single terminal session over HTTP. Requests are serialised so the
// session value is only ever advanced by one call at a time.
type SessionHandlers struct {
	controller *services.SessionController
	printer    *format.Printer

	mu      sync.Mutex
	session services.Session
}

// NewSessionHandlers opens the terminal session.
func NewSessionHandlers(controller *services.SessionController, printer *format.Printer) *SessionHandlers {
	return &SessionHandlers{
		controller: controller,
		printer:    printer,
		session:    controller.Start(),
	}
}

// Routes registers the session endpoints.
func (h *SessionHandlers) Routes(r chi.Router) {
	r.Get("/", h.getSession)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/register", h.register)
	r.Post("/order/pizzas", h.addPizza)
	r.Post("/order/beverages", h.addBeverage)
	r.Delete("/order/items", h.clearOrder)
	r.Post("/order/new", h.newOrder)
	r.Put("/order/type", h.setOrderType)
	r.Put("/payment", h.setPayment)
	r.Get("/receipt", h.receipt)
}

type loginRequest struct {
	Phone string `json:"phone"`
}

type registerRequest struct {
	Phone             string `json:"phone"`
	Name              string `json:"name"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
	Zip               string `json:"zip"`
	Subdivision       string `json:"subdivision"`
	Intersection      string `json:"intersection"`
	ChargeAccountType string `json:"charge_account_type"`
	CardLast4         string `json:"card_last4"`
}

type pizzaRequest struct {
	Size     string   `json:"size"`
	Crust    string   `json:"crust"`
	Toppings []string `json:"toppings"`
}

type beverageRequest struct {
	Beverage string `json:"beverage"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type orderTypeRequest struct {
	OrderType string `json:"order_type"`
}

type paymentRequest struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

type customerPayload struct {
	Phone             string `json:"phone"`
	PhoneKey          string `json:"phone_key"`
	Name              string `json:"name"`
	Address           string `json:"address"`
	FullAddress       string `json:"full_address"`
	City              string `json:"city"`
	State             string `json:"state"`
	Zip               string `json:"zip"`
	Subdivision       string `json:"subdivision,omitempty"`
	Intersection      string `json:"intersection,omitempty"`
	ChargeAccountType string `json:"charge_account_type,omitempty"`
	CardLast4         string `json:"card_last4,omitempty"`
}

type orderItemPayload struct {
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"line_total"`
}

type paymentPayload struct {
	Method         string `json:"method"`
	AmountTendered string `json:"amount_tendered"`
}

type totalsPayload struct {
	Subtotal string  `json:"subtotal"`
	Tax      string  `json:"tax"`
	Total    string  `json:"total"`
	Change   *string `json:"change,omitempty"`
}

type sessionResponse struct {
	OrderID      string             `json:"order_id"`
	OrderType    string             `json:"order_type"`
	Customer     *customerPayload   `json:"customer"`
	Items        []orderItemPayload `json:"items"`
	Lines        []string           `json:"lines"`
	RunningTotal string             `json:"running_total"`
	Payment      *paymentPayload    `json:"payment"`
	Totals       totalsPayload      `json:"totals"`
}

func (h *SessionHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	tagSession(r.Context(), h.session)
	writeJSONResponse(w, http.StatusOK, h.buildResponse(h.session))
}

func (h *SessionHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.advance(w, r, func(ctx context.Context, s services.Session) (services.Session, error) {
		return h.controller.Login(ctx, s, req.Phone)
	})
}

func (h *SessionHandlers) logout(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, func(_ context.Context, s services.Session) (services.Session, error) {
		return h.controller.Logout(s), nil
	})
}

func (h *SessionHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.advance(w, r, func(ctx context.Context, s services.Session) (services.Session, error) {
		return h.controller.Register(ctx, s, services.RegisterCustomerCommand{
			Phone:             req.Phone,
			Name:              req.Name,
			Address:           req.Address,
			City:              req.City,
			State:             req.State,
			Zip:               req.Zip,
			Subdivision:       req.Subdivision,
			Intersection:      req.Intersection,
			ChargeAccountType: req.ChargeAccountType,
			CardLast4:         req.CardLast4,
		})
	})
}

func (h *SessionHandlers) addPizza(w http.ResponseWriter, r *http.Request) {
	var req pizzaRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.advance(w, r, func(_ context.Context, s services.Session) (services.Session, error) {
		return h.controller.AddPizza(s, services.PizzaSelection{Size: req.Size, Crust: req.Crust, Toppings: req.Toppings})
	})
}

func (h *SessionHandlers) addBeverage(w http.ResponseWriter, r *http.Request) {
	var req beverageRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.advance(w, r, func(_ context.Context, s services.Session) (services.Session, error) {
		return h.controller.AddBeverage(s, services.BeverageSelection{Beverage: req.Beverage, Size: req.Size, Quantity: req.Quantity})
	})
}

func (h *SessionHandlers) clearOrder(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, func(_ context.Context, s services.Session) (services.Session, error) {
		return h.controller.ClearOrder(s), nil
	})
}

func (h *SessionHandlers) newOrder(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, func(_ context.Context, s services.Session) (services.Session, error) {
		return h.controller.NewOrder(s), nil
	})
}

func (h *SessionHandlers) setOrderType(w http.ResponseWriter, r *http.Request) {
	var req orderTypeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.advance(w, r, func(_ context.Context, s services.Session) (services.Session, error) {
		return h.controller.SetOrderType(s, req.OrderType)
	})
}

func (h *SessionHandlers) setPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.advance(w, r, func(_ context.Context, s services.Session) (services.Session, error) {
		return h.controller.SetPayment(s, req.Method, req.Amount)
	})
}

func (h *SessionHandlers) receipt(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	tagSession(r.Context(), h.session)
	text := h.controller.Receipt(h.session)
	h.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// advance applies step to the current session and stores the result only when it succeeds.
func (h *SessionHandlers) advance(w http.ResponseWriter, r *http.Request, step func(context.Context, services.Session) (services.Session, error)) {
	ctx := r.Context()

	h.mu.Lock()
	next, err := step(ctx, h.session)
	if err == nil {
		h.session = next
	}
	current := h.session
	h.mu.Unlock()

	tagSession(ctx, current)
	if err != nil {
		httpx.WriteServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(current))
}

func (h *SessionHandlers) buildResponse(s services.Session) sessionResponse {
	resp := sessionResponse{
		OrderID:      s.Order.ID,
		OrderType:    string(s.OrderType),
		Items:        make([]orderItemPayload, 0, len(s.Order.Items)),
		Lines:        h.printer.OrderLines(s.Order),
		RunningTotal: h.printer.RunningTotal(s.Order),
	}
	if s.Customer != nil {
		resp.Customer = newCustomerPayload(*s.Customer)
	}
	for _, item := range s.Order.Items {
		resp.Items = append(resp.Items, orderItemPayload{
			Description: item.Description,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal().StringFixed(2),
		})
	}
	if s.Payment != nil {
		resp.Payment = &paymentPayload{
			Method:         string(s.Payment.Method),
			AmountTendered: s.Payment.AmountTendered.StringFixed(2),
		}
	}
	totals := h.controller.Totals(s)
	resp.Totals = totalsPayload{
		Subtotal: totals.Subtotal.StringFixed(2),
		Tax:      totals.Tax.StringFixed(2),
		Total:    totals.Total.StringFixed(2),
	}
	if totals.HasChange {
		change := totals.Change.StringFixed(2)
		resp.Totals.Change = &change
	}
	return resp
}

func newCustomerPayload(c domain.Customer) *customerPayload {
	return &customerPayload{
		Phone:             c.Phone,
		PhoneKey:          c.PhoneKey,
		Name:              c.Name,
		Address:           c.Address,
		FullAddress:       c.FullAddress(),
		City:              c.City,
		State:             c.State,
		Zip:               c.Zip,
		Subdivision:       c.Subdivision,
		Intersection:      c.Intersection,
		ChargeAccountType: c.ChargeAccountType,
		CardLast4:         c.CardLast4,
	}
}

// tagSession names the order and customer on the request so the request log line and any
// error envelope identify them.
func tagSession(ctx context.Context, s services.Session) {
	phoneKey := ""
	if s.Customer != nil {
		phoneKey = s.Customer.PhoneKey
	}
	requestctx.TagSession(ctx, s.Order.ID, phoneKey)
}
