package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/infinite-doughmain/ordering/internal/domain"
	"github.com/infinite-doughmain/ordering/internal/platform/textutil"
)

// CustomerDirectory is the slice of the customer store the session flow needs.
type CustomerDirectory interface {
	Find(phone string) (domain.Customer, bool)
	Save(ctx context.Context, customer domain.Customer) (domain.Customer, error)
}

// Session is the state of one terminal between login and receipt. It is a plain value; the
// controller returns an updated copy from every call.
type Session struct {
	Customer  *domain.Customer
	Order     domain.Order
	OrderType domain.OrderType
	Payment   *domain.PaymentInfo
}

// LoggedIn reports whether a customer is attached.
func (s Session) LoggedIn() bool {
	return s.Customer != nil
}

// RegisterCustomerCommand carries the registration form.
type RegisterCustomerCommand struct {
	Phone             string
	Name              string
	Address           string
	City              string
	State             string
	Zip               string
	Subdivision       string
	Intersection      string
	ChargeAccountType string
	CardLast4         string
}

// SessionController drives login, order composition, payment and receipt for a session.
type SessionController struct {
	customers CustomerDirectory
	builder   *OrderBuilder
	receipts  *ReceiptEngine
	now       func() time.Time
	newID     func(time.Time) string
	logger    *zap.Logger
}

// SessionControllerDeps bundles the controller collaborators.
type SessionControllerDeps struct {
	Customers CustomerDirectory
	Builder   *OrderBuilder
	Receipts  *ReceiptEngine
	Clock     func() time.Time
	IDGen     func(time.Time) string
	Logger    *zap.Logger
}

func NewSessionController(deps SessionControllerDeps) (*SessionController, error) {
	if deps.Customers == nil {
		return nil, errors.New("session controller: customer directory is required")
	}
	if deps.Builder == nil {
		return nil, errors.New("session controller: order builder is required")
	}
	if deps.Receipts == nil {
		return nil, errors.New("session controller: receipt engine is required")
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	newID := deps.IDGen
	if newID == nil {
		newID = newOrderID
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionController{
		customers: deps.Customers,
		builder:   deps.Builder,
		receipts:  deps.Receipts,
		now:       now,
		newID:     newID,
		logger:    logger,
	}, nil
}

func newOrderID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}

// Start opens a session with no customer and an empty pickup order.
func (c *SessionController) Start() Session {
	return Session{
		Order:     domain.Order{ID: c.newID(c.now())},
		OrderType: domain.OrderTypePickup,
	}
}

// Logout drops the customer and the order and returns the terminal to a fresh session.
func (c *SessionController) Logout(s Session) Session {
	if s.Customer != nil {
		c.logger.Info("customer logged out", zap.String("phoneKey", s.Customer.PhoneKey), zap.String("orderId", s.Order.ID))
	}
	return c.Start()
}

// Login attaches the customer registered under phone.
func (c *SessionController) Login(ctx context.Context, s Session, phone string) (Session, error) {
	if NormalizePhone(phone) == "" {
		return s, ErrCustomerInvalidPhone
	}
	customer, ok := c.customers.Find(phone)
	if !ok {
		return s, ErrCustomerNotFound
	}
	s.Customer = &customer
	c.logger.Info("customer logged in", zap.String("phoneKey", customer.PhoneKey), zap.String("orderId", s.Order.ID))
	return s, nil
}

// Register validates the form, saves the customer (overwriting any record with the same phone)
// and attaches it to the session.
func (c *SessionController) Register(ctx context.Context, s Session, cmd RegisterCustomerCommand) (Session, error) {
	textutil.TrimFields(&cmd.Phone, &cmd.Name, &cmd.Address, &cmd.City, &cmd.State, &cmd.Zip,
		&cmd.Subdivision, &cmd.Intersection, &cmd.ChargeAccountType, &cmd.CardLast4)

	var missing []string
	required := []struct {
		field string
		value string
	}{
		{"phone", NormalizePhone(cmd.Phone)},
		{"name", cmd.Name},
		{"address", cmd.Address},
		{"city", cmd.City},
		{"state", cmd.State},
		{"zip", cmd.Zip},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return s, &RegistrationError{fields: missing}
	}

	saved, err := c.customers.Save(ctx, domain.Customer{
		Phone:             cmd.Phone,
		Name:              cmd.Name,
		Address:           cmd.Address,
		City:              cmd.City,
		State:             cmd.State,
		Zip:               cmd.Zip,
		Subdivision:       cmd.Subdivision,
		Intersection:      cmd.Intersection,
		ChargeAccountType: cmd.ChargeAccountType,
		CardLast4:         cmd.CardLast4,
	})
	if err != nil {
		return s, fmt.Errorf("register customer: %w", err)
	}
	s.Customer = &saved
	return s, nil
}

// AddPizza builds the pizza and appends it to the current order.
func (c *SessionController) AddPizza(s Session, sel PizzaSelection) (Session, error) {
	item, err := c.builder.BuildPizza(sel)
	if err != nil {
		return s, err
	}
	s.Order = c.builder.AddItem(s.Order, item)
	return s, nil
}

// AddBeverage builds the beverage line and appends it to the current order.
func (c *SessionController) AddBeverage(s Session, sel BeverageSelection) (Session, error) {
	item, err := c.builder.BuildBeverage(sel)
	if err != nil {
		return s, err
	}
	s.Order = c.builder.AddItem(s.Order, item)
	return s, nil
}

// ClearOrder removes the items only. Customer, order type and payment stay.
func (c *SessionController) ClearOrder(s Session) Session {
	s.Order = c.builder.Clear(s.Order)
	return s
}

// NewOrder starts a fresh order for the same customer, dropping items and payment.
func (c *SessionController) NewOrder(s Session) Session {
	s.Order = domain.Order{ID: c.newID(c.now())}
	s.Payment = nil
	return s
}

// SetOrderType switches between pickup and delivery.
func (c *SessionController) SetOrderType(s Session, value string) (Session, error) {
	orderType, ok := domain.ParseOrderType(value)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrInvalidOrderType, value)
	}
	s.OrderType = orderType
	return s, nil
}

// SetPayment records the tender. An empty amount means nothing was tendered.
func (c *SessionController) SetPayment(s Session, method, amountText string) (Session, error) {
	pm, ok := domain.ParsePaymentMethod(method)
	if !ok {
		return s, fmt.Errorf("%w: unknown payment method %q", ErrPaymentInvalidInput, method)
	}
	amount, err := parseAmount(amountText)
	if err != nil {
		return s, err
	}
	s.Payment = &domain.PaymentInfo{Method: pm, AmountTendered: amount}
	return s, nil
}

// Totals settles the current order against the recorded payment.
func (c *SessionController) Totals(s Session) domain.OrderTotals {
	return c.receipts.Summarize(s.Order, s.Payment)
}

// Receipt renders the receipt stamped with the controller clock.
func (c *SessionController) Receipt(s Session) string {
	return c.receipts.Render(ReceiptInput{
		Customer:  s.Customer,
		Order:     s.Order,
		OrderType: s.OrderType,
		Payment:   s.Payment,
		Timestamp: c.now(),
	})
}

func parseAmount(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrPaymentInvalidInput, text)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount %q is negative", ErrPaymentInvalidInput, text)
	}
	return amount, nil
}
