package httpx

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/infinite-doughmain/ordering/internal/platform/requestctx"
	"github.com/infinite-doughmain/ordering/internal/services"
)

// ErrInternal is the envelope for failures the caller cannot act on.
var ErrInternal = NewError("internal_server_error", "internal server error", http.StatusInternalServerError)

type serviceRule struct {
	target  error
	code    string
	status  int
	message string
}

// serviceRules maps ordering failures to envelopes. An empty message reuses the error text,
// which already names the offending size, topping or amount.
var serviceRules = []serviceRule{
	{services.ErrCustomerNotFound, "customer_not_found", http.StatusNotFound, "no customer is registered under that phone number"},
	{services.ErrCustomerInvalidPhone, "invalid_phone", http.StatusBadRequest, "phone number must contain digits"},
	{services.ErrCustomerStorageUnavailable, "customer_store_unavailable", http.StatusServiceUnavailable, "customer records could not be saved"},
	{services.ErrTooManyToppings, "too_many_toppings", http.StatusBadRequest, ""},
	{services.ErrUnknownMenuItem, "unknown_menu_item", http.StatusBadRequest, ""},
	{services.ErrInvalidQuantity, "invalid_quantity", http.StatusBadRequest, ""},
	{services.ErrInvalidOrderType, "invalid_order_type", http.StatusBadRequest, ""},
	{services.ErrPaymentInvalidInput, "invalid_payment", http.StatusBadRequest, ""},
}

// FromServiceError translates an error returned by the session controller. Unknown errors
// become ErrInternal.
func FromServiceError(err error) Error {
	var regErr *services.RegistrationError
	if errors.As(err, &regErr) {
		return NewError("invalid_registration", regErr.Error(), http.StatusBadRequest).WithFields(regErr.Fields())
	}
	for _, rule := range serviceRules {
		if !errors.Is(err, rule.target) {
			continue
		}
		message := rule.message
		if message == "" {
			message = err.Error()
		}
		return NewError(rule.code, message, rule.status)
	}
	return ErrInternal
}

// WriteServiceError writes the envelope for err and logs the cause of every 5xx.
func WriteServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	e := FromServiceError(err)
	if e.Status >= http.StatusInternalServerError {
		requestctx.Logger(ctx).Error("session step failed", zap.String("code", e.Code), zap.Error(err))
	}
	WriteError(ctx, w, e)
}
