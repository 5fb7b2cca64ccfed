package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errCustomerNotFound           = errors.New("customer: not found")
	errCustomerInvalidPhone       = errors.New("customer: phone number has no digits")
	errCustomerInvalidInput       = errors.New("customer: invalid registration")
	errCustomerStorageUnavailable = errors.New("customer: storage unavailable")
	errTooManyToppings            = errors.New("order: too many toppings")
	errUnknownMenuItem            = errors.New("order: unknown menu item")
	errInvalidQuantity            = errors.New("order: invalid quantity")
	errInvalidOrderType           = errors.New("order: invalid order type")
	errPaymentInvalidInput        = errors.New("payment: invalid input")
)

var (
	// ErrCustomerNotFound is the normal negative result of a phone lookup.
	ErrCustomerNotFound = errCustomerNotFound
	// ErrCustomerInvalidPhone indicates the phone normalised to an empty key.
	ErrCustomerInvalidPhone = errCustomerInvalidPhone
	// ErrCustomerInvalidInput indicates required registration fields were missing.
	ErrCustomerInvalidInput = errCustomerInvalidInput
	// ErrCustomerStorageUnavailable indicates the durable store could not be written.
	ErrCustomerStorageUnavailable = errCustomerStorageUnavailable
	// ErrTooManyToppings indicates a pizza selection exceeded the topping ceiling.
	ErrTooManyToppings = errTooManyToppings
	// ErrUnknownMenuItem indicates a selection named something the menu does not sell.
	ErrUnknownMenuItem = errUnknownMenuItem
	// ErrInvalidQuantity indicates a beverage quantity outside the accepted range.
	ErrInvalidQuantity = errInvalidQuantity
	// ErrInvalidOrderType indicates an order type other than Pickup or Delivery.
	ErrInvalidOrderType = errInvalidOrderType
	// ErrPaymentInvalidInput indicates an unknown payment method or an unparseable amount.
	ErrPaymentInvalidInput = errPaymentInvalidInput
)

// RegistrationError lists the registration fields that failed validation.
type RegistrationError struct {
	fields []string
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s: missing or invalid fields [%s]", errCustomerInvalidInput, strings.Join(e.fields, ", "))
}

// Fields returns a copy of the failing field names.
func (e *RegistrationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Unwrap lets errors.Is match ErrCustomerInvalidInput.
func (e *RegistrationError) Unwrap() error { return errCustomerInvalidInput }
