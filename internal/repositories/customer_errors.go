package repositories

import (
	"errors"
	"fmt"
)

// CustomerStoreErrorCode enumerates repository error causes for the customer snapshot.
type CustomerStoreErrorCode string

const (
	// CustomerStoreErrorCorrupt indicates the stored snapshot exists but cannot be decoded.
	CustomerStoreErrorCorrupt CustomerStoreErrorCode = "customer_store_corrupt"
	// CustomerStoreErrorUnavailable indicates the store could not be read or written.
	CustomerStoreErrorUnavailable CustomerStoreErrorCode = "customer_store_unavailable"
)

// CustomerStoreError wraps snapshot failures with a machine readable code.
type CustomerStoreError struct {
	Op   string
	Code CustomerStoreErrorCode
	Err  error
}

// Error implements the error interface.
func (e *CustomerStoreError) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Code)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

// Unwrap exposes the underlying error, if any.
func (e *CustomerStoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewCustomerStoreError constructs a typed customer store error.
func NewCustomerStoreError(op string, code CustomerStoreErrorCode, err error) *CustomerStoreError {
	return &CustomerStoreError{Op: op, Code: code, Err: err}
}

// IsCorrupt reports whether err signals an undecodable snapshot.
func IsCorrupt(err error) bool {
	var storeErr *CustomerStoreError
	return errors.As(err, &storeErr) && storeErr.Code == CustomerStoreErrorCorrupt
}
