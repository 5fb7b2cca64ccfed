package repositories

import (
	"context"

	domain "github.com/infinite-doughmain/ordering/internal/domain"
)

// CustomerRepository persists the customer collection as a single snapshot keyed by phone key.
// Implementations report a missing store as an empty collection, not an error.
type CustomerRepository interface {
	LoadAll(ctx context.Context) (map[string]domain.Customer, error)
	ReplaceAll(ctx context.Context, customers map[string]domain.Customer) error
}
