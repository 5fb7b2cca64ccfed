package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/infinite-doughmain/ordering/internal/domain"
	"github.com/infinite-doughmain/ordering/internal/platform/textutil"
	"github.com/infinite-doughmain/ordering/internal/repositories"
)

// CustomerStore keeps the registered customers in memory and mirrors every change to the repository.
type CustomerStore struct {
	repo   repositories.CustomerRepository
	logger *zap.Logger

	mu        sync.RWMutex
	customers map[string]domain.Customer
}

// CustomerStoreDeps bundles the collaborators needed by the customer store.
type CustomerStoreDeps struct {
	Repository repositories.CustomerRepository
	Logger     *zap.Logger
}

// NewCustomerStore loads the persisted collection. An unreadable or corrupt store is logged and
// replaced by an empty collection so the terminal can keep taking orders.
func NewCustomerStore(ctx context.Context, deps CustomerStoreDeps) (*CustomerStore, error) {
	if deps.Repository == nil {
		return nil, errors.New("customer store: repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	loaded, err := deps.Repository.LoadAll(ctx)
	if err != nil {
		logger.Warn("customer store load failed; starting empty",
			zap.Error(err),
			zap.Bool("corrupt", repositories.IsCorrupt(err)),
		)
		loaded = nil
	}
	customers := make(map[string]domain.Customer, len(loaded))
	for key, customer := range loaded {
		if key == "" {
			continue
		}
		customers[key] = customer
	}
	logger.Info("customer store loaded", zap.Int("customers", len(customers)))

	return &CustomerStore{
		repo:      deps.Repository,
		logger:    logger,
		customers: customers,
	}, nil
}

// NormalizePhone keeps only the ASCII digits of phone. The result may be empty.
func NormalizePhone(phone string) string {
	return textutil.DigitsOnly(phone)
}

// Find returns the customer registered under the normalised form of phone.
func (s *CustomerStore) Find(phone string) (domain.Customer, bool) {
	key := NormalizePhone(phone)
	if key == "" {
		return domain.Customer{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customers[key]
	return customer, ok
}

// Exists reports whether a customer is registered under phone.
func (s *CustomerStore) Exists(phone string) bool {
	_, ok := s.Find(phone)
	return ok
}

// Len reports how many customers are registered.
func (s *CustomerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers)
}

// Save inserts or wholly replaces the record keyed by the customer's phone and persists the
// collection before the in-memory view changes.
func (s *CustomerStore) Save(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	key := NormalizePhone(customer.Phone)
	if key == "" {
		return domain.Customer{}, ErrCustomerInvalidPhone
	}
	customer.PhoneKey = key
	customer.Phone = strings.TrimSpace(customer.Phone)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]domain.Customer, len(s.customers)+1)
	for k, v := range s.customers {
		next[k] = v
	}
	_, replaced := next[key]
	next[key] = customer

	if err := s.repo.ReplaceAll(ctx, next); err != nil {
		s.logger.Error("customer store persist failed", zap.String("phoneKey", key), zap.Error(err))
		return domain.Customer{}, fmt.Errorf("%w: %w", ErrCustomerStorageUnavailable, err)
	}
	s.customers = next
	s.logger.Info("customer saved", zap.String("phoneKey", key), zap.Bool("replaced", replaced))
	return customer, nil
}
