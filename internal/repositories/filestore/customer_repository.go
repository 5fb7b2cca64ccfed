// Package filestore keeps the customer collection in a single JSON document on local disk.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	domain "github.com/infinite-doughmain/ordering/internal/domain"
	"github.com/infinite-doughmain/ordering/internal/repositories"
)

const snapshotVersion = 1

// DefaultPath is where the store lives when no path is configured.
var DefaultPath = filepath.Join("customers", "customers.json")

// CustomerRepository reads and rewrites the whole snapshot file on every call.
type CustomerRepository struct {
	path string
}

var _ repositories.CustomerRepository = (*CustomerRepository)(nil)

type snapshotDocument struct {
	Version   int                       `json:"version"`
	Customers map[string]customerRecord `json:"customers"`
}

type customerRecord struct {
	PhoneKey          string `json:"phone_key"`
	Phone             string `json:"phone"`
	Name              string `json:"name"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
	Zip               string `json:"zip"`
	Subdivision       string `json:"subdivision,omitempty"`
	Intersection      string `json:"intersection,omitempty"`
	ChargeAccountType string `json:"charge_account_type,omitempty"`
	CardLast4         string `json:"card_last4,omitempty"`
}

// NewCustomerRepository constructs a repository rooted at path.
func NewCustomerRepository(path string) (*CustomerRepository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("filestore: path is required")
	}
	return &CustomerRepository{path: path}, nil
}

// Path returns the snapshot location.
func (r *CustomerRepository) Path() string {
	return r.path
}

// LoadAll decodes the snapshot. A missing file yields an empty collection.
func (r *CustomerRepository) LoadAll(ctx context.Context) (map[string]domain.Customer, error) {
	const op = "filestore.LoadAll"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]domain.Customer{}, nil
		}
		return nil, repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorUnavailable, err)
	}

	var doc snapshotDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorCorrupt, err)
	}
	if doc.Version != snapshotVersion {
		return nil, repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorCorrupt,
			fmt.Errorf("unsupported snapshot version %d", doc.Version))
	}

	customers := make(map[string]domain.Customer, len(doc.Customers))
	for key, record := range doc.Customers {
		if key == "" || record.PhoneKey != key {
			return nil, repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorCorrupt,
				fmt.Errorf("record key %q does not match phone key %q", key, record.PhoneKey))
		}
		customers[key] = record.toDomain()
	}
	return customers, nil
}

// ReplaceAll rewrites the snapshot atomically so readers see either the old or the new file.
func (r *CustomerRepository) ReplaceAll(ctx context.Context, customers map[string]domain.Customer) error {
	const op = "filestore.ReplaceAll"
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := snapshotDocument{
		Version:   snapshotVersion,
		Customers: make(map[string]customerRecord, len(customers)),
	}
	for key, customer := range customers {
		doc.Customers[key] = recordFromDomain(customer)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorUnavailable, err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorUnavailable, err)
		}
	}
	if err := atomic.WriteFile(r.path, bytes.NewReader(data)); err != nil {
		return repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorUnavailable, err)
	}
	return nil
}

func recordFromDomain(c domain.Customer) customerRecord {
	return customerRecord{
		PhoneKey:          c.PhoneKey,
		Phone:             c.Phone,
		Name:              c.Name,
		Address:           c.Address,
		City:              c.City,
		State:             c.State,
		Zip:               c.Zip,
		Subdivision:       c.Subdivision,
		Intersection:      c.Intersection,
		ChargeAccountType: c.ChargeAccountType,
		CardLast4:         c.CardLast4,
	}
}

func (r customerRecord) toDomain() domain.Customer {
	return domain.Customer{
		PhoneKey:          r.PhoneKey,
		Phone:             r.Phone,
		Name:              r.Name,
		Address:           r.Address,
		City:              r.City,
		State:             r.State,
		Zip:               r.Zip,
		Subdivision:       r.Subdivision,
		Intersection:      r.Intersection,
		ChargeAccountType: r.ChargeAccountType,
		CardLast4:         r.CardLast4,
	}
}
