// Package postgres stores the customer collection in a single Postgres table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/infinite-doughmain/ordering/internal/domain"
	"github.com/infinite-doughmain/ordering/internal/repositories"
)

const (
	customersTable = "customers"
	connectTimeout = 10 * time.Second
)

var customerColumns = []string{
	"phone_key", "phone", "name", "address", "city", "state", "zip",
	"subdivision", "intersection", "charge_account_type", "card_last4",
}

const createCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
	phone_key           TEXT PRIMARY KEY CHECK (phone_key <> ''),
	phone               TEXT NOT NULL DEFAULT '',
	name                TEXT NOT NULL DEFAULT '',
	address             TEXT NOT NULL DEFAULT '',
	city                TEXT NOT NULL DEFAULT '',
	state               TEXT NOT NULL DEFAULT '',
	zip                 TEXT NOT NULL DEFAULT '',
	subdivision         TEXT NOT NULL DEFAULT '',
	intersection        TEXT NOT NULL DEFAULT '',
	charge_account_type TEXT NOT NULL DEFAULT '',
	card_last4          TEXT NOT NULL DEFAULT ''
)`

// DB is the subset of pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CustomerRepository keeps one row per customer and rewrites the table on every save.
type CustomerRepository struct {
	db DB
}

var _ repositories.CustomerRepository = (*CustomerRepository)(nil)

// NewPool parses the connection URL and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return nil, errors.New("postgres: database url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	cfg.MaxConns = 4

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// NewCustomerRepository wraps a connection pool.
func NewCustomerRepository(db DB) (*CustomerRepository, error) {
	if db == nil {
		return nil, errors.New("postgres: db is required")
	}
	return &CustomerRepository{db: db}, nil
}

// EnsureSchema creates the customers table when it does not exist yet.
func (r *CustomerRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createCustomersTable); err != nil {
		return repositories.NewCustomerStoreError("postgres.EnsureSchema", repositories.CustomerStoreErrorUnavailable, err)
	}
	return nil
}

// LoadAll reads every row. An empty table is an empty collection.
func (r *CustomerRepository) LoadAll(ctx context.Context) (map[string]domain.Customer, error) {
	const op = "postgres.LoadAll"
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(customerColumns, ", "), customersTable)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorUnavailable, err)
	}
	defer rows.Close()

	customers := make(map[string]domain.Customer)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(
			&c.PhoneKey, &c.Phone, &c.Name, &c.Address, &c.City, &c.State, &c.Zip,
			&c.Subdivision, &c.Intersection, &c.ChargeAccountType, &c.CardLast4,
		); err != nil {
			return nil, repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorCorrupt, err)
		}
		customers[c.PhoneKey] = c
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorUnavailable, err)
	}
	return customers, nil
}

// ReplaceAll swaps the table contents inside one transaction.
func (r *CustomerRepository) ReplaceAll(ctx context.Context, customers map[string]domain.Customer) error {
	const op = "postgres.ReplaceAll"
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+customersTable); err != nil {
			return err
		}
		if len(customers) == 0 {
			return nil
		}
		rows := make([][]any, 0, len(customers))
		for _, c := range customers {
			rows = append(rows, []any{
				c.PhoneKey, c.Phone, c.Name, c.Address, c.City, c.State, c.Zip,
				c.Subdivision, c.Intersection, c.ChargeAccountType, c.CardLast4,
			})
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{customersTable}, customerColumns, pgx.CopyFromRows(rows))
		return err
	})
	if err != nil {
		return repositories.NewCustomerStoreError(op, repositories.CustomerStoreErrorUnavailable, err)
	}
	return nil
}
