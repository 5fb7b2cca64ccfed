package di

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/infinite-doughmain/ordering/internal/format"
	"github.com/infinite-doughmain/ordering/internal/menu"
	"github.com/infinite-doughmain/ordering/internal/platform/config"
	"github.com/infinite-doughmain/ordering/internal/repositories"
	"github.com/infinite-doughmain/ordering/internal/repositories/filestore"
	"github.com/infinite-doughmain/ordering/internal/repositories/postgres"
	"github.com/infinite-doughmain/ordering/internal/services"
)

// Services bundles the core components that handlers rely upon.
type Services struct {
	Customers *services.CustomerStore
	Builder   *services.OrderBuilder
	Receipts  *services.ReceiptEngine
	Sessions  *services.SessionController
}

// Container wires the customer repository, services and display helpers for runtime use.
type Container struct {
	Config    config.Config
	Catalog   menu.Catalog
	Customers repositories.CustomerRepository
	Services  Services
	Printer   *format.Printer

	// StoreReady probes the customer store backend for /readyz.
	StoreReady func(ctx context.Context) error

	closers []func()
}

// Option customises container construction.
type Option func(*containerOptions)

type containerOptions struct {
	logger     *zap.Logger
	repository repositories.CustomerRepository
	clock      func() time.Time
}

// WithLogger sets the logger handed to services.
func WithLogger(logger *zap.Logger) Option {
	return func(o *containerOptions) {
		o.logger = logger
	}
}

// WithCustomerRepository bypasses backend selection and uses repo directly.
func WithCustomerRepository(repo repositories.CustomerRepository) Option {
	return func(o *containerOptions) {
		o.repository = repo
	}
}

// WithClock overrides the clock used for receipts and order ids.
func WithClock(clock func() time.Time) Option {
	return func(o *containerOptions) {
		o.clock = clock
	}
}

// NewContainer constructs the runtime dependencies for cfg.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	options := containerOptions{clock: time.Now}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = zap.NewNop()
	}

	c := &Container{
		Config:  cfg,
		Catalog: menu.Default(),
		Printer: format.NewPrinter(cfg.Display.Locale),
	}

	if options.repository != nil {
		c.Customers = options.repository
		c.StoreReady = func(context.Context) error { return nil }
	} else if err := c.buildCustomerRepository(ctx, cfg.Store, options.logger); err != nil {
		return nil, err
	}

	svc, err := buildServices(ctx, c, cfg, options)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Services = svc
	return c, nil
}

// Close releases the database pool, if one was opened.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Container) buildCustomerRepository(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) error {
	switch cfg.Backend {
	case config.StoreBackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open customer database: %w", err)
		}
		c.closers = append(c.closers, pool.Close)

		repo, err := postgres.NewCustomerRepository(pool)
		if err != nil {
			c.Close()
			return fmt.Errorf("build postgres customer repository: %w", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			c.Close()
			return fmt.Errorf("ensure customer schema: %w", err)
		}
		c.Customers = repo
		c.StoreReady = pool.Ping
		logger.Info("customer store backend selected", zap.String("backend", string(cfg.Backend)))
		return nil

	case config.StoreBackendFile, "":
		path := cfg.Path
		if path == "" {
			path = filestore.DefaultPath
		}
		repo, err := filestore.NewCustomerRepository(path)
		if err != nil {
			return fmt.Errorf("build file customer repository: %w", err)
		}
		c.Customers = repo
		c.StoreReady = fileStoreReady(repo.Path())
		logger.Info("customer store backend selected",
			zap.String("backend", string(config.StoreBackendFile)),
			zap.String("path", repo.Path()),
		)
		return nil

	default:
		return fmt.Errorf("unsupported customer store backend %q", cfg.Backend)
	}
}

func buildServices(ctx context.Context, c *Container, cfg config.Config, options containerOptions) (Services, error) {
	store, err := services.NewCustomerStore(ctx, services.CustomerStoreDeps{
		Repository: c.Customers,
		Logger:     options.logger.Named("customers"),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build customer store: %w", err)
	}

	builder := services.NewOrderBuilder(c.Catalog)
	receipts := services.NewReceiptEngine(services.ReceiptEngineDeps{StoreName: cfg.Receipt.StoreName})

	sessions, err := services.NewSessionController(services.SessionControllerDeps{
		Customers: store,
		Builder:   builder,
		Receipts:  receipts,
		Clock:     options.clock,
		Logger:    options.logger.Named("session"),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build session controller: %w", err)
	}

	return Services{
		Customers: store,
		Builder:   builder,
		Receipts:  receipts,
		Sessions:  sessions,
	}, nil
}

// fileStoreReady fails when the snapshot path exists but is not a regular file, or when the
// nearest existing parent cannot be inspected.
func fileStoreReady(path string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := os.Stat(path)
		switch {
		case err == nil:
			if !info.Mode().IsRegular() {
				return fmt.Errorf("customer store %s is not a regular file", path)
			}
			return nil
		case errors.Is(err, os.ErrNotExist):
			dir := filepath.Dir(path)
			for {
				dirInfo, dirErr := os.Stat(dir)
				if dirErr == nil {
					if !dirInfo.IsDir() {
						return fmt.Errorf("customer store parent %s is not a directory", dir)
					}
					return nil
				}
				if !errors.Is(dirErr, os.ErrNotExist) {
					return dirErr
				}
				parent := filepath.Dir(dir)
				if parent == dir {
					return nil
				}
				dir = parent
			}
		default:
			return err
		}
	}
}
