package di

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/infinite-doughmain/ordering/internal/platform/config"
	"github.com/infinite-doughmain/ordering/internal/repositories/filestore"
	"github.com/infinite-doughmain/ordering/internal/services"
)

func testConfig(path string) config.Config {
	return config.Config{
		Store:   config.StoreConfig{Backend: config.StoreBackendFile, Path: path},
		Receipt: config.ReceiptConfig{StoreName: "DOUGHMAIN TEST"},
		Display: config.DisplayConfig{Locale: language.AmericanEnglish},
	}
}

func TestNewContainerFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "customers.json")
	now := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

	c, err := NewContainer(context.Background(), testConfig(path), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	repo, ok := c.Customers.(*filestore.CustomerRepository)
	if !ok {
		t.Fatalf("expected file repository, got %T", c.Customers)
	}
	if repo.Path() != path {
		t.Fatalf("unexpected path %s", repo.Path())
	}
	if err := c.StoreReady(context.Background()); err != nil {
		t.Fatalf("store should be ready before first write: %v", err)
	}

	s, err := c.Services.Sessions.Register(context.Background(), c.Services.Sessions.Start(), services.RegisterCustomerCommand{
		Phone: "555-0100", Name: "Bo", Address: "2 Elm", City: "Macon", State: "GA", Zip: "31201",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected snapshot file: %v", err)
	}

	receipt := c.Services.Sessions.Receipt(s)
	if !strings.Contains(receipt, "          DOUGHMAIN TEST\n") || !strings.Contains(receipt, "Order Date: 03/05/2024 14:07:09") {
		t.Fatalf("receipt not wired to config and clock:\n%s", receipt)
	}
}

func TestFileStoreReadyRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := fileStoreReady(dir)(context.Background()); err == nil {
		t.Fatalf("expected error when path is a directory")
	}

	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fileStoreReady(filepath.Join(blocker, "customers.json"))(context.Background()); err == nil {
		t.Fatalf("expected error when parent is a file")
	}
}

func TestNewContainerRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig("")
	cfg.Store.Backend = "s3"
	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
