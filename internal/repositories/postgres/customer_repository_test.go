package postgres

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/infinite-doughmain/ordering/internal/domain"
)

const testDatabaseURLEnv = "DOUGHMAIN_TEST_DATABASE_URL"

func newTestRepository(t *testing.T) *CustomerRepository {
	t.Helper()
	url := strings.TrimSpace(os.Getenv(testDatabaseURLEnv))
	if url == "" {
		t.Skipf("%s not set; skipping postgres integration test", testDatabaseURLEnv)
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo, err := NewCustomerRepository(pool)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.ReplaceAll(ctx, nil))
	return repo
}

func TestCustomerRepositoryIntegrationRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	want := map[string]domain.Customer{
		"5551212": {PhoneKey: "5551212", Phone: "555-1212", Name: "Alice", Address: "1 Main St", City: "Marietta", State: "GA", Zip: "30060"},
		"5550000": {PhoneKey: "5550000", Phone: "555 0000", Name: "Bob", Intersection: "5th & Elm", CardLast4: "1111"},
	}
	require.NoError(t, repo.ReplaceAll(ctx, want))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, repo.ReplaceAll(ctx, map[string]domain.Customer{"5550000": want["5550000"]}))
	got, err = repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNewCustomerRepositoryRequiresDB(t *testing.T) {
	_, err := NewCustomerRepository(nil)
	assert.Error(t, err)
}

func TestNewPoolRequiresURL(t *testing.T) {
	_, err := NewPool(context.Background(), " ")
	assert.Error(t, err)
}
