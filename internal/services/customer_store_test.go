package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/infinite-doughmain/ordering/internal/domain"
	"github.com/infinite-doughmain/ordering/internal/repositories"
	"github.com/infinite-doughmain/ordering/internal/repositories/filestore"
)

type fakeCustomerRepository struct {
	loaded     map[string]domain.Customer
	loadErr    error
	replaceErr error
	replaced   []map[string]domain.Customer
}

func (f *fakeCustomerRepository) LoadAll(context.Context) (map[string]domain.Customer, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make(map[string]domain.Customer, len(f.loaded))
	for k, v := range f.loaded {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCustomerRepository) ReplaceAll(_ context.Context, customers map[string]domain.Customer) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	snapshot := make(map[string]domain.Customer, len(customers))
	for k, v := range customers {
		snapshot[k] = v
	}
	f.replaced = append(f.replaced, snapshot)
	return nil
}

func newTestCustomerStore(t *testing.T, repo repositories.CustomerRepository) *CustomerStore {
	t.Helper()
	store, err := NewCustomerStore(context.Background(), CustomerStoreDeps{Repository: repo})
	if err != nil {
		t.Fatalf("NewCustomerStore: %v", err)
	}
	return store
}

func TestNormalizePhone(t *testing.T) {
	inputs := []string{"(770) 555-1212", "770.555.1212", "770-555-1212", "7705551212", " 770 555 1212 "}
	for _, in := range inputs {
		if got := NormalizePhone(in); got != "7705551212" {
			t.Fatalf("NormalizePhone(%q) = %q", in, got)
		}
		if twice := NormalizePhone(NormalizePhone(in)); twice != NormalizePhone(in) {
			t.Fatalf("NormalizePhone not idempotent for %q", in)
		}
	}
	if got := NormalizePhone("call me"); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}

func TestNewCustomerStoreRequiresRepository(t *testing.T) {
	if _, err := NewCustomerStore(context.Background(), CustomerStoreDeps{}); err == nil {
		t.Fatalf("expected error for missing repository")
	}
}

func TestNewCustomerStoreStartsEmptyOnLoadFailure(t *testing.T) {
	repo := &fakeCustomerRepository{
		loadErr: repositories.NewCustomerStoreError("load", repositories.CustomerStoreErrorCorrupt, errors.New("bad json")),
	}
	store := newTestCustomerStore(t, repo)
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestCustomerStoreSaveAndFindIgnoresPunctuation(t *testing.T) {
	repo := &fakeCustomerRepository{}
	store := newTestCustomerStore(t, repo)

	saved, err := store.Save(context.Background(), domain.Customer{Phone: "(770) 555-1212", Name: "Al"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.PhoneKey != "7705551212" {
		t.Fatalf("unexpected key %q", saved.PhoneKey)
	}

	got, ok := store.Find("770-555-1212")
	if !ok || got.Name != "Al" {
		t.Fatalf("expected Al, got %+v ok=%v", got, ok)
	}
	if !store.Exists("770.555.1212") {
		t.Fatalf("expected Exists to match punctuated form")
	}
	if len(repo.replaced) != 1 {
		t.Fatalf("expected one persist call, got %d", len(repo.replaced))
	}
}

func TestCustomerStoreFindEmptyKeyIsMiss(t *testing.T) {
	store := newTestCustomerStore(t, &fakeCustomerRepository{
		loaded: map[string]domain.Customer{"5551234": {PhoneKey: "5551234", Name: "Bo"}},
	})
	if _, ok := store.Find("---"); ok {
		t.Fatalf("empty key must not match")
	}
	if store.Exists("") {
		t.Fatalf("empty phone must not exist")
	}
}

func TestCustomerStoreSaveOverwritesWithoutMerge(t *testing.T) {
	store := newTestCustomerStore(t, &fakeCustomerRepository{})
	ctx := context.Background()

	if _, err := store.Save(ctx, domain.Customer{Phone: "5551234", Name: "Al", Subdivision: "Oak Hill"}); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if _, err := store.Save(ctx, domain.Customer{Phone: "555-1234", Name: "Alicia"}); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	got, ok := store.Find("5551234")
	if !ok {
		t.Fatalf("expected customer")
	}
	if got.Name != "Alicia" {
		t.Fatalf("expected overwrite, got %q", got.Name)
	}
	if got.Subdivision != "" {
		t.Fatalf("expected no merge of old fields, got subdivision %q", got.Subdivision)
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single record, got %d", store.Len())
	}
}

func TestCustomerStoreSaveRejectsEmptyKey(t *testing.T) {
	repo := &fakeCustomerRepository{}
	store := newTestCustomerStore(t, repo)
	_, err := store.Save(context.Background(), domain.Customer{Phone: "n/a", Name: "Nobody"})
	if !errors.Is(err, ErrCustomerInvalidPhone) {
		t.Fatalf("expected ErrCustomerInvalidPhone, got %v", err)
	}
	if len(repo.replaced) != 0 {
		t.Fatalf("nothing should be persisted")
	}
}

func TestCustomerStoreSaveFailureKeepsPreviousState(t *testing.T) {
	repo := &fakeCustomerRepository{
		loaded: map[string]domain.Customer{"5551234": {PhoneKey: "5551234", Phone: "5551234", Name: "Al"}},
	}
	store := newTestCustomerStore(t, repo)
	repo.replaceErr = errors.New("disk full")

	_, err := store.Save(context.Background(), domain.Customer{Phone: "5551234", Name: "Alicia"})
	if !errors.Is(err, ErrCustomerStorageUnavailable) {
		t.Fatalf("expected ErrCustomerStorageUnavailable, got %v", err)
	}
	got, _ := store.Find("5551234")
	if got.Name != "Al" {
		t.Fatalf("in-memory state changed after failed persist: %q", got.Name)
	}
	if _, err := store.Save(context.Background(), domain.Customer{Phone: "5559999", Name: "New"}); err == nil {
		t.Fatalf("expected second failure")
	}
	if store.Exists("5559999") {
		t.Fatalf("failed insert must not be visible")
	}
}

func TestCustomerStorePersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers", "customers.json")
	repo, err := filestore.NewCustomerRepository(path)
	if err != nil {
		t.Fatalf("NewCustomerRepository: %v", err)
	}
	ctx := context.Background()

	first := newTestCustomerStore(t, repo)
	if _, err := first.Save(ctx, domain.Customer{
		Phone: "(770) 555-1212", Name: "Al", Address: "1 Main St", City: "Atlanta", State: "GA", Zip: "30301",
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := filestore.NewCustomerRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	second := newTestCustomerStore(t, reopened)
	got, ok := second.Find("7705551212")
	if !ok {
		t.Fatalf("customer lost across reload")
	}
	if got.Name != "Al" || got.FullAddress() != "1 Main St, Atlanta, GA 30301" {
		t.Fatalf("unexpected reloaded customer %+v", got)
	}
}
