package repositories

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerStoreErrorFormatting(t *testing.T) {
	err := NewCustomerStoreError("filestore.LoadAll", CustomerStoreErrorUnavailable, fs.ErrPermission)

	assert.Equal(t, "filestore.LoadAll: customer_store_unavailable: permission denied", err.Error())
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.False(t, IsCorrupt(err))
}

func TestIsCorruptThroughWrapping(t *testing.T) {
	base := NewCustomerStoreError("", CustomerStoreErrorCorrupt, errors.New("unexpected EOF"))
	wrapped := fmt.Errorf("load customers: %w", base)

	require.True(t, IsCorrupt(wrapped))
	assert.Equal(t, "customer_store_corrupt: unexpected EOF", base.Error())

	var nilErr *CustomerStoreError
	assert.Equal(t, "", nilErr.Error())
	assert.NoError(t, nilErr.Unwrap())
}
