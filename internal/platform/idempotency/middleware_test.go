package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinite-doughmain/ordering/internal/platform/httpx"
)

var fixedTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func countingHandler(calls *int, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `{"calls":%d}`, *calls)
	})
}

func post(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/order/pizzas", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(HeaderName, key)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_PassesThroughWithoutKey(t *testing.T) {
	var calls int
	handler := Middleware(NewMemoryStore(), WithClock(fixedClock))(countingHandler(&calls, http.StatusOK))

	post(handler, "", `{"size":"Large"}`)
	post(handler, "", `{"size":"Large"}`)

	assert.Equal(t, 2, calls)
}

func TestMiddleware_ReplaysStoredResponse(t *testing.T) {
	var calls int
	store := NewMemoryStore()
	handler := Middleware(store, WithClock(fixedClock))(countingHandler(&calls, http.StatusOK))

	first := post(handler, "terminal-1", `{"size":"Large"}`)
	second := post(handler, "terminal-1", `{"size":"Large"}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(ReplayHeaderName))
	assert.Empty(t, first.Header().Get(ReplayHeaderName))
	assert.Equal(t, 1, store.Len())
}

func TestMiddleware_RejectsKeyReuseWithDifferentBody(t *testing.T) {
	var calls int
	handler := Middleware(NewMemoryStore(), WithClock(fixedClock))(countingHandler(&calls, http.StatusOK))

	post(handler, "terminal-1", `{"size":"Large"}`)
	rr := post(handler, "terminal-1", `{"size":"Small"}`)

	assert.Equal(t, 1, calls)
	require.Equal(t, http.StatusConflict, rr.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "idempotency_key_conflict", payload["error"])
}

func TestMiddleware_ReleasesKeyOnErrorResponse(t *testing.T) {
	var calls int
	store := NewMemoryStore()
	handler := Middleware(store, WithClock(fixedClock))(countingHandler(&calls, http.StatusBadRequest))

	first := post(handler, "terminal-1", `{"size":"Huge"}`)
	second := post(handler, "terminal-1", `{"size":"Huge"}`)

	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, 0, store.Len())
}

func TestMiddleware_IgnoresSafeMethods(t *testing.T) {
	var calls int
	handler := Middleware(NewMemoryStore(), WithClock(fixedClock))(countingHandler(&calls, http.StatusOK))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
		req.Header.Set(HeaderName, "terminal-1")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2, calls)
}

func TestMemoryStore_ExpiresRecords(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	outcome, _, err := store.Reserve(ctx, "k", "fp", fixedTime, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNew, outcome)

	outcome, _, err = store.Reserve(ctx, "k", "fp", fixedTime.Add(30*time.Second), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInFlight, outcome)

	require.NoError(t, store.Complete(ctx, "k", "fp", Response{Status: http.StatusCreated, Body: []byte("ok")}, fixedTime, time.Minute))
	outcome, resp, err := store.Reserve(ctx, "k", "fp", fixedTime.Add(30*time.Second), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplay, outcome)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, []byte("ok"), resp.Body)

	outcome, _, err = store.Reserve(ctx, "k", "fp", fixedTime.Add(2*time.Minute), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNew, outcome)
}

func TestMiddleware_RejectsOversizedBodyBeforeBuffering(t *testing.T) {
	var calls int
	store := NewMemoryStore()
	handler := Middleware(store, WithClock(fixedClock), WithMaxBodyBytes(64))(countingHandler(&calls, http.StatusOK))

	rr := post(handler, "terminal-1", `{"toppings":"`+strings.Repeat("x", 100)+`"}`)

	assert.Equal(t, 0, calls)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "payload_too_large", payload["error"])
	assert.Equal(t, 0, store.Len())
}

func TestMiddleware_DefaultBodyCapMatchesHandlers(t *testing.T) {
	var calls int
	handler := Middleware(NewMemoryStore(), WithClock(fixedClock))(countingHandler(&calls, http.StatusOK))

	rr := post(handler, "terminal-1", strings.Repeat(" ", httpx.MaxBodyBytes+1))

	assert.Equal(t, 0, calls)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
