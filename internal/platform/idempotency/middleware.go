package idempotency

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/infinite-doughmain/ordering/internal/platform/httpx"
	"github.com/infinite-doughmain/ordering/internal/platform/requestctx"
)

const (
	// HeaderName carries the client-chosen idempotency key.
	HeaderName = "Idempotency-Key"
	// ReplayHeaderName is set on responses served from the store.
	ReplayHeaderName = "X-Idempotent-Replay"
)

var (
	errKeyConflict = httpx.NewError("idempotency_key_conflict", "idempotency key already used for a different request", http.StatusConflict)
	errInFlight    = httpx.NewError("idempotency_in_progress", "another request is processing this idempotency key", http.StatusConflict)
	errStore       = httpx.NewError("idempotency_store_error", "unable to process idempotency key", http.StatusInternalServerError)
	errTooLarge    = httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge)
	errUnreadable  = httpx.NewError("invalid_request", "unable to read request body", http.StatusBadRequest)
)

// Option customises the middleware.
type Option func(*guard)

// WithTTL overrides how long completed responses are replayable.
func WithTTL(ttl time.Duration) Option {
	return func(g *guard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(g *guard) {
		if clock != nil {
			g.now = clock
		}
	}
}

// WithMaxBodyBytes caps the body buffered for fingerprinting. Defaults to httpx.MaxBodyBytes.
func WithMaxBodyBytes(limit int64) Option {
	return func(g *guard) {
		if limit > 0 {
			g.maxBody = limit
		}
	}
}

type guard struct {
	store   Store
	next    http.Handler
	ttl     time.Duration
	now     func() time.Time
	maxBody int64
}

// Middleware replays the first successful response when a session step is retried with the
// same Idempotency-Key, method, path and body. GET, HEAD and requests without the header pass
// straight through.
func Middleware(store Store, opts ...Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		g := &guard{store: store, next: next, ttl: DefaultTTL, now: time.Now, maxBody: httpx.MaxBodyBytes}
		for _, opt := range opts {
			if opt != nil {
				opt(g)
			}
		}
		return g
	}
}

func (g *guard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get(HeaderName))
	if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
		g.next.ServeHTTP(w, r)
		return
	}
	ctx := r.Context()

	body, err := g.buffer(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(ctx, w, errTooLarge)
		} else {
			httpx.WriteError(ctx, w, errUnreadable)
		}
		return
	}
	fingerprint := fingerprintOf(r.Method, r.URL.RequestURI(), body)

	outcome, stored, err := g.store.Reserve(ctx, key, fingerprint, g.now().UTC(), g.ttl)
	switch {
	case errors.Is(err, ErrFingerprintMismatch):
		httpx.WriteError(ctx, w, errKeyConflict)
		return
	case err != nil:
		requestctx.Logger(ctx).Error("idempotency reserve failed", zap.Error(err))
		httpx.WriteError(ctx, w, errStore)
		return
	case outcome == OutcomeReplay:
		requestctx.Logger(ctx).Info("idempotent replay", zap.Int("status", stored.Status))
		replay(w, stored)
		return
	case outcome == OutcomeInFlight:
		httpx.WriteError(ctx, w, errInFlight)
		return
	}

	captured := &capture{header: http.Header{}}
	g.next.ServeHTTP(captured, r)
	resp := captured.response()

	// A failed step leaves the session unchanged, so the key is freed for a retry.
	if resp.Status >= http.StatusBadRequest {
		if err := g.store.Release(ctx, key); err != nil {
			requestctx.Logger(ctx).Warn("idempotency release failed", zap.Error(err))
		}
	} else if err := g.store.Complete(ctx, key, fingerprint, resp, g.now().UTC(), g.ttl); err != nil {
		requestctx.Logger(ctx).Warn("idempotency complete failed", zap.Error(err))
	}
	write(w, resp)
}

// buffer reads the capped body and rewinds it for the wrapped handler.
func (g *guard) buffer(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, g.maxBody))
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

func fingerprintOf(method, uri string, body []byte) string {
	return sha256Hex([]byte(method + " " + uri + "\n" + sha256Hex(body)))
}

func replay(w http.ResponseWriter, resp Response) {
	w.Header().Set(ReplayHeaderName, "true")
	write(w, resp)
}

func write(w http.ResponseWriter, resp Response) {
	for name, values := range resp.Headers {
		w.Header()[name] = append([]string(nil), values...)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// capture holds the wrapped handler's response until the outcome is recorded.
type capture struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (c *capture) Header() http.Header { return c.header }

func (c *capture) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
}

func (c *capture) Write(data []byte) (int, error) {
	c.WriteHeader(http.StatusOK)
	return c.body.Write(data)
}

func (c *capture) response() Response {
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	return Response{Status: status, Headers: c.header, Body: c.body.Bytes()}
}
