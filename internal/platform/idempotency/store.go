package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a completed response stays replayable.
const DefaultTTL = 10 * time.Minute

// Outcome reports what Reserve found for a key.
type Outcome int

const (
	// OutcomeNew means the caller now holds the key and must run the request.
	OutcomeNew Outcome = iota
	// OutcomeReplay means a stored response exists for the key.
	OutcomeReplay
	// OutcomeInFlight means the request holding the key has not finished.
	OutcomeInFlight
)

// ErrFingerprintMismatch is returned when a key is reused for a different request.
var ErrFingerprintMismatch = errors.New("idempotency: key reused for a different request")

// Response is a captured handler response.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Store holds reservations and captured responses per key.
type Store interface {
	Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Outcome, Response, error)
	Complete(ctx context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type entry struct {
	fingerprint string
	done        bool
	resp        Response
	expires     time.Time
}

// MemoryStore keeps entries in process memory, so they share the lifetime of the terminal
// session they protect.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]entry{}}
}

// Reserve claims key for fingerprint, or reports the stored or in-flight request under it.
// Expired entries are dropped first.
func (s *MemoryStore) Reserve(_ context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Outcome, Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}

	id := digest(key)
	e, found := s.entries[id]
	switch {
	case !found:
		s.entries[id] = entry{fingerprint: fingerprint, expires: now.Add(orDefault(ttl))}
		return OutcomeNew, Response{}, nil
	case e.fingerprint != fingerprint:
		return OutcomeNew, Response{}, ErrFingerprintMismatch
	case e.done:
		return OutcomeReplay, copyResponse(e.resp), nil
	default:
		return OutcomeInFlight, Response{}, nil
	}
}

// Complete stores resp under key, restarting its TTL.
func (s *MemoryStore) Complete(_ context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := digest(key)
	if e, found := s.entries[id]; found && e.fingerprint != fingerprint {
		return ErrFingerprintMismatch
	}
	s.entries[id] = entry{fingerprint: fingerprint, done: true, resp: copyResponse(resp), expires: now.Add(orDefault(ttl))}
	return nil
}

// Release forgets key.
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, digest(key))
	s.mu.Unlock()
	return nil
}

// Len counts entries, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func orDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

func digest(key string) string {
	return sha256Hex([]byte(strings.TrimSpace(key)))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// copyResponse deep-copies resp, dropping hop-by-hop and length headers that must not be
// replayed verbatim.
func copyResponse(resp Response) Response {
	out := Response{Status: resp.Status, Headers: http.Header{}, Body: append([]byte(nil), resp.Body...)}
	for name, values := range resp.Headers {
		switch http.CanonicalHeaderKey(name) {
		case "Content-Length", "Date", "Connection", "Keep-Alive", "Transfer-Encoding", "Upgrade":
			continue
		}
		out.Headers[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}
	return out
}
