// Package requestctx carries per-request values for the ordering terminal: the scoped logger,
// the trace the request belongs to, and the session the request acted on.
package requestctx

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type key int

const (
	loggerKey key = iota
	traceKey
	sessionKey
)

var nop = zap.NewNop()

// TraceInfo identifies the span serving a request.
type TraceInfo struct {
	TraceID string
	SpanID  string
	Sampled bool
}

// WithLogger returns ctx carrying logger. A nil logger stores the no-op logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = nop
	}
	return context.WithValue(orBackground(ctx), loggerKey, logger)
}

// Logger returns the request logger, or a no-op logger outside a request.
func Logger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, _ := ctx.Value(loggerKey).(*zap.Logger); l != nil {
			return l
		}
	}
	return nop
}

// NoopLogger is the logger Logger falls back to.
func NoopLogger() *zap.Logger { return nop }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return context.WithValue(orBackground(ctx), traceKey, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	if ctx == nil {
		return TraceInfo{}, false
	}
	info, ok := ctx.Value(traceKey).(TraceInfo)
	return info, ok
}

// TraceID is the hex trace id, or "" when the request is not traced.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// SessionTag records which order and customer a request touched. Middleware installs an
// empty tag before the handler runs and reads it back once the handler returns, since
// context values do not flow upward.
type SessionTag struct {
	mu       sync.Mutex
	orderID  string
	phoneKey string
}

// Set replaces the tagged order and customer. A guest session has an empty phone key.
func (t *SessionTag) Set(orderID, phoneKey string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.orderID, t.phoneKey = orderID, phoneKey
	t.mu.Unlock()
}

// Get returns the tagged order id and customer phone key.
func (t *SessionTag) Get() (orderID, phoneKey string) {
	if t == nil {
		return "", ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.orderID, t.phoneKey
}

// WithSessionTag attaches a fresh tag to ctx, reusing one that is already present.
func WithSessionTag(ctx context.Context) (context.Context, *SessionTag) {
	ctx = orBackground(ctx)
	if tag := sessionTag(ctx); tag != nil {
		return ctx, tag
	}
	tag := &SessionTag{}
	return context.WithValue(ctx, sessionKey, tag), tag
}

// TagSession fills the tag installed on ctx. It does nothing when no tag is present.
func TagSession(ctx context.Context, orderID, phoneKey string) {
	sessionTag(ctx).Set(orderID, phoneKey)
}

// Session reads the tag installed on ctx.
func Session(ctx context.Context) (orderID, phoneKey string) {
	return sessionTag(ctx).Get()
}

func sessionTag(ctx context.Context) *SessionTag {
	if ctx == nil {
		return nil
	}
	tag, _ := ctx.Value(sessionKey).(*SessionTag)
	return tag
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
