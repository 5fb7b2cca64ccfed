package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/infinite-doughmain/ordering/internal/platform/requestctx"
	"github.com/infinite-doughmain/ordering/internal/platform/textutil"
)

// MaxBodyBytes caps every request body the terminal API accepts.
const MaxBodyBytes = 16 << 10

// Error is an API failure before it is written. Fields names the request fields at fault,
// for example the missing registration fields.
type Error struct {
	Code    string
	Message string
	Status  int
	Fields  []string
}

// envelope is the wire form of Error.
type envelope struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Status    int      `json:"status"`
	Fields    []string `json:"fields,omitempty"`
	OrderID   string   `json:"order_id,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
	TraceID   string   `json:"trace_id,omitempty"`
}

// NewError builds an Error. A zero status means 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{Code: oneLine(code, 80), Message: oneLine(message, 512), Status: status}
}

// WithFields returns a copy of e naming the offending request fields.
func (e Error) WithFields(fields []string) Error {
	e.Fields = append([]string(nil), fields...)
	return e
}

// WriteError writes e as the JSON envelope. The envelope carries the request id, the trace id
// and, once a handler has tagged it, the order the failed request was acting on.
func WriteError(ctx context.Context, w http.ResponseWriter, e Error) {
	if e.Status == 0 {
		e.Status = http.StatusInternalServerError
	}
	orderID, _ := requestctx.Session(ctx)
	body := envelope{
		Error:     e.Code,
		Message:   e.Message,
		Status:    e.Status,
		Fields:    e.Fields,
		OrderID:   orderID,
		RequestID: oneLine(middleware.GetReqID(ctx), 80),
		TraceID:   requestctx.TraceID(ctx),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(body)
}

// oneLine collapses whitespace runs, including newlines, and caps the result at limit runes.
func oneLine(value string, limit int) string {
	return textutil.Truncate(strings.Join(strings.Fields(value), " "), limit, "")
}
