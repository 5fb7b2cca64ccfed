package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/infinite-doughmain/ordering/internal/platform/httpx"
)

// APIPrefix is the mount point of the menu and session routes.
const APIPrefix = "/api/v1"

// RouteRegistrar mounts one route group.
type RouteRegistrar func(r chi.Router)

type Middleware = func(http.Handler) http.Handler

type routes struct {
	global  []Middleware
	health  *HealthHandlers
	menu    RouteRegistrar
	session RouteRegistrar
	// sessionOnly wraps just the session group, where every request moves the terminal state.
	sessionOnly []Middleware
}

type Option func(*routes)

// WithMiddlewares appends router-wide middleware after request id, real ip and timeout.
func WithMiddlewares(mw ...Middleware) Option {
	return func(rt *routes) { rt.global = append(rt.global, mw...) }
}

// WithSessionMiddlewares appends middleware that wraps only the session routes.
func WithSessionMiddlewares(mw ...Middleware) Option {
	return func(rt *routes) { rt.sessionOnly = append(rt.sessionOnly, mw...) }
}

func WithHealthHandlers(h *HealthHandlers) Option {
	return func(rt *routes) { rt.health = h }
}

func WithMenuRoutes(reg RouteRegistrar) Option {
	return func(rt *routes) { rt.menu = reg }
}

func WithSessionRoutes(reg RouteRegistrar) Option {
	return func(rt *routes) { rt.session = reg }
}

// NewRouter builds the terminal API: /healthz and /readyz at the root, /menu and /session
// under APIPrefix. Unmatched paths and methods answer with the JSON error envelope.
func NewRouter(opts ...Option) chi.Router {
	rt := routes{
		global: []Middleware{middleware.RequestID, middleware.RealIP, middleware.Timeout(30 * time.Second)},
	}
	for _, opt := range opts {
		opt(&rt)
	}
	if rt.health == nil {
		rt.health = NewHealthHandlers()
	}

	r := chi.NewRouter()
	use(r, rt.global)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("route_not_found", "no route for "+req.URL.Path, http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", req.Method+" is not allowed on "+req.URL.Path, http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", rt.health.Healthz)
	r.Get("/readyz", rt.health.Readyz)

	r.Route(APIPrefix, func(api chi.Router) {
		if rt.menu != nil {
			api.Route("/menu", rt.menu)
		}
		if rt.session != nil {
			api.Route("/session", func(s chi.Router) {
				use(s, rt.sessionOnly)
				rt.session(s)
			})
		}
	})
	return r
}

func use(r chi.Router, mws []Middleware) {
	for _, mw := range mws {
		if mw != nil {
			r.Use(mw)
		}
	}
}
