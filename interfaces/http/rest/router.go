// Package rest is graphd's admin/status/debug HTTP surface (spec.md's
// external interfaces are silent on an HTTP API; SPEC_FULL §6.5 adds
// this as the ambient surface a shipped graphd carries, grounded on the
// teacher's (2lar-b2/backend2) interfaces/http/rest/router.go: chi +
// chi/middleware + go-chi/cors + versioned routes).
package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"graphd/interfaces/http/rest/handlers"
	"graphd/pkg/auth"
	"graphd/pkg/errors"
)

// Deps bundles the read-only handles the admin surface needs. Nothing
// here is a package-level global; Router is constructed once per
// process from an already-built procctx.Context and friends.
type Deps struct {
	Logger    *zap.Logger
	Validator *auth.JWTValidator // nil disables auth (local/dev mode)
	Limiter   auth.RateLimiter   // nil disables rate limiting
	Debug     handlers.DebugHandler
	// DebugMode controls whether recovered panics and 5xx errors include a
	// stack trace / raw error text in the response body.
	DebugMode bool
}

// NewRouter builds the chi.Mux serving /health, /ready, and the
// JWT-gated /debug/* introspection routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	errHandler := errors.NewErrorHandler(deps.Logger, deps.DebugMode)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(zapRequestLogger(deps.Logger))
	r.Use(errHandler.Middleware)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(deps.Debug))

	r.Route("/debug", func(dr chi.Router) {
		if deps.Limiter != nil {
			dr.Use(rateLimit(deps.Limiter, errHandler))
		}
		if deps.Validator != nil {
			dr.Use(deps.Validator.Middleware)
		}
		dr.Get("/cache/stats", deps.Debug.CacheStats)
		dr.Get("/xstate", deps.Debug.XStateQueue)
		dr.Post("/cursor/thaw", deps.Debug.ThawCursor)
	})

	return r
}

func zapRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func rateLimit(limiter auth.RateLimiter, errHandler *errors.ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), r.RemoteAddr)
			if err != nil {
				errHandler.Handle(w, r, errors.NewInternalError("rate limiter unavailable").WithCause(err))
				return
			}
			if !ok {
				errHandler.Handle(w, r, &errors.AppError{
					Type:       errors.ErrorTypeRateLimit,
					Message:    "rate limit exceeded",
					HTTPStatus: http.StatusTooManyRequests,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
