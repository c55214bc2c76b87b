package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/4and4/milo-server/internal/infrastructure/http/handlers"
	"github.com/4and4/milo-server/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	StorageHandler  *handlers.StorageHandler
	ProjectsHandler *handlers.ProjectsHandler
	AuthHandler     *handlers.AuthHandler
	HealthHandler   *handlers.HealthHandler
	Identity        *middleware.Identity             // resolves Bearer tokens; anonymous passes through
	OAuthBegin      http.HandlerFunc                 // GET /users/auth/{provider}
	OAuthCallback   http.HandlerFunc                 // GET /users/auth/{provider}/callback
	Logout          http.HandlerFunc                 // GET /users/logout
	Log             zerolog.Logger
	Secure          func(http.Handler) http.Handler
	CORS            func(http.Handler) http.Handler
	IPRateLimit     func(http.Handler) http.Handler
	UserRateLimit   func(http.Handler) http.Handler
	Metrics         bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}
	if cfg.Identity != nil {
		r.Use(cfg.Identity.Handler)
	}
	if cfg.UserRateLimit != nil {
		r.Use(cfg.UserRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	jsonOnly := chimid.AllowContentType("application/json")

	// The storage protocol accepts anonymous reads; the save path denies
	// them with a body status, not an HTTP 401.
	r.With(jsonOnly).Post("/storage", cfg.StorageHandler.Handle)

	r.Route("/projects", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Use(jsonOnly)
		r.Post("/list", cfg.ProjectsHandler.List)
		r.Post("/update", cfg.ProjectsHandler.Update)
	})

	r.Route("/users", func(r chi.Router) {
		r.With(jsonOnly).Post("/register", cfg.AuthHandler.Register)
		r.With(jsonOnly).Post("/login", cfg.AuthHandler.Login)
		r.Get("/status", cfg.AuthHandler.Status)
		if cfg.Logout != nil {
			r.Get("/logout", cfg.Logout)
		}
		if cfg.OAuthBegin != nil {
			r.Get("/auth/{provider}", cfg.OAuthBegin)
		}
		if cfg.OAuthCallback != nil {
			r.Get("/auth/{provider}/callback", cfg.OAuthCallback)
		}
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
