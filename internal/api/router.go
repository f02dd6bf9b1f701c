package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/userdir-be/internal/api/handlers"
	"github.com/isdelr/userdir-be/internal/auth"
	"github.com/isdelr/userdir-be/internal/services"
	"github.com/isdelr/userdir-be/internal/websocket"
)

// Options carries the collaborators wired into the router.
type Options struct {
	Issuer         *auth.Issuer
	UserService    services.UserServiceProvider
	Hub            *websocket.Hub
	Health         handlers.HealthReporter
	Metrics        http.Handler
	Recorder       RequestRecorder
	RateLimiter    *RateLimiter
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Recorder))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.Health != nil {
		r.Get("/healthz", handlers.NewHealthHandler(opts.Health).Serve)
	}

	// Initialize handlers
	var events handlers.EventPublisher
	if opts.Hub != nil {
		events = opts.Hub
	}
	authHandler := handlers.NewAuthHandler(opts.Issuer)
	userHandler := handlers.NewUserHandler(opts.UserService, events)

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}

		r.Post("/auth/token", authHandler.Token)

		r.Group(func(r chi.Router) {
			r.Use(opts.Issuer.Middleware())

			if opts.Hub != nil {
				r.Get("/ws", handlers.NewWebSocketHandler(opts.Hub).Serve)
			}

			r.Route("/user", func(r chi.Router) {
				r.Post("/", userHandler.Create)
				r.Get("/account/{accountNumber}", userHandler.GetByAccountNumber)
				r.Get("/identity/{identityNumber}", userHandler.GetByIdentityNumber)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	return r
}
