package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/carhive/carhive-be/internal/api/handlers"
	"github.com/carhive/carhive-be/internal/auth"
	"github.com/carhive/carhive-be/internal/metrics"
	"github.com/carhive/carhive-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(tokens *auth.TokenService, users services.UserServiceProvider, cars services.CarServiceProvider, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(users, tokens)
	carHandler := handlers.NewCarHandler(cars)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	// Every car route sits behind the bearer token middleware; the
	// per-resource ownership gate runs in the service layer.
	r.Route("/cars", func(r chi.Router) {
		r.Use(tokens.Middleware)
		r.Get("/", carHandler.GetAll)
		r.Post("/", carHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", carHandler.Get)
			r.Put("/", carHandler.Update)
			r.Delete("/", carHandler.Delete)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
