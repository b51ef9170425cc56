package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/FACorreiaa/go-city-registry/internal/api/city"
	"github.com/FACorreiaa/go-city-registry/internal/api/greeting"
)

// Config contains dependencies needed for the router setup
type Config struct {
	CityHandler     city.Handler
	GreetingHandler *greeting.Handler
	AllowedOrigins  []string
	// WriteRateLimit caps mutating requests per client IP per window. Zero disables it.
	WriteRateLimit  int
	WriteRateWindow time.Duration
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, request id, recoverer) is applied in main.go
// before this router is mounted.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Get("/greeting", cfg.GreetingHandler.Greet)

	cities := CityRoutes(cfg.CityHandler, cfg.WriteRateLimit, cfg.WriteRateWindow)
	r.Mount("/cities", cities)
	// path used by earlier clients
	r.Mount("/villes", cities)

	return r
}

// CityRoutes wires the city CRUD endpoints.
func CityRoutes(h city.Handler, writeLimit int, window time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.GetAllCities)
	r.Get("/{cityID}", h.GetCity)

	r.Group(func(r chi.Router) {
		if writeLimit > 0 {
			r.Use(httprate.LimitByIP(writeLimit, window))
		}
		r.Post("/", h.CreateCity)
		r.Put("/{cityID}", h.UpdateCity)
		r.Delete("/{cityID}", h.DeleteCity)
	})

	return r
}
