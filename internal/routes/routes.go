package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/frontline-fury-backend/internal/config"
	"github.com/AnshRaj112/frontline-fury-backend/internal/database"
	"github.com/AnshRaj112/frontline-fury-backend/internal/handlers"
	"github.com/AnshRaj112/frontline-fury-backend/internal/middleware"
	"github.com/AnshRaj112/frontline-fury-backend/internal/models"
	"github.com/AnshRaj112/frontline-fury-backend/internal/services"
	"github.com/AnshRaj112/frontline-fury-backend/pkg/clientip"
)

// Database is what the router needs from the connection manager.
type Database interface {
	middleware.Readiness
	handlers.StateReporter
}

// Deps are the collaborators of the HTTP router.
type Deps struct {
	Config      *config.Config
	Log         zerolog.Logger
	DB          Database
	Feedbacks   handlers.Store[models.Feedback]
	PreBookings handlers.Store[models.PreBooking]
	Cache       *services.ListCache
	Gatherer    prometheus.Gatherer
}

// NewRouter wires middleware and every route of the service.
func NewRouter(d Deps) *chi.Mux {
	production := d.Config.IsProduction()

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.Recover(d.Log, production))
	r.Use(middleware.CORS(d.Config.AllowedOrigins))

	// Production: SecurityHeaders → per-IP rate limit
	if production {
		limiter := middleware.NewRateLimiter(d.Config.RateLimitRPS, d.Config.RateLimitBurst,
			clientip.Resolver{TrustProxy: d.Config.TrustProxy})
		for _, mw := range middleware.ProductionSecurity(limiter) {
			r.Use(mw)
		}
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	system := handlers.NewSystem(d.DB, d.Config.Environment)

	// Liveness and metrics never wait for the database
	r.Get("/ping", system.Ping)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireDatabase(d.DB))

		r.Get("/", system.Index)
		r.Get("/health", system.Health)
		r.Get("/api/test", system.Test)

		feedback := handlers.NewController(d.Feedbacks, handlers.FeedbackResource, d.Cache, d.Log, production)
		r.Route("/api/feedback", feedback.Routes)

		prebooking := handlers.NewController(d.PreBookings, handlers.PreBookingResource, d.Cache, d.Log, production)
		r.Route("/api/prebooking", prebooking.Routes)
	})

	return r
}

// Walk lists every registered route as "METHOD pattern".
func Walk(r chi.Routes) ([]string, error) {
	var out []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk routes: %w", err)
	}
	return out, nil
}

var _ Database = (*database.Manager)(nil)
