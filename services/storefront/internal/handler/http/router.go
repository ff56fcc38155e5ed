package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/health"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/middleware"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/event"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/guard"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/service"
)

// ServiceName labels metrics and spans.
const ServiceName = "storefront"

// Deps holds everything the handlers serve.
type Deps struct {
	Cars         CarGateway
	Listing      *service.Listing
	Publications *service.Publications
	Cart         *service.CartStore
	Favorites    *service.FavoritesStore
	Auth         *service.AuthStore
	Events       RecentEvents
	Gate         *guard.Gate
}

// Options tunes the router.
type Options struct {
	CORS middleware.CORSConfig
	// CatalogMaxAge is the Cache-Control max-age, in seconds, of single car
	// and search responses. 0 disables caching headers on them.
	CatalogMaxAge int
	// PprofAllowlist enables /debug/pprof for the given CIDRs when non-empty.
	PprofAllowlist []string
}

// RecentEvents exposes the latest car notifications.
type RecentEvents interface {
	Recent() []event.CarEvent
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps Deps, healthHandler *health.Handler, opts Options, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	identity := func(*http.Request) string { return deps.Auth.UserEmail() }

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(opts.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger, identity))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	if len(opts.PprofAllowlist) > 0 {
		middleware.RegisterPprof(r, opts.PprofAllowlist, logger)
	}

	cars := NewCarHandler(deps.Cars, deps.Listing, logger)
	auth := NewAuthHandler(deps.Auth, logger)
	cart := NewCartHandler(deps.Cart, deps.Cars, logger)
	favs := NewFavoritesHandler(deps.Favorites, deps.Cars, logger)
	sell := NewSellHandler(deps.Cars, deps.Auth, logger)
	pubs := NewPublicationsHandler(deps.Publications, logger)
	events := NewEventHandler(deps.Events)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/cars", func(r chi.Router) {
			r.Get("/", cars.ListCars)
			r.Group(func(r chi.Router) {
				if opts.CatalogMaxAge > 0 {
					r.Use(middleware.CacheControl(opts.CatalogMaxAge))
				}
				r.Get("/search", cars.SearchCars)
				r.Get("/{id}", cars.GetCar)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Post("/login", auth.Login)
			r.Post("/register", auth.Register)
			r.Post("/logout", auth.Logout)
			r.Get("/session", auth.Session)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Get("/", favs.ListFavorites)
			r.Post("/{carId}", favs.AddFavorite)
			r.Post("/{carId}/toggle", favs.ToggleFavorite)
			r.Delete("/{carId}", favs.RemoveFavorite)
		})

		r.With(middleware.NoStore).Get("/events", events.ListEvents)

		// Screens that need a signed-in user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(deps.Gate.Middleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cart.GetCart)
				r.Delete("/", cart.ClearCart)
				r.Post("/items", cart.AddItem)
				r.Put("/items/{carId}", cart.UpdateItemQuantity)
				r.Delete("/items/{carId}", cart.RemoveItem)
				r.Post("/checkout", cart.Checkout)
			})

			r.Get("/sell", sell.NewForm)
			r.Post("/sell", sell.Submit)

			r.Route("/publications", func(r chi.Router) {
				r.Get("/", pubs.ListPublications)
				r.Put("/{id}", pubs.UpdatePublication)
				r.Delete("/{id}", pubs.DeletePublication)
			})
		})
	})

	return r
}
