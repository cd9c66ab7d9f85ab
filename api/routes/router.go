package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/amglow-storefront/api/controllers"
	cartcontrollers "github.com/angelmondragon/amglow-storefront/api/controllers/cart"
	"github.com/angelmondragon/amglow-storefront/api/middleware"
	"github.com/angelmondragon/amglow-storefront/internal/catalog"
	checkoutsvc "github.com/angelmondragon/amglow-storefront/internal/checkout"
	"github.com/angelmondragon/amglow-storefront/pkg/config"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
	pkgredis "github.com/angelmondragon/amglow-storefront/pkg/redis"
)

// Dependencies are the services the router exposes. Idempotency and Metrics
// may be nil: the former disables checkout replay, the latter falls back to
// the default prometheus registry.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Carts       cartcontrollers.SessionOpener
	Catalog     catalog.Repository
	Checkout    checkoutsvc.Service
	Idempotency pkgredis.IdempotencyStore
	Readiness   []controllers.NamedPinger
	Metrics     http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})

	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Catalog, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(logg, cfg.App.IsProd()))
			r.Use(middleware.Idempotency(deps.Idempotency, cfg.Checkout.IdempotencyTTL, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(deps.Carts, logg))
				r.Delete("/", cartcontrollers.CartClear(deps.Carts, logg))
				r.Post("/items", cartcontrollers.CartAddItem(deps.Carts, deps.Catalog, logg))
				r.Patch("/items/{productId}", cartcontrollers.CartUpdateItem(deps.Carts, logg))
				r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(deps.Carts, logg))
			})
			r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
		})
	})

	return r
}
