package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fitlabhq/fitstore-backend/api/controllers"
	"github.com/fitlabhq/fitstore-backend/api/middleware"
	"github.com/fitlabhq/fitstore-backend/internal/catalog"
	"github.com/fitlabhq/fitstore-backend/internal/downloads"
	"github.com/fitlabhq/fitstore-backend/internal/orders"
	"github.com/fitlabhq/fitstore-backend/pkg/config"
	"github.com/fitlabhq/fitstore-backend/pkg/db"
	"github.com/fitlabhq/fitstore-backend/pkg/logger"
	"github.com/fitlabhq/fitstore-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	ordersService orders.Service,
	downloadsService downloads.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// Explicit interface conversion so a nil client disables the Redis-backed
	// middleware instead of panicking on a typed-nil interface.
	var idemStore redis.IdempotencyStore
	var limiter middleware.RateLimiterStore
	readiness := map[string]controllers.Pinger{}
	if dbP != nil {
		readiness["database"] = dbP
	}
	if redisClient != nil {
		idemStore = redisClient
		limiter = redisClient
		readiness["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Get("/{productID}", controllers.GetProduct(catalogService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.Idempotency(idemStore, logg)).
				Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/", controllers.ListOrdersByEmail(ordersService, logg))
			r.Get("/{orderID}", controllers.GetOrder(ordersService, logg))
			r.Get("/{orderID}/entitlement", controllers.CheckEntitlement(downloadsService, logg))
			r.With(middleware.DownloadRateLimit(cfg.RateLimit, limiter, logg)).
				Get("/{orderID}/download", controllers.DownloadFile(downloadsService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idemStore, logg))
			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
				r.Patch("/{productID}", controllers.AdminUpdateProduct(catalogService, logg))
				r.Delete("/{productID}", controllers.AdminDeactivateProduct(catalogService, logg))
			})
		})
	})

	return r
}
