package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhs-fashion/storefront-backend/api/controllers"
	"github.com/mhs-fashion/storefront-backend/api/middleware"
	"github.com/mhs-fashion/storefront-backend/internal/cart"
	"github.com/mhs-fashion/storefront-backend/internal/catalog"
	"github.com/mhs-fashion/storefront-backend/internal/ratings"
	"github.com/mhs-fashion/storefront-backend/internal/users"
	"github.com/mhs-fashion/storefront-backend/pkg/config"
	"github.com/mhs-fashion/storefront-backend/pkg/logger"
	"github.com/mhs-fashion/storefront-backend/pkg/metrics"
	"github.com/mhs-fashion/storefront-backend/pkg/mongodb"
	"github.com/mhs-fashion/storefront-backend/pkg/redis"
)

// NewRouter wires the storefront surface. Paths mirror what the SPA already
// calls, so the catalog and cart routes stay unversioned at the root.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	mongoP mongodb.Pinger,
	redisP redis.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	catalogService catalog.Service,
	cartService cart.Service,
	userService users.Service,
	ratingsRepo ratings.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Get("/", controllers.Home())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, mongoP, redisP))
	})

	// catalog reads
	r.Get("/items-count", controllers.ItemsCount(catalogService, logg))
	r.Get("/category/men/{itemName}", controllers.CategoryItems(catalogService, logg))
	r.Get("/category/{gender}", controllers.CategorySample(catalogService, logg))
	r.Get("/product/{id}", controllers.ProductDetail(catalogService, logg))
	r.Get("/items/{speciality}", controllers.SpecialitySample(catalogService, logg))
	r.Get("/related/{itemName}", controllers.RelatedItems(catalogService, logg))
	r.Get("/ratings", controllers.RatingsList(ratingsRepo, logg))

	// registration
	r.Post("/users", controllers.UserRegister(userService, logg))

	// cart
	r.Get("/carts", controllers.CartList(cartService, logg))
	r.Post("/carts", controllers.CartCreate(cartService, logg))
	r.Delete("/carts/{id}", controllers.CartDelete(cartService, logg))
	r.Get("/cart", controllers.CartFetch(cartService, logg))
	r.Patch("/cart", controllers.CartUpsertLine(cartService, logg))
	r.Get("/cartMenu", controllers.CartMenu(cartService, logg))

	return r
}
