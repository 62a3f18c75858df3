package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoptools/shoptools-go/api/controllers"
	"github.com/shoptools/shoptools-go/api/middleware"
	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/internal/catalogue"
	checkoutsvc "github.com/shoptools/shoptools-go/internal/checkout"
	"github.com/shoptools/shoptools-go/internal/orders"
	"github.com/shoptools/shoptools-go/pkg/config"
	"github.com/shoptools/shoptools-go/pkg/logger"
	"github.com/shoptools/shoptools-go/pkg/metrics"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router wires into handlers. Optional entries
// (pingers, metrics gatherer) may be nil; the matching routes degrade
// rather than panic.
type Deps struct {
	DB    pinger
	Redis pinger

	SessionStore *cart.SessionStore
	Checkout     checkoutsvc.Service
	OrdersRepo   orders.Repository
	ProductRepo  *catalogue.ProductRepository

	CartMetrics *metrics.CartMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Get("/products", controllers.ProductList(deps.ProductRepo, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.SessionStore, logg))
			r.Post("/update", controllers.CartUpdate(deps.SessionStore, deps.CartMetrics, logg))
			r.Put("/shipping", controllers.CartShipping(deps.SessionStore, logg))
			r.Put("/vouchers", controllers.CartVouchers(deps.SessionStore, logg))
			r.Post("/clear", controllers.CartClear(deps.SessionStore, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Checkout, deps.SessionStore, deps.CartMetrics, logg))

		r.Get("/orders/{orderId}", controllers.OrderDetail(deps.Checkout, deps.OrdersRepo, logg))
	})

	return r
}
