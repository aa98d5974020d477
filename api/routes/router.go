package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/droptide/droptide-backend/api/controllers"
	"github.com/droptide/droptide-backend/api/middleware"
	"github.com/droptide/droptide-backend/internal/orders"
	"github.com/droptide/droptide-backend/internal/returns"
	"github.com/droptide/droptide-backend/internal/stock"
	"github.com/droptide/droptide-backend/internal/summary"
	"github.com/droptide/droptide-backend/pkg/config"
	"github.com/droptide/droptide-backend/pkg/db"
	"github.com/droptide/droptide-backend/pkg/logger"
	"github.com/droptide/droptide-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis redis.Pinger

	Orders  orders.Service
	Stock   stock.Service
	Returns returns.Service
	Summary summary.Service

	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/summary", controllers.OrderSummary(deps.Summary, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.GetOrder(deps.Orders, logg))
				r.Delete("/", controllers.DeleteOrder(deps.Orders, logg))
				r.Post("/status", controllers.TransitionOrder(deps.Orders, logg))
				r.Post("/confirmation", controllers.SetOrderConfirmation(deps.Orders, logg))
				r.Post("/driver", controllers.AssignOrderDriver(deps.Orders, logg))
				r.Post("/manager", controllers.AssignOrderManager(deps.Orders, logg))
				r.Post("/return/submit", controllers.SubmitReturn(deps.Returns, logg))
				r.Post("/return/verify", controllers.VerifyReturn(deps.Returns, logg))
			})
		})

		r.Route("/stock", func(r chi.Router) {
			r.Post("/allocations", controllers.SetStockAllocation(deps.Stock, logg))
			r.Get("/free", controllers.FreeStock(deps.Stock, logg))
		})
	})

	return r
}
