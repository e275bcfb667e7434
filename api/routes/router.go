package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantops/plantops-backend/api/controllers"
	"github.com/plantops/plantops-backend/api/middleware"
	"github.com/plantops/plantops-backend/internal/inventory"
	"github.com/plantops/plantops-backend/internal/notifications"
	"github.com/plantops/plantops-backend/pkg/access"
	"github.com/plantops/plantops-backend/pkg/config"
	"github.com/plantops/plantops-backend/pkg/db"
	"github.com/plantops/plantops-backend/pkg/enums"
	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/metrics"
	"github.com/plantops/plantops-backend/pkg/redis"
)

// Dependencies groups everything the router wires into handlers.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	Policy        *access.Policy
	DB            db.Pinger
	Redis         redis.Pinger
	Metrics       http.Handler
	HTTPMetrics   *metrics.HTTPMetrics
	Notifications notifications.Service
	Inventory     inventory.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	notificationsHandler := controllers.Notifications(deps.Notifications, logg)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Policy, logg))

		r.Get("/api/ping", controllers.PrivatePing())
		r.With(middleware.RequireRole(logg, enums.RoleAdmin)).Get("/api/v1/admin/ping", controllers.AdminPing())

		r.HandleFunc("/api/notifications", notificationsHandler)
		r.HandleFunc("/api/v1/notifications", notificationsHandler)

		r.Route("/api/v1/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(deps.Inventory, logg))
			r.Post("/", controllers.InventoryCreate(deps.Inventory, logg))
			r.Get("/summary", controllers.InventorySummary(deps.Inventory, logg))
			r.Get("/{itemId}", controllers.InventoryGet(deps.Inventory, logg))
			r.Put("/{itemId}", controllers.InventoryUpdate(deps.Inventory, logg))
			r.Post("/{itemId}/adjust", controllers.InventoryAdjust(deps.Inventory, logg))
			r.Get("/{itemId}/movements", controllers.InventoryMovements(deps.Inventory, logg))
		})
	})

	return r
}
