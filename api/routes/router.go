package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroomhq/stockroom-backend/api/controllers"
	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/internal/inventory"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	inventoryService inventory.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	writePolicy := middleware.NewWriteRateLimitPolicy(
		"inventory",
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteTenantLimit,
		cfg.RateLimit.WriteIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.WriteRateLimit(writePolicy, redisClient, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1", func(r chi.Router) {
			r.Route("/items", func(r chi.Router) {
				r.Post("/", controllers.CreateItem(inventoryService, logg))
				r.Get("/", controllers.ListItems(inventoryService, logg))
				r.Route("/{itemID}", func(r chi.Router) {
					r.Get("/", controllers.GetItem(inventoryService, logg))
					r.Get("/stock", controllers.GetStockLevel(inventoryService, logg))
					r.Get("/availability", controllers.GetAvailability(inventoryService, logg))
					r.Post("/adjustments", controllers.AdjustStock(inventoryService, logg))
					r.Get("/adjustments", controllers.ListAdjustments(inventoryService, logg))
				})
			})

			r.Get("/stock-levels", controllers.ListStockLevels(inventoryService, logg))

			r.Route("/reservations", func(r chi.Router) {
				r.Post("/", controllers.CreateReservation(inventoryService, logg))
				r.Get("/", controllers.ListReservations(inventoryService, logg))
				r.Route("/{reservationID}", func(r chi.Router) {
					r.Get("/", controllers.GetReservation(inventoryService, logg))
					r.Post("/release", controllers.ReleaseReservation(inventoryService, logg))
					r.Post("/fulfill", controllers.FulfillReservation(inventoryService, logg))
				})
			})
		})
	})

	return r
}
