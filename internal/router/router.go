package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maruko-pickup/api/internal/cart"
	"github.com/maruko-pickup/api/internal/config"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/enum"
	"github.com/maruko-pickup/api/internal/export"
	"github.com/maruko-pickup/api/internal/handler"
	"github.com/maruko-pickup/api/internal/metrics"
	mw "github.com/maruko-pickup/api/internal/middleware"
	"github.com/maruko-pickup/api/internal/notify"
	"github.com/maruko-pickup/api/internal/render"
	"github.com/maruko-pickup/api/internal/service"
	"github.com/maruko-pickup/api/internal/ws"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Deps carries the infrastructure built in main that handlers and
// services share.
type Deps struct {
	Metrics  *metrics.Metrics
	Queue    notify.Queue
	Redis    redis.UniversalClient
	Renderer render.Engine
}

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(deps.Metrics))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handler.CartIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", "X-Export-Count", handler.CartIDHeader},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	// Services
	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, deps.Queue, hub, deps.Metrics)
	statusService := service.NewStatusService(queries, hub, cfg.StrictStatusTransitions)
	pipeline := export.NewPipeline(queries, deps.Renderer, cfg.ExportConcurrency, deps.Metrics)
	cartService := cart.NewService(cart.NewRedisStore(deps.Redis, cfg.CartTTL), queries, orderService)

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Storefront
	productHandler := handler.NewProductHandler(queries, pool, func(db database.DBTX) handler.ProductWriteStore {
		return database.New(db)
	})
	r.Route("/products", productHandler.RegisterRoutes)

	orderHandler := handler.NewOrderHandler(orderService, queries)
	r.Route("/orders", orderHandler.RegisterRoutes)

	cartHandler := handler.NewCartHandler(cartService)
	r.Route("/cart", cartHandler.RegisterRoutes)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Shop back office
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Staff and admins run the daily order flow
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleStaff))

			adminOrderHandler := handler.NewAdminOrderHandler(queries, statusService, pipeline)
			r.Route("/orders", adminOrderHandler.RegisterRoutes)

			reportsHandler := handler.NewReportsHandler(queries)
			r.Route("/reports", reportsHandler.RegisterRoutes)
		})

		// Catalogue and accounts are admin-only
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			r.Route("/products", productHandler.RegisterAdminRoutes)

			optionHandler := handler.NewOptionHandler(queries)
			r.Route("/options", optionHandler.RegisterRoutes)

			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", userHandler.RegisterRoutes)
		})
	})

	log.Debug().Msg("router initialized")
	return r
}
