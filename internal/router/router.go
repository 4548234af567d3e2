package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kiwari-pos/register/internal/config"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/handler"
	mw "github.com/kiwari-pos/register/internal/middleware"
	"github.com/kiwari-pos/register/internal/service"
	"github.com/kiwari-pos/register/internal/ws"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, reg *service.Register, hub *ws.Hub, log *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Login screen (public)
	handler.NewAuthHandler(reg, cfg.JWTSecret, log).RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/events", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	adminOnly := mw.RequireRole(enum.UserRoleManager, enum.UserRoleSupervisor)
	managerOnly := mw.RequireRole(enum.UserRoleManager)

	productHandler := handler.NewProductHandler(reg, log)
	categoryHandler := handler.NewCategoryHandler(reg, log)
	orderHandler := handler.NewOrderHandler(reg, log)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/products", func(r chi.Router) {
			productHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				productHandler.RegisterManageRoutes(r)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			categoryHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(managerOnly)
				categoryHandler.RegisterManageRoutes(r)
			})
		})

		r.Route("/cart", handler.NewCartHandler(reg, log).RegisterRoutes)

		r.Route("/orders", func(r chi.Router) {
			orderHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				orderHandler.RegisterManageRoutes(r)
			})
		})

		// Dashboard and employee performance
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Route("/reports", handler.NewReportsHandler(reg, log).RegisterRoutes)
		})

		// Users and settings tabs
		r.Group(func(r chi.Router) {
			r.Use(managerOnly)
			r.Route("/users", handler.NewUserHandler(reg, log).RegisterRoutes)
			r.Route("/settings", handler.NewSettingsHandler(reg, log).RegisterRoutes)
		})
	})

	log.Info("router initialized")
	return r
}
