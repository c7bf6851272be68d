package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	hrest "notification-service/internal/handler/http"
	wshandler "notification-service/internal/handler/ws"
	"notification-service/internal/middleware"
)

// SetupRoutes configures the HTTP routes for the notification service
func SetupRoutes(
	r chi.Router,
	h *hrest.NotificationHandler,
	roleHandler *hrest.RoleHandler,
	wsHandler *wshandler.WSHandler,
	auth *middleware.AuthMiddleware,
	rdb *redis.Client,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "global"))

	// ============================================================
	// Notifications Routes (all require auth)
	// ============================================================
	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/", h.ListNotifications)
		r.Get("/unread", h.ListUnread)
		r.Get("/unread/count", h.CountUnread)
		r.Patch("/{id}/read", h.MarkAsRead)

		// WebSocket endpoint
		r.Get("/ws", wsHandler.HandleNotifications)
	})

	r.Route("/api/v1/users/me", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Put("/push-token", h.UpdatePushToken)
	})

	// Privileged: role assignment (caller role is checked in the
	// usecase so the typed error surfaces intact).
	r.Route("/api/v1/admin/users", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Post("/role", roleHandler.SetUserRole)
	})

	return r
}
