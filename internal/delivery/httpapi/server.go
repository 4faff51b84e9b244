package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
)

// NewRouter builds the REST surface over the alert service.
func NewRouter(handlers *Handlers, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	c := corslib.New(corslib.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
	})
	r.Use(c.Handler)

	r.Get("/health", handlers.Health)

	r.Route("/api/alerts", func(r chi.Router) {
		r.Post("/", handlers.CreateAlert)
		r.Get("/", handlers.ListAlerts)
		r.Get("/stats/summary", handlers.Stats)
		r.Get("/notifications", handlers.ListNotifications)
		r.Post("/notifications/{notificationID}/read", handlers.MarkNotificationRead)
		r.Get("/{alertID}", handlers.GetAlert)
		r.Put("/{alertID}", handlers.UpdateAlert)
		r.Delete("/{alertID}", handlers.DeleteAlert)
		r.Post("/{alertID}/test", handlers.TestAlert)
	})

	return r
}
