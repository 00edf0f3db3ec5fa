package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"memoryjournal/internal/metrics"
	mw "memoryjournal/internal/middleware"
)

// RouterDeps collects everything NewRouter mounts.
type RouterDeps struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Journals  *JournalHandler
	Analytics *AnalyticsHandler
	Reminders *ReminderHandler
	Media     *MediaHandler
	Health    *HealthHandler

	AuthMW         *mw.AuthMiddleware
	Recorder       metrics.Recorder
	MetricsHandler http.Handler // nil disables /metrics
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.ZapRequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.Metrics(d.Recorder))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
	}
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", d.Auth.Signup)
		api.Post("/auth/login", d.Auth.Login)

		api.Group(func(pr chi.Router) {
			pr.Use(d.AuthMW.RequireAuth)

			pr.Get("/users/me", d.Users.GetMe)
			pr.Put("/users/me", d.Users.UpdateMe)
			pr.Delete("/users/me", d.Users.DeleteMe)

			pr.Route("/journals", func(j chi.Router) {
				j.Get("/", d.Journals.List)
				j.Post("/", d.Journals.Create)
				j.Post("/with-media", d.Journals.CreateWithMedia)
				j.Get("/mood-analytics", d.Analytics.MoodAnalytics)
				j.Get("/{id}", d.Journals.Get)
				j.Put("/{id}", d.Journals.Update)
				j.Delete("/{id}", d.Journals.Delete)
				j.Post("/{id}/unlock", d.Journals.Unlock)
			})

			pr.Route("/reminders", func(rm chi.Router) {
				rm.Get("/", d.Reminders.List)
				rm.Post("/", d.Reminders.Create)
				rm.Get("/{id}", d.Reminders.Get)
				rm.Put("/{id}", d.Reminders.Update)
				rm.Delete("/{id}", d.Reminders.Delete)
			})

			pr.Route("/media", func(m chi.Router) {
				m.Get("/", d.Media.List)
				m.Post("/", d.Media.Create)
				m.Post("/batch", d.Media.CreateBatch)
				m.Delete("/{id}", d.Media.Delete)
			})
		})
	})
	return r
}
