package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medislot/medislot-server/internal/auth"
	"github.com/medislot/medislot-server/internal/booking"
)

type RouterConfig struct {
	Service    *booking.Service
	Gate       *auth.Gate
	SessionTTL time.Duration
	PgPool     *pgxpool.Pool
	Redis      *redis.Client
	Env        string
	Version    string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		// Catalog
		r.Get("/categories", listCategoriesHandler())
		r.Get("/doctors", listDoctorsHandler())
		r.Get("/doctors/{id}", getDoctorHandler())
		r.Get("/doctors/{id}/slots", slotAvailabilityHandler(cfg.Service))

		// Appointments
		r.Post("/appointments", bookAppointmentHandler(cfg.Service))
		r.Get("/appointments", listAppointmentsHandler(cfg.Service))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
		r.Get("/appointments/{id}/qr", appointmentQRHandler(cfg.Service))
		r.Delete("/appointments/{id}", cancelAppointmentHandler(cfg.Service))

		// Receptionist
		r.Post("/receptionist/login", receptionistLoginHandler(cfg.Gate, cfg.SessionTTL))
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(cfg.Gate))
			r.Get("/receptionist/appointments", dashboardHandler(cfg.Service))
		})
	})

	return r
}
