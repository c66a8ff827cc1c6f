package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/smart-scheduler/internal/appointment"
)

type RouterConfig struct {
	Service      *appointment.Service
	Checks       []DependencyCheck
	CORSOrigins  []string
	MaxBodyBytes int64
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware(cfg.CORSOrigins))
	r.Use(BodyLimitMiddleware(cfg.MaxBodyBytes))

	r.Get("/", rootHandler(cfg.Version))

	// Health endpoints
	health := NewHealthHandler(cfg.Checks, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Get("/services", listServicesHandler(cfg.Service))
		r.Get("/availability", availabilityHandler(cfg.Service))

		r.Post("/appointments", createAppointmentHandler(cfg.Service))
		r.Get("/appointments", listAppointmentsHandler(cfg.Service))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
		r.Delete("/appointments/{id}", cancelAppointmentHandler(cfg.Service))

		r.Get("/insights", insightsHandler(cfg.Service))
	})

	return r
}
