package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/docentdesk/booking/internal/idempotency"
	"github.com/docentdesk/booking/internal/observability"
	"github.com/docentdesk/booking/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, idemp *idempotency.Idempotency, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(JWTMiddleware(jwtSecret))
		r.Use(RateLimitMiddleware(rl))
		r.Use(IdempotencyMiddleware(idemp))

		r.Post("/v1/bookings", h.CreateBooking)
		r.Get("/v1/bookings/my-bookings", h.MyBookings)
		r.Get("/v1/bookings/{id}", h.GetBooking)
		r.Put("/v1/bookings/{id}/cancel", h.CancelBooking)

		r.Get("/v1/events", h.ListEvents)
		r.Get("/v1/events/{id}", h.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(AdminOnly)
			r.Get("/v1/bookings", h.ListBookings)
			r.Put("/v1/bookings/{id}/confirm", h.ConfirmBooking)
			r.Post("/v1/events", h.CreateEvent)
			r.Put("/v1/events/{id}", h.UpdateEvent)
			r.Put("/v1/events/{id}/publish", h.PublishEvent)
			r.Put("/v1/events/{id}/cancel", h.CancelEvent)
		})
	})

	return r
}
