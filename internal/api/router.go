package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omegaui/leadrouter/internal/dispatch"
	"github.com/omegaui/leadrouter/internal/events"
	"github.com/omegaui/leadrouter/internal/store"
)

func NewRouter(s store.Store, d *dispatch.Dispatcher, ev events.Client, operatorToken, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	leads := NewLeadsHandler(s, d, ev)
	attorneys := NewAttorneysHandler(s)
	overflow := NewOverflowHandler(s)
	preview := NewPreviewHandler(s)
	admin := NewAdminHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(OperatorIDMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(OperatorAuthMiddleware(operatorToken))

			r.Post("/leads/assign", leads.Assign)
			r.Post("/leads", leads.Create)
			r.Get("/leads", leads.List)
			r.Get("/leads/{id}", leads.Get)

			r.Post("/attorneys", attorneys.Create)
			r.Get("/attorneys", attorneys.List)
			r.Get("/attorneys/{id}", attorneys.Get)
			r.Patch("/attorneys/{id}", attorneys.Update)

			r.Get("/overflow", overflow.List)
			r.Get("/scoring/preview", preview.Preview)
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/stats", admin.Stats)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
