package status

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(sameOrigin)

	router.Get("/status", h.getStatus)
	router.Post("/probe", h.probeNow)
	router.Post("/breaker/reset", h.resetBreaker)
	router.Post("/sync", h.syncNow)

	router.Get("/conflicts", h.listConflicts)
	router.Post("/conflicts/{id}/resolve", h.resolveConflict)
	router.Get("/strategies", h.listStrategies)
	router.Put("/strategies/{collection}", h.setStrategy)

	router.Get("/dead-letters", h.listDeadLetters)
	router.Get("/events", h.streamEvents)

	if h.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	return router
}
