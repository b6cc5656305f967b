package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging, withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/ping", h.ping)
		r.Get("/api/version", h.getServerVersion)
	})

	router.Route("/api/collections/{collection}", func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/", h.listRecords)
		r.With(h.contentHashing).Post("/", h.createRecord)

		r.Get("/{id}", h.getRecord)
		r.With(h.contentHashing).Put("/{id}", h.updateRecord)
		r.Delete("/{id}", h.deleteRecord)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
