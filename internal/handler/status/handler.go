package status

import (
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies are the engine components the operator API reads and drives.
// Gatherer may be nil, in which case /metrics is not served.
type Dependencies struct {
	Monitor   Monitor
	Breaker   Breaker
	Online    Connectivity
	Queue     QueueCounter
	Conflicts ConflictResolver
	Sync      Syncer
	Events    EventSource
	Gatherer  prometheus.Gatherer
}

type Handler struct {
	controller *Controller
	events     EventSource
	gatherer   prometheus.Gatherer

	logger *logger.Logger
}

func NewHandler(deps Dependencies, logger *logger.Logger) *Handler {
	return &Handler{
		controller: NewController(deps),
		events:     deps.Events,
		gatherer:   deps.Gatherer,
		logger:     logger.WithComponent("status-api"),
	}
}

// Controller returns the command surface shared with the status console.
func (h *Handler) Controller() *Controller {
	return h.controller
}
