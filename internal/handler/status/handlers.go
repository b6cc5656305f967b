package status

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/conflict"
	"github.com/MKhiriev/go-offline-sync/internal/monitor"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/go-chi/chi/v5"
)

type resolveRequest struct {
	Value models.Record `json:"value"`
}

type strategyRequest struct {
	Strategy models.ConflictStrategy `json:"strategy"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	report, err := h.controller.Report(r.Context())
	if err != nil {
		h.respondError(w, "*Handler.getStatus", err)
		return
	}

	utils.WriteJSON(w, report, http.StatusOK)
}

// probeNow runs an out-of-schedule health probe. A failed probe still
// answers 200 with the updated metrics.
func (h *Handler) probeNow(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.controller.Probe(r.Context())
	if errors.Is(err, monitor.ErrProbeInProgress) {
		h.respondError(w, "*Handler.probeNow", err)
		return
	}

	utils.WriteJSON(w, metrics, http.StatusOK)
}

func (h *Handler) resetBreaker(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.controller.ResetBreaker()
	h.logger.Info().Str("func", "*Handler.resetBreaker").Msg("circuit breaker reset by operator")

	utils.WriteJSON(w, snapshot, http.StatusOK)
}

func (h *Handler) syncNow(w http.ResponseWriter, r *http.Request) {
	summary, err := h.controller.Sync(r.Context())
	if err != nil {
		h.respondError(w, "*Handler.syncNow", err)
		return
	}

	utils.WriteJSON(w, summary, http.StatusOK)
}

func (h *Handler) listConflicts(w http.ResponseWriter, r *http.Request) {
	conflicts, err := h.controller.PendingConflicts(r.Context())
	if err != nil {
		h.respondError(w, "*Handler.listConflicts", err)
		return
	}
	if conflicts == nil {
		conflicts = []models.ConflictRecord{}
	}

	utils.WriteJSON(w, conflicts, http.StatusOK)
}

func (h *Handler) resolveConflict(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, errorResponse{Error: "invalid JSON was passed"}, http.StatusBadRequest)
		return
	}

	resolved, err := h.controller.ResolveConflict(r.Context(), chi.URLParam(r, "id"), req.Value)
	if err != nil {
		h.respondError(w, "*Handler.resolveConflict", err)
		return
	}

	utils.WriteJSON(w, resolved, http.StatusOK)
}

func (h *Handler) listStrategies(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSON(w, h.controller.Strategies(), http.StatusOK)
}

func (h *Handler) setStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, errorResponse{Error: "invalid JSON was passed"}, http.StatusBadRequest)
		return
	}

	collection := chi.URLParam(r, "collection")
	if err := h.controller.SetStrategy(collection, req.Strategy); err != nil {
		h.respondError(w, "*Handler.setStrategy", err)
		return
	}

	h.logger.Info().Str("collection", collection).Str("strategy", string(req.Strategy)).Msg("conflict strategy changed")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listDeadLetters(w http.ResponseWriter, r *http.Request) {
	letters, err := h.controller.DeadLetters(r.Context())
	if err != nil {
		h.respondError(w, "*Handler.listDeadLetters", err)
		return
	}
	if letters == nil {
		letters = []models.DeadLetter{}
	}

	utils.WriteJSON(w, letters, http.StatusOK)
}

var errorStatusMap = map[error]int{
	store.ErrConflictNotFound:        http.StatusNotFound,
	store.ErrConflictAlreadyResolved: http.StatusConflict,
	conflict.ErrEmptyResolution:      http.StatusBadRequest,
	conflict.ErrUnknownStrategy:      http.StatusBadRequest,
	conflict.ErrNoConflictStore:      http.StatusNotImplemented,
	service.ErrDrainInProgress:       http.StatusConflict,
	monitor.ErrProbeInProgress:       http.StatusConflict,
}

func (h *Handler) respondError(w http.ResponseWriter, funcName string, err error) {
	status := http.StatusInternalServerError
	for target, code := range errorStatusMap {
		if errors.Is(err, target) {
			status = code
			break
		}
	}

	h.logger.Warn().Err(err).Str("func", funcName).Int("status", status).Send()
	utils.WriteJSON(w, errorResponse{Error: err.Error()}, status)
}
