package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/redline-eval/redline/pkg/arena"
)

// arenaRequest is the JSON body for POST /v1/arena. Omitted scenario fields
// take their defaults.
type arenaRequest struct {
	Scenario *arena.Scenario `json:"scenario"`
}

// handleArena runs a refinement loop synchronously. A FAILED run is returned
// with its partial records and a 502 status.
func (h *Handler) handleArena(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "arena generator not configured")
		return
	}

	sc := arena.DefaultScenario()
	req := arenaRequest{Scenario: &sc}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Scenario == nil {
		req.Scenario = &sc
	}
	if err := req.Scenario.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid scenario: "+err.Error())
		return
	}

	opts := append([]arena.Option{arena.WithLogger(h.logger)}, h.arenaOpts...)
	a := arena.New(h.generator, arena.EngineEvaluator{Engine: h.engine}, opts...)
	result := a.Run(r.Context(), *req.Scenario)

	status := http.StatusOK
	if result.State == arena.StateFailed {
		status = http.StatusBadGateway
		h.logger.Warn("arena run failed", zap.String("run_id", result.ID), zap.Error(result.Err))
	}
	writeJSON(w, status, result)
}
