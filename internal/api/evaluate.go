package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/redline-eval/redline/pkg/judge"
	"github.com/redline-eval/redline/pkg/scoring"
)

// evaluateRequest is the JSON body for POST /v1/evaluate and /v1/hybrid.
type evaluateRequest struct {
	Narrative         string `json:"narrative"`
	PreviousRiskScore *int   `json:"previous_risk_score,omitempty"`
}

// hybridResponse carries the rule evaluation alongside the blended score.
type hybridResponse struct {
	Evaluation *scoring.EvaluationResult `json:"evaluation"`
	Hybrid     judge.HybridScoreResult   `json:"hybrid"`
}

// readNarrative decodes the request and rejects blank narratives. The engine
// scores blank text at maximum risk; the API treats it as malformed input.
func readNarrative(w http.ResponseWriter, r *http.Request) (evaluateRequest, bool) {
	var req evaluateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	if strings.TrimSpace(req.Narrative) == "" {
		writeError(w, http.StatusBadRequest, "narrative is required")
		return req, false
	}
	if p := req.PreviousRiskScore; p != nil && (*p < 0 || *p > 100) {
		writeError(w, http.StatusBadRequest, "previous_risk_score must be within [0,100]")
		return req, false
	}
	return req, true
}

func (h *Handler) evaluate(req evaluateRequest) *scoring.EvaluationResult {
	var result *scoring.EvaluationResult
	if req.PreviousRiskScore != nil {
		result = h.engine.EvaluateAgainst(req.Narrative, *req.PreviousRiskScore)
	} else {
		result = h.engine.Evaluate(req.Narrative)
	}
	observeEvaluation(result)
	return result
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, ok := readNarrative(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.evaluate(req))
}

func (h *Handler) handleHybrid(w http.ResponseWriter, r *http.Request) {
	req, ok := readNarrative(w, r)
	if !ok {
		return
	}

	result := h.evaluate(req)
	rule := scoring.Normalize(result, h.engine.Caps()).OverallScore
	outcome := h.judge.Score(r.Context(), req.Narrative, rule)

	hybrid := judge.Result(outcome)
	h.logger.Debug("hybrid score",
		zap.Float64("rule_score", hybrid.RuleScore),
		zap.Float64("final_score", hybrid.FinalScore),
		zap.Bool("fallback_used", hybrid.FallbackUsed))
	writeJSON(w, http.StatusOK, hybridResponse{Evaluation: result, Hybrid: hybrid})
}
