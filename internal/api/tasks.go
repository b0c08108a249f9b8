package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redline-eval/redline/internal/artifact"
	"github.com/redline-eval/redline/pkg/scoring"
)

// Task statuses.
const (
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

// Artifact names written for every task.
const (
	ArtifactEvaluation = "evaluation"
	ArtifactCritique   = "critique"
)

// Task is an evaluation submitted through /v1/tasks.
type Task struct {
	ID             string                 `json:"id"`
	Status         string                 `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	RiskScore      int                    `json:"risk_score"`
	Classification scoring.Classification `json:"classification"`
	Artifacts      []string               `json:"artifacts"`
	Error          string                 `json:"error,omitempty"`
}

// handleCreateTask evaluates a narrative and writes the evaluation and its
// critique as named artifacts.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "artifact storage not configured")
		return
	}
	req, ok := readNarrative(w, r)
	if !ok {
		return
	}

	result := h.evaluate(req)
	task := &Task{
		ID:             uuid.New().String(),
		Status:         TaskCompleted,
		CreatedAt:      time.Now().UTC(),
		RiskScore:      result.RiskScore,
		Classification: result.Classification,
	}

	artifacts := []struct {
		name string
		data any
	}{
		{ArtifactEvaluation, result},
		{ArtifactCritique, scoring.Critique(result)},
	}
	for _, a := range artifacts {
		data, err := json.Marshal(a.data)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "encode artifact: "+err.Error())
			return
		}
		if err := h.store.Put(r.Context(), task.ID, a.name, data); err != nil {
			h.logger.Error("storing artifact failed",
				zap.String("task_id", task.ID), zap.String("artifact", a.name), zap.Error(err))
			task.Status = TaskFailed
			task.Error = "failed to store artifact " + a.name
			h.tasks.Put(task)
			writeJSON(w, http.StatusInternalServerError, task)
			return
		}
		task.Artifacts = append(task.Artifacts, a.name)
	}

	h.tasks.Put(task)
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task := h.tasks.Get(r.PathValue("taskID"))
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleGetArtifact serves an artifact straight from the store, so it
// outlives the task cache.
func (h *Handler) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "artifact storage not configured")
		return
	}
	taskID, name := r.PathValue("taskID"), r.PathValue("name")
	if _, err := artifact.Key(taskID, name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.store.Get(r.Context(), taskID, name)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "artifact not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read artifact: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
